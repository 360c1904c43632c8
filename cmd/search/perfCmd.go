package search

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hightman/xunsearch/cmd/util"
	"github.com/hightman/xunsearch/rpc/client"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf [query...]",
		Short: "Performance testing tool for xunsearch search servers",
		Long: `Runs the count, search and terms requests for the given queries in
parallel, every thread with its own connection, and prints the time per
request.`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfTests      = []string{"count", "search", "terms"}
	perfNumThreads = 10
	perfSkip       = make([]string, 0)
)

func init() {
	SearchCommands.AddCommand(perfTestCmd)

	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. count,terms)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}

func runPerf(_ *cobra.Command, queries []string) error {
	fmt.Println("Performance testing tool for xunsearch search servers")

	conf := util.GetClientConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())
	fmt.Printf("Project: %s\n", session.XS.Name())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Queries: %d\n", len(queries))
	fmt.Println()

	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)
	for _, test := range perfTests {
		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(test) {
				return
			}
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				xs, s, err := openPerfSearch(conf)
				if err != nil {
					util.Logger.Errorf("(%s) - error connecting: %v", test, err)
					for pb.Next() {
					}
					return
				}
				defer xs.Close()

				counter := 0
				for pb.Next() {
					query := queries[counter%len(queries)]
					counter++
					if err := perfRequest(s, test, query); err != nil {
						util.Logger.Errorf("(%s) - error on %q: %v", test, query, err)
					}
				}
			})
		})
		results[test] = result
		printResult(test, result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, &conf, len(queries)); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}
	return nil
}

// openPerfSearch opens a private search connection, contexts are not shared
// between goroutines
func openPerfSearch(conf common.ClientConfig) (*client.XS, *client.Search, error) {
	xs, err := client.New(session.XS.Project(), client.WithConfig(conf))
	if err != nil {
		return nil, nil, err
	}
	s, err := xs.Search()
	if err != nil {
		_ = xs.Close()
		return nil, nil, err
	}
	if charset := util.Charset(); charset != "" {
		s.SetCharset(charset)
	}
	return xs, s, nil
}

func perfRequest(s *client.Search, test, query string) error {
	var err error
	switch test {
	case "count":
		_, err = s.Count(query)
	case "search":
		_, err = s.Search(query)
	case "terms":
		_, err = s.Terms(query)
	}
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig, queries int) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Project", "SearchServers", "TimeoutSec", "TCPNoDelay",
		"Threads", "Queries",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	p := session.XS.Project()
	for _, test := range perfTests {
		result := results[test]
		var nsPerOp float64
		var opsPerSec float64
		skipped := "true"

		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			p.Name,
			strings.Join(p.SearchServers, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.FormatBool(config.TCPNoDelay),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(queries),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
