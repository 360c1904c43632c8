package cmd

import (
	"fmt"
	"os"

	"github.com/hightman/xunsearch/cmd/index"
	"github.com/hightman/xunsearch/cmd/search"
	"github.com/hightman/xunsearch/cmd/util"
	"github.com/hightman/xunsearch/lib/cache"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/spf13/cobra"
)

const (
	Version = "1.4.17"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "xs",
		Short: "xunsearch client",
		Long: fmt.Sprintf(`xs (v%s)

Client of the xunsearch full text search servers. It manages the index of
a project (import, flush, synonyms, dictionary) and runs searches against
it. Flags can also be set as environment variables XS_<FLAG>
(e.g. XS_PROJECT=demo, XS_REDIS_ADDR=localhost:6379).`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of xs",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xs v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(index.IndexCommands)
	RootCmd.AddCommand(search.SearchCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "timeout"
	RootCmd.PersistentFlags().Int(key, common.DefaultTimeoutSecond, util.WrapString("The timeout in seconds of every server request, 0 waits forever"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("Level of the log output (debug, info, warn, error)"))
	key = "charset"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("Charset of queries, results and imported data (e.g. GBK), default is the charset of the project"))
	key = "metrics-addr"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("Serve prometheus metrics on this address while the command runs (e.g. :9100)"))
	key = "redis-addr"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("Cache search counts in the redis server at this address"))
	key = "cache-ttl"
	RootCmd.PersistentFlags().Duration(key, cache.DefaultTTL, util.WrapString("Lifetime of cached search counts"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
