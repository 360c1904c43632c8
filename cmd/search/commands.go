package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hightman/xunsearch/cmd/util"
	"github.com/hightman/xunsearch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	queryCmd = &cobra.Command{
		Use:   "query [query]",
		Short: "Searches documents and prints them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			limit, _ := flags.GetInt("limit")
			offset, _ := flags.GetInt("offset")
			sortField, _ := flags.GetString("sort")
			asc, _ := flags.GetBool("asc")
			highlight, _ := flags.GetBool("highlight")
			facets, _ := flags.GetStringSlice("facets")

			if sortField != "" {
				if err := searcher.SetSort(sortField, asc, false); err != nil {
					return err
				}
			}
			if len(facets) > 0 {
				if err := searcher.SetFacets(facets, false); err != nil {
					return err
				}
			}
			if err := searcher.SetQuery(args[0]); err != nil {
				return err
			}
			searcher.SetLimit(limit, offset)
			docs, err := searcher.Search("")
			if err != nil {
				return err
			}

			fmt.Printf("found about %d documents, showing %d\n", searcher.LastCount(), len(docs))
			fields := session.XS.Scheme().AllFields()
			for _, doc := range docs {
				fmt.Printf("\n#%d [%d%%]\n", doc.Rank(), doc.Percent())
				for _, field := range fields {
					value, ok := doc.Lookup(field.Name)
					if !ok {
						continue
					}
					if highlight && !field.IsNumeric() {
						if value, err = searcher.Highlight(value, false); err != nil {
							return err
						}
					}
					fmt.Printf("  %s: %s\n", field.Name, value)
				}
			}
			for _, name := range facets {
				fmt.Printf("\nfacets of %s:\n", name)
				printCounts(searcher.Facets(name))
			}
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count [query]",
		Short: "Estimates the number of matching documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := searcher.Count(args[0])
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
	termsCmd = &cobra.Command{
		Use:   "terms [query]",
		Short: "Prints the terms of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := searcher.Terms(args[0])
			if err != nil {
				return err
			}
			fmt.Println(strings.Join(terms, " "))
			return nil
		},
	}
	parseCmd = &cobra.Command{
		Use:   "parse [query]",
		Short: "Prints a query as parsed by the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := searcher.GetQuery(args[0])
			if err != nil {
				return err
			}
			fmt.Println(parsed)
			return nil
		},
	}
	hotCmd = &cobra.Command{
		Use:   "hot",
		Short: "Prints the most searched queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			typ, _ := cmd.Flags().GetString("type")
			hot, err := searcher.HotQuery(limit, typ)
			if err != nil {
				return err
			}
			for _, q := range hot {
				fmt.Printf("%8d  %s\n", q.Count, q.Query)
			}
			return nil
		},
	}
	relatedCmd = &cobra.Command{
		Use:   "related [query]",
		Short: "Prints logged queries related to a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return printLines(searcher.RelatedQuery(args[0], limit))
		},
	}
	expandedCmd = &cobra.Command{
		Use:   "expanded [prefix]",
		Short: "Prints logged queries starting with a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return printLines(searcher.ExpandedQuery(args[0], limit))
		},
	}
	correctedCmd = &cobra.Command{
		Use:   "corrected [query]",
		Short: "Prints spelling corrections of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLines(searcher.CorrectedQuery(args[0]))
		},
	}
	synonymsCmd = &cobra.Command{
		Use:   "synonyms [term]",
		Short: "Prints the synonyms of a term, or all synonyms of the project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return printLines(searcher.GetSynonyms(args[0]))
			}
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			stemmed, _ := cmd.Flags().GetBool("stemmed")
			all, err := searcher.GetAllSynonyms(limit, offset, stemmed)
			if err != nil {
				return err
			}
			terms := make([]string, 0, len(all))
			for term := range all {
				terms = append(terms, term)
			}
			sort.Strings(terms)
			for _, term := range terms {
				fmt.Printf("%s: %s\n", term, strings.Join(all[term], ", "))
			}
			return nil
		},
	}
	scwsCmd = &cobra.Command{
		Use:   "scws [text]",
		Short: "Segments a text with the segmenter of the search server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			tops, _ := flags.GetInt("tops")
			xattr, _ := flags.GetString("xattr")
			multi, _ := flags.GetInt("multi")

			sc, err := session.XS.Scws()
			if err != nil {
				return err
			}
			if charset := util.Charset(); charset != "" {
				sc.SetCharset(charset)
			}
			sc.SetMulti(multi)

			var words []client.ScwsWord
			if tops > 0 {
				words, err = sc.Tops(args[0], tops, xattr)
			} else {
				words, err = sc.Result(args[0])
			}
			if err != nil {
				return err
			}
			for _, w := range words {
				fmt.Printf("%6d  %-4s %s\n", w.Off, w.Attr, w.Word)
			}
			return nil
		},
	}
)

func init() {
	key := "limit"
	queryCmd.Flags().Int(key, client.PageSize, util.WrapString("Maximum number of documents"))
	key = "offset"
	queryCmd.Flags().Int(key, 0, util.WrapString("Number of documents to skip"))
	key = "sort"
	queryCmd.Flags().String(key, "", util.WrapString("Sort by the value of this field instead of relevance"))
	key = "asc"
	queryCmd.Flags().Bool(key, false, util.WrapString("Sort ascending"))
	key = "highlight"
	queryCmd.Flags().Bool(key, false, util.WrapString("Highlight the query terms in field values"))
	key = "facets"
	queryCmd.Flags().StringSlice(key, nil, util.WrapString("Count the results per value of these string fields"))

	key = "limit"
	hotCmd.Flags().Int(key, 6, util.WrapString("Number of queries (1-50)"))
	key = "type"
	hotCmd.Flags().String(key, client.HotTotal, util.WrapString("Order by total, lastnum (last period) or currnum (current period) searches"))

	key = "limit"
	relatedCmd.Flags().Int(key, 6, util.WrapString("Number of queries (1-20)"))
	expandedCmd.Flags().Int(key, 10, util.WrapString("Number of queries (1-20)"))

	key = "limit"
	synonymsCmd.Flags().Int(key, 0, util.WrapString("Number of terms when listing all synonyms, 0 uses the server default"))
	key = "offset"
	synonymsCmd.Flags().Int(key, 0, util.WrapString("Number of terms to skip when listing all synonyms"))
	key = "stemmed"
	synonymsCmd.Flags().Bool(key, false, util.WrapString("Include stemmed terms when listing all synonyms"))

	key = "tops"
	scwsCmd.Flags().Int(key, 0, util.WrapString("Print the most frequent words instead of all words"))
	key = "xattr"
	scwsCmd.Flags().String(key, "", util.WrapString("Restrict tops to these attributes, e.g. n,v or ~v"))
	key = "multi"
	scwsCmd.Flags().Int(key, client.DefaultScwsMulti, util.WrapString("Compound level of the segmenter (0-15)"))
}

// selectDbs selects the databases given as a comma-separated list
func selectDbs(list string) error {
	if list == "" {
		return nil
	}
	for i, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		var err error
		if i == 0 {
			err = searcher.SetDb(name)
		} else {
			err = searcher.AddDb(name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printLines(lines []string, err error) error {
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func printCounts(counts map[string]int) {
	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return counts[values[i]] > counts[values[j]] })
	for _, value := range values {
		fmt.Printf("%8d  %s\n", counts[value], value)
	}
}
