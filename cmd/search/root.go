package search

import (
	"context"

	"github.com/hightman/xunsearch/cmd/util"
	"github.com/hightman/xunsearch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	session  *util.Session
	searcher *client.Search

	// SearchCommands represents the search command group
	SearchCommands = &cobra.Command{
		Use:                "search",
		Short:              "Search the documents of a project",
		PersistentPreRunE:  setupSearch,
		PersistentPostRunE: closeSearch,
	}
)

func init() {
	util.SetupProjectFlags(SearchCommands)

	key := "fuzzy"
	SearchCommands.PersistentFlags().Bool(key, false, util.WrapString("Match documents containing any instead of all terms"))
	key = "db"
	SearchCommands.PersistentFlags().String(key, "", util.WrapString("Comma-separated list of databases to search in, default the database of the project"))

	// Add subcommands
	SearchCommands.AddCommand(queryCmd)
	SearchCommands.AddCommand(countCmd)
	SearchCommands.AddCommand(termsCmd)
	SearchCommands.AddCommand(parseCmd)
	SearchCommands.AddCommand(hotCmd)
	SearchCommands.AddCommand(relatedCmd)
	SearchCommands.AddCommand(expandedCmd)
	SearchCommands.AddCommand(correctedCmd)
	SearchCommands.AddCommand(synonymsCmd)
	SearchCommands.AddCommand(scwsCmd)
}

// setupSearch loads the project, connects to a search server and applies
// the settings shared by all search commands
func setupSearch(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	if session, err = util.OpenSession(context.Background()); err != nil {
		return err
	}
	if searcher, err = session.XS.Search(); err != nil {
		return err
	}
	if charset := util.Charset(); charset != "" {
		searcher.SetCharset(charset)
	}

	fuzzy, _ := cmd.Flags().GetBool("fuzzy")
	searcher.SetFuzzy(fuzzy)

	dbs, _ := cmd.Flags().GetString("db")
	return selectDbs(dbs)
}

// closeSearch closes all connections
func closeSearch(*cobra.Command, []string) error {
	if session == nil {
		return nil
	}
	return session.Close()
}
