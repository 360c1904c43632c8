package index

import (
	"context"

	"github.com/hightman/xunsearch/cmd/util"
	"github.com/hightman/xunsearch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	session *util.Session
	idx     *client.Index

	// IndexCommands represents the index command group
	IndexCommands = &cobra.Command{
		Use:                "index",
		Short:              "Manage the index of a project",
		PersistentPreRunE:  setupIndex,
		PersistentPostRunE: closeIndex,
	}
)

func init() {
	util.SetupProjectFlags(IndexCommands)

	// Add subcommands
	IndexCommands.AddCommand(importCmd)
	IndexCommands.AddCommand(cleanCmd)
	IndexCommands.AddCommand(flushCmd)
	IndexCommands.AddCommand(flushLogCmd)
	IndexCommands.AddCommand(delCmd)
	IndexCommands.AddCommand(synonymCmd)
	IndexCommands.AddCommand(dictCmd)
	IndexCommands.AddCommand(exdataCmd)
	IndexCommands.AddCommand(schemeCmd)

	synonymCmd.AddCommand(synonymAddCmd)
	synonymCmd.AddCommand(synonymDelCmd)
	dictCmd.AddCommand(dictGetCmd)
	dictCmd.AddCommand(dictSetCmd)
}

// setupIndex loads the project and connects to its index servers
func setupIndex(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	if session, err = util.OpenSession(context.Background()); err != nil {
		return err
	}
	if cmd == schemeCmd {
		return nil
	}
	idx, err = session.XS.Index()
	return err
}

// closeIndex submits pending data and closes all connections
func closeIndex(*cobra.Command, []string) error {
	if session == nil {
		return nil
	}
	return session.Close()
}
