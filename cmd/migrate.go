package main

import (
	"hose_installation/internal/repository/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.InitDB(a.cfg.DB.Path)
			if err != nil {
				return err
			}
			a.log.Infow("schema_ready", "path", a.cfg.DB.Path)
			return conn.Close()
		},
	}
}
