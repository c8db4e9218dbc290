package main

import (
	"encoding/json"

	"hose_installation/internal/repository"
	"hose_installation/internal/repository/db"
	"hose_installation/internal/seed"
	"hose_installation/internal/service"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Import machines, attachments and installation steps from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			conn, err := db.InitDB(a.cfg.DB.Path)
			if err != nil {
				return err
			}
			defer conn.Close()

			repos := repository.NewRepository(conn)
			res, err := seed.Import(cmd.Context(), f, service.NewCatalogService(repos), service.NewMachineConfigService(repos))
			if err != nil {
				a.log.Errorw("seed_failed", "file", args[0], "created", res, "err", err)
				return err
			}
			a.log.Infow("seed_imported", "file", args[0], "created", res)
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
}
