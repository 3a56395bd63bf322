package cmd

import (
	"github.com/habiliai/tutorwise/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootFlags) *cobra.Command {
	params := &struct {
		Drop bool
	}{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.load()
			if err != nil {
				return err
			}

			gormDB, err := db.OpenDB(conf.Database.DatabaseUrl)
			if err != nil {
				return err
			}
			defer db.CloseDB(gormDB)

			if params.Drop {
				if err := db.DropAll(cmd.Context(), gormDB); err != nil {
					return err
				}
			}
			if err := db.AutoMigrate(cmd.Context(), gormDB); err != nil {
				return err
			}

			cmd.Println("migration completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&params.Drop, "drop", false, "Drop every table before migrating")

	return cmd
}
