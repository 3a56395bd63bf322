package cmd

import (
	"github.com/spf13/cobra"
)

func newIngestCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <content-id>...",
		Short: "Run ingestion synchronously for content rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := root.load()
			if err != nil {
				return err
			}

			app, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer app.Close()

			for _, contentID := range args {
				if err := app.Ingest(cmd.Context(), contentID); err != nil {
					return err
				}
				content, err := app.Spaces().GetContent(cmd.Context(), contentID)
				if err != nil {
					cmd.Printf("%s: skipped\n", contentID)
					continue
				}
				cmd.Printf("%s: %s\n", contentID, content.Status)
			}
			return nil
		},
	}
}
