package cmd

import (
	"strings"

	"github.com/habiliai/tutorwise/chat"
	"github.com/spf13/cobra"
)

func newAskCmd(root *rootFlags) *cobra.Command {
	params := &struct {
		UserID      string
		SpaceID     string
		K           int
		Temperature float64
		ShowContext bool
	}{}
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask a question about a space from the terminal",
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

			req := chat.Request{
				UserID:  params.UserID,
				SpaceID: params.SpaceID,
				Message: strings.Join(args, " "),
				K:       params.K,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &params.Temperature
			}

			resp, err := app.Chat().Answer(cmd.Context(), req)
			if err != nil {
				return err
			}

			if params.ShowContext {
				for i, snippet := range resp.Context {
					cmd.Printf("[%d] %s\n", i+1, snippet)
				}
				cmd.Println()
			}
			cmd.Println(resp.Answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.UserID, "user", "u", "", "User id whose memory is searched")
	cmd.Flags().StringVarP(&params.SpaceID, "space", "s", "", "Space id the question is scoped to")
	cmd.Flags().IntVarP(&params.K, "k", "k", 0, "Number of snippets to retrieve")
	cmd.Flags().Float64VarP(&params.Temperature, "temperature", "t", 0, "Sampling temperature")
	cmd.Flags().BoolVar(&params.ShowContext, "show-context", false, "Print the retrieved snippets")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("space")

	return cmd
}
