package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/habiliai/tutorwise"
	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "tutorwise",
		Short:         "TutorWise study-space backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file")

	cmd.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newIngestCmd(flags),
		newAskCmd(flags),
	)

	return cmd
}

func (f *rootFlags) load() (*config.Config, error) {
	return config.Load(f.configFile, false)
}

func newApp(ctx context.Context, conf *config.Config) (*tutorwise.App, error) {
	return tutorwise.New(
		ctx,
		tutorwise.WithConfig(conf),
		tutorwise.WithLogger(mylog.NewLogger(conf.Log.LogLevel, conf.Log.LogHandler)),
	)
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}
