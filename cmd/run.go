package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [instructions]",
		Short: "Apply a command file or stdin and print the results",
		Long: `Apply every command from the instructions file, or from stdin when no file
is given or the file is "-". The positional argument takes precedence over
--instructions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Instructions = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := a.replay(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}
}
