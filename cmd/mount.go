package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/brettbedarf/dirtree/server"
	"github.com/spf13/cobra"
)

func (a *app) mountCmd() *cobra.Command {
	var umount bool

	cmd := &cobra.Command{
		Use:   "mount <mountpoint>",
		Short: "Replay commands, then serve the resulting tree read-only over FUSE",
		Long: `Replay the instructions like "run", then mount the final tree as read-only
directories at mountpoint until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := util.GetLogger("main")
			mnt := args[0]

			if umount {
				// ignore error if not already mounted
				exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			d, err := a.replay(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			srv, err := server.Mount(d.Root(), mnt, &a.cfg.MountOptions)
			if err != nil {
				return err
			}
			logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

			<-ctx.Done()
			logger.Info().Msg("Received signal, unmounting filesystem")

			if err := srv.Unmount(); err != nil {
				return fmt.Errorf("failed to unmount %s: %w", mnt, err)
			}
			logger.Info().Msg("Filesystem unmounted successfully")
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&umount, "umount", "u", false,
		"Unmount the mountpoint first if needed. Useful for debuggers that don't exit properly.")
	f.Bool("mount-debug", false, "Log every FUSE request")
	f.String("fs-name", "", "Filesystem name shown in the mount table (default \"dirtree\")")
	f.String("name", "", "Filesystem type name shown in the mount table (default \"dirtree\")")
	a.bind(mountDebugKey, f.Lookup("mount-debug"))
	a.bind(fsNameKey, f.Lookup("fs-name"))
	a.bind(nameKey, f.Lookup("name"))

	return cmd
}
