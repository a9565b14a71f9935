// pohwd is the long-running daemon that samples input kinematics,
// scores them, and charges the attention battery (C9).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pohwd/internal/config"
	"pohwd/internal/daemon"
)

var (
	Version = "dev"

	cfgPath string
	repoDir string
)

func main() {
	root := &cobra.Command{
		Use:     "pohwd",
		Short:   "Proof of Human Work daemon",
		Version: Version,
		RunE:    runDaemon,
	}
	root.Flags().StringVar(&cfgPath, "config", "", "path to pohwd.toml")
	root.Flags().StringVar(&repoDir, "repo", ".", "git repository the daemon is scoped to")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	rt, err := daemon.New(cfg, cfgPath, repoDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}
