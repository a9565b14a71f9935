// pohwctl is the read-only-by-default operator CLI for a running
// pohwd: status, metrics, ledger history, and a config reload trigger.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pohwd/internal/config"
	"pohwd/internal/ipc"
	"pohwd/internal/ledger"
)

var (
	Version = "dev"
	cfgPath string
)

func main() {
	root := &cobra.Command{
		Use:     "pohwctl",
		Short:   "Inspect and control a running pohwd",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to pohwd.toml")

	root.AddCommand(
		statusCmd(),
		metricsCmd(),
		historyCmd(),
		reloadConfigCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() (*ipc.Client, config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfg, err
	}
	return &ipc.Client{
		SocketPath: cfg.SocketPath,
		// Matches pohw-gate: the socket is shared with verify-work,
		// which can legitimately run up to the daemon's puzzle
		// deadline, not the client package's short fallback.
		Timeout: time.Duration(cfg.MaxCommitBudgetMs) * time.Millisecond,
	}, cfg, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, battery balance, and CNS score",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := client()
			if err != nil {
				return err
			}
			resp, err := c.Status()
			if err != nil {
				return err
			}
			fmt.Printf("state:   %s\n", resp.State)
			fmt.Printf("balance: %.3f\n", resp.Balance)
			fmt.Printf("cns:     %d\n", resp.CNS)
			return nil
		},
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show the most recent kinematic metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := client()
			if err != nil {
				return err
			}
			resp, err := c.Metrics()
			if err != nil {
				return err
			}
			body, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent accepted commits from the local ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := client()
			if err != nil {
				return err
			}
			led, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer led.Close()

			entries, err := led.History(limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%d  tree=%s  cns=%d  charged=%.3f  debited=%.3f\n",
					e.TimestampNs, e.CommitTreeHash, e.CNSScore, e.CreditsCharged, e.CreditsDebited)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to print")
	return cmd
}

func reloadConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload-config",
		Short: "Ask the daemon to re-read its config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := client()
			if err != nil {
				return err
			}
			resp, err := c.ReloadConfig()
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("reload-config failed: %s", resp.Detail)
			}
			fmt.Println("ok")
			return nil
		},
	}
}
