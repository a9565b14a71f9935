// pohw-gate is the short-lived pre-commit hook binary: it computes
// the pending commit's cost, asks the daemon to debit, solve the
// puzzle, and sign, then injects the resulting trailer (C7).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pohwd/internal/config"
	"pohwd/internal/gate"
	"pohwd/internal/ipc"
)

var (
	Version = "dev"

	cfgPath       string
	repoDir       string
	commitMsgPath string
)

const (
	exitOK                  = 0
	exitSchemaOrConfigError = 2
	exitInsufficientEnergy  = 10
	exitCausalityBroken     = 11
	exitSensorUnavailable   = 12
	exitPuzzleTimeout       = 13
	exitDaemonUnreachable   = 14
)

func main() {
	root := &cobra.Command{
		Use:     "pohw-gate COMMIT_MSG_FILE",
		Short:   "Commit gate: debit the attention battery and sign a provenance manifest",
		Version: Version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commitMsgPath = args[0]
			return run()
		},
	}
	root.Flags().StringVar(&cfgPath, "config", "", "path to pohwd.toml")
	root.Flags().StringVar(&repoDir, "repo", ".", "git repository being committed to")

	if err := root.Execute(); err != nil {
		os.Exit(exitSchemaOrConfigError)
	}
}

func run() error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pohw-gate: config error: %v\n", err)
		os.Exit(exitSchemaOrConfigError)
	}

	client := &gate.Client{
		IPC: &ipc.Client{
			SocketPath: cfg.SocketPath,
			// VerifyWork legitimately runs up to the daemon's puzzle
			// deadline server-side; the client deadline must cover
			// that plus margin, not ipc.Client's short default.
			Timeout: time.Duration(cfg.MaxCommitBudgetMs) * time.Millisecond,
		},
		RepoDir: repoDir,
	}

	resp, err := client.Decide()
	if resp.Detail != "" {
		fmt.Fprintf(os.Stderr, "pohw-gate: %s: %s\n", resp.Kind, resp.Detail)
	}
	if err != nil {
		os.Exit(exitCodeForErr(err, resp.Kind))
	}
	if !resp.OK {
		os.Exit(exitCodeForKind(resp.Kind))
	}

	if err := gate.InjectTrailer(repoDir, commitMsgPath, resp.Trailer); err != nil {
		fmt.Fprintf(os.Stderr, "pohw-gate: %v\n", err)
		os.Exit(exitSchemaOrConfigError)
	}
	return nil
}

func exitCodeForErr(err error, kind string) int {
	switch {
	case err == gate.ErrInsufficientEnergy:
		return exitInsufficientEnergy
	case err == gate.ErrDaemonUnreachable:
		fmt.Fprintln(os.Stderr, "pohw-gate: daemon unreachable")
		return exitDaemonUnreachable
	default:
		return exitCodeForKind(kind)
	}
}

func exitCodeForKind(kind string) int {
	switch kind {
	case "InsufficientEnergy":
		return exitInsufficientEnergy
	case "CausalityBroken":
		return exitCausalityBroken
	case "SensorUnavailable":
		return exitSensorUnavailable
	case "PuzzleTimeout":
		return exitPuzzleTimeout
	case "DaemonUnreachable":
		return exitDaemonUnreachable
	default:
		return exitSchemaOrConfigError
	}
}
