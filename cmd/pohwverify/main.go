// pohwverify re-derives a commit's provenance from its trailer alone,
// independent of any running daemon (C10).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pohwd/internal/config"
	"pohwd/internal/logging"
	"pohwd/internal/verify"
)

var Version = "dev"

const (
	exitValid          = 0
	exitSchemaError    = 2
	exitBadSignature   = 20
	exitBadPuzzle      = 21
	exitTreeMismatch   = 22
)

func main() {
	var repoDir string
	root := &cobra.Command{
		Use:     "pohwverify REV",
		Short:   "Verify a commit's Proof of Human Work trailer",
		Version: Version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(repoDir, args[0])
		},
	}
	root.Flags().StringVar(&repoDir, "repo", ".", "git repository containing the commit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSchemaError)
	}
}

func run(repoDir, rev string) error {
	msg, err := verify.CommitMessage(repoDir, rev)
	if err != nil {
		os.Exit(exitSchemaError)
	}
	tree, err := verify.TreeHashOfCommit(repoDir, rev)
	if err != nil {
		os.Exit(exitSchemaError)
	}

	result, m, err := verify.Verify(msg, tree)
	fmt.Printf("result: %s\n", result)
	if err == nil {
		fmt.Printf("cns_score: %d\n", m.CNSScore)
		fmt.Printf("difficulty_bits: %d\n", m.DifficultyBits)
		fmt.Printf("pubkey: %s\n", m.Pubkey)
	}

	cfg, cfgErr := config.Load(config.ConfigFile(repoDir))
	if cfgErr == nil {
		audit, auditErr := logging.NewAuditLogger(cfg.AuditLogPath, cfg.LogMaxSizeMB, cfg.LogMaxAgeDays, cfg.LogMaxBackups, cfg.LogCompress, "pohwverify", nil)
		if auditErr == nil {
			audit.LogVerification(tree, result == verify.Valid, result.String())
			audit.Close()
		}
	}

	switch result {
	case verify.Valid:
		os.Exit(exitValid)
	case verify.BadSignature:
		os.Exit(exitBadSignature)
	case verify.BadPuzzle:
		os.Exit(exitBadPuzzle)
	case verify.TreeMismatch:
		os.Exit(exitTreeMismatch)
	default:
		os.Exit(exitSchemaError)
	}
	return nil
}
