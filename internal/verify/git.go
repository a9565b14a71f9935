package verify

import (
	"fmt"
	"os/exec"
	"strings"
)

// CommitMessage and TreeHashOfCommit shell out to git to fetch the
// two pieces of ground truth Verify needs, so the verifier never
// parses git's on-disk format itself.
func CommitMessage(repoDir, rev string) (string, error) {
	cmd := exec.Command("git", "show", "-s", "--format=%B", rev)
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("verify: git show message: %w", err)
	}
	return string(out), nil
}

func TreeHashOfCommit(repoDir, rev string) (string, error) {
	cmd := exec.Command("git", "show", "-s", "--format=%T", rev)
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("verify: git show tree: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
