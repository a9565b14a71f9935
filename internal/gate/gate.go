package gate

import (
	"fmt"
	"os/exec"
	"strings"

	"pohwd/internal/ipc"
)

// WorkspaceReport summarizes file counts only — no paths — for the
// InsufficientEnergy error surface.
type WorkspaceReport struct {
	Staged    int
	Unstaged  int
	Untracked int
}

func BuildWorkspaceReport(repoDir string) (WorkspaceReport, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return WorkspaceReport{}, fmt.Errorf("gate: git status: %w", err)
	}
	var r WorkspaceReport
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 2 {
			continue
		}
		switch {
		case line[0] != ' ' && line[0] != '?':
			r.Staged++
		case line[0] == '?':
			r.Untracked++
		case line[1] != ' ':
			r.Unstaged++
		}
	}
	return r, nil
}

// Client drives the gate's client-side half of C7: gather the diff,
// compute cost locally, pre-check balance, then hand the rest off to
// the daemon's atomic verify-work call.
type Client struct {
	IPC     *ipc.Client
	RepoDir string
}

// Decide gathers the diff and computes its cost locally, pre-checks
// the battery balance over IPC, and, if that passes, hands off to the
// daemon's atomic verify-work call to debit, solve the puzzle, and
// sign.
func (c *Client) Decide() (ipc.VerifyWorkResponse, error) {
	added, removed, err := NumStat(c.RepoDir)
	if err != nil {
		return ipc.VerifyWorkResponse{}, err
	}
	addedBlob, removedBlob, err := DiffBlobs(c.RepoDir)
	if err != nil {
		return ipc.VerifyWorkResponse{}, err
	}
	tree, err := TreeHash(c.RepoDir)
	if err != nil {
		return ipc.VerifyWorkResponse{}, err
	}

	ncdCost, err := DiffNCD(addedBlob, removedBlob)
	if err != nil {
		return ipc.VerifyWorkResponse{}, err
	}
	cost := ComputeCost(added, removed, ncdCost)

	status, err := c.IPC.Status()
	if err != nil {
		return ipc.VerifyWorkResponse{}, ErrDaemonUnreachable
	}
	if cost.TotalCost > 0 && status.Balance < cost.TotalCost {
		detail := fmt.Sprintf("balance %.2f < cost %.2f", status.Balance, cost.TotalCost)
		if report, err := BuildWorkspaceReport(c.RepoDir); err == nil {
			detail = fmt.Sprintf("%s (staged=%d unstaged=%d untracked=%d)", detail, report.Staged, report.Unstaged, report.Untracked)
		}
		return ipc.VerifyWorkResponse{OK: false, Kind: "InsufficientEnergy", Detail: detail}, ErrInsufficientEnergy
	}

	diffHash := DiffHash(addedBlob, removedBlob)
	resp, err := c.IPC.VerifyWork(tree, added, removed, diffHash, ncdCost)
	if err != nil {
		return resp, ErrDaemonUnreachable
	}
	return resp, nil
}
