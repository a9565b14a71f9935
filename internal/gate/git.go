package gate

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// NumStat runs `git diff --numstat` against the staged tree and sums
// added/removed line counts. The gate never parses the working tree
// itself beyond this and hashing blobs.
func NumStat(repoDir string) (added, removed uint32, err error) {
	cmd := exec.Command("git", "diff", "--cached", "--numstat")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("gate: git diff --numstat: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// binary files report "-" for both columns; skip them.
		a, aErr := strconv.ParseUint(fields[0], 10, 32)
		r, rErr := strconv.ParseUint(fields[1], 10, 32)
		if aErr != nil || rErr != nil {
			continue
		}
		added += uint32(a)
		removed += uint32(r)
	}
	return added, removed, nil
}

// DiffBlobs returns the raw added and removed byte content of the
// staged diff, used only as Zstd-NCD input, never persisted.
func DiffBlobs(repoDir string) (added, removed []byte, err error) {
	cmd := exec.Command("git", "diff", "--cached", "--unified=0")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return nil, nil, fmt.Errorf("gate: git diff: %w", err)
	}
	var addBuf, remBuf bytes.Buffer
	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			continue
		case strings.HasPrefix(line, "+"):
			addBuf.WriteString(line[1:])
			addBuf.WriteByte('\n')
		case strings.HasPrefix(line, "-"):
			remBuf.WriteString(line[1:])
			remBuf.WriteByte('\n')
		}
	}
	return addBuf.Bytes(), remBuf.Bytes(), nil
}

// TreeHash resolves the pending commit's tree hash via `git
// write-tree`.
func TreeHash(repoDir string) (string, error) {
	cmd := exec.Command("git", "write-tree")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("gate: git write-tree: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// InjectTrailer appends trailer to the commit message file at path
// in place, via `git interpret-trailers`.
func InjectTrailer(repoDir, commitMsgPath, trailer string) error {
	cmd := exec.Command("git", "interpret-trailers", "--in-place", "--trailer", trailer, commitMsgPath)
	cmd.Dir = repoDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gate: git interpret-trailers: %w: %s", err, out)
	}
	return nil
}
