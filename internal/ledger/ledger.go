// Package ledger keeps a local, append-only record of past commits'
// aggregate manifest fields, giving pohwctl's operational surface a
// reviewable history. It stores only already-aggregate fields, never
// raw samples.
package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type Entry struct {
	CommitTreeHash  string
	TimestampNs     int64
	CNSScore        uint8
	CreditsCharged  float64
	CreditsDebited  float64
	ManifestSig     string
}

type Ledger struct {
	db *sql.DB
}

func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS commits (
	commit_tree_hash TEXT NOT NULL,
	timestamp_ns     INTEGER NOT NULL,
	cns_score        INTEGER NOT NULL,
	credits_charged  REAL NOT NULL,
	credits_debited  REAL NOT NULL,
	manifest_signature TEXT NOT NULL,
	PRIMARY KEY (commit_tree_hash, timestamp_ns)
);
`

func (l *Ledger) Append(e Entry) error {
	_, err := l.db.Exec(
		`INSERT INTO commits (commit_tree_hash, timestamp_ns, cns_score, credits_charged, credits_debited, manifest_signature)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.CommitTreeHash, e.TimestampNs, e.CNSScore, e.CreditsCharged, e.CreditsDebited, e.ManifestSig,
	)
	if err != nil {
		return fmt.Errorf("ledger: append: %w", err)
	}
	return nil
}

func (l *Ledger) History(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(
		`SELECT commit_tree_hash, timestamp_ns, cns_score, credits_charged, credits_debited, manifest_signature
		 FROM commits ORDER BY timestamp_ns DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.CommitTreeHash, &e.TimestampNs, &e.CNSScore, &e.CreditsCharged, &e.CreditsDebited, &e.ManifestSig); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
