// Package manifest implements the Provenance Manifest (C6): a typed
// record serialized as canonical JSON before Ed25519 signing, and
// embedded as a commit-message trailer.
package manifest

const Version = 1

// Metrics is the manifest's embedded metrics block (§6 wire schema
// names differ slightly from the in-process entropy.Metrics field
// names, so this is its own type rather than a reuse).
type Metrics struct {
	LDLJ            float64 `json:"ldlj"`
	SpecEntropy     float64 `json:"spec_entropy"`
	CurvEntropy     float64 `json:"curv_entropy"`
	Throughput      float64 `json:"throughput"`
	NCD             float64 `json:"ncd"`
	Burstiness      float64 `json:"burstiness"`
}

// Manifest is the full signed record. Field order here is irrelevant
// to the wire format: canonical.go writes the JSON keys itself, in
// lexicographic order.
type Manifest struct {
	Version         int     `json:"version"`
	CommitTreeHash  string  `json:"commit_tree_hash"`
	TimestampNs     uint64  `json:"timestamp_ns"`
	Metrics         Metrics `json:"metrics"`
	CNSScore        uint8   `json:"cns_score"`
	CreditsCharged  float64 `json:"credits_charged"`
	CreditsDebited  float64 `json:"credits_debited"`
	DifficultyBits  uint8   `json:"difficulty_bits"`
	Nonce           uint64  `json:"nonce"`
	Pubkey          string  `json:"pubkey"`    // base64, 32 bytes
	Signature       string  `json:"signature"` // base64, 64 bytes
}
