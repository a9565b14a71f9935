package manifest

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// zeroSignature is the placeholder that stands in for the real
// signature while computing the bytes that get signed: the signature
// field is zeroed before the manifest is canonicalized and hashed.
var zeroSignature = base64.StdEncoding.EncodeToString(make([]byte, 64))

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsonNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// canonicalMetrics renders the nested metrics object with keys sorted
// lexicographically and no insignificant whitespace.
func canonicalMetrics(m Metrics) string {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(`"burstiness":`)
	b.WriteString(jsonNumber(m.Burstiness))
	b.WriteString(`,"curv_entropy":`)
	b.WriteString(jsonNumber(m.CurvEntropy))
	b.WriteString(`,"ldlj":`)
	b.WriteString(jsonNumber(m.LDLJ))
	b.WriteString(`,"ncd":`)
	b.WriteString(jsonNumber(m.NCD))
	b.WriteString(`,"spec_entropy":`)
	b.WriteString(jsonNumber(m.SpecEntropy))
	b.WriteString(`,"throughput":`)
	b.WriteString(jsonNumber(m.Throughput))
	b.WriteByte('}')
	return b.String()
}

// Canonical renders m as canonical JSON: keys sorted lexicographically
// at every level, no insignificant whitespace, numbers as shortest
// round-trip decimal.
func Canonical(m Manifest) []byte {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(`"cns_score":`)
	b.WriteString(strconv.Itoa(int(m.CNSScore)))
	b.WriteString(`,"commit_tree_hash":`)
	b.WriteString(jsonString(m.CommitTreeHash))
	b.WriteString(`,"credits_charged":`)
	b.WriteString(jsonNumber(m.CreditsCharged))
	b.WriteString(`,"credits_debited":`)
	b.WriteString(jsonNumber(m.CreditsDebited))
	b.WriteString(`,"difficulty_bits":`)
	b.WriteString(strconv.Itoa(int(m.DifficultyBits)))
	b.WriteString(`,"metrics":`)
	b.WriteString(canonicalMetrics(m.Metrics))
	b.WriteString(`,"nonce":`)
	b.WriteString(strconv.FormatUint(m.Nonce, 10))
	b.WriteString(`,"pubkey":`)
	b.WriteString(jsonString(m.Pubkey))
	b.WriteString(`,"signature":`)
	b.WriteString(jsonString(m.Signature))
	b.WriteString(`,"timestamp_ns":`)
	b.WriteString(strconv.FormatUint(m.TimestampNs, 10))
	b.WriteString(`,"version":`)
	b.WriteString(strconv.Itoa(m.Version))
	b.WriteByte('}')
	return []byte(b.String())
}

// SigningPayload returns the canonical bytes signed by the node key:
// identical to Canonical, except the signature field is zeroed first.
func SigningPayload(m Manifest) []byte {
	cp := m
	cp.Signature = zeroSignature
	return Canonical(cp)
}
