package manifest

import (
	"encoding/base64"
	"strings"
	"testing"
)

// mustDecodeAndInjectField decodes a base64 canonical-JSON payload and
// splices an extra top-level field in before the closing brace, for
// tests that need to exercise schema rejection of unknown fields.
func mustDecodeAndInjectField(t *testing.T, payload, field string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	if !strings.HasSuffix(s, "}") {
		t.Fatalf("expected canonical json object, got %q", s)
	}
	injected := s[:len(s)-1] + "," + field + "}"
	return []byte(injected)
}
