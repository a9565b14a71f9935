package manifest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const TrailerKey = "Pohw-Manifest"

var ErrBadTrailer = errors.New("manifest: malformed trailer")

// EncodeTrailer renders "Pohw-Manifest: <base64(canonical-json(m))>".
func EncodeTrailer(m Manifest) string {
	payload := base64.StdEncoding.EncodeToString(Canonical(m))
	return fmt.Sprintf("%s: %s", TrailerKey, payload)
}

// ExtractTrailer finds the Pohw-Manifest trailer line in a commit
// message and returns its base64 payload.
func ExtractTrailer(commitMessage string) (string, error) {
	for _, line := range strings.Split(commitMessage, "\n") {
		line = strings.TrimSpace(line)
		prefix := TrailerKey + ":"
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), nil
		}
	}
	return "", ErrBadTrailer
}

// Parse base64-decodes a trailer payload, validates it against the
// manifest schema, and unmarshals it into a Manifest. Unknown
// top-level fields outside "ext:" are rejected by ValidateSchema
// before this even attempts to populate the struct.
func Parse(payload string) (Manifest, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: base64: %v", ErrBadTrailer, err)
	}
	if err := ValidateSchema(raw); err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: json: %v", ErrBadTrailer, err)
	}
	return m, nil
}
