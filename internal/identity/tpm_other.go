//go:build !linux

package identity

import "errors"

// LoadTPMSealed is only implemented on Linux; callers must fall back
// to Load when identity_use_tpm is set on other platforms.
func LoadTPMSealed(path string) (*Identity, error) {
	return nil, errors.New("identity: TPM-sealed identity is not supported on this platform")
}
