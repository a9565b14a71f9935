// Package identity manages the node's Ed25519 keypair: generation on
// first run, loading from the per-user config directory, and signing
// of battery state and provenance manifests.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

var ErrNoIdentity = errors.New("identity: no node key present")

// Identity wraps the node's keypair. Only the public key is ever
// emitted; the private key never leaves this process.
type Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// Load reads the raw 64-byte seed+key file at path, generating and
// persisting a fresh keypair with owner-only permissions if it does
// not yet exist.
func Load(path string) (*Identity, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return generate(path)
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("identity: key file %s has wrong size %d", path, len(raw))
	}
	priv := ed25519.PrivateKey(raw)
	return &Identity{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

func generate(path string) (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("identity: mkdir: %w", err)
	}
	if err := os.WriteFile(path, priv, 0o600); err != nil {
		return nil, fmt.Errorf("identity: write key: %w", err)
	}
	return &Identity{priv: priv, pub: pub}, nil
}

// LoadOpenSSH parses an OpenSSH-formatted Ed25519 private key, for
// operators who provision node identity from an existing SSH key
// rather than letting pohwd generate one.
func LoadOpenSSH(raw []byte) (*Identity, error) {
	key, err := ssh.ParseRawPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: parse openssh key: %w", err)
	}
	priv, ok := key.(*ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("identity: openssh key is not Ed25519")
	}
	return &Identity{priv: *priv, pub: (*priv).Public().(ed25519.PublicKey)}, nil
}

// LoadWithTPM tries the TPM-sealed key path when useTPM is set,
// falling back to the plain seed file on any TPM error so a missing
// or misconfigured TPM never blocks the daemon from starting.
func LoadWithTPM(path string, useTPM bool) (id *Identity, sealedWithTPM bool, err error) {
	if useTPM {
		id, err := LoadTPMSealed(path)
		if err == nil {
			return id, true, nil
		}
	}
	id, err = Load(path)
	return id, false, err
}

func (id *Identity) PublicKey() ed25519.PublicKey { return id.pub }

// PublicKeyBytes satisfies manifest.Signer without that package
// importing crypto/ed25519 directly.
func (id *Identity) PublicKeyBytes() []byte { return []byte(id.pub) }

func (id *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(id.priv, message)
}

func Verify(pub ed25519.PublicKey, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}
