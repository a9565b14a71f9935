package verify

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"pohwd/internal/manifest"
)

type sig struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func (s sig) Sign(msg []byte) []byte { return ed25519.Sign(s.priv, msg) }
func (s sig) PublicKeyBytes() []byte { return []byte(s.pub) }

func solvedManifest(t *testing.T, treeHash string, difficultyBits uint8) manifest.Manifest {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	m := manifest.Manifest{
		Version:        manifest.Version,
		CommitTreeHash: treeHash,
		TimestampNs:    uint64(time.Now().UnixNano()),
		CNSScore:       80,
		DifficultyBits: difficultyBits,
	}
	var nonce uint64
	for {
		m.Nonce = nonce
		if manifest.CheckPuzzle(m) {
			break
		}
		nonce++
	}
	return manifest.Sign(m, sig{pub: pub, priv: priv})
}

func TestVerifyValid(t *testing.T) {
	tree := "0123456789abcdef0123456789abcdef01234567"
	m := solvedManifest(t, tree, 4)
	msg := "feat: thing\n\n" + manifest.EncodeTrailer(m) + "\n"

	result, _, err := Verify(msg, tree)
	if err != nil || result != Valid {
		t.Fatalf("expected Valid, got %v err=%v", result, err)
	}
}

func TestVerifyTreeMismatch(t *testing.T) {
	tree := "0123456789abcdef0123456789abcdef01234567"
	m := solvedManifest(t, tree, 4)
	msg := "feat: thing\n\n" + manifest.EncodeTrailer(m) + "\n"

	result, _, _ := Verify(msg, "ffffffffffffffffffffffffffffffffffffffff")
	if result != TreeMismatch {
		t.Fatalf("expected TreeMismatch, got %v", result)
	}
}

func TestVerifyBadSignatureOnTamperedTrailer(t *testing.T) {
	tree := "0123456789abcdef0123456789abcdef01234567"
	m := solvedManifest(t, tree, 4)
	trailer := manifest.EncodeTrailer(m)

	// flip a character in the base64 payload.
	tampered := []byte(trailer)
	for i := len(tampered) - 1; i >= 0; i-- {
		if tampered[i] != ' ' && tampered[i] != ':' {
			if tampered[i] == 'A' {
				tampered[i] = 'B'
			} else {
				tampered[i] = 'A'
			}
			break
		}
	}
	msg := "feat: thing\n\n" + string(tampered) + "\n"

	result, _, _ := Verify(msg, tree)
	if result != BadSignature && result != SchemaError {
		t.Fatalf("expected BadSignature (or SchemaError on corrupted base64), got %v", result)
	}
}
