package identity

import (
	"path/filepath"
	"testing"
)

func TestLoadGeneratesAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.key")

	id1, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(id1.PublicKey()) != string(id2.PublicKey()) {
		t.Fatalf("expected second Load to reuse persisted key")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id, err := Load(filepath.Join(dir, "node.key"))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("commit-tree-hash")
	sig := id.Sign(msg)
	if !Verify(id.PublicKey(), msg, sig) {
		t.Fatalf("expected signature to verify")
	}
	if Verify(id.PublicKey(), []byte("tampered"), sig) {
		t.Fatalf("expected tampered message to fail verification")
	}
}
