package manifest

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

type testSigner struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func (s testSigner) Sign(msg []byte) []byte      { return ed25519.Sign(s.priv, msg) }
func (s testSigner) PublicKeyBytes() []byte      { return []byte(s.pub) }

func newTestSigner(t *testing.T) testSigner {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return testSigner{pub: pub, priv: priv}
}

func sampleManifest() Manifest {
	return Manifest{
		Version:        1,
		CommitTreeHash: "0123456789abcdef0123456789abcdef01234567",
		TimestampNs:    1700000000000000000,
		Metrics: Metrics{
			LDLJ: -5.5, SpecEntropy: 3.2, CurvEntropy: 1.1,
			Throughput: 42.0, NCD: 0.6, Burstiness: 0.7,
		},
		CNSScore:       72,
		CreditsCharged: 10.5,
		CreditsDebited: 2.25,
		DifficultyBits: 18,
		Nonce:          123456,
	}
}

func TestCanonicalRoundTripIsStable(t *testing.T) {
	m := Sign(sampleManifest(), newTestSigner(t))
	a := Canonical(m)
	b := Canonical(m)
	if string(a) != string(b) {
		t.Fatalf("canonical encoding must be deterministic")
	}
}

func TestSignAndVerifySignature(t *testing.T) {
	signer := newTestSigner(t)
	m := Sign(sampleManifest(), signer)

	ok, err := VerifySignature(m, ed25519.Verify)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerifySignatureFailsOnTamper(t *testing.T) {
	signer := newTestSigner(t)
	m := Sign(sampleManifest(), signer)
	m.CNSScore = 99 // tamper after signing

	ok, err := VerifySignature(m, ed25519.Verify)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected tampered manifest to fail verification")
	}
}

func TestTrailerEncodeParseRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	m := Sign(sampleManifest(), signer)

	trailer := EncodeTrailer(m)
	commitMsg := "fix: do the thing\n\n" + trailer + "\n"

	payload, err := ExtractTrailer(commitMsg)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.CommitTreeHash != m.CommitTreeHash || parsed.Nonce != m.Nonce {
		t.Fatalf("round-trip mismatch: %+v vs %+v", parsed, m)
	}
}

func TestParseRejectsUnknownTopLevelField(t *testing.T) {
	signer := newTestSigner(t)
	m := Sign(sampleManifest(), signer)
	trailer := EncodeTrailer(m)
	payload := trailer[len(TrailerKey)+2:]

	raw := mustDecodeAndInjectField(t, payload, `"sneaky":true`)
	if err := ValidateSchema(raw); err == nil {
		t.Fatalf("expected schema validation to reject unknown field")
	}
}
