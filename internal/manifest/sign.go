package manifest

import "encoding/base64"

// Signer is the minimal capability manifest needs from node identity.
type Signer interface {
	Sign(message []byte) []byte
	PublicKeyBytes() []byte
}

// Sign fills in Pubkey/Signature and returns the completed manifest.
// It does not mutate m.
func Sign(m Manifest, signer Signer) Manifest {
	out := m
	out.Pubkey = base64.StdEncoding.EncodeToString(signer.PublicKeyBytes())
	payload := SigningPayload(out)
	sig := signer.Sign(payload)
	out.Signature = base64.StdEncoding.EncodeToString(sig)
	return out
}

// VerifySignature checks m's signature against its embedded pubkey,
// using verify as the raw Ed25519 verification primitive (kept
// injectable so this package has no crypto dependency of its own
// beyond base64 decoding).
func VerifySignature(m Manifest, verify func(pub, msg, sig []byte) bool) (bool, error) {
	pub, err := base64.StdEncoding.DecodeString(m.Pubkey)
	if err != nil {
		return false, err
	}
	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil {
		return false, err
	}
	payload := SigningPayload(m)
	return verify(pub, payload, sig), nil
}
