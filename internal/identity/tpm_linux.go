//go:build linux

package identity

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
)

const tpmDevicePath = "/dev/tpmrm0"

// sealSeed wraps the Ed25519 seed behind the platform TPM's storage
// hierarchy, so the on-disk key file is useless without the same
// physical TPM. The sealed blob is [u16 len][public][u16 len][private].
func sealSeed(seed []byte) ([]byte, error) {
	tp, err := transport.OpenTPM(tpmDevicePath)
	if err != nil {
		return nil, fmt.Errorf("identity: open tpm: %w", err)
	}
	defer tp.Close()

	primary, err := tpm2.CreatePrimary{
		PrimaryHandle: tpm2.TPMRHOwner,
		InPublic:      tpm2.New2B(tpm2.RSASRKTemplate),
	}.Execute(tp)
	if err != nil {
		return nil, fmt.Errorf("identity: tpm create primary: %w", err)
	}
	defer flush(tp, primary.ObjectHandle)

	sealed, err := tpm2.Create{
		ParentHandle: tpm2.AuthHandle{Handle: primary.ObjectHandle, Auth: tpm2.PasswordAuth(nil)},
		InSensitive: tpm2.TPM2BSensitiveCreate{
			Sensitive: &tpm2.TPMSSensitiveCreate{Data: tpm2.NewTPMUSensitiveCreate(&tpm2.TPM2BSensitiveData{Buffer: seed})},
		},
		InPublic: tpm2.New2B(tpm2.TPMTPublic{
			Type:    tpm2.TPMAlgKeyedHash,
			NameAlg: tpm2.TPMAlgSHA256,
			ObjectAttributes: tpm2.TPMAObject{
				FixedTPM:     true,
				FixedParent:  true,
				UserWithAuth: true,
				NoDA:         true,
			},
		}),
	}.Execute(tp)
	if err != nil {
		return nil, fmt.Errorf("identity: tpm seal: %w", err)
	}

	pub := tpm2.Marshal(sealed.OutPublic)
	priv := tpm2.Marshal(sealed.OutPrivate)
	return packBlob(pub, priv), nil
}

// unsealSeed reverses sealSeed, returning the raw seed bytes.
func unsealSeed(blob []byte) ([]byte, error) {
	pub, priv, err := unpackBlob(blob)
	if err != nil {
		return nil, err
	}

	tp, err := transport.OpenTPM(tpmDevicePath)
	if err != nil {
		return nil, fmt.Errorf("identity: open tpm: %w", err)
	}
	defer tp.Close()

	primary, err := tpm2.CreatePrimary{
		PrimaryHandle: tpm2.TPMRHOwner,
		InPublic:      tpm2.New2B(tpm2.RSASRKTemplate),
	}.Execute(tp)
	if err != nil {
		return nil, fmt.Errorf("identity: tpm create primary: %w", err)
	}
	defer flush(tp, primary.ObjectHandle)

	var outPub tpm2.TPM2BPublic
	var outPriv tpm2.TPM2BPrivate
	if err := tpm2.Unmarshal(pub, &outPub); err != nil {
		return nil, fmt.Errorf("identity: unmarshal sealed public: %w", err)
	}
	if err := tpm2.Unmarshal(priv, &outPriv); err != nil {
		return nil, fmt.Errorf("identity: unmarshal sealed private: %w", err)
	}

	loaded, err := tpm2.Load{
		ParentHandle: tpm2.AuthHandle{Handle: primary.ObjectHandle, Auth: tpm2.PasswordAuth(nil)},
		InPrivate:    outPriv,
		InPublic:     outPub,
	}.Execute(tp)
	if err != nil {
		return nil, fmt.Errorf("identity: tpm load: %w", err)
	}
	defer flush(tp, loaded.ObjectHandle)

	unsealed, err := tpm2.Unseal{
		ItemHandle: tpm2.AuthHandle{Handle: loaded.ObjectHandle, Auth: tpm2.PasswordAuth(nil)},
	}.Execute(tp)
	if err != nil {
		return nil, fmt.Errorf("identity: tpm unseal: %w", err)
	}
	return unsealed.OutData.Buffer, nil
}

func flush(tp transport.TPM, h tpm2.TPMHandle) {
	tpm2.FlushContext{FlushHandle: h}.Execute(tp)
}

func packBlob(pub, priv []byte) []byte {
	out := make([]byte, 2+len(pub)+2+len(priv))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(pub)))
	copy(out[2:], pub)
	off := 2 + len(pub)
	binary.BigEndian.PutUint16(out[off:off+2], uint16(len(priv)))
	copy(out[off+2:], priv)
	return out
}

func unpackBlob(blob []byte) (pub, priv []byte, err error) {
	if len(blob) < 4 {
		return nil, nil, errors.New("identity: sealed blob too short")
	}
	pubLen := binary.BigEndian.Uint16(blob[0:2])
	if len(blob) < int(2+pubLen+2) {
		return nil, nil, errors.New("identity: sealed blob truncated")
	}
	pub = blob[2 : 2+pubLen]
	off := 2 + int(pubLen)
	privLen := binary.BigEndian.Uint16(blob[off : off+2])
	if len(blob) < off+2+int(privLen) {
		return nil, nil, errors.New("identity: sealed blob truncated")
	}
	priv = blob[off+2 : off+2+int(privLen)]
	return pub, priv, nil
}

// LoadTPMSealed loads a TPM-sealed Ed25519 seed from path, sealing and
// persisting a freshly generated one on first run. It requires a real
// TPM 2.0 device and is only reached when identity_use_tpm is set;
// Load remains the always-available default path.
func LoadTPMSealed(path string) (*Identity, error) {
	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		pub, priv, genErr := ed25519.GenerateKey(nil)
		if genErr != nil {
			return nil, fmt.Errorf("identity: generate: %w", genErr)
		}
		seed := priv.Seed()
		sealed, sealErr := sealSeed(seed)
		if sealErr != nil {
			return nil, sealErr
		}
		if writeErr := os.WriteFile(path, sealed, 0o600); writeErr != nil {
			return nil, fmt.Errorf("identity: write sealed key: %w", writeErr)
		}
		return &Identity{priv: priv, pub: pub}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read sealed key: %w", err)
	}
	seed, err := unsealSeed(blob)
	if err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Identity{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}
