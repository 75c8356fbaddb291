package crypto

import (
	ed25519 "crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
)

const (
	Ed25519PrivKeySize   = ed25519.PrivateKeySize
	Ed25519PubKeySize    = ed25519.PublicKeySize
	Ed25519SignatureSize = ed25519.SignatureSize
)

var (
	_ PrivateKeyI = &ED25519PrivateKey{}
	_ PublicKeyI  = &ED25519PublicKey{}
)

// ED25519PrivateKey is the node key; validators sign their vote transactions with it
type ED25519PrivateKey struct{ ed25519.PrivateKey }

// NewEd25519PrivateKey() generates a fresh node key
func NewEd25519PrivateKey() (PrivateKeyI, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &ED25519PrivateKey{priv}, nil
}

// BytesToED25519Private() wraps raw private key bytes
func BytesToED25519Private(bz []byte) PrivateKeyI { return &ED25519PrivateKey{bz} }

func (p *ED25519PrivateKey) Bytes() []byte          { return p.PrivateKey }
func (p *ED25519PrivateKey) String() string         { return hex.EncodeToString(p.Bytes()) }
func (p *ED25519PrivateKey) Sign(msg []byte) []byte { return ed25519.Sign(p.PrivateKey, msg) }
func (p *ED25519PrivateKey) Equals(k PrivateKeyI) bool {
	return p.PrivateKey.Equal(ed25519.PrivateKey(k.Bytes()))
}

// PublicKey() derives the node id
func (p *ED25519PrivateKey) PublicKey() PublicKeyI {
	return &ED25519PublicKey{p.PrivateKey.Public().(ed25519.PublicKey)}
}

func (p *ED25519PrivateKey) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *ED25519PrivateKey) UnmarshalJSON(b []byte) error {
	bz, err := unmarshalHex(b)
	if err != nil {
		return err
	}
	p.PrivateKey = bz
	return nil
}

// ED25519PublicKey is a node id and the key of the accounts it controls
type ED25519PublicKey struct{ ed25519.PublicKey }

// BytesToED25519Public() wraps raw public key bytes
func BytesToED25519Public(bz []byte) PublicKeyI { return &ED25519PublicKey{bz} }

func (p *ED25519PublicKey) Bytes() []byte  { return p.PublicKey }
func (p *ED25519PublicKey) String() string { return hex.EncodeToString(p.Bytes()) }
func (p *ED25519PublicKey) Equals(k PublicKeyI) bool {
	return p.PublicKey.Equal(ed25519.PublicKey(k.Bytes()))
}

// VerifyBytes() checks a signature produced by the paired private key
func (p *ED25519PublicKey) VerifyBytes(msg []byte, sig []byte) bool {
	return ed25519.Verify(p.PublicKey, msg, sig)
}

func (p *ED25519PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *ED25519PublicKey) UnmarshalJSON(b []byte) error {
	bz, err := unmarshalHex(b)
	if err != nil {
		return err
	}
	p.PublicKey = bz
	return nil
}

// unmarshalHex() decodes a json hex string
func unmarshalHex(b []byte) ([]byte, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return hex.DecodeString(s)
}
