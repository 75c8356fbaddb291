package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// PublicKeyI is an interface model for a cryptographic code shared openly, used to verify digital signatures of its paired private key
// In this node a public key doubles as the identity of a validator (node id) and the key of an account
type PublicKeyI interface {
	// Bytes() casts the public key to bytes
	Bytes() []byte
	// VerifyBytes() verifies a digital signature from its corresponding private key
	VerifyBytes(msg []byte, sig []byte) bool
	// String() returns the hex string representation
	String() string
	// Equals() compares two PublicKeys and returns true if they're equal
	Equals(PublicKeyI) bool
	// models the json.Marshaller encoding interface
	json.Marshaler
	// models the json.Unmarshaler decoding interface
	json.Unmarshaler
}

// PrivateKeyI is an interface model for a secret cryptographic code that is used to produce digital signatures
type PrivateKeyI interface {
	Bytes() []byte
	Sign(msg []byte) []byte
	PublicKey() PublicKeyI
	// String() returns the hex string representation
	String() string
	Equals(PrivateKeyI) bool
	// models the json.Marshaller encoding interface
	json.Marshaler
	// models the json.Unmarshaler decoding interface
	json.Unmarshaler
}

// NewPublicKeyFromString() parses a hex node id, rejecting anything that isn't a public key
func NewPublicKeyFromString(s string) (PublicKeyI, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(bz)
}

// NewPublicKeyFromBytes() creates a new PublicKeyI interface from a byte slice
func NewPublicKeyFromBytes(bz []byte) (PublicKeyI, error) {
	if len(bz) != Ed25519PubKeySize {
		return nil, fmt.Errorf("unrecognized public key format")
	}
	return BytesToED25519Public(bz), nil
}

// PrivateKeyToFile() writes a private key to a file located at filepath
func PrivateKeyToFile(key PrivateKeyI, filepath string) error {
	return os.WriteFile(filepath, []byte(hex.EncodeToString(key.Bytes())), 0600)
}

// NewED25519PrivateKeyFromFile() reads a hex encoded ED25519 private key from a file
func NewED25519PrivateKeyFromFile(filepath string) (PrivateKeyI, error) {
	hexBytes, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	bz, err := hex.DecodeString(string(hexBytes))
	if err != nil {
		return nil, err
	}
	if len(bz) != Ed25519PrivKeySize {
		return nil, fmt.Errorf("wrong private key size")
	}
	return BytesToED25519Private(bz), nil
}
