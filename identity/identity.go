// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"bytes"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/sovereign-net/accountd/fault"
	"github.com/sovereign-net/accountd/util"
)

// enumeration of supported key algorithms
const (
	ED25519 = iota + 1
	// end of list (one greater than last item)
	algorithmLimit = iota + 1
)

// miscellaneous constants
const (
	checksumLength = 4

	// bits in key code starting from LSB
	publicKeyCode = 0x01
	testKeyCode   = 0x02

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// Identity - base type for controlling identities
//
// an identity is the resolved controller of an account; it is what a
// governance value ultimately resolves to
type Identity struct {
	IdentityInterface
}

// IdentityInterface - methods common to all key algorithms
type IdentityInterface interface {
	KeyType() int
	PublicKeyBytes() []byte
	CheckSignature(message []byte, signature Signature) error
	Bytes() []byte
	String() string
	MarshalText() ([]byte, error)
	IsTesting() bool
}

// ED25519Identity - for ed25519 signatures
type ED25519Identity struct {
	Test      bool
	PublicKey []byte
}

// IdentityFromBase58 - this converts a Base58 encoded string and
// returns an identity
func IdentityFromBase58(identityBase58Encoded string) (*Identity, error) {
	identityDecoded := util.FromBase58(identityBase58Encoded)
	if 0 == len(identityDecoded) {
		return nil, fault.ErrCannotDecodeIdentity
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(identityDecoded)

	// check key type
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.ErrNotPublicKey
	}

	// compute algorithm
	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm <= 0 || keyAlgorithm >= algorithmLimit {
		return nil, fault.ErrInvalidKeyType
	}

	// network selection
	isTest := 0 != keyVariant&testKeyCode

	// compute key length
	keyLength := len(identityDecoded) - keyVariantLength - checksumLength
	if keyLength <= 0 {
		return nil, fault.ErrInvalidKeyLength
	}

	// checksum
	checksumStart := len(identityDecoded) - checksumLength
	checksum := sha3.Sum256(identityDecoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], identityDecoded[checksumStart:]) {
		return nil, fault.ErrChecksumMismatch
	}

	if keyLength != ed25519.PublicKeySize {
		return nil, fault.ErrInvalidKeyLength
	}
	publicKey := identityDecoded[keyVariantLength:checksumStart]
	return &Identity{
		IdentityInterface: &ED25519Identity{
			Test:      isTest,
			PublicKey: publicKey,
		},
	}, nil
}

// IdentityFromBytes - this converts a byte encoded buffer and returns
// an identity
func IdentityFromBytes(identityBytes []byte) (*Identity, error) {

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(identityBytes)

	// check key type
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.ErrNotPublicKey
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm <= 0 || keyAlgorithm >= algorithmLimit {
		return nil, fault.ErrInvalidKeyType
	}

	isTest := 0 != keyVariant&testKeyCode

	keyLength := len(identityBytes) - keyVariantLength
	if keyLength != ed25519.PublicKeySize {
		return nil, fault.ErrInvalidKeyLength
	}

	publicKey := identityBytes[keyVariantLength:]
	return &Identity{
		IdentityInterface: &ED25519Identity{
			Test:      isTest,
			PublicKey: publicKey,
		},
	}, nil
}

// UnmarshalText - convert a Base58 text representation to an identity
func (identity *Identity) UnmarshalText(s []byte) error {
	a, err := IdentityFromBase58(string(s))
	if nil != err {
		return err
	}
	identity.IdentityInterface = a.IdentityInterface
	return nil
}

// ED25519
// -------

// KeyType - key type code (see enumeration above)
func (identity *ED25519Identity) KeyType() int {
	return ED25519
}

// PublicKeyBytes - fetch the public key as byte slice
func (identity *ED25519Identity) PublicKeyBytes() []byte {
	return identity.PublicKey[:]
}

// CheckSignature - check the signature of a message
func (identity *ED25519Identity) CheckSignature(message []byte, signature Signature) error {

	if ed25519.SignatureSize != len(signature) {
		return fault.ErrInvalidSignature
	}

	if !ed25519.Verify(identity.PublicKey[:], message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// Bytes - byte slice for encoded key
func (identity *ED25519Identity) Bytes() []byte {
	keyVariant := byte(ED25519<<algorithmShift) | publicKeyCode
	if identity.Test {
		keyVariant |= testKeyCode
	}
	return append([]byte{keyVariant}, identity.PublicKey[:]...)
}

// String - base58 encoding of encoded key
func (identity *ED25519Identity) String() string {
	buffer := identity.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return util.ToBase58(buffer)
}

// MarshalText - convert an identity to its Base58 JSON form
func (identity ED25519Identity) MarshalText() ([]byte, error) {
	return []byte(identity.String()), nil
}

// IsTesting - return whether the public key is in test mode or not
func (identity ED25519Identity) IsTesting() bool {
	return identity.Test
}
