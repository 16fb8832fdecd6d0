// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// BlockSize is the secondary cipher's block size in bytes.
const BlockSize = blowfish.BlockSize

// leadMask is XORed over the first cipher block by the game's packer.
var leadMask = [BlockSize]byte{0x75, 0xFA, 0x29, 0x95, 0x05, 0x4D, 0x41, 0x5F}

// Cipher removes the Blowfish layer from cipher-protected entries.
//
// The format runs Blowfish over little-endian 32-bit words, so each half
// block is byte-reversed around the standard big-endian primitive.
type Cipher struct {
	bf *blowfish.Cipher
}

// NewCipher creates a Cipher from key material read out of the companion
// executable.
func NewCipher(key []byte) (*Cipher, error) {
	bf, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("blowfish init: %w", err)
	}
	return &Cipher{bf: bf}, nil
}

// DecryptPayload returns the plaintext of an entry payload. The payload is
// not modified. Its length must be a positive multiple of BlockSize.
func (c *Cipher) DecryptPayload(payload []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload)%BlockSize != 0 {
		return nil, fmt.Errorf("decrypt %d bytes: %w", len(payload), ErrBlockLength)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	for i := range leadMask {
		out[i] ^= leadMask[i]
	}

	for i := 0; i+BlockSize <= len(out); i += BlockSize {
		c.decryptBlock(out[i : i+BlockSize])
	}

	return out, nil
}

// decryptBlock decrypts one little-endian block in place
func (c *Cipher) decryptBlock(block []byte) {
	swapHalves(block)
	c.bf.Decrypt(block, block)
	swapHalves(block)
}

// swapHalves reverses the byte order of both 32-bit words of a block
func swapHalves(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5], b[6], b[7] = b[7], b[6], b[5], b[4]
}
