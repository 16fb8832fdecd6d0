// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

// Keystream constants. Every region of the container (header, compressed
// directory, each entry block) is seeded from its own absolute offset.
const (
	keystreamBase = 0x19000000
	keystreamMul  = 0x41C64E6D
	keystreamAdd  = 12345
)

// Deobfuscate removes the container keystream from data in place. offset is
// the absolute position of data within the container. The transform is its
// own inverse, so it also obfuscates.
func Deobfuscate(offset uint32, data []byte) {
	seed := keystreamBase + offset
	for i := range data {
		seed = seed*keystreamMul + keystreamAdd
		data[i] ^= byte(seed >> 24)
	}
}

// deobfuscated returns a deobfuscated copy of src, leaving src untouched.
func deobfuscated(offset uint32, src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	Deobfuscate(offset, out)
	return out
}
