// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"bytes"
	"fmt"
	"os"

	"github.com/folbricht/pefile"
)

// Default location of the cipher key inside the companion executable.
const (
	DefaultKeyOffset = 0x398EE8
	DefaultKeyLength = 16
)

// KeySource locates the cipher key inside the companion executable.
type KeySource struct {
	Offset int64 // Absolute file offset
	Length int

	// RequirePE rejects executables that do not parse as PE images, and keys
	// that do not lie inside one section's raw data.
	RequirePE bool
}

// DefaultKeySource returns the key location used by the shipped executable.
func DefaultKeySource() KeySource {
	return KeySource{Offset: DefaultKeyOffset, Length: DefaultKeyLength}
}

// KeyInfo describes where a key was found.
type KeyInfo struct {
	Section string // PE section holding the key, empty if unknown
}

// ReadKey reads the companion executable at path and extracts the key.
func ReadKey(path string, src KeySource) ([]byte, KeyInfo, error) {
	exe, err := os.ReadFile(path)
	if err != nil {
		return nil, KeyInfo{}, fmt.Errorf("read executable: %w", err)
	}

	key, info, err := ExtractKey(exe, src)
	if err != nil {
		return nil, info, fmt.Errorf("%s: %w", path, err)
	}
	return key, info, nil
}

// ExtractKey copies src.Length bytes at src.Offset out of an in-memory
// executable image.
func ExtractKey(exe []byte, src KeySource) ([]byte, KeyInfo, error) {
	var info KeyInfo

	size := int64(len(exe))
	if src.Offset < 0 || src.Length <= 0 || src.Offset > size || int64(src.Length) > size-src.Offset {
		return nil, info, fmt.Errorf("extract key: %d bytes at 0x%X of %d: %w",
			src.Length, src.Offset, len(exe), ErrKeyRange)
	}

	section, err := keySection(exe, src)
	if err != nil && src.RequirePE {
		return nil, info, fmt.Errorf("extract key: %w", err)
	}
	info.Section = section

	key := make([]byte, src.Length)
	copy(key, exe[src.Offset:])
	return key, info, nil
}

// keySection names the PE section whose raw data holds the whole key
func keySection(exe []byte, src KeySource) (string, error) {
	f, err := pefile.New(bytes.NewReader(exe))
	if err != nil {
		return "", fmt.Errorf("parse executable: %w", err)
	}
	defer f.Close()

	end := src.Offset + int64(src.Length)
	for _, s := range f.Sections {
		start := int64(s.Offset)
		if src.Offset >= start && end <= start+int64(s.Size) {
			return s.Name, nil
		}
	}
	return "", fmt.Errorf("key at 0x%X not inside any section: %w", src.Offset, ErrKeyRange)
}
