// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Archive is a fully decoded ResBin container.
//
// An Archive is read-only once built, except for Decrypt, which replaces
// one entry's bytes. It does no locking: callers must not run Decrypt
// concurrently with any other method.
type Archive struct {
	header  Header
	entries []Entry
	index   map[string]int // path -> position in entries
	files   map[string][]byte
	cipher  *Cipher
	log     zerolog.Logger
}

// Load reads the container at containerPath and, when exePath is not empty,
// the cipher key from the companion executable at exePath. Both files are
// read fully into memory before decoding starts.
func Load(containerPath, exePath string, opts ...Option) (*Archive, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var key []byte
	if exePath != "" {
		k, info, err := ReadKey(exePath, cfg.key)
		if err != nil {
			return nil, err
		}
		cfg.log.Debug().
			Str("exe", exePath).
			Int64("offset", cfg.key.Offset).
			Int("length", cfg.key.Length).
			Str("section", info.Section).
			Msg("read cipher key")
		key = k
	}

	container, err := os.ReadFile(containerPath)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	a, err := build(container, key, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", containerPath, err)
	}
	return a, nil
}

// New decodes an in-memory container. key may be nil, in which case
// Decrypt returns ErrNoKey.
func New(container, key []byte, opts ...Option) (*Archive, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(container, key, cfg)
}

// build runs the whole pipeline. Nothing is returned unless every stage
// succeeds for every entry.
func build(container, key []byte, cfg config) (*Archive, error) {
	a := &Archive{log: cfg.log}

	if key != nil {
		c, err := NewCipher(key)
		if err != nil {
			return nil, err
		}
		a.cipher = c
	}

	h, err := readHeader(container)
	if err != nil {
		return nil, err
	}
	a.header = h
	a.log.Debug().
		Uint32("dir_offset", h.Offset).
		Uint32("dir_size", h.Size).
		Uint32("dir_compressed", h.CompressedSize).
		Msg("read header")

	entries, err := readDirectory(container, h)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Int("entries", len(entries)).Msg("read directory")

	a.entries = entries
	a.index = make(map[string]int, len(entries))
	a.files = make(map[string][]byte, len(entries))
	for i, e := range entries {
		data, err := loadEntry(container, e)
		if err != nil {
			return nil, &PathError{Op: "load", Path: e.Path, Err: err}
		}
		a.index[e.Path] = i
		a.files[e.Path] = data
		a.log.Debug().
			Str("path", e.Path).
			Uint32("offset", e.DataOffset).
			Uint32("stored", e.Size).
			Int("size", len(data)).
			Msg("loaded entry")
	}

	for _, p := range cfg.ciphered {
		if err := a.Decrypt(p); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// loadEntry decodes one entry block: deobfuscate at its own offset, then
// inflate to the size named by its prefix.
func loadEntry(container []byte, e Entry) ([]byte, error) {
	block, err := region(container, e.DataOffset, e.Size)
	if err != nil {
		return nil, fmt.Errorf("read entry data: %w", err)
	}

	block = deobfuscated(e.DataOffset, block)
	if len(block) < sizePrefixLen {
		return nil, fmt.Errorf("read entry size: %w", ErrTruncated)
	}

	// Entry prefixes are big-endian, unlike the rest of the container.
	size := binary.BigEndian.Uint32(block)
	data, err := Inflate(block, int(size))
	if err != nil {
		return nil, fmt.Errorf("decompress entry: %w", err)
	}
	return data, nil
}

// Decrypt removes the Blowfish layer from the entry at path and stores the
// plaintext in its place. On failure the entry is left unchanged. Each call
// decrypts the current bytes again; Entry.Decrypted reports whether it has
// already been done.
func (a *Archive) Decrypt(path string) error {
	i, ok := a.index[path]
	if !ok {
		return &PathError{Op: "decrypt", Path: path, Err: ErrUnknownPath}
	}
	if a.cipher == nil {
		return &PathError{Op: "decrypt", Path: path, Err: ErrNoKey}
	}

	plain, err := a.cipher.DecryptPayload(a.files[path])
	if err != nil {
		return &PathError{Op: "decrypt", Path: path, Err: err}
	}

	a.files[path] = plain
	a.entries[i].Layer = LayerCipher
	a.entries[i].Decrypted = true
	a.log.Debug().Str("path", path).Int("size", len(plain)).Msg("decrypted entry")
	return nil
}

// shadowed reports whether entry i is hidden by a later entry with the
// same path. Lookups by path only reach the last one.
func (a *Archive) shadowed(i int) bool {
	return a.index[a.entries[i].Path] != i
}

// Header returns the decoded container header.
func (a *Archive) Header() Header { return a.header }

// Len returns the number of entries.
func (a *Archive) Len() int { return len(a.entries) }

// Entries returns a copy of the directory in stored order.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Paths returns every logical path in stored order.
func (a *Archive) Paths() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Path
	}
	return out
}

// Has reports whether the archive contains path.
func (a *Archive) Has(path string) bool {
	_, ok := a.index[path]
	return ok
}

// Entry returns the directory entry for path.
func (a *Archive) Entry(path string) (Entry, error) {
	i, ok := a.index[path]
	if !ok {
		return Entry{}, &PathError{Op: "stat", Path: path, Err: ErrUnknownPath}
	}
	return a.entries[i], nil
}

// ReadFile returns a copy of the current bytes of the entry at path.
func (a *Archive) ReadFile(path string) ([]byte, error) {
	data, ok := a.files[path]
	if !ok {
		return nil, &PathError{Op: "read", Path: path, Err: ErrUnknownPath}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
