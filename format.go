// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ResBin format constants
const (
	// Container tag, stored as the little-endian packing of "ARC1"
	containerTag   = "ARC1"
	containerMagic = 0x31435241

	headerSize      = 16 // sig, size, offs, cmp_size
	entryRecordSize = 12 // path_offset, data_offset, size
	entryCountSize  = 4
)

// Header is the 16-byte container header, as stored after deobfuscation.
type Header struct {
	Magic          uint32 // "ARC1" packed little-endian
	Size           uint32 // Decompressed directory size
	Offset         uint32 // Absolute offset of the compressed directory
	CompressedSize uint32 // Compressed directory size, prefix included
}

// Layer says which encodings sit on top of an entry's payload.
type Layer uint8

const (
	// LayerContainer entries are only obfuscated and deflated.
	LayerContainer Layer = iota
	// LayerCipher entries carry an additional Blowfish layer beneath the
	// container encoding.
	LayerCipher
)

func (l Layer) String() string {
	switch l {
	case LayerContainer:
		return "container"
	case LayerCipher:
		return "cipher"
	default:
		return fmt.Sprintf("Layer(%d)", uint8(l))
	}
}

// Entry describes one logical file of the archive.
type Entry struct {
	Path       string
	PathOffset uint32 // Offset of the path string within the directory segment
	DataOffset uint32 // Absolute offset of the entry block within the container
	Size       uint32 // Entry block size, size prefix included

	Layer     Layer
	Decrypted bool // Cipher layer already removed from the stored bytes
}

// entryRecord is the on-disk directory record
type entryRecord struct {
	PathOffset uint32
	DataOffset uint32
	Size       uint32
}

// readHeader reads, deobfuscates and validates the container header
func readHeader(container []byte) (Header, error) {
	var h Header

	if len(container) < headerSize {
		return h, fmt.Errorf("read header: have %d of %d bytes: %w", len(container), headerSize, ErrTruncated)
	}

	raw := deobfuscated(0, container[:headerSize])
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}

	if h.Magic != containerMagic {
		return h, &MagicError{Got: h.Magic}
	}

	return h, nil
}

// readDirectory locates, decodes and parses the directory segment
func readDirectory(container []byte, h Header) ([]Entry, error) {
	block, err := region(container, h.Offset, h.CompressedSize)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	dir, err := Inflate(deobfuscated(h.Offset, block), int(h.Size))
	if err != nil {
		return nil, fmt.Errorf("decompress directory: %w", err)
	}

	return parseDirectory(dir)
}

// parseDirectory parses a decompressed directory segment: an entry count, the
// packed records, and the path strings they point at.
func parseDirectory(dir []byte) ([]Entry, error) {
	if len(dir) < entryCountSize {
		return nil, fmt.Errorf("read entry count: %w", ErrTruncated)
	}
	count := binary.LittleEndian.Uint32(dir)

	tableEnd := uint64(entryCountSize) + uint64(count)*entryRecordSize
	if tableEnd > uint64(len(dir)) {
		return nil, fmt.Errorf("read entry table: %d entries need %d bytes, segment has %d: %w",
			count, tableEnd, len(dir), ErrTruncated)
	}

	records := make([]entryRecord, count)
	if err := binary.Read(bytes.NewReader(dir[entryCountSize:tableEnd]), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("read entry table: %w", err)
	}

	// Path bytes are Latin-1
	dec := charmap.ISO8859_1.NewDecoder()

	entries := make([]Entry, count)
	for i, rec := range records {
		entries[i] = Entry{
			PathOffset: rec.PathOffset,
			DataOffset: rec.DataOffset,
			Size:       rec.Size,
		}

		raw, ok := readCString(dir, rec.PathOffset)
		if !ok {
			return nil, &PathNameError{Index: i, Entry: entries[i]}
		}
		path, err := dec.Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode path %d: %w", i, err)
		}
		entries[i].Path = string(path)
	}

	return entries, nil
}

// readCString returns the bytes of the NUL-terminated string at off
func readCString(buf []byte, off uint32) ([]byte, bool) {
	if uint64(off) >= uint64(len(buf)) {
		return nil, false
	}
	n := bytes.IndexByte(buf[off:], 0)
	if n < 0 {
		return nil, false
	}
	return buf[off : int(off)+n], true
}

// region returns the size bytes at off, or ErrTruncated if they do not fit
func region(buf []byte, off, size uint32) ([]byte, error) {
	end := uint64(off) + uint64(size)
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%d bytes at 0x%X past end of %d-byte container: %w", size, off, len(buf), ErrTruncated)
	}
	return buf[off:end], nil
}
