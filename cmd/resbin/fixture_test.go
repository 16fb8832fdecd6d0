// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
	"github.com/suprsokr/go-resbin"
	"golang.org/x/crypto/blowfish"
)

type testFile struct {
	path string
	data []byte
	key  []byte // encrypt data with the cipher layer first
}

// encodeContainer lays out a container: header, obfuscated entry blocks,
// then the directory block
func encodeContainer(t *testing.T, files []testFile) []byte {
	t.Helper()

	body := make([]byte, 16)
	type record struct{ PathOffset, DataOffset, Size uint32 }
	records := make([]record, len(files))

	for i, f := range files {
		payload := f.data
		if f.key != nil {
			payload = encryptPayload(t, f.key, f.data)
		}
		block := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
		block = append(block, deflate(t, payload)...)

		off := uint32(len(body))
		resbin.Deobfuscate(off, block)
		body = append(body, block...)
		records[i] = record{DataOffset: off, Size: uint32(len(block))}
	}

	var paths bytes.Buffer
	base := 4 + 12*len(files)
	for i, f := range files {
		records[i].PathOffset = uint32(base + paths.Len())
		paths.WriteString(f.path)
		paths.WriteByte(0)
	}
	var dir bytes.Buffer
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint32(len(files))))
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, records))
	dir.Write(paths.Bytes())

	dirBlock := binary.LittleEndian.AppendUint32(nil, uint32(dir.Len()))
	dirBlock = append(dirBlock, deflate(t, dir.Bytes())...)
	dirOff := uint32(len(body))
	resbin.Deobfuscate(dirOff, dirBlock)
	body = append(body, dirBlock...)

	for i, v := range []uint32{0x31435241, uint32(dir.Len()), dirOff, uint32(len(dirBlock))} {
		binary.LittleEndian.PutUint32(body[i*4:], v)
	}
	resbin.Deobfuscate(0, body[:16])
	return body
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// encryptPayload is the inverse of resbin.Cipher.DecryptPayload
func encryptPayload(t *testing.T, key, plain []byte) []byte {
	t.Helper()
	require.Zero(t, len(plain)%resbin.BlockSize)

	bf, err := blowfish.NewCipher(key)
	require.NoError(t, err)

	out := bytes.Clone(plain)
	for i := 0; i < len(out); i += resbin.BlockSize {
		block := out[i : i+resbin.BlockSize]
		swapHalves(block)
		bf.Encrypt(block, block)
		swapHalves(block)
	}
	mask := []byte{0x75, 0xFA, 0x29, 0x95, 0x05, 0x4D, 0x41, 0x5F}
	for i := range mask {
		out[i] ^= mask[i]
	}
	return out
}

func swapHalves(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5], b[6], b[7] = b[7], b[6], b[5], b[4]
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
