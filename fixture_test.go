// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
)

// fixtureFile is one logical file to place in a test container
type fixtureFile struct {
	path string
	data []byte
	key  []byte // when set, data is Blowfish-encrypted before compression
}

// fixture is an encoded container plus the layout it was built with
type fixture struct {
	container []byte
	header    Header
	offsets   []uint32 // entry block offsets, in file order
}

// buildContainer encodes files the way the game's packer lays them out:
// header, entry blocks, then the directory.
func buildContainer(t testing.TB, files []fixtureFile) fixture {
	t.Helper()

	var (
		body    bytes.Buffer
		records []entryRecord
		offsets []uint32
	)
	body.Write(make([]byte, headerSize))

	for _, f := range files {
		payload := f.data
		if f.key != nil {
			payload = encryptPayload(t, f.key, f.data)
		}

		block := make([]byte, sizePrefixLen)
		binary.BigEndian.PutUint32(block, uint32(len(payload)))
		block = append(block, deflate(t, payload)...)

		off := uint32(body.Len())
		Deobfuscate(off, block)
		body.Write(block)

		offsets = append(offsets, off)
		records = append(records, entryRecord{DataOffset: off, Size: uint32(len(block))})
	}

	dir := encodeDirectory(t, files, records)

	dirBlock := make([]byte, sizePrefixLen)
	binary.LittleEndian.PutUint32(dirBlock, uint32(len(dir)))
	dirBlock = append(dirBlock, deflate(t, dir)...)

	h := Header{
		Magic:          containerMagic,
		Size:           uint32(len(dir)),
		Offset:         uint32(body.Len()),
		CompressedSize: uint32(len(dirBlock)),
	}
	Deobfuscate(h.Offset, dirBlock)
	body.Write(dirBlock)

	out := body.Bytes()
	var hdr bytes.Buffer
	require.NoError(t, binary.Write(&hdr, binary.LittleEndian, &h))
	copy(out, hdr.Bytes())
	Deobfuscate(0, out[:headerSize])

	return fixture{container: out, header: h, offsets: offsets}
}

// encodeDirectory lays out the entry count, the records, then the path
// strings the records point at
func encodeDirectory(t testing.TB, files []fixtureFile, records []entryRecord) []byte {
	t.Helper()

	pathBase := entryCountSize + len(records)*entryRecordSize
	var paths bytes.Buffer
	for i, f := range files {
		records[i].PathOffset = uint32(pathBase + paths.Len())
		paths.WriteString(f.path)
		paths.WriteByte(0)
	}

	var dir bytes.Buffer
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, uint32(len(records))))
	require.NoError(t, binary.Write(&dir, binary.LittleEndian, records))
	dir.Write(paths.Bytes())
	return dir.Bytes()
}

// deflate compresses data as raw DEFLATE
func deflate(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// encryptPayload applies the cipher layer: Blowfish over each block, then
// the lead mask over the first one
func encryptPayload(t testing.TB, key, plain []byte) []byte {
	t.Helper()
	require.Zero(t, len(plain)%BlockSize, "cipher payload must be block aligned")

	c, err := NewCipher(key)
	require.NoError(t, err)

	out := make([]byte, len(plain))
	copy(out, plain)
	for i := 0; i+BlockSize <= len(out); i += BlockSize {
		c.encryptBlock(out[i : i+BlockSize])
	}
	for i := range leadMask {
		out[i] ^= leadMask[i]
	}
	return out
}

// encryptBlock is the inverse of decryptBlock
func (c *Cipher) encryptBlock(block []byte) {
	swapHalves(block)
	c.bf.Encrypt(block, block)
	swapHalves(block)
}

// writeExecutable writes a fake companion executable holding key at offset
func writeExecutable(t testing.TB, dir string, offset int64, key []byte) string {
	t.Helper()

	exe := make([]byte, offset+int64(len(key))+64)
	for i := range exe {
		exe[i] = byte(i * 7)
	}
	copy(exe[offset:], key)

	path := filepath.Join(dir, "game.exe")
	require.NoError(t, os.WriteFile(path, exe, 0644))
	return path
}

// writeFile writes data under dir and returns its path
func writeFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
