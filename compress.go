// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
)

// sizePrefixLen is the stored metadata field in front of every compressed
// block. It is never fed to the decompressor.
const sizePrefixLen = 4

// Inflate decompresses a deobfuscated block: the 4-byte prefix is skipped and
// the rest is raw DEFLATE that must expand to exactly size bytes. Any codec
// error, early end, or excess output is reported as an *InflateError and no
// output is returned.
func Inflate(block []byte, size int) ([]byte, error) {
	if len(block) < sizePrefixLen {
		return nil, &InflateError{Want: size, Err: ErrTruncated}
	}

	r := flate.NewReader(bytes.NewReader(block[sizePrefixLen:]))
	defer r.Close()

	out := make([]byte, size)
	n, err := io.ReadFull(r, out)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &InflateError{Want: size, Got: n, Err: ErrShortStream}
		}
		return nil, &InflateError{Want: size, Got: n, Err: err}
	}

	// The stream must end here; one more byte means the declared size lied.
	var probe [1]byte
	for {
		m, err := r.Read(probe[:])
		if m > 0 {
			return nil, &InflateError{Want: size, Got: size + m, Err: ErrLongStream}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &InflateError{Want: size, Got: size, Err: err}
		}
	}

	return out, nil
}
