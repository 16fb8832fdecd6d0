// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated reports a read past the end of a buffer: a short header,
	// a directory table or entry block that runs off the container, or a
	// compressed block too small to hold its size prefix.
	ErrTruncated = errors.New("truncated data")

	ErrMagic       = errors.New("bad magic")
	ErrPathName    = errors.New("unterminated path name")
	ErrShortStream = errors.New("deflate stream ended early")
	ErrLongStream  = errors.New("deflate stream exceeds declared size")
	ErrBlockLength = errors.New("cipher payload is not a whole number of blocks")
	ErrUnknownPath = errors.New("unknown path")
	ErrNoKey       = errors.New("archive has no cipher key")
	ErrUnsafePath  = errors.New("path escapes output directory")
	ErrKeyRange    = errors.New("key range outside executable")
)

// MagicError is returned when the deobfuscated header signature does not
// match the container tag.
type MagicError struct {
	Got uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("bad magic: got 0x%08X, want 0x%08X (%q)", e.Got, containerMagic, containerTag)
}

func (e *MagicError) Is(target error) bool { return target == ErrMagic }

// PathNameError is returned when a directory record points at a path string
// that is not NUL-terminated inside the directory segment.
type PathNameError struct {
	Index int
	Entry Entry
}

func (e *PathNameError) Error() string {
	return fmt.Sprintf("entry %d (path offset 0x%X, data offset 0x%X, size %d): %v",
		e.Index, e.Entry.PathOffset, e.Entry.DataOffset, e.Entry.Size, ErrPathName)
}

func (e *PathNameError) Is(target error) bool { return target == ErrPathName }

// InflateError wraps any failure to inflate a block to its declared size.
type InflateError struct {
	Want int
	Got  int
	Err  error
}

func (e *InflateError) Error() string {
	return fmt.Sprintf("inflate: want %d bytes, got %d: %v", e.Want, e.Got, e.Err)
}

func (e *InflateError) Unwrap() error { return e.Err }

// PathError attributes a failure to a logical path inside the archive.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }
