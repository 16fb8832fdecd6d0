// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"fmt"
	"hash/crc32"
	"io"
	"text/tabwriter"
)

// ManifestEntry summarizes one entry of an archive.
type ManifestEntry struct {
	Path       string
	DataOffset uint32
	Stored     uint32 // Encoded block size in the container
	Size       int    // Current decoded size
	Layer      Layer
	Decrypted  bool
	CRC32      uint32 // IEEE CRC-32 of the current bytes
}

// Manifest lists every reachable entry in stored order. A record whose
// path repeats later in the directory is left out.
func (a *Archive) Manifest() []ManifestEntry {
	out := make([]ManifestEntry, 0, len(a.entries))
	for i, e := range a.entries {
		if a.shadowed(i) {
			continue
		}
		data := a.files[e.Path]
		out = append(out, ManifestEntry{
			Path:       e.Path,
			DataOffset: e.DataOffset,
			Stored:     e.Size,
			Size:       len(data),
			Layer:      e.Layer,
			Decrypted:  e.Decrypted,
			CRC32:      crc32.ChecksumIEEE(data),
		})
	}
	return out
}

// WriteManifest writes the manifest as an aligned text table.
func (a *Archive) WriteManifest(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tOFFSET\tSTORED\tSIZE\tLAYER\tCRC32")
	for _, m := range a.Manifest() {
		fmt.Fprintf(tw, "%s\t0x%08X\t%d\t%d\t%s\t%08X\n",
			m.Path, m.DataOffset, m.Stored, m.Size, m.Layer, m.CRC32)
	}
	return tw.Flush()
}
