// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// Dump writes the current bytes of the entry at path to outDir/path.
// Missing parent directories are not created.
func (a *Archive) Dump(path, outDir string) error {
	data, ok := a.files[path]
	if !ok {
		return &PathError{Op: "dump", Path: path, Err: ErrUnknownPath}
	}

	dest, err := outputPath(outDir, path)
	if err != nil {
		return &PathError{Op: "dump", Path: path, Err: err}
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return &PathError{Op: "dump", Path: path, Err: err}
	}

	a.log.Debug().Str("path", path).Str("dest", dest).Int("size", len(data)).Msg("dumped entry")
	return nil
}

// DumpAll writes every entry under outDir in stored order. It is
// best-effort: every entry is attempted, and all failures are returned
// together (see multierr.Errors). A record whose path repeats later in the
// directory is skipped.
func (a *Archive) DumpAll(outDir string) error {
	var errs error
	for i, e := range a.entries {
		if a.shadowed(i) {
			a.log.Debug().Str("path", e.Path).Uint32("offset", e.DataOffset).Msg("skipped shadowed entry")
			continue
		}
		errs = multierr.Append(errs, a.Dump(e.Path, outDir))
	}
	return errs
}

// outputPath maps a logical path onto the filesystem under outDir. Both
// slash styles separate components.
func outputPath(outDir, path string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
	if !filepath.IsLocal(rel) {
		return "", ErrUnsafePath
	}
	return filepath.Join(outDir, rel), nil
}

// MkdirAll creates every parent directory DumpAll needs under outDir.
func (a *Archive) MkdirAll(outDir string) error {
	for _, e := range a.entries {
		dest, err := outputPath(outDir, e.Path)
		if err != nil {
			return &PathError{Op: "mkdir", Path: e.Path, Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return &PathError{Op: "mkdir", Path: e.Path, Err: err}
		}
	}
	return nil
}
