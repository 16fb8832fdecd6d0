// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package resbin provides pure Go read-only support for ResBin ("ARC1") game
asset containers.

A ResBin container holds a 16-byte header, a compressed directory, and one
compressed block per logical file. Every region is obfuscated with an XOR
keystream seeded from the region's absolute offset, and every compressed
block is raw DEFLATE behind a 4-byte size prefix. Some entries carry a
second Blowfish layer whose key lives at a fixed offset inside the game's
executable.

# Basic Usage

Loading an archive and extracting everything:

	archive, err := resbin.Load("resources.bin", "game.exe")
	if err != nil {
		log.Fatal(err)
	}

	if err := archive.Decrypt("string_1.bin"); err != nil {
		log.Fatal(err)
	}

	if err := archive.DumpAll("out"); err != nil {
		for _, e := range multierr.Errors(err) {
			log.Println(e)
		}
	}

Entries known to carry the cipher layer can instead be named up front, in
which case they are decrypted as part of loading:

	archive, err := resbin.Load("resources.bin", "game.exe",
		resbin.WithCiphered("string_1.bin", "string_2.bin"))

# Loading Semantics

Load and New are all-or-nothing: the first failure in the header, the
directory, or any entry is returned and no Archive is produced. Errors can
be inspected with errors.Is against the Err* values and errors.As against
MagicError, PathNameError, InflateError and PathError.

# Limitations

  - Read-only: there is no encoder
  - Whole files are held in memory; there is no streaming access
  - Which entries carry the cipher layer is not recorded in the container
    and must be supplied by the caller
*/
package resbin
