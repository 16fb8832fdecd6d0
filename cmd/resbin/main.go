// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command resbin lists and extracts ResBin game asset containers.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/suprsokr/go-resbin"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "resbin:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "resbin",
		Usage: "inspect and extract ResBin (ARC1) containers",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "exe",
				Usage:   "companion executable holding the cipher key",
				EnvVars: []string{"RESBIN_EXE"},
			},
			&cli.StringFlag{
				Name:    "key-offset",
				Usage:   "file offset of the cipher key (decimal or 0x hex)",
				Value:   fmt.Sprintf("0x%X", resbin.DefaultKeyOffset),
				EnvVars: []string{"RESBIN_KEY_OFFSET"},
			},
			&cli.IntFlag{
				Name:    "key-length",
				Usage:   "cipher key length in bytes",
				Value:   resbin.DefaultKeyLength,
				EnvVars: []string{"RESBIN_KEY_LENGTH"},
			},
			&cli.BoolFlag{
				Name:    "require-pe",
				Usage:   "fail unless the key lies inside a PE section",
				EnvVars: []string{"RESBIN_REQUIRE_PE"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every decoding stage",
			},
		},
		Commands: []*cli.Command{
			&cmdList,
			&cmdExtract,
			&cmdKey,
		},
	}
}

var cmdList = cli.Command{
	Name:      "list",
	Usage:     "print the entries of a container",
	ArgsUsage: "<container>",
	Action:    listArchive,
}

var cmdExtract = cli.Command{
	Name:      "extract",
	Usage:     "write every entry of a container to disk",
	ArgsUsage: "<container>",
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Value:   "out",
			Usage:   "output directory",
		},
		&cli.StringSliceFlag{
			Name:  "decrypt",
			Usage: "entry carrying the cipher layer (repeatable, needs --exe)",
		},
		&cli.BoolFlag{
			Name:  "mkdir",
			Usage: "create missing parent directories",
		},
	},
	Action: extractArchive,
}

var cmdKey = cli.Command{
	Name:   "key",
	Usage:  "print the cipher key found in --exe",
	Action: printKey,
}

func listArchive(c *cli.Context) error {
	archive, err := openArchive(c, nil)
	if err != nil {
		return err
	}

	if err := archive.WriteManifest(c.App.Writer); err != nil {
		return err
	}

	manifest := archive.Manifest()
	var total uint64
	for _, m := range manifest {
		total += uint64(m.Size)
	}
	fmt.Fprintf(c.App.Writer, "%d files, %s\n", len(manifest), humanize.Bytes(total))
	return nil
}

func extractArchive(c *cli.Context) error {
	ciphered := c.StringSlice("decrypt")
	if len(ciphered) > 0 && c.Path("exe") == "" {
		return fmt.Errorf("--decrypt needs --exe")
	}

	archive, err := openArchive(c, ciphered)
	if err != nil {
		return err
	}

	outDir := c.Path("out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if c.Bool("mkdir") {
		if err := archive.MkdirAll(outDir); err != nil {
			return err
		}
	}

	err = archive.DumpAll(outDir)
	failed := multierr.Errors(err)
	for _, e := range failed {
		fmt.Fprintln(c.App.ErrWriter, e)
	}

	manifest := archive.Manifest()
	var total uint64
	for _, m := range manifest {
		total += uint64(m.Size)
	}
	fmt.Fprintf(c.App.Writer, "%d of %d files, %s written to %s\n",
		len(manifest)-len(failed), len(manifest), humanize.Bytes(total), outDir)

	if len(failed) > 0 {
		return fmt.Errorf("%d entries failed", len(failed))
	}
	return nil
}

func printKey(c *cli.Context) error {
	exe := c.Path("exe")
	if exe == "" {
		return fmt.Errorf("--exe is required")
	}

	src, err := keySource(c)
	if err != nil {
		return err
	}

	key, info, err := resbin.ReadKey(exe, src)
	if err != nil {
		return err
	}

	section := info.Section
	if section == "" {
		section = "-"
	}
	fmt.Fprintf(c.App.Writer, "%s  offset=0x%X section=%s\n", hex.EncodeToString(key), src.Offset, section)
	return nil
}

// openArchive loads the container named by the first argument with the
// global key flags applied
func openArchive(c *cli.Context, ciphered []string) (*resbin.Archive, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one container path, got %d", c.NArg())
	}

	src, err := keySource(c)
	if err != nil {
		return nil, err
	}

	opts := []resbin.Option{
		resbin.WithLogger(newLogger(c.App.ErrWriter, c.Bool("verbose"))),
		resbin.WithKeySource(src),
	}
	if len(ciphered) > 0 {
		opts = append(opts, resbin.WithCiphered(ciphered...))
	}

	return resbin.Load(c.Args().First(), c.Path("exe"), opts...)
}

func keySource(c *cli.Context) (resbin.KeySource, error) {
	off, err := parseOffset(c.String("key-offset"))
	if err != nil {
		return resbin.KeySource{}, err
	}
	return resbin.KeySource{
		Offset:    off,
		Length:    c.Int("key-length"),
		RequirePE: c.Bool("require-pe"),
	}, nil
}

// parseOffset accepts decimal, 0x hex and 0o octal offsets
func parseOffset(s string) (int64, error) {
	off, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse key offset %q: %w", s, err)
	}
	if off < 0 {
		return 0, fmt.Errorf("parse key offset %q: negative", s)
	}
	return off, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}
