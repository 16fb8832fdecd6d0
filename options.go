// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package resbin

import "github.com/rs/zerolog"

type config struct {
	log      zerolog.Logger
	key      KeySource
	ciphered []string
}

func defaultConfig() config {
	return config{
		log: zerolog.Nop(),
		key: DefaultKeySource(),
	}
}

// Option configures Load and New.
type Option func(*config)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithKeySource overrides where Load looks for the cipher key.
func WithKeySource(src KeySource) Option {
	return func(c *config) { c.key = src }
}

// WithCiphered marks entries that carry the Blowfish layer. They are
// decrypted as part of loading, and an unknown path fails the load.
func WithCiphered(paths ...string) Option {
	return func(c *config) { c.ciphered = append(c.ciphered, paths...) }
}
