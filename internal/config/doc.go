// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package config loads and validates runtime configuration using Koanf v2
// with layered sources.
//
// Precedence (highest wins):
//
//	Environment variables > YAML config file > built-in defaults
//
// The config file is searched at the paths in DefaultConfigPaths, or at the
// path named by the CONFIG_PATH environment variable. Environment variables
// map to nested keys through an explicit allow-list (see envTransformFunc),
// so unrelated variables never leak into the configuration.
//
// Typical usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
package config
