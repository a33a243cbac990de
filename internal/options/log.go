// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package options

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevel makes slog.Level usable as a flag and in TOML configs.
type LogLevel struct{ slog.Level }

// MarshalFlag implements [flags.Marshaler].
func (ll LogLevel) MarshalFlag() (string, error) {
	t, err := ll.MarshalText()
	return strings.ToLower(string(t)), err
}

// UnmarshalFlag implements [flags.Unmarshaler].
func (ll *LogLevel) UnmarshalFlag(value string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(value)); err != nil {
		return err
	}
	*ll = LogLevel{Level: l}
	return nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] for TOML.
func (ll *LogLevel) UnmarshalText(text []byte) error {
	return ll.UnmarshalFlag(string(text))
}

// InitLogging installs a text handler on stderr with the given
// level as the slog default.
func InitLogging(level slog.Level) {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(h))
}
