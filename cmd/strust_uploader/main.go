// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package main implements the strust_uploader tool. It uploads
// X.509 certificates into the SSL trust store (STRUST) of an SAP
// application server over RFC.
package main

import (
	"log/slog"
	"os"

	"github.com/strust-tools/strust/internal/options"
)

func realMain(args []string) error {
	files, cfg, err := parseArgsConfig(args)
	if err != nil {
		return err
	}
	if err := cfg.prepare(); err != nil {
		return err
	}

	if len(files) == 0 {
		slog.Info("No certificate files given.")
		return nil
	}

	p := &processor{cfg: cfg}
	return p.run(files)
}

func main() {
	options.ErrorCheck(realMain(os.Args[1:]))
}
