// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package main implements the strust_checker tool. It verifies that
// a PSE of the SSL trust store (STRUST) of an SAP application server
// exists and reports the certificates stored in it.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/strust-tools/strust/internal/options"
)

func writeJSON(report *Report, w io.WriteCloser) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(report)
	if e := w.Close(); err == nil {
		err = e
	}
	return err
}

func writeText(report *Report, w io.WriteCloser) error {
	fmt.Fprintf(w, "PSE:          %s\n", report.Identity)
	fmt.Fprintf(w, "Certificates: %d\n", len(report.Certificates))
	for i := range report.Certificates {
		cert := &report.Certificates[i]
		fmt.Fprintf(w, "\nSubject:    %s\n", cert.Subject)
		fmt.Fprintf(w, "Issuer:     %s\n", cert.Issuer)
		fmt.Fprintf(w, "Serial:     %s\n", cert.SerialNo)
		fmt.Fprintf(w, "Valid from: %s\n", cert.ValidFrom)
		fmt.Fprintf(w, "Valid to:   %s\n", cert.ValidTo)
	}
	if report.Unparsed > 0 {
		fmt.Fprintf(w, "\nNot decodable: %d\n", report.Unparsed)
	}
	return w.Close()
}

type nopCloser struct{ io.Writer }

func (nc *nopCloser) Close() error { return nil }

func writeReport(report *Report, cfg *config) error {

	var w io.WriteCloser

	if cfg.Output == "" {
		w = &nopCloser{os.Stdout}
	} else {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		w = f
	}

	if cfg.Format == "json" {
		return writeJSON(report, w)
	}
	return writeText(report, w)
}

func realMain(args []string) error {
	rest, cfg, err := parseArgsConfig(args)
	if err != nil {
		return err
	}
	if err := cfg.prepare(); err != nil {
		return err
	}
	if len(rest) > 0 {
		slog.Warn("Ignoring surplus arguments", "args", rest)
	}

	p := &processor{cfg: cfg}
	report, err := p.run()
	if err != nil {
		return err
	}

	return writeReport(report, cfg)
}

func main() {
	options.ErrorCheck(realMain(os.Args[1:]))
}
