// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package main

import (
	"fmt"
	"log/slog"

	"github.com/strust-tools/strust/internal/certs"
	"github.com/strust-tools/strust/internal/rfc"
	"github.com/strust-tools/strust/internal/strust"
)

type processor struct {
	cfg *config

	// caller is set up by connect. Tests inject a fake here.
	caller    rfc.Caller
	closeConn func() error
}

// connect opens the RFC connection unless a caller is already set.
func (p *processor) connect() error {
	if p.caller != nil {
		return nil
	}
	conn, err := rfc.Connect(p.cfg.connection())
	if err != nil {
		return err
	}
	conn.LogAttributes()
	p.caller = &rfc.LoggingCaller{Caller: conn}
	p.closeConn = conn.Close
	return nil
}

// writeStrings prints the passed messages under the given header.
func writeStrings(header string, messages []string) {
	if len(messages) > 0 {
		fmt.Println(header)
		for _, msg := range messages {
			fmt.Printf("\t%s\n", msg)
		}
	}
}

// process uploads all certificates of one file into the store.
func (p *processor) process(store *strust.Store, filename string) error {
	ders, err := certs.ReadCertificates(filename)
	if err != nil {
		return err
	}
	var warnings []string
	for i, der := range ders {
		msgs, err := store.PutCertificate(der)
		for _, msg := range msgs {
			if msg.IsWarning() {
				warnings = append(warnings, msg.String())
			}
		}
		if err != nil {
			if len(ders) > 1 {
				return fmt.Errorf("certificate %d of %d: %v",
					i+1, len(ders), err)
			}
			return err
		}
	}
	writeStrings("Warnings:", warnings)
	return nil
}

// run uploads the given certificate files and reports the result
// per file.
func (p *processor) run(files []string) error {

	if err := p.connect(); err != nil {
		return err
	}
	defer func() {
		if p.closeConn != nil {
			p.closeConn()
		}
	}()

	store := strust.NewStore(p.caller, p.cfg.identity)

	if err := store.CheckPSE(); err != nil {
		return err
	}
	slog.Debug("PSE is usable", "identity", store.Identity())

	var failed int
	for _, file := range files {
		if err := p.process(store, file); err != nil {
			failed++
			fmt.Printf("%s: failed: %v\n", file, err)
			continue
		}
		fmt.Printf("%s: ok\n", file)
	}

	slog.Info("Upload done",
		"identity", store.Identity(),
		"files", len(files),
		"failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d certificate file(s) failed",
			failed, len(files))
	}
	return nil
}
