// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package main

import (
	"log/slog"
	"time"

	"github.com/strust-tools/strust/internal/rfc"
	"github.com/strust-tools/strust/internal/strust"
	"github.com/strust-tools/strust/util"
)

// Report is the result of checking one PSE.
type Report struct {
	Version      string                   `json:"version"`
	Date         string                   `json:"date"`
	Identity     string                   `json:"identity"`
	Certificates []strust.CertificateInfo `json:"certificates"`
	// Unparsed counts certificates the server could not decode.
	Unparsed int `json:"unparsed,omitempty"`
}

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

// run checks the PSE and collects what the server knows about the
// certificates stored in it.
func (p *processor) run() (*Report, error) {

	if err := p.connect(); err != nil {
		return nil, err
	}
	defer func() {
		if p.closeConn != nil {
			p.closeConn()
		}
	}()

	store := strust.NewStore(p.caller, p.cfg.identity)

	if err := store.CheckPSE(); err != nil {
		return nil, err
	}

	ders, err := store.Certificates()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Version:  util.SemVersion,
		Date:     time.Now().UTC().Format(time.RFC3339),
		Identity: store.Identity().String(),
	}

	for _, der := range ders {
		info, err := store.ParseCertificate(der)
		if err != nil {
			slog.Warn("Server could not decode a stored certificate",
				"identity", store.Identity(), "err", err)
			report.Unparsed++
			continue
		}
		report.Certificates = append(report.Certificates, *info)
	}

	return report, nil
}
