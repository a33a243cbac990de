// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package certs reads certificate files for upload. The files are
// not parsed or validated locally, the application server does that;
// only PEM armor is stripped here because the SSFR function modules
// expect DER.
package certs

import (
	"encoding/pem"
	"fmt"
	"os"
)

const pemCertificateType = "CERTIFICATE"

// ReadCertificates reads the DER encoded certificates from a file.
// A PEM file may carry several CERTIFICATE blocks and yields one
// DER blob per block. Everything else is taken as a single DER
// encoded certificate as-is.
func ReadCertificates(filename string) ([][]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%q is empty", filename)
	}

	var (
		ders   [][]byte
		sawPEM bool
	)
	rest := data
	for {
		block, remainder := pem.Decode(rest)
		if block == nil {
			break
		}
		sawPEM = true
		if block.Type == pemCertificateType {
			ders = append(ders, block.Bytes)
		}
		rest = remainder
	}

	switch {
	case len(ders) > 0:
		return ders, nil
	case sawPEM:
		return nil, fmt.Errorf(
			"%q contains no CERTIFICATE block", filename)
	default:
		// No armor at all: assume raw DER.
		return [][]byte{data}, nil
	}
}
