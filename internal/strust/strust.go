// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package strust talks to the SSL trust store (transaction STRUST)
// of an SAP application server through the remote enabled SSFR
// function modules.
package strust

import (
	"fmt"
	"sort"

	"github.com/strust-tools/strust/internal/rfc"
)

// Identity addresses one PSE in the trust store by SSF context and
// application.
type Identity struct {
	PseContext string
	PseApplic  string
}

// The named identities match the PSEs SAP tooling works with.
var identities = map[string]Identity{
	"server_standard":  {PseContext: "SSLS", PseApplic: "DFAULT"},
	"client_standard":  {PseContext: "SSLC", PseApplic: "DFAULT"},
	"client_anonymous": {PseContext: "SSLC", PseApplic: "ANONYM"},
}

// IdentityByName resolves a named identity.
func IdentityByName(name string) (Identity, bool) {
	id, ok := identities[name]
	return id, ok
}

// IdentityNames returns the known identity names sorted.
func IdentityNames() []string {
	names := make([]string, 0, len(identities))
	for name := range identities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String implements [fmt.Stringer].
func (id Identity) String() string {
	return id.PseContext + "/" + id.PseApplic
}

// importParams builds the common import parameter set of the SSFR
// function modules.
func (id Identity) importParams() map[string]interface{} {
	return map[string]interface{}{
		"IS_STRUST_IDENTITY": map[string]interface{}{
			"PSE_CONTEXT": id.PseContext,
			"PSE_APPLIC":  id.PseApplic,
		},
	}
}

// CertificateInfo is what the server reports about a stored
// certificate. All parsing happens server side.
type CertificateInfo struct {
	Subject   string `json:"subject"`
	Issuer    string `json:"issuer"`
	SerialNo  string `json:"serial_number"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
}

// Store gives access to one PSE of the trust store.
type Store struct {
	caller   rfc.Caller
	identity Identity
}

// NewStore returns a store for the given identity calling through
// caller.
func NewStore(caller rfc.Caller, identity Identity) *Store {
	return &Store{caller: caller, identity: identity}
}

// Identity returns the identity the store works on.
func (s *Store) Identity() Identity {
	return s.identity
}

// CheckPSE verifies that the PSE exists and is usable by calling
// SSFR_PSE_CHECK.
func (s *Store) CheckPSE() error {
	result, err := s.caller.Call("SSFR_PSE_CHECK", s.identity.importParams())
	if err != nil {
		return fmt.Errorf("checking PSE %s failed: %v", s.identity, err)
	}
	if err := firstError(retMessages(result)); err != nil {
		return fmt.Errorf("PSE %s is not usable: %v", s.identity, err)
	}
	return nil
}

// PutCertificate uploads one DER encoded certificate into the PSE
// with SSFR_PUT_CERTIFICATE. The returned messages contain the
// warnings the server produced.
func (s *Store) PutCertificate(der []byte) ([]RetMessage, error) {
	params := s.identity.importParams()
	params["IV_CERTIFICATE"] = der

	result, err := s.caller.Call("SSFR_PUT_CERTIFICATE", params)
	if err != nil {
		return nil, fmt.Errorf("uploading certificate failed: %v", err)
	}
	msgs := retMessages(result)
	if err := firstError(msgs); err != nil {
		return msgs, err
	}
	return msgs, nil
}

// Certificates returns the DER encoded certificates stored in the
// PSE via SSFR_GET_CERTIFICATELIST.
func (s *Store) Certificates() ([][]byte, error) {
	result, err := s.caller.Call(
		"SSFR_GET_CERTIFICATELIST", s.identity.importParams())
	if err != nil {
		return nil, fmt.Errorf("fetching certificate list failed: %v", err)
	}
	if err := firstError(retMessages(result)); err != nil {
		return nil, err
	}
	table, _ := result["ET_CERTIFICATELIST"].([]interface{})
	var certs [][]byte
	for _, entry := range table {
		if der, ok := entry.([]byte); ok {
			certs = append(certs, der)
		}
	}
	return certs, nil
}

// ParseCertificate asks the server to decode a DER encoded
// certificate with SSFR_PARSE_CERTIFICATE.
func (s *Store) ParseCertificate(der []byte) (*CertificateInfo, error) {
	result, err := s.caller.Call("SSFR_PARSE_CERTIFICATE",
		map[string]interface{}{"IV_CERTIFICATE": der})
	if err != nil {
		return nil, fmt.Errorf("parsing certificate failed: %v", err)
	}
	if err := firstError(retMessages(result)); err != nil {
		return nil, err
	}
	return &CertificateInfo{
		Subject:   asString(result, "EV_SUBJECT"),
		Issuer:    asString(result, "EV_ISSUER"),
		SerialNo:  asString(result, "EV_SERIALNO"),
		ValidFrom: asString(result, "EV_VALIDFROM"),
		ValidTo:   asString(result, "EV_VALIDTO"),
	}, nil
}
