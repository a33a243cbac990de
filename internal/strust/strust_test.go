// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package strust

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// fakeCaller returns canned results per function module and records
// the calls.
type fakeCaller struct {
	results map[string]map[string]interface{}
	errs    map[string]error
	calls   []call
}

type call struct {
	function string
	params   map[string]interface{}
}

func (fc *fakeCaller) Call(function string, params interface{}) (map[string]interface{}, error) {
	p, _ := params.(map[string]interface{})
	fc.calls = append(fc.calls, call{function: function, params: p})
	if err := fc.errs[function]; err != nil {
		return nil, err
	}
	return fc.results[function], nil
}

func TestIdentityByName(t *testing.T) {
	for _, x := range []struct {
		name    string
		context string
		applic  string
	}{
		{"server_standard", "SSLS", "DFAULT"},
		{"client_standard", "SSLC", "DFAULT"},
		{"client_anonymous", "SSLC", "ANONYM"},
	} {
		id, ok := IdentityByName(x.name)
		if !ok {
			t.Fatalf("%q not found", x.name)
		}
		if id.PseContext != x.context || id.PseApplic != x.applic {
			t.Fatalf("%q: got %s expected %s/%s",
				x.name, id, x.context, x.applic)
		}
	}
	if _, ok := IdentityByName("nope"); ok {
		t.Fatal(`"nope" should not resolve`)
	}
	want := []string{"client_anonymous", "client_standard", "server_standard"}
	if got := IdentityNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v expected %v", got, want)
	}
}

func TestCheckPSE(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PSE_CHECK": {},
		},
	}
	id, _ := IdentityByName("client_standard")
	store := NewStore(fc, id)

	if err := store.CheckPSE(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(fc.calls) != 1 || fc.calls[0].function != "SSFR_PSE_CHECK" {
		t.Fatalf("unexpected calls: %+v", fc.calls)
	}
	identity, ok := fc.calls[0].params["IS_STRUST_IDENTITY"].(map[string]interface{})
	if !ok {
		t.Fatal("IS_STRUST_IDENTITY not passed")
	}
	if identity["PSE_CONTEXT"] != "SSLC" || identity["PSE_APPLIC"] != "DFAULT" {
		t.Fatalf("wrong identity: %v", identity)
	}
}

func TestCheckPSEMissing(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PSE_CHECK": bapiret(map[string]interface{}{
				"TYPE": "E", "ID": "SSFR", "NUMBER": "031",
				"MESSAGE": "PSE does not exist",
			}),
		},
	}
	store := NewStore(fc, Identity{PseContext: "SSLS", PseApplic: "DFAULT"})
	if err := store.CheckPSE(); err == nil {
		t.Fatal("a missing PSE should be an error")
	}
}

func TestPutCertificate(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PUT_CERTIFICATE": bapiret(map[string]interface{}{
				"TYPE": "W", "ID": "SSFR", "NUMBER": "004",
				"MESSAGE": "Certificate already exists",
			}),
		},
	}
	store := NewStore(fc, Identity{PseContext: "SSLC", PseApplic: "ANONYM"})

	der := []byte{0x30, 0x82, 0x01, 0x0a}
	msgs, err := store.PutCertificate(der)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if len(msgs) != 1 || !msgs[0].IsWarning() {
		t.Fatalf("warnings not passed on: %+v", msgs)
	}
	got, ok := fc.calls[0].params["IV_CERTIFICATE"].([]byte)
	if !ok || !bytes.Equal(got, der) {
		t.Fatalf("IV_CERTIFICATE not passed: %v", fc.calls[0].params)
	}
}

func TestPutCertificateError(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PUT_CERTIFICATE": bapiret(map[string]interface{}{
				"TYPE": "E", "ID": "SSFR", "NUMBER": "022",
				"MESSAGE": "Invalid certificate",
			}),
		},
	}
	store := NewStore(fc, Identity{PseContext: "SSLC", PseApplic: "DFAULT"})
	if _, err := store.PutCertificate([]byte{0x30}); err == nil {
		t.Fatal("an E message should be an error")
	}

	fc.errs = map[string]error{
		"SSFR_PUT_CERTIFICATE": errors.New("connection broken"),
	}
	if _, err := store.PutCertificate([]byte{0x30}); err == nil {
		t.Fatal("a call error should be passed on")
	}
}

func TestCertificates(t *testing.T) {
	one := []byte{0x30, 0x01}
	two := []byte{0x30, 0x02}
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_GET_CERTIFICATELIST": {
				"ET_CERTIFICATELIST": []interface{}{one, two},
			},
		},
	}
	store := NewStore(fc, Identity{PseContext: "SSLS", PseApplic: "DFAULT"})
	certs, err := store.Certificates()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(certs) != 2 || !bytes.Equal(certs[0], one) || !bytes.Equal(certs[1], two) {
		t.Fatalf("unexpected certificates: %v", certs)
	}
}

func TestParseCertificate(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PARSE_CERTIFICATE": {
				"EV_SUBJECT":   "CN=peer.example.com",
				"EV_ISSUER":    "CN=Example CA",
				"EV_SERIALNO":  "4711",
				"EV_VALIDFROM": "20240101000000",
				"EV_VALIDTO":   "20260101000000",
			},
		},
	}
	store := NewStore(fc, Identity{PseContext: "SSLC", PseApplic: "DFAULT"})
	info, err := store.ParseCertificate([]byte{0x30})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := CertificateInfo{
		Subject:   "CN=peer.example.com",
		Issuer:    "CN=Example CA",
		SerialNo:  "4711",
		ValidFrom: "20240101000000",
		ValidTo:   "20260101000000",
	}
	if *info != want {
		t.Fatalf("got %+v expected %+v", *info, want)
	}
}
