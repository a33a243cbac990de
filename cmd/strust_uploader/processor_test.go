// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package main

import (
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strust-tools/strust/internal/strust"
)

// fakeCaller serves canned results per function module and counts
// the calls.
type fakeCaller struct {
	results map[string]map[string]interface{}
	calls   map[string]int
}

func (fc *fakeCaller) Call(function string, params interface{}) (map[string]interface{}, error) {
	if fc.calls == nil {
		fc.calls = map[string]int{}
	}
	fc.calls[function]++
	return fc.results[function], nil
}

func testConfig() *config {
	cfg := &config{Identity: defaultIdentity}
	if err := cfg.prepareIdentity(); err != nil {
		panic(err)
	}
	return cfg
}

func writeCertFile(t *testing.T, name string, blocks int) string {
	t.Helper()
	var data []byte
	for i := 0; i < blocks; i++ {
		data = append(data, pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: []byte{0x30, 0x82, byte(i)},
		})...)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunUploads(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PSE_CHECK":       {},
			"SSFR_PUT_CERTIFICATE": {},
		},
	}
	p := &processor{cfg: testConfig(), caller: fc}

	chain := writeCertFile(t, "chain.pem", 2)
	single := writeCertFile(t, "peer.pem", 1)

	if err := p.run([]string{chain, single}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if fc.calls["SSFR_PSE_CHECK"] != 1 {
		t.Fatalf("got %d PSE checks expected 1", fc.calls["SSFR_PSE_CHECK"])
	}
	if fc.calls["SSFR_PUT_CERTIFICATE"] != 3 {
		t.Fatalf("got %d uploads expected 3", fc.calls["SSFR_PUT_CERTIFICATE"])
	}
}

func TestRunReportsPerFile(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PSE_CHECK":       {},
			"SSFR_PUT_CERTIFICATE": {},
		},
	}
	p := &processor{cfg: testConfig(), caller: fc}

	good := writeCertFile(t, "peer.pem", 1)
	missing := filepath.Join(t.TempDir(), "missing.pem")

	err := p.run([]string{good, missing})
	if err == nil {
		t.Fatal("a failing file should fail the run")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("summary should count the failed file: %v", err)
	}
	// The good file must still have been uploaded.
	if fc.calls["SSFR_PUT_CERTIFICATE"] != 1 {
		t.Fatalf("got %d uploads expected 1", fc.calls["SSFR_PUT_CERTIFICATE"])
	}
}

func TestRunChecksPSEFirst(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PSE_CHECK": {
				"ET_BAPIRET2": []interface{}{
					map[string]interface{}{
						"TYPE": "E", "ID": "SSFR", "NUMBER": "031",
						"MESSAGE": "PSE does not exist",
					},
				},
			},
		},
	}
	p := &processor{cfg: testConfig(), caller: fc}

	file := writeCertFile(t, "peer.pem", 1)
	if err := p.run([]string{file}); err == nil {
		t.Fatal("a broken PSE should abort the run")
	}
	if fc.calls["SSFR_PUT_CERTIFICATE"] != 0 {
		t.Fatal("nothing must be uploaded into a broken PSE")
	}
}

func TestProcessFailedUpload(t *testing.T) {
	fc := &fakeCaller{
		results: map[string]map[string]interface{}{
			"SSFR_PUT_CERTIFICATE": {
				"ET_BAPIRET2": []interface{}{
					map[string]interface{}{
						"TYPE": "E", "ID": "SSFR", "NUMBER": "022",
						"MESSAGE": "Invalid certificate",
					},
				},
			},
		},
	}
	cfg := testConfig()
	p := &processor{cfg: cfg, caller: fc}
	store := strust.NewStore(fc, cfg.identity)

	file := writeCertFile(t, "bad.pem", 1)
	if err := p.process(store, file); err == nil {
		t.Fatal("a rejected certificate should fail the file")
	}
}
