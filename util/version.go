// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package util contains small helpers shared by the tools.
package util

// SemVersion is the semantic version of the tools.
// It is intended to be overwritten at build time:
//
//	go build -ldflags "-X github.com/strust-tools/strust/util.SemVersion=$(git describe --tags)"
var SemVersion = "0.1.0"
