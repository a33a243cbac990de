// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package options handles command line flags and TOML config files
// for the strust tools.
package options

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/go-homedir"

	"github.com/strust-tools/strust/util"
)

// Parser combines go-flags command line parsing with an optional
// TOML config file. Flags given on the command line win over
// values loaded from file.
type Parser[C any] struct {
	// DefaultConfigLocations are tried in order if no config file
	// was named on the command line. Entries may start with '~'.
	DefaultConfigLocations []string
	// Usage is the usage line shown in the help output.
	Usage string

	// SetDefaults pre-fills a configuration before parsing.
	SetDefaults func(*C)
	// EnsureDefaults re-establishes defaults a config file may
	// have left unset.
	EnsureDefaults func(*C)
	// HasVersion reports whether the version flag was given.
	HasVersion func(*C) bool
	// ConfigLocation returns the config file named on the command
	// line, if any.
	ConfigLocation func(*C) string
}

// Parse parses os.Args.
func (p *Parser[C]) Parse() ([]string, *C, error) {
	return p.ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments and, if one was configured,
// the config file. Returns the positional arguments and the
// resulting configuration.
func (p *Parser[C]) ParseArgs(args []string) ([]string, *C, error) {

	var cfg C
	if p.SetDefaults != nil {
		p.SetDefaults(&cfg)
	}

	rest, err := p.parseFlags(&cfg, args)
	if err != nil {
		return nil, nil, err
	}

	if p.HasVersion != nil && p.HasVersion(&cfg) {
		fmt.Println(util.SemVersion)
		os.Exit(0)
	}

	var path string
	if p.ConfigLocation != nil {
		path = p.ConfigLocation(&cfg)
	}
	if path == "" {
		path = findConfigFile(p.DefaultConfigLocations)
	}
	if path == "" {
		// No config file, the command line is all we have.
		return rest, &cfg, nil
	}

	if path, err = homedir.Expand(path); err != nil {
		return nil, nil, err
	}

	var fileCfg C
	if err := loadTOML(&fileCfg, path); err != nil {
		return nil, nil, err
	}

	// A second flag pass over the loaded file config lets
	// explicit command line flags overwrite file values.
	if rest, err = p.parseFlags(&fileCfg, args); err != nil {
		return nil, nil, err
	}

	if p.EnsureDefaults != nil {
		p.EnsureDefaults(&fileCfg)
	}

	return rest, &fileCfg, nil
}

// parseFlags runs go-flags over args, filling cfg.
func (p *Parser[C]) parseFlags(cfg *C, args []string) ([]string, error) {
	parser := flags.NewParser(cfg, flags.Default)
	if p.Usage != "" {
		parser.Usage = p.Usage
	}
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, err
	}
	return rest, nil
}

// findConfigFile returns the first existing file from locations,
// the empty string if none exists.
func findConfigFile(locations []string) string {
	for _, loc := range locations {
		name, err := homedir.Expand(loc)
		if err != nil {
			log.Printf("warn: %v\n", err)
			continue
		}
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadTOML fills cfg from the TOML file at path. Keys the config
// struct does not know are rejected.
func loadTOML(cfg any, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return fmt.Errorf("could not parse %q from %q", undecoded, path)
	}
	return nil
}

// ErrorCheck terminates the program if err is not nil.
func ErrorCheck(err error) {
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
}
