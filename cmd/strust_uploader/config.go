// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/strust-tools/strust/internal/options"
	"github.com/strust-tools/strust/internal/rfc"
	"github.com/strust-tools/strust/internal/strust"
)

const (
	defaultSysnr    = "00"
	defaultLang     = "EN"
	defaultIdentity = "client_standard"
)

// The supported flag config of the uploader command line.
type config struct {
	Dest   string `short:"d" long:"dest" description:"Destination from sapnwrfc.ini to connect to" value-name:"DEST" toml:"dest"`
	Ashost string `long:"ashost" description:"HOST name of the application server" value-name:"HOST" toml:"ashost"`
	Sysnr  string `long:"sysnr" description:"System NUMber of the application server" value-name:"NUM" toml:"sysnr"`
	Mshost string `long:"mshost" description:"HOST name of the message server" value-name:"HOST" toml:"mshost"`
	Msserv string `long:"msserv" description:"SERVice or port of the message server" value-name:"SERV" toml:"msserv"`
	Sysid  string `long:"sysid" description:"System ID of the system to connect to" value-name:"SID" toml:"sysid"`
	Group  string `long:"group" description:"Logon GROUP of the message server" value-name:"GROUP" toml:"group"`

	Client    string  `long:"client" description:"SAP CLIENT to log on to" value-name:"CLIENT" toml:"client"`
	User      string  `short:"u" long:"user" description:"USER to log on with" value-name:"USER" toml:"user"`
	Password  *string `short:"p" long:"password" description:"PASSWORD to log on with" value-name:"PASSWORD" toml:"password"`
	Lang      string  `long:"lang" description:"Logon LANGuage" value-name:"LANG" toml:"lang"`
	Saprouter string  `long:"saprouter" description:"SAProuter ROUTE string" value-name:"ROUTE" toml:"saprouter"`
	Trace     bool    `long:"trace" description:"Enable the RFC SDK trace" toml:"trace"`

	//lint:ignore SA5008 We are using choice three times: server_standard, client_standard, client_anonymous.
	Identity   string  `short:"t" long:"identity" choice:"server_standard" choice:"client_standard" choice:"client_anonymous" description:"Named PSE identity to upload into" toml:"identity"`
	PseContext *string `long:"pse-context" description:"Explicit SSF CONTEXT of the PSE" value-name:"CONTEXT" toml:"pse_context"`
	PseApplic  *string `long:"pse-applic" description:"Explicit SSF APPLICation of the PSE" value-name:"APPLIC" toml:"pse_applic"`

	PasswordInteractive bool `short:"i" long:"password-interactive" description:"Enter the logon password interactively" toml:"password_interactive"`

	LogLevel *options.LogLevel `long:"loglevel" description:"LEVEL of logging details" value-name:"LEVEL" toml:"loglevel"`

	Config  string `short:"c" long:"config" description:"Path to config TOML file" value-name:"TOML-FILE" toml:"-"`
	Version bool   `long:"version" description:"Display version of the binary" toml:"-"`

	identity strust.Identity
}

// configPaths are the potential file locations of the config file.
var configPaths = []string{
	"~/.config/strust/uploader.toml",
	"~/.strust_uploader.toml",
	"strust_uploader.toml",
}

// parseArgsConfig parses the command line and if needed a config file.
func parseArgsConfig(args []string) ([]string, *config, error) {
	p := options.Parser[config]{
		DefaultConfigLocations: configPaths,
		ConfigLocation:         func(cfg *config) string { return cfg.Config },
		Usage:                  "[OPTIONS] certificates...",
		HasVersion:             func(cfg *config) bool { return cfg.Version },
		SetDefaults: func(cfg *config) {
			cfg.Sysnr = defaultSysnr
			cfg.Lang = defaultLang
			cfg.Identity = defaultIdentity
		},
		// Re-establish default values if not set.
		EnsureDefaults: func(cfg *config) {
			if cfg.Sysnr == "" {
				cfg.Sysnr = defaultSysnr
			}
			if cfg.Lang == "" {
				cfg.Lang = defaultLang
			}
			if cfg.Identity == "" {
				cfg.Identity = defaultIdentity
			}
		},
	}
	return p.ParseArgs(args)
}

// connection assembles the RFC connection parameters.
func (cfg *config) connection() *rfc.Params {
	var passwd string
	if cfg.Password != nil {
		passwd = *cfg.Password
	}
	return &rfc.Params{
		Dest:      cfg.Dest,
		Ashost:    cfg.Ashost,
		Sysnr:     cfg.Sysnr,
		Mshost:    cfg.Mshost,
		Msserv:    cfg.Msserv,
		Sysid:     cfg.Sysid,
		Group:     cfg.Group,
		Client:    cfg.Client,
		User:      cfg.User,
		Passwd:    passwd,
		Lang:      cfg.Lang,
		Saprouter: cfg.Saprouter,
		Trace:     cfg.Trace,
	}
}

// prepareLogging initializes the logging.
func (cfg *config) prepareLogging() error {
	level := slog.LevelInfo
	if cfg.LogLevel != nil {
		level = cfg.LogLevel.Level
	}
	options.InitLogging(level)
	return nil
}

// readInteractive prints a prompt and reads a password from the terminal.
func readInteractive(prompt string, pw **string) error {
	fmt.Print(prompt)
	p, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}
	ps := string(p)
	*pw = &ps
	return nil
}

// prepareInteractive prompts for the logon password.
func (cfg *config) prepareInteractive() error {
	if cfg.PasswordInteractive {
		return readInteractive("Enter logon password: ", &cfg.Password)
	}
	return nil
}

// prepareIdentity resolves the PSE identity to upload into.
func (cfg *config) prepareIdentity() error {
	switch hasContext, hasApplic := cfg.PseContext != nil, cfg.PseApplic != nil; {
	case hasContext != hasApplic:
		return errors.New(
			"pse-context and pse-applic must be given together")
	case hasContext:
		cfg.identity = strust.Identity{
			PseContext: *cfg.PseContext,
			PseApplic:  *cfg.PseApplic,
		}
		return nil
	}
	id, ok := strust.IdentityByName(cfg.Identity)
	if !ok {
		return fmt.Errorf("unknown identity %q", cfg.Identity)
	}
	cfg.identity = id
	return nil
}

// prepareConnection validates the connection parameters early so
// that broken configs fail before any file is touched.
func (cfg *config) prepareConnection() error {
	return cfg.connection().Validate()
}

// prepare prepares internal state of a loaded configuration.
func (cfg *config) prepare() error {
	for _, prepare := range []func(*config) error{
		(*config).prepareLogging,
		(*config).prepareInteractive,
		(*config).prepareIdentity,
		(*config).prepareConnection,
	} {
		if err := prepare(cfg); err != nil {
			return err
		}
	}
	return nil
}
