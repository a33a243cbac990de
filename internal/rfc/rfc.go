// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

// Package rfc handles the RFC connection to an SAP application server.
// The wire protocol is owned entirely by the NetWeaver RFC SDK via
// the gorfc binding; this package only builds connection parameters
// and gives the tools a narrow call surface.
package rfc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sap/gorfc/gorfc"
)

// Caller abstracts calling a remote enabled function module.
// It is the RFC counterpart of abstracting http.Client: the tools
// and their tests only ever see this interface.
type Caller interface {
	Call(function string, params interface{}) (map[string]interface{}, error)
}

// Params describes how to reach an application server. Either Dest
// names an entry in sapnwrfc.ini, or the server is addressed
// directly (Ashost/Sysnr) or through a message server
// (Mshost/Msserv/Sysid/Group).
type Params struct {
	Dest string

	Ashost string
	Sysnr  string

	Mshost string
	Msserv string
	Sysid  string
	Group  string

	Client    string
	User      string
	Passwd    string
	Lang      string
	Saprouter string
	Trace     bool
}

// Validate checks that the parameters describe exactly one way to
// reach a server.
func (p *Params) Validate() error {
	direct := p.Ashost != "" || p.Mshost != ""
	switch {
	case p.Dest != "" && direct:
		return errors.New(
			"dest and explicit host parameters are mutually exclusive")
	case p.Dest == "" && !direct:
		return errors.New(
			"one of dest, ashost or mshost must be given")
	case p.Ashost != "" && p.Mshost != "":
		return errors.New(
			"ashost and mshost are mutually exclusive")
	}
	if p.Dest == "" {
		if p.User == "" {
			return errors.New("user must be given")
		}
		if p.Client == "" {
			return errors.New("client must be given")
		}
	}
	return nil
}

// connectionParameter maps Params onto the SDK parameter set.
func (p *Params) connectionParameter() gorfc.ConnectionParameter {
	trace := "0"
	if p.Trace {
		trace = "3"
	}
	return gorfc.ConnectionParameter{
		Dest:      p.Dest,
		Ashost:    p.Ashost,
		Sysnr:     p.Sysnr,
		Mshost:    p.Mshost,
		Msserv:    p.Msserv,
		Sysid:     p.Sysid,
		Group:     p.Group,
		Client:    p.Client,
		User:      p.User,
		Passwd:    p.Passwd,
		Lang:      p.Lang,
		Saprouter: p.Saprouter,
		Trace:     trace,
	}
}

// Connection is an open RFC connection.
type Connection struct {
	conn *gorfc.Connection
}

// Connect opens a connection to the application server described
// by params.
func Connect(params *Params) (*Connection, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	conn, err := gorfc.ConnectionFromParams(params.connectionParameter())
	if err != nil {
		return nil, fmt.Errorf("connecting failed: %v", err)
	}
	return &Connection{conn: conn}, nil
}

// Call implements the [Caller] interface.
func (c *Connection) Call(function string, params interface{}) (map[string]interface{}, error) {
	return c.conn.Call(function, params)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// LogAttributes logs the attributes of the established connection.
func (c *Connection) LogAttributes() {
	attrs, err := c.conn.GetConnectionAttributes()
	if err != nil {
		slog.Warn("Could not fetch connection attributes", "err", err)
		return
	}
	slog.Info("Connected",
		"sysid", attrs.SysId,
		"host", attrs.PartnerHost,
		"release", attrs.PartnerRel)
}

// LoggingCaller is a Caller that logs the called function modules.
type LoggingCaller struct {
	Caller
}

// Call implements the respective method of the [Caller] interface.
func (lc *LoggingCaller) Call(function string, params interface{}) (map[string]interface{}, error) {
	slog.Debug("Calling function module", "function", function)
	result, err := lc.Caller.Call(function, params)
	if err != nil {
		slog.Debug("Function module failed", "function", function, "err", err)
	}
	return result, err
}
