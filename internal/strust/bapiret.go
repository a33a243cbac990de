// This file is Free Software under the Apache-2.0 License
// without warranty, see README.md and LICENSES/Apache-2.0.txt for details.
//
// SPDX-License-Identifier: Apache-2.0
//
// SPDX-FileCopyrightText: 2024 The strust-tools authors

package strust

import (
	"fmt"
	"strings"
)

// RetMessage is one BAPIRET2 message returned by the SSFR function
// modules.
type RetMessage struct {
	Type    string
	ID      string
	Number  string
	Message string
}

// IsError reports whether the message is an error ('E') or an
// abort ('A').
func (m *RetMessage) IsError() bool {
	return m.Type == "E" || m.Type == "A"
}

// IsWarning reports whether the message is a warning.
func (m *RetMessage) IsWarning() bool {
	return m.Type == "W"
}

// String implements [fmt.Stringer].
func (m *RetMessage) String() string {
	var b strings.Builder
	b.WriteString(m.Type)
	if m.ID != "" {
		fmt.Fprintf(&b, " %s(%s)", m.ID, m.Number)
	}
	if m.Message != "" {
		b.WriteString(": ")
		b.WriteString(m.Message)
	}
	return b.String()
}

// retMessages extracts the ET_BAPIRET2 table from a call result.
// A missing or empty table yields nil.
func retMessages(result map[string]interface{}) []RetMessage {
	table, ok := result["ET_BAPIRET2"].([]interface{})
	if !ok {
		return nil
	}
	var msgs []RetMessage
	for _, entry := range table {
		row, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		msgs = append(msgs, RetMessage{
			Type:    asString(row, "TYPE"),
			ID:      asString(row, "ID"),
			Number:  asString(row, "NUMBER"),
			Message: asString(row, "MESSAGE"),
		})
	}
	return msgs
}

// firstError returns an error for the first E/A message, nil if
// there is none.
func firstError(msgs []RetMessage) error {
	for i := range msgs {
		if msgs[i].IsError() {
			return &msgs[i]
		}
	}
	return nil
}

// Error implements the error interface so an error message can be
// passed upwards as-is.
func (m *RetMessage) Error() string {
	return m.String()
}

func asString(row map[string]interface{}, key string) string {
	s, _ := row[key].(string)
	return strings.TrimSpace(s)
}
