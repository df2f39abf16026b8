// aviation/callsign.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"regexp"
	"strings"
)

// Abbr returns the abbreviated form of a call sign: the aircraft type
// followed by the last three characters of the N-number ("Skyhawk 12345"
// -> "Skyhawk 345").
func Abbr(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return full
	}
	last := parts[len(parts)-1]
	if len(last) > 3 {
		last = last[len(last)-3:]
	}
	return parts[0] + " " + last
}

// Short returns just the last three characters of the N-number, used for
// calls after ATC has acknowledged the full call sign.
func Short(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return full
	}
	last := parts[len(parts)-1]
	if len(last) > 3 {
		last = last[len(last)-3:]
	}
	return last
}

var templateVarRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// SubVars substitutes {{Var}} tokens in the given call text. Unknown
// variables are left in place so the pilot can see what's missing;
// [placeholder] tokens are never touched.
func SubVars(text string, vars map[string]string) string {
	return templateVarRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-2]
		if v, ok := vars[name]; ok && v != "" {
			return v
		}
		return m
	})
}
