// sheet/render.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import (
	"fmt"
	"strings"

	"commsheet/aviation"
	"commsheet/library"
)

var typeTags = map[library.CallType]string{
	library.CallRadio: "RADIO",
	library.CallATC:   "ATC  ",
	library.CallNote:  "NOTE ",
	library.CallBrief: "BRIEF",
}

// RenderText formats the sheet as plain text: a route header, then each
// visible block with its context and target, then its visible calls with
// template variables substituted. Collapsed blocks show the header only.
func RenderText(sh *Sheet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "COMM SHEET  %s  %s", sh.CallSign, strings.ToUpper(string(sh.FlightRules)))
	var ids []string
	for _, s := range sh.Route {
		if s.Airport != nil {
			ids = append(ids, s.Airport.ID)
		}
	}
	if len(ids) > 0 {
		fmt.Fprintf(&sb, "  %s", strings.Join(ids, " -> "))
	}
	sb.WriteString("\n")

	callVars := map[string]string{
		"CS_Full": sh.CallSign,
		"CS_Abbr": aviation.Abbr(sh.CallSign),
	}

	for _, b := range sh.Blocks {
		if sh.HiddenBlocks[b.Key] {
			continue
		}
		calls := sh.BlockCalls(b.Key)

		sb.WriteString("\n")
		header := strings.ToUpper(b.Name)
		if b.ContextLabel != "" {
			header += " " + b.ContextLabel
		}
		if b.Target != "" {
			header += "  [" + b.Target + "]"
		}
		sb.WriteString(header + "\n")
		if sh.Collapsed[b.Key] {
			fmt.Fprintf(&sb, "    (%d calls collapsed)\n", len(calls))
			continue
		}

		vars := callVars
		if len(b.Vars) > 0 {
			vars = make(map[string]string, len(b.Vars)+2)
			for k, v := range b.Vars {
				vars[k] = v
			}
			vars["CS_Full"] = sh.CallSign
			vars["CS_Abbr"] = aviation.Abbr(sh.CallSign)
		}

		prevGroup := ""
		for i, c := range calls {
			if sh.Hidden[c.Instance] {
				continue
			}
			// A blank line between groups; grouped calls stay tight.
			if i > 0 && (c.Group == "" || c.Group != prevGroup) {
				sb.WriteString("\n")
			}
			prevGroup = c.Group

			tag := typeTags[c.Type]
			if tag == "" {
				tag = strings.ToUpper(string(c.Type))
			}
			fmt.Fprintf(&sb, "    [%s] %s\n", tag, aviation.SubVars(c.Text, vars))
		}
	}
	return sb.String()
}
