// library/normalize.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package library

import (
	"regexp"

	"commsheet/util"
)

// The dataset file uses its own field names, enum values, and template
// variable vocabulary; everything is remapped 1:1 into the engine's
// vocabulary at load time so the rest of the code never sees the raw
// names.

type rawCall struct {
	CallID          string   `json:"call_id"`
	Block           string   `json:"block"`
	Group           string   `json:"group"`
	Sequence        float64  `json:"sequence"`
	CommType        string   `json:"comm_type"`
	Text            string   `json:"text"`
	AppliesTo       []string `json:"applies_to"`
	ExpandPerRunway bool     `json:"expand_per_runway"`
}

var appliesMap = map[string]string{
	"vfr_nontowered": VFRNonTowered,
	"vfr_towered":    VFRTowered,
	"ifr_nontowered": IFRNonTowered,
	"ifr_towered":    IFRTowered,
}

var typeMap = map[string]CallType{
	"atc_response": CallATC,
	"ics":          CallNote,
	"radio":        CallRadio,
	"note":         CallNote,
	"brief":        CallBrief,
}

var varMap = map[string]string{
	"Call_Sign_Full":         "CS_Full",
	"Call_Sign_Abbr":         "CS_Abbr",
	"Stop1_Airport_Name":     "Dep_Name",
	"Stop1_Airport_Abridged": "Dep_Abridged",
	"Stop1_Airport_Traffic":  "Dep_Traffic",
	"Stop2_Airport_Name":     "Arr_Name",
	"Stop2_Airport_Abridged": "Arr_Abridged",
	"Stop2_Airport_Traffic":  "Arr_Traffic",
}

var datasetVarRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// cleanText remaps dataset-native {{Var}} names to the engine's variable
// names, leaving unknown variables untouched.
func cleanText(text string) string {
	return datasetVarRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-2]
		if mapped, ok := varMap[name]; ok {
			return "{{" + mapped + "}}"
		}
		return m
	})
}

func normalizeCall(raw rawCall) MasterCall {
	typ, ok := typeMap[raw.CommType]
	if !ok {
		typ = CallType(raw.CommType)
	}
	return MasterCall{
		ID:    raw.CallID,
		Block: raw.Block,
		Group: raw.Group,
		Seq:   raw.Sequence,
		Type:  typ,
		Text:  cleanText(raw.Text),
		Applies: util.MapSlice(raw.AppliesTo, func(a string) string {
			if mapped, ok := appliesMap[a]; ok {
				return mapped
			}
			return a
		}),
		ExpandPerRunway: raw.ExpandPerRunway,
	}
}
