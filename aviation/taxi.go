// aviation/taxi.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"regexp"
	"strings"
)

// Phonetic maps taxiway letters to the ICAO spelling alphabet.
var Phonetic = map[string]string{
	"a": "Alpha", "b": "Bravo", "c": "Charlie", "d": "Delta", "e": "Echo",
	"f": "Foxtrot", "g": "Golf", "h": "Hotel", "i": "India", "j": "Juliet",
	"k": "Kilo", "l": "Lima", "m": "Mike", "n": "November", "o": "Oscar",
	"p": "Papa", "q": "Quebec", "r": "Romeo", "s": "Sierra", "t": "Tango",
	"u": "Uniform", "v": "Victor", "w": "Whiskey", "x": "X-ray",
	"y": "Yankee", "z": "Zulu",
}

// phoneticWords canonicalizes already spelled-out letters ("alpha" ->
// "Alpha", "x-ray" -> "X-ray").
var phoneticWords = func() map[string]string {
	m := make(map[string]string, len(Phonetic))
	for _, v := range Phonetic {
		m[strings.ToLower(v)] = v
	}
	return m
}()

var runwayRe = regexp.MustCompile(`^\d{1,2}[lrcLRC]?$`)

// phonetic resolves a token that is either a single taxiway letter or an
// already spelled-out word.
func phonetic(token string) (string, bool) {
	if w, ok := Phonetic[token]; ok {
		return w, true
	}
	if w, ok := phoneticWords[token]; ok {
		return w, true
	}
	return "", false
}

// ParseTaxiRoute expands taxi-route shorthand ("a b via 17l, hold short
// 35") into readback phraseology: taxiway letters become spelling-alphabet
// words, runway designators are uppercased, "hold short" and "cross" get
// their runway/taxiway qualifier, and filler words (via, to, then, and)
// drop out. The abbreviated call sign, if given, is appended the way a
// readback ends. Unrecognized tokens pass through untouched.
func ParseTaxiRoute(input, callSignAbbr string) string {
	tokens := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(input)), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})

	var result []string
	for i := 0; i < len(tokens); {
		token := tokens[i]
		var next string
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}

		switch {
		case token == "back" && next == "taxi":
			result = append(result, "back taxi")
			i += 2

		case token == "hold" && next == "short":
			i += 2
			if i < len(tokens) {
				target := tokens[i]
				if runwayRe.MatchString(target) {
					result = append(result, "hold short runway "+strings.ToUpper(target))
				} else if w, ok := phonetic(target); ok {
					result = append(result, "hold short taxiway "+w)
				} else {
					result = append(result, "hold short "+target)
				}
				i++
			}

		case token == "cross" || token == "crossing":
			i++
			if i < len(tokens) && runwayRe.MatchString(tokens[i]) {
				result = append(result, "cross runway "+strings.ToUpper(tokens[i]))
				i++
			}

		default:
			if w, ok := phonetic(token); ok {
				result = append(result, w)
			} else if runwayRe.MatchString(token) {
				result = append(result, strings.ToUpper(token))
			} else if token == "via" || token == "to" || token == "then" || token == "and" {
				// filler, dropped
			} else {
				result = append(result, token)
			}
			i++
		}
	}

	if len(result) == 0 {
		return ""
	}
	formatted := strings.Join(result, ", ")
	if callSignAbbr != "" {
		formatted += ", " + callSignAbbr
	}
	return formatted
}
