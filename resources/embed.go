// resources/embed.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package resources bundles the static datasets: the master radio-call
// library and the airport directory.
package resources

import "embed"

//go:embed *.json
var FS embed.FS
