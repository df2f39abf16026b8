// library/blocks.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package library

// BlockDef is the static definition of a flight phase: its display name
// and which communication target it uses at towered and non-towered
// fields. An empty target means the block doesn't apply at that kind of
// field (e.g. clearance delivery at a non-towered airport).
type BlockDef struct {
	Name             string `json:"name"`
	TargetTowered    string `json:"targetTowered,omitempty"`
	TargetNonTowered string `json:"targetNonTowered,omitempty"`
}

// Target returns the block's communication target for the given towered
// status.
func (b BlockDef) Target(towered bool) string {
	if towered {
		return b.TargetTowered
	}
	return b.TargetNonTowered
}

var Blocks = map[string]BlockDef{
	"startup":            {Name: "Startup", TargetNonTowered: "CTAF/UNICOM", TargetTowered: "ATIS"},
	"clearance_delivery": {Name: "Clearance Delivery", TargetTowered: "Clearance Delivery"},
	"taxi_out":           {Name: "Taxi Out", TargetNonTowered: "CTAF", TargetTowered: "Ground"},
	"runup":              {Name: "Run-Up", TargetNonTowered: "Self", TargetTowered: "Self"},
	"takeoff":            {Name: "Takeoff", TargetNonTowered: "CTAF", TargetTowered: "Tower"},
	"departure":          {Name: "Departure", TargetNonTowered: "CTAF", TargetTowered: "Tower/Departure"},
	"climbout":           {Name: "Climbout", TargetNonTowered: "CTAF", TargetTowered: "Tower/Departure"},
	"enroute":            {Name: "Enroute", TargetNonTowered: "Center/Approach", TargetTowered: "Center/Approach"},
	"holding":            {Name: "Holding", TargetNonTowered: "Center/Approach", TargetTowered: "Center/Approach"},
	"descent":            {Name: "Descent/Arrival", TargetNonTowered: "CTAF", TargetTowered: "Approach/ATIS"},
	"pattern":            {Name: "Traffic Pattern", TargetNonTowered: "CTAF", TargetTowered: "Tower"},
	"approach":           {Name: "Approach", TargetNonTowered: "CTAF", TargetTowered: "Approach"},
	"landing":            {Name: "Landing", TargetNonTowered: "CTAF", TargetTowered: "Tower"},
	"taxi_in":            {Name: "Taxi In", TargetNonTowered: "CTAF", TargetTowered: "Ground"},
	"shutdown":           {Name: "Shutdown", TargetNonTowered: "CTAF", TargetTowered: "Ground"},
	"emergency":          {Name: "Emergency", TargetNonTowered: "121.5/Current", TargetTowered: "121.5/Current"},
}

// BlockOrder is the natural display order of the default blocks, used
// whenever no BlockSequenceOverride applies.
var BlockOrder = []string{
	"startup", "clearance_delivery", "taxi_out", "runup", "takeoff", "departure", "climbout",
	"enroute", "holding", "descent", "pattern", "approach", "landing", "taxi_in",
	"shutdown", "emergency",
}

// Block-type sequences selected during route expansion. Departure blocks
// key off the departure airport's tower status, arrival blocks off the
// arrival airport's.
var (
	DepartureBlocks = []string{"startup", "clearance_delivery", "taxi_out", "runup", "takeoff", "departure", "climbout"}
	ArrivalBlocks   = []string{"descent", "pattern", "approach", "landing", "taxi_in", "shutdown"}
	EnrouteBlocks   = []string{"enroute", "holding"}
	EmergencyBlocks = []string{"emergency"}
)

// Shortened sub-sequences for intermediate stops.
var (
	// After a touch-and-go or stop-and-go the aircraft is already rolling.
	rollingDepartureBlocks = []string{"departure", "climbout"}
	// A full stop or taxi-back re-runs the ground phases.
	fullStopDepartureBlocks = []string{"taxi_out", "takeoff", "departure", "climbout"}
	// Any intermediate arrival skips taxi-in and shutdown.
	intermediateArrivalBlocks = []string{"descent", "pattern", "approach", "landing"}
)

func RollingDepartureBlocks() []string    { return rollingDepartureBlocks }
func FullStopDepartureBlocks() []string   { return fullStopDepartureBlocks }
func IntermediateArrivalBlocks() []string { return intermediateArrivalBlocks }

// blockPrepositions labels a block instance with where it happens
// relative to its airport ("at Ada", "from Will Rogers", ...).
var blockPrepositions = map[string]string{
	"startup":            "at",
	"clearance_delivery": "at",
	"taxi_out":           "at",
	"runup":              "at",
	"takeoff":            "from",
	"departure":          "from",
	"climbout":           "from",
	"enroute":            "to",
	"holding":            "near",
	"descent":            "into",
	"pattern":            "at",
	"approach":           "into",
	"landing":            "at",
	"taxi_in":            "at",
	"shutdown":           "at",
}

// ContextLabel returns the per-airport context label for a block instance,
// or "" for block types with no preposition (emergency, custom blocks).
func ContextLabel(blockType, airportName string) string {
	if prep, ok := blockPrepositions[blockType]; ok && airportName != "" {
		return prep + " " + airportName
	}
	return ""
}
