// cmd/commsheet/main.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// Command-line front end for the comm sheet engine: generate a sheet for
// a route, browse the airport directory and the effective call library,
// and manage the override store and saved sheets.

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"commsheet/aviation"
	"commsheet/library"
	"commsheet/log"
	"commsheet/resources"
	"commsheet/sheet"

	"golang.org/x/sync/errgroup"
)

var (
	logLevel = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir   = flag.String("logdir", "", "log file directory")
	storeDir = flag.String("storedir", "", "override store directory (default: user config dir)")

	routeSpec = flag.String("route", "", "comma-separated route, e.g. KADH,KOKC:touch_and_go,KTUL")
	rules     = flag.String("rules", "vfr", "flight rules: vfr or ifr")
	callSign  = flag.String("callsign", "", "call sign, e.g. 'Skyhawk 12345'")

	searchTerm   = flag.String("search", "", "search the airport directory")
	printLibrary = flag.Bool("library", false, "print the effective call library")

	exportFile    = flag.String("exportlibrary", "", "export the library bundle to the given file")
	importFile    = flag.String("importlibrary", "", "import a library bundle from the given file")
	promoteBundle = flag.Bool("setdefaultlibrary", false, "promote the current library to the session default")
	clearBundle   = flag.Bool("cleardefaultlibrary", false, "clear the promoted default library")
	restore       = flag.Bool("restoredefaults", false, "clear all overrides (user calls and blocks are kept)")

	saveProject   = flag.String("saveproject", "", "save the generated sheet under the given name")
	listProjects  = flag.Bool("listprojects", false, "list saved sheets")
	printProject  = flag.String("printproject", "", "print the saved sheet with the given id")
	deleteProject = flag.String("deleteproject", "", "delete the saved sheet with the given id")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	dir := *storeDir
	if dir == "" {
		cd, err := os.UserConfigDir()
		if err != nil {
			lg.Errorf("unable to find user config dir: %v", err)
			cd = "."
		}
		dir = filepath.Join(cd, "CommSheet")
	}

	// Load both datasets concurrently; both degrade to defaults on their
	// own, so the group never fails.
	var loader *library.Loader
	var airports *aviation.AirportDB
	var g errgroup.Group
	g.Go(func() error {
		loader = library.NewLoader(resources.FS, lg)
		loader.Load()
		return nil
	})
	g.Go(func() error {
		airports = aviation.LoadAirportDB(resources.FS, lg)
		return nil
	})
	_ = g.Wait()

	store := library.NewStore(dir, lg)
	eng := sheet.NewEngine(loader, store, lg)
	projects := sheet.NewProjectStore(projectsDir(lg), lg)

	switch {
	case *searchTerm != "":
		for _, ap := range airports.Search(*searchTerm) {
			towered := "non-towered"
			if ap.Towered {
				towered = "towered"
			}
			fmt.Printf("%-5s %-40s %s, %s (%s)\n", ap.ID, ap.Name, ap.City, ap.State, towered)
		}

	case *printLibrary:
		for _, c := range library.BuildEffectiveCalls(loader.GetAll(), store) {
			marks := ""
			if c.HasOverride {
				marks = " *"
			}
			if c.UserAdded {
				marks = " +"
			}
			fmt.Printf("%-24s %-18s %5.1f [%s]%s %s\n", c.ID, c.Block, c.Seq, c.Type, marks, c.Text)
		}

	case *exportFile != "":
		b, err := json.MarshalIndent(store.ExportBundle(), "", "    ")
		if err == nil {
			err = os.WriteFile(*exportFile, b, 0o600)
		}
		if err != nil {
			lg.Errorf("%s: %v", *exportFile, err)
			os.Exit(1)
		}
		fmt.Printf("exported library to %s\n", *exportFile)

	case *importFile != "":
		raw, err := os.ReadFile(*importFile)
		if err != nil {
			lg.Errorf("%s: %v", *importFile, err)
			os.Exit(1)
		}
		var b library.Bundle
		if err := json.Unmarshal(raw, &b); err != nil {
			lg.Errorf("%s: %v", *importFile, err)
			os.Exit(1)
		}
		store.ImportBundle(b)
		fmt.Printf("imported library from %s\n", *importFile)

	case *promoteBundle:
		store.SetDefaultBundle()
		fmt.Println("current library promoted to session default")

	case *clearBundle:
		store.ClearDefaultBundle()
		fmt.Println("default library cleared")

	case *restore:
		store.RestoreDefaults()
		fmt.Println("overrides cleared; user calls and blocks kept")

	case *listProjects:
		for _, p := range projects.List() {
			fmt.Printf("%s  %-30s %s\n", p.ID, p.Name, p.SavedAt.Format("2006-01-02 15:04"))
		}

	case *printProject != "":
		p, err := projects.Load(*printProject)
		if err != nil {
			lg.Errorf("%s: %v", *printProject, err)
			os.Exit(1)
		}
		fmt.Print(sheet.RenderText(p.Sheet))

	case *deleteProject != "":
		if err := projects.Delete(*deleteProject); err != nil {
			lg.Errorf("%s: %v", *deleteProject, err)
			os.Exit(1)
		}
		fmt.Println("deleted")

	case *routeSpec != "":
		route, err := parseRoute(*routeSpec, airports)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *routeSpec, err)
			os.Exit(1)
		}
		session := sheet.NewSession(eng)
		session.Generate(*callSign, sheet.FlightRules(strings.ToLower(*rules)), route)
		fmt.Print(sheet.RenderText(session.Sheet))

		if *saveProject != "" {
			p, err := projects.Save(*saveProject, session.Sheet)
			if err != nil {
				lg.Errorf("save project: %v", err)
				os.Exit(1)
			}
			fmt.Printf("\nsaved as %q (%s)\n", p.Name, p.ID)
		}

	default:
		flag.Usage()
	}
}

// parseRoute turns "KADH,KOKC:touch_and_go,KTUL" into a Route, resolving
// each identifier against the airport directory.
func parseRoute(spec string, airports *aviation.AirportDB) (sheet.Route, error) {
	var route sheet.Route
	for _, s := range strings.Split(spec, ",") {
		id, intent, _ := strings.Cut(strings.TrimSpace(s), ":")
		ap, ok := airports.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("%s: unknown airport", id)
		}
		switch sheet.Intention(intent) {
		case sheet.IntentionNone, sheet.IntentionTouchAndGo, sheet.IntentionStopAndGo,
			sheet.IntentionFullStop, sheet.IntentionTaxiBack:
		default:
			return nil, fmt.Errorf("%s: unknown intention", intent)
		}
		route = append(route, sheet.Stop{Airport: ap, Intention: sheet.Intention(intent)})
	}
	if len(route) < 2 {
		return nil, fmt.Errorf("need at least two stops")
	}
	return route, nil
}

func projectsDir(lg *log.Logger) string {
	cd, err := os.UserCacheDir()
	if err != nil {
		lg.Errorf("unable to find user cache dir: %v", err)
		cd = "."
	}
	return filepath.Join(cd, "CommSheet", "projects")
}
