// sheet/project.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sheet

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"commsheet/log"
	"commsheet/util"

	"github.com/google/uuid"
)

// Project is a named, saved snapshot of a generated sheet.
type Project struct {
	ID      string
	Name    string
	SavedAt time.Time
	Sheet   *Sheet
}

const projectExt = ".msgpack.zst"

// ProjectStore persists projects one file per project, msgpack-encoded
// and zstd-compressed, under the given directory (normally the user
// cache dir).
type ProjectStore struct {
	dir string
	lg  *log.Logger
}

func NewProjectStore(dir string, lg *log.Logger) *ProjectStore {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		lg.Errorf("%s: unable to make projects directory: %v", dir, err)
	}
	return &ProjectStore{dir: dir, lg: lg}
}

func (ps *ProjectStore) path(id string) string {
	return filepath.Join(ps.dir, id+projectExt)
}

// Save writes the sheet under the given name and returns the stored
// project.
func (ps *ProjectStore) Save(name string, sh *Sheet) (Project, error) {
	p := Project{
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: time.Now(),
		Sheet:   sh,
	}
	if err := util.CacheStoreObject(ps.path(p.ID), p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Update rewrites an existing project in place.
func (ps *ProjectStore) Update(p Project) error {
	p.SavedAt = time.Now()
	return util.CacheStoreObject(ps.path(p.ID), p)
}

// Load reads one project by id.
func (ps *ProjectStore) Load(id string) (Project, error) {
	var p Project
	if _, err := util.CacheRetrieveObject(ps.path(id), &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Delete removes a saved project.
func (ps *ProjectStore) Delete(id string) error {
	return os.Remove(ps.path(id))
}

// List returns all saved projects, most recently saved first. Unreadable
// files are skipped with a log message.
func (ps *ProjectStore) List() []Project {
	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		ps.lg.Warnf("%s: %v", ps.dir, err)
		return nil
	}

	var projects []Project
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), projectExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), projectExt)
		p, err := ps.Load(id)
		if err != nil {
			ps.lg.Warnf("%s: %v", e.Name(), err)
			continue
		}
		projects = append(projects, p)
	}
	slices.SortFunc(projects, func(a, b Project) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return projects
}
