// util/util_test.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func TestMapSlice(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := MapSlice[int, float32](a, func(i int) float32 { return 2 * float32(i) })
	if len(a) != len(b) {
		t.Errorf("lengths mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if float32(2*a[i]) != b[i] {
			t.Errorf("value %d mismatch %f vs %f", i, float32(2*a[i]), b[i])
		}
	}
}

func TestDeleteSliceElement(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	a = DeleteSliceElement(a, 2)
	if !slices.Equal(a, []int{1, 2, 4, 5}) {
		t.Errorf("Slice element delete failed: %+v", a)
	}
	a = DeleteSliceElement(a, 3)
	if !slices.Equal(a, []int{1, 2, 4}) {
		t.Errorf("Slice element delete failed: %+v", a)
	}
	a = DeleteSliceElement(a, 0)
	if !slices.Equal(a, []int{2, 4}) {
		t.Errorf("Slice element delete failed: %+v", a)
	}
}

func TestInsertSliceElement(t *testing.T) {
	a := []int{1, 2, 4, 5}
	a = InsertSliceElement(a, 2, 3)
	if !slices.Equal(a, []int{1, 2, 3, 4, 5}) {
		t.Errorf("Slice insert failed: %+v", a)
	}
	a = InsertSliceElement(a, 0, 0)
	if !slices.Equal(a, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("Slice insert at start failed: %+v", a)
	}
	a = InsertSliceElement(a, 6, 6)
	if !slices.Equal(a, []int{0, 1, 2, 3, 4, 5, 6}) {
		t.Errorf("Slice insert at end failed: %+v", a)
	}
}

func TestFilterSlice(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := FilterSlice(a, func(i int) bool { return i%2 == 0 })
	if len(b) != 2 || b[0] != 2 || b[1] != 4 {
		t.Errorf("filter evens failed: %+v", b)
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"banana": 1, "apple": 2, "cherry": 3}
	keys := SortedMapKeys(m)
	if !slices.Equal(keys, []string{"apple", "banana", "cherry"}) {
		t.Errorf("unexpected sorted keys: %+v", keys)
	}
}

func TestSelect(t *testing.T) {
	if Select(true, 1, 2) != 1 || Select(false, 1, 2) != 2 {
		t.Errorf("Select returned wrong value")
	}
}

func TestLoadResourceJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"things.json": &fstest.MapFile{Data: []byte(`{"name": "taxi", "n": 3}`)},
	}
	var obj struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	if err := LoadResourceJSON(fsys, "things.json", &obj); err != nil {
		t.Fatalf("LoadResourceJSON: %v", err)
	}
	if obj.Name != "taxi" || obj.N != 3 {
		t.Errorf("unexpected decode result: %+v", obj)
	}

	if err := LoadResourceJSON(fsys, "missing.json", &obj); err == nil {
		t.Errorf("expected error for missing resource")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	type rec struct {
		Name string
		Seqs []float64
	}
	path := filepath.Join(t.TempDir(), "cache", "recs.msgpack.zst")

	in := []rec{{Name: "startup", Seqs: []float64{1, 2.5, 3}}, {Name: "taxi_out"}}
	if err := CacheStoreObject(path, in); err != nil {
		t.Fatalf("CacheStoreObject: %v", err)
	}

	var out []rec
	if _, err := CacheRetrieveObject(path, &out); err != nil {
		t.Fatalf("CacheRetrieveObject: %v", err)
	}
	if len(out) != 2 || out[0].Name != "startup" || !slices.Equal(out[0].Seqs, in[0].Seqs) {
		t.Errorf("round trip mismatch: %+v", out)
	}
}
