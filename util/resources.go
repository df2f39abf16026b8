// util/resources.go
// Copyright(c) 2024-2026 commsheet contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"path"

	"github.com/klauspost/compress/zstd"
)

// Unfortunately, unlike io.ReadCloser, the zstd Decoder's Close() method
// doesn't return an error, so we need to make our own custom ReadCloser
// interface.
type ResourceReadCloser interface {
	io.Reader
	Close()
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() {}

// LoadResource provides a ResourceReadCloser to access the specified file
// from the given resources filesystem; if it's zstd compressed, the Reader
// will handle decompression transparently.
func LoadResource(fsys fs.FS, p string) (ResourceReadCloser, error) {
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	br := bytesReadCloser{bytes.NewReader(b)}

	if path.Ext(p) == ".zst" {
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}
		return zr, nil
	}

	return br, nil
}

// LoadResourceJSON decodes the given resource file, which may be zstd
// compressed, into the provided object. The bare name is tried first and
// then a ".zst"-suffixed variant.
func LoadResourceJSON(fsys fs.FS, p string, obj any) error {
	r, err := LoadResource(fsys, p)
	if err != nil {
		r, err = LoadResource(fsys, p+".zst")
	}
	if err != nil {
		return err
	}
	defer r.Close()

	return json.NewDecoder(r).Decode(obj)
}
