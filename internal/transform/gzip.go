// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package transform

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipModule compresses file contents on the way out. The optional "level"
// option (1-9) selects the compression level; the default is the library's
// default level.
type gzipModule struct{}

func (gzipModule) ID() string { return "gzip" }

func (gzipModule) TransformData(ctx *Context) ([]byte, error) {
	level := gzip.DefaultCompression
	if v, ok := ctx.Options["level"]; ok {
		switch n := v.(type) {
		case int:
			level = n
		case float64:
			level = int(n)
		}
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(ctx.Data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gzipModule) RestoreData(ctx *Context) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(ctx.Data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func init() {
	if err := Register(gzipModule{}); err != nil {
		panic(err)
	}
}
