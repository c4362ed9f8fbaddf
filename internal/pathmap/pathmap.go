// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package pathmap computes the destination path for a workspace file on a
// deployment target. Resolution is a pure string computation: the file's
// path is made relative to the workspace root, an ordered list of directory
// mappings is scanned first-match-wins, and the result is anchored under
// the target's root directory. No filesystem access happens here.
package pathmap

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/toeirei/deploymaster/internal/model"
)

// MappingError reports a source file that could not be resolved against the
// base directory, e.g. a file outside the workspace root that no mapping
// claims.
type MappingError struct {
	File string
	Base string
	Err  error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot map %s against base %s: %v", e.File, e.Base, e.Err)
	}
	return fmt.Sprintf("cannot map %s against base %s", e.File, e.Base)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Resolve computes the destination path for sourceFile on target.
//
// The file's path is made relative to baseDirectory. If the target declares
// mappings they are scanned in order and the first mapping whose Source is a
// prefix of the file's relative directory is applied: the matched prefix is
// replaced by the mapping's Target prefix, preserving the remainder of the
// relative path and the filename. With no match (or no mappings) the
// relative path is used unchanged under the target's root directory
// (target.Dir, default "./", resolved against baseDirectory when not
// absolute).
//
// Resolve is deterministic and performs no I/O.
func Resolve(sourceFile string, target *model.Target, baseDirectory string) (string, error) {
	rel, err := ResolveRelative(sourceFile, target, baseDirectory)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "/") {
		return filepath.FromSlash(rel), nil
	}
	return filepath.Join(Root(target, baseDirectory), filepath.FromSlash(rel)), nil
}

// ResolveRelative computes the destination path relative to the target's
// root directory, in slash form. Remote transports anchor this under their
// own root; Resolve anchors it under the locally resolved root. A mapping
// with an absolute Target prefix yields an absolute result.
func ResolveRelative(sourceFile string, target *model.Target, baseDirectory string) (string, error) {
	if baseDirectory == "" {
		baseDirectory = "."
	}

	rel, err := relativize(sourceFile, baseDirectory)
	if err != nil {
		return "", err
	}

	relDir := path.Dir(rel)
	fileName := path.Base(rel)

	for _, m := range target.Mappings {
		remainder, ok := matchPrefix(relDir, normalizePrefix(m.Source))
		if !ok {
			continue
		}
		tgt := filepath.ToSlash(m.Target)
		if strings.HasPrefix(tgt, "/") {
			return path.Join(tgt, remainder, fileName), nil
		}
		return path.Join(normalizePrefix(tgt), remainder, fileName), nil
	}

	return rel, nil
}

// Root returns the target's resolved root directory: target.Dir (default
// "./") resolved against baseDirectory when not absolute.
func Root(target *model.Target, baseDirectory string) string {
	root := target.Dir
	if root == "" {
		root = "./"
	}
	if baseDirectory == "" {
		baseDirectory = "."
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(baseDirectory, root)
	}
	return root
}

// relativize returns the slash-separated path of sourceFile relative to
// base. An already-relative sourceFile is taken as relative to base as-is.
func relativize(sourceFile, base string) (string, error) {
	var rel string
	if filepath.IsAbs(sourceFile) {
		r, err := filepath.Rel(base, sourceFile)
		if err != nil {
			return "", &MappingError{File: sourceFile, Base: base, Err: err}
		}
		rel = r
	} else {
		rel = filepath.Clean(sourceFile)
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &MappingError{File: sourceFile, Base: base}
	}
	return rel, nil
}

// normalizePrefix brings a configured mapping prefix into canonical
// slash-separated form without leading "./" or trailing "/".
func normalizePrefix(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// matchPrefix reports whether the mapping prefix matches relDir and returns
// the unmatched remainder of the directory path. An empty prefix matches
// everything.
func matchPrefix(relDir, prefix string) (string, bool) {
	if relDir == "." {
		relDir = ""
	}
	if prefix == "" {
		return relDir, true
	}
	if relDir == prefix {
		return "", true
	}
	if strings.HasPrefix(relDir, prefix+"/") {
		return relDir[len(prefix)+1:], true
	}
	return "", false
}
