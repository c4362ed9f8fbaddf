// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package workspace resolves configured file packages into concrete file
// lists. Include and exclude patterns use doublestar globs ("src/**/*.go")
// matched against workspace-relative slash paths.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/toeirei/deploymaster/internal/model"
)

// ResolvePackage expands pkg's include globs under root on fsys, filters
// them through the exclude globs and returns workspace-relative paths in
// sorted order. Directories never match; only regular files do.
func ResolvePackage(fsys afero.Fs, root string, pkg model.Package) ([]string, error) {
	var files []string

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		matched, err := matchAny(pkg.Files, rel)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
		excluded, err := matchAny(pkg.Exclude, rel)
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve package %q: %w", pkg.Name, err)
	}

	sort.Strings(files)
	return files, nil
}

// ResolvePackages expands several packages in ascending sort order and
// returns the deduplicated union, preserving first-seen order.
func ResolvePackages(fsys afero.Fs, root string, pkgs []model.Package) ([]string, error) {
	ordered := make([]model.Package, len(pkgs))
	copy(ordered, pkgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	seen := map[string]bool{}
	var files []string
	for _, pkg := range ordered {
		resolved, err := ResolvePackage(fsys, root, pkg)
		if err != nil {
			return nil, err
		}
		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// matchAny reports whether rel matches any of the given glob patterns.
func matchAny(patterns []string, rel string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
