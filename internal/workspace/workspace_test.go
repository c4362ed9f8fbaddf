// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package workspace

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/toeirei/deploymaster/internal/model"
)

func newTestFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, "/ws/"+f, []byte(f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestResolvePackage(t *testing.T) {
	fs := newTestFs(t,
		"index.html",
		"src/app.go",
		"src/app_test.go",
		"src/web/main.js",
		"docs/readme.md",
	)

	tests := []struct {
		name string
		pkg  model.Package
		want []string
	}{
		{
			name: "doublestar include",
			pkg:  model.Package{Name: "go", Files: []string{"src/**/*.go"}},
			want: []string{"src/app.go", "src/app_test.go"},
		},
		{
			name: "exclude filters matches",
			pkg: model.Package{
				Name:    "go",
				Files:   []string{"src/**/*.go"},
				Exclude: []string{"**/*_test.go"},
			},
			want: []string{"src/app.go"},
		},
		{
			name: "everything",
			pkg:  model.Package{Name: "all", Files: []string{"**"}},
			want: []string{"docs/readme.md", "index.html", "src/app.go", "src/app_test.go", "src/web/main.js"},
		},
		{
			name: "no match yields empty list",
			pkg:  model.Package{Name: "none", Files: []string{"*.css"}},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePackage(fs, "/ws", tt.pkg)
			if err != nil {
				t.Fatalf("ResolvePackage: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePackageBadPattern(t *testing.T) {
	fs := newTestFs(t, "a.txt")
	if _, err := ResolvePackage(fs, "/ws", model.Package{Name: "bad", Files: []string{"[a-"}}); err == nil {
		t.Error("expected error for malformed glob pattern")
	}
}

func TestResolvePackagesUnionAndOrder(t *testing.T) {
	fs := newTestFs(t, "a.txt", "b.txt", "c.md")

	pkgs := []model.Package{
		{Name: "docs", SortOrder: 2, Files: []string{"*.md", "a.txt"}},
		{Name: "text", SortOrder: 1, Files: []string{"*.txt"}},
	}

	got, err := ResolvePackages(fs, "/ws", pkgs)
	if err != nil {
		t.Fatalf("ResolvePackages: %v", err)
	}
	// "text" runs first by sort order; "docs" only contributes c.md since
	// a.txt is already present.
	want := []string{"a.txt", "b.txt", "c.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
