// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/deploymaster/internal/model"
)

func TestAuditTargetRoundTrip(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, ws, "ok.txt", "stable")
	writeFile(t, ws, "drift.txt", "source version")
	o, _ := newTestOrchestrator(t, ws)

	dest := filepath.Join(t.TempDir(), "out")
	target := &model.Target{Name: "out", Type: "local", Dir: dest, Transformer: "gzip"}

	res := o.RunForTarget([]string{"ok.txt", "drift.txt"}, target)
	if res.Err != nil {
		t.Fatalf("deploy failed: %v", res.Err)
	}

	// Tamper with one deployed file and remove nothing.
	if err := os.WriteFile(filepath.Join(dest, "drift.txt"), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := o.AuditTarget([]string{"ok.txt", "drift.txt", "gone.txt"}, target)
	if err != nil {
		t.Fatalf("AuditTarget failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Status != AuditMatch {
		t.Errorf("ok.txt: expected match, got %s (%v)", entries[0].Status, entries[0].Err)
	}
	if entries[1].Status != AuditDrift && entries[1].Status != AuditError {
		t.Errorf("drift.txt: expected drift, got %s (%v)", entries[1].Status, entries[1].Err)
	}
	if entries[2].Status != AuditError {
		// gone.txt has no workspace source either.
		t.Errorf("gone.txt: expected error, got %s", entries[2].Status)
	}
}

func TestAuditTargetUnknownType(t *testing.T) {
	o, _ := newTestOrchestrator(t, t.TempDir())
	if _, err := o.AuditTarget(nil, &model.Target{Name: "x", Type: "nope"}); err == nil {
		t.Error("expected configuration error for unknown transport type")
	}
}

func TestFileAuditWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w := &FileAuditWriter{Path: path}

	if err := w.LogAction("deploy.workspace.done", "staging"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if err := w.LogAction("audit.drift", "a.txt on staging"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "deploy.workspace.done\tstaging") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestLogActionWithoutWriterIsNoop(t *testing.T) {
	ClearAuditWriter()
	if err := logAction("anything", "at all"); err != nil {
		t.Errorf("logAction without writer must be a no-op, got %v", err)
	}
}

func TestSetAuditWriterReceivesActions(t *testing.T) {
	var got []string
	SetAuditWriter(auditFunc(func(action, details string) error {
		got = append(got, action+":"+details)
		return nil
	}))
	t.Cleanup(ClearAuditWriter)

	if err := logAction("deploy.workspace.done", "prod"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "deploy.workspace.done:prod" {
		t.Errorf("unexpected audit entries: %v", got)
	}
}

// auditFunc adapts a function to the AuditWriter interface.
type auditFunc func(action, details string) error

func (f auditFunc) LogAction(action, details string) error { return f(action, details) }
