// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/model"
	"github.com/toeirei/deploymaster/internal/plugin"
	"github.com/toeirei/deploymaster/internal/transform"
)

// AuditStatus classifies one audited file.
type AuditStatus int

const (
	// AuditMatch means the deployed bytes round-trip back to the source.
	AuditMatch AuditStatus = iota
	// AuditDrift means the destination differs from the source.
	AuditDrift
	// AuditMissing means the destination could not be read.
	AuditMissing
	// AuditError means the comparison itself failed.
	AuditError
)

func (s AuditStatus) String() string {
	switch s {
	case AuditMatch:
		return "match"
	case AuditDrift:
		return "drift"
	case AuditMissing:
		return "missing"
	default:
		return "error"
	}
}

// AuditEntry is the audit outcome for one file.
type AuditEntry struct {
	File   string
	Status AuditStatus
	Err    error
}

// ErrAuditUnsupported reports a transport without read-back capability.
var ErrAuditUnsupported = errors.New("transport does not support read-back")

// AuditTarget fetches each deployed file back through the target's
// transport, inverts the configured transform and byte-compares against
// the workspace source. It reports per-file drift without modifying
// either side.
func (o *Orchestrator) AuditTarget(files []string, target *model.Target) ([]AuditEntry, error) {
	inst, err := o.registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	fetcher, ok := inst.Plugin.(plugin.FileFetcher)
	if !ok {
		return nil, fmt.Errorf("target %q (%s): %w", target.Name, target.Type, ErrAuditUnsupported)
	}

	entries := make([]AuditEntry, 0, len(files))
	for _, file := range files {
		if o.ctx.IsCancelling() {
			break
		}
		entry := o.auditFile(fetcher, file, target)
		entries = append(entries, entry)

		switch entry.Status {
		case AuditMatch:
			o.ctx.Logf(i18n.T("audit.match"), file)
		case AuditDrift:
			o.ctx.Logf(i18n.T("audit.drift"), file)
			_ = logAction("audit.drift", fmt.Sprintf("%s on %s", file, target.Name))
		case AuditMissing:
			o.ctx.Logf(i18n.T("audit.missing"), file)
			_ = logAction("audit.missing", fmt.Sprintf("%s on %s", file, target.Name))
		default:
			o.ctx.Logf(i18n.T("audit.error"), file, entry.Err)
		}
	}
	return entries, nil
}

func (o *Orchestrator) auditFile(fetcher plugin.FileFetcher, file string, target *model.Target) AuditEntry {
	source := file
	if !filepath.IsAbs(file) {
		source = filepath.Join(o.ctx.Workspace(), file)
	}
	want, err := os.ReadFile(source)
	if err != nil {
		return AuditEntry{File: file, Status: AuditError, Err: err}
	}

	deployed, err := fetcher.FetchFile(file, target, "")
	if err != nil {
		return AuditEntry{File: file, Status: AuditMissing, Err: err}
	}

	got, err := transform.Apply(deployed, transform.ModeRestore, target.Transformer, target.TransformerOptions)
	if err != nil {
		return AuditEntry{File: file, Status: AuditError, Err: err}
	}

	if !bytes.Equal(got, want) {
		return AuditEntry{File: file, Status: AuditDrift}
	}
	return AuditEntry{File: file, Status: AuditMatch}
}
