// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package deploy

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditWriter records deployment actions for later review.
type AuditWriter interface {
	LogAction(action, details string) error
}

// package-level audit writer, settable for tests and by the CLI
var (
	auditMu     sync.RWMutex
	auditWriter AuditWriter
)

// SetAuditWriter installs the session's AuditWriter.
func SetAuditWriter(w AuditWriter) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditWriter = w
}

// ClearAuditWriter removes any previously set AuditWriter.
func ClearAuditWriter() {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditWriter = nil
}

// logAction writes an audit entry when a writer is installed. A missing
// writer is not an error; auditing is optional.
func logAction(action, details string) error {
	auditMu.RLock()
	w := auditWriter
	auditMu.RUnlock()
	if w == nil {
		return nil
	}
	return w.LogAction(action, details)
}

// FileAuditWriter appends timestamped entries to a local log file.
type FileAuditWriter struct {
	Path string

	mu sync.Mutex
}

// LogAction appends one tab-separated entry: timestamp, action, details.
func (w *FileAuditWriter) LogAction(action, details string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\n", time.Now().UTC().Format(time.RFC3339), action, details)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
