// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"fmt"
	"os"
	"time"
)

// ErrorLog appends portal failures to a shared log file for the medical
// expert to review after a run. The file is opened and closed per entry;
// the pipeline is single-process and sequential, so no locking is needed.
type ErrorLog struct {
	path string

	// now is stubbed in tests for stable timestamps.
	now func() time.Time
}

// NewErrorLog creates an append-only log at path. The file is created on
// first write.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path, now: time.Now}
}

// Append records one failed topic: timestamp, topic id, the submitted
// query, and the portal's message.
func (l *ErrorLog) Append(topic, query, message string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening error log %s: %w", l.path, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\n\n\ntopic id: %s \n\nsearch query:\n %s \n\nerror msg: \n %s \n\n",
		l.now().Format("2006-01-02 15:04:05"), topic, query, message)
	if err != nil {
		return fmt.Errorf("writing error log %s: %w", l.path, err)
	}
	return nil
}
