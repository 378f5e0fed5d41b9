package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentrun/agentrun/internal/fileutil"
	"github.com/agentrun/agentrun/internal/logger"
)

const sessionFileFormat = "agent_output_%s.jsonl"

// Writer appends session records to a per-session JSONL file. The file
// is named from the UTC creation timestamp and created lazily on the
// first write. Each write opens the file in append mode and closes it
// before returning, so the log can be read while a session runs.
type Writer struct {
	dir  string
	path string
}

// NewWriter creates the output directory if needed and derives the
// session file path. The file itself is not created until the first
// record is saved.
func NewWriter(ctx context.Context, dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf(sessionFileFormat, timestamp))
	logger.FromContext(ctx).Info("Output log initialized", "path", path)
	return &Writer{dir: dir, path: path}, nil
}

// Path returns the session file path.
func (w *Writer) Path() string {
	return w.path
}

// Save serializes the record to a single JSON line and appends it to
// the session file. Non-ASCII characters are preserved and HTML
// characters are not escaped.
func (w *Writer) Save(record any) error {
	file, err := fileutil.OpenFileAppend(w.path)
	if err != nil {
		return fmt.Errorf("failed to open session file %s: %w", w.path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to write output record: %w", err)
	}
	return nil
}
