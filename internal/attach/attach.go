// Package attach resolves cell values that name files in a configured
// attachment directory. When a cell's value matches a file name directly
// under the directory, the file's contents replace the cell before
// coercion; all other cells pass through untouched.
package attach

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbtoolkit/quickquery/internal/builder"
	"github.com/dbtoolkit/quickquery/internal/logging"
)

// maxAttachmentSize caps how large a referenced file may be. Anything
// bigger than this would produce an unusable script anyway.
const maxAttachmentSize = 32 << 20

// Resolver resolves cell values against one directory, non-recursively.
type Resolver struct {
	dir string
}

// NewResolver validates the directory and returns a resolver over it.
func NewResolver(dir string) (*Resolver, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("attachment directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("attachment path %q is not a directory", dir)
	}
	return &Resolver{dir: dir}, nil
}

// Resolve implements builder.AttachmentResolver. A cell value resolves
// when it names an existing regular file directly under the directory;
// anything else leaves the cell untouched.
func (r *Resolver) Resolve(rawValue, normalizedType string, maxLength int, tableName string) (string, bool) {
	name := strings.TrimSpace(rawValue)
	if name == "" || name != filepath.Base(name) {
		return "", false
	}

	path := filepath.Join(r.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if info.Size() > maxAttachmentSize {
		logging.Warn("attachment %s is %d bytes, over the %d byte cap; using cell value as-is",
			name, info.Size(), maxAttachmentSize)
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("failed to read attachment %s: %v", name, err)
		return "", false
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		data = compactJSON(data)
	}
	logging.Debug("substituted attachment %s (%d bytes) for table %s", name, len(data), tableName)
	return string(data), true
}

// compactJSON strips insignificant whitespace from a JSON body so the
// generated literal stays as small as possible. Invalid JSON is passed
// through unchanged.
func compactJSON(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return data
	}
	return buf.Bytes()
}

var _ builder.AttachmentResolver = (*Resolver)(nil).Resolve
