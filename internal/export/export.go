// Package export writes visualization documents to disk and discovers
// local conversation transcripts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

const maxTopicChars = 30

// DefaultDir returns ~/.claude-code-compact/visualizations.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude-code-compact", "visualizations")
}

// DefaultTranscriptsDir returns ~/.claude/projects.
func DefaultTranscriptsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// Exporter stores visualization documents as indented JSON files in a
// single directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an Exporter rooted at dir, or DefaultDir if empty.
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// GenerateFilename builds <type>_<topic>_<timestamp>.json. The topic is cut
// to 30 characters with anything outside [a-zA-Z0-9-_] replaced by '_'; an
// empty topic becomes "visualization". The timestamp is the UTC
// millisecond time with ':' and '.' replaced by '-'.
func GenerateFilename(t visualization.Type, topic string, now time.Time) string {
	name := "visualization"
	if topic != "" {
		r := []rune(topic)
		if len(r) > maxTopicChars {
			r = r[:maxTopicChars]
		}
		name = unsafeChars.ReplaceAllString(string(r), "_")
	}
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("%s_%s_%s.json", t, name, ts)
}

// ErrTypeRequired is returned when a document is exported without a type.
var ErrTypeRequired = errors.New("visualization type is required")

// Export writes doc to the output directory and returns the file path.
// When filename is empty a name is generated from the document topic.
// Only the base name of filename is used.
func (e *Exporter) Export(doc json.RawMessage, t visualization.Type, filename string) (string, error) {
	if t == "" {
		return "", ErrTypeRequired
	}
	var content bytes.Buffer
	if err := json.Indent(&content, doc, "", "  "); err != nil {
		return "", fmt.Errorf("format visualization: %w", err)
	}

	if filename == "" {
		filename = GenerateFilename(t, visualization.Topic(doc), e.now())
	} else {
		filename = filepath.Base(filename)
	}
	if filename == "." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	// Atomic write via temp file + rename
	target := filepath.Join(e.dir, filename)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, content.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write temp visualization: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename temp visualization: %w", err)
	}
	return target, nil
}

// Read returns the JSON document stored at path.
func (e *Exporter) Read(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read visualization: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("read visualization %s: invalid JSON", path)
	}
	return json.RawMessage(data), nil
}

// List returns the paths of exported *.json files, sorted by name.
func (e *Exporter) List() ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(e.dir, entry.Name()))
	}
	return files, nil
}

// ReadTranscript returns the raw content of a transcript file.
func ReadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

// ListTranscripts walks root for *.jsonl files. A missing root or
// unreadable subdirectories yield no entries rather than an error.
func ListTranscripts(root string) []string {
	files := []string{}
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
