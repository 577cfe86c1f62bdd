package state

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrParse marks a state file that is present but malformed. Callers
// must tell this apart from a missing file, which is not an error:
// silently defaulting a corrupt record would mask real state loss.
var ErrParse = errors.New("malformed state file")

//go:embed memory.schema.json
var memorySchemaJSON []byte

// memorySchema validates the decoded state record before it is trusted.
// JSON that unmarshals but carries wrong-typed fields is rejected as
// ErrParse instead of silently collapsing to zero values.
var memorySchema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(memorySchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("state: embedded schema unreadable: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("memory.schema.json", doc); err != nil {
		panic(fmt.Sprintf("state: embedded schema rejected: %v", err))
	}
	schema, err := c.Compile("memory.schema.json")
	if err != nil {
		panic(fmt.Sprintf("state: embedded schema does not compile: %v", err))
	}
	return schema
}()

// Store loads and saves the state record at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the given memory.json path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state record. A missing file returns DefaultMemory
// with no error; a present but malformed file returns an error wrapping
// ErrParse.
func (s *Store) Load() (*Memory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMemory(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := memorySchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var m Memory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if m.CurrentTask.MaxRetries == 0 {
		m.CurrentTask.MaxRetries = DefaultMaxRetries
	}
	return &m, nil
}

// Save writes the whole record. The write goes to a temp file in the
// same directory followed by a rename, so a crash mid-write never
// leaves memory.json empty or truncated.
func (s *Store) Save(m *Memory) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := writeFileAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to path via a sibling temp file and
// rename. The temp file is removed on any failure.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
