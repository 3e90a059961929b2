// Package file provides file-based persistence for local development and
// tests. Each record is one JSON document under a per-collection directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hooklinehq/hookline/pkg/persistence"
)

const dirPermissions = 0o755
const filePermissions = 0o644

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root        string
	triggers    *TriggerRepository
	actions     *ActionRepository
	automations *AutomationRepository
	executions  *ExecutionRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:        cleanRoot,
		triggers:    &TriggerRepository{store: store{root: cleanRoot, collection: "triggers"}},
		actions:     &ActionRepository{store: store{root: cleanRoot, collection: "actions"}},
		automations: &AutomationRepository{store: store{root: cleanRoot, collection: "automations"}},
		executions:  &ExecutionRepository{store: store{root: cleanRoot, collection: "executions"}},
	}
}

func (fp *Persistence) Triggers() persistence.TriggerRepository {
	return fp.triggers
}

func (fp *Persistence) Actions() persistence.ActionRepository {
	return fp.actions
}

func (fp *Persistence) Automations() persistence.AutomationRepository {
	return fp.automations
}

func (fp *Persistence) Executions() persistence.ExecutionRepository {
	return fp.executions
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file persistence there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// store handles the shared read/write/list mechanics of one collection.
type store struct {
	root       string
	collection string
}

func (s store) dir() string {
	return filepath.Join(s.root, s.collection)
}

func (s store) path(id string) string {
	return filepath.Join(s.dir(), id+".json")
}

func (s store) write(id string, record any) error {
	err := os.MkdirAll(s.dir(), dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", s.collection, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", s.collection, err)
	}

	err = os.WriteFile(s.path(id), data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write %s record: %w", s.collection, err)
	}

	return nil
}

// read decodes one record into out. Returns notFound when the file is absent.
func (s store) read(id string, out any, notFound error) error {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound
		}

		return fmt.Errorf("failed to read %s record: %w", s.collection, err)
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s record: %w", s.collection, err)
	}

	return nil
}

func (s store) remove(id string, notFound error) error {
	err := os.Remove(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound
		}

		return fmt.Errorf("failed to delete %s record: %w", s.collection, err)
	}

	return nil
}

// ids lists every record id in the collection.
func (s store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s records: %w", s.collection, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}
