package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Table is the loaded stage table, ordered by stage id.
type Table struct {
	stages []Stage
	byID   map[int]int
}

// Lookup returns the stage with the given id.
func (t *Table) Lookup(id int) (*Stage, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.stages[i], true
}

// Stages returns all stages sorted by id.
func (t *Table) Stages() []Stage {
	return t.stages
}

// First returns the stage with the lowest id.
func (t *Table) First() (*Stage, bool) {
	if len(t.stages) == 0 {
		return nil, false
	}
	return &t.stages[0], true
}

// Loader handles loading stage files from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new stage loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all stage files.
// A malformed file fails the whole load.
func (l *Loader) LoadAll() (*Table, error) {
	t := &Table{byID: make(map[int]int)}

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		st, err := l.LoadFile(path)
		if err != nil {
			return err
		}
		t.stages = append(t.stages, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stage: walking directory %s: %w", l.Root, err)
	}

	// Sort by ID for determinism
	sort.Slice(t.stages, func(i, j int) bool {
		return t.stages[i].ID < t.stages[j].ID
	})
	for i, st := range t.stages {
		if prev, dup := t.byID[st.ID]; dup {
			return nil, fmt.Errorf("stage: id %d defined in both %s and %s", st.ID, t.stages[prev].FilePath, st.FilePath)
		}
		t.byID[st.ID] = i
	}

	return t, nil
}

// LoadFile loads a single stage file. A relative script path is resolved
// against the stage file's directory.
func (l *Loader) LoadFile(path string) (Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stage{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	st, err := ParseYAML(data)
	if err != nil {
		return Stage{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	if st.ScriptPath != "" && !filepath.IsAbs(st.ScriptPath) {
		st.ScriptPath = filepath.Join(filepath.Dir(path), st.ScriptPath)
	}
	st.FilePath = path
	return st, nil
}
