package tsc

import (
	"fmt"
	"sort"
)

// Resolver finds scripts by id.
type Resolver interface {
	Lookup(id ScriptID) (*Script, bool)
}

// Table is an immutable set of scripts keyed by id.
// It is safe for concurrent readers once built.
type Table struct {
	scripts map[ScriptID]*Script
	ids     []ScriptID
}

// NewTable builds a table from scripts. It fails on duplicate ids and on
// CAL targets found neither in scripts nor in extern, which may be nil.
func NewTable(scripts []*Script, extern Resolver) (*Table, error) {
	t, err := buildTable(scripts)
	if err != nil {
		return nil, err
	}
	if err := t.checkCalls(extern, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func buildTable(scripts []*Script) (*Table, error) {
	t := &Table{scripts: make(map[ScriptID]*Script, len(scripts))}
	for _, s := range scripts {
		if _, dup := t.scripts[s.ID]; dup {
			return nil, &DecodeError{Script: s.ID, Offset: -1, Pos: -1, Reason: "duplicate script id"}
		}
		t.scripts[s.ID] = s
		t.ids = append(t.ids, s.ID)
	}
	sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })
	return t, nil
}

// checkCalls verifies every CAL target resolves. pos, if set, maps a
// command to its byte position for error reports.
func (t *Table) checkCalls(extern Resolver, pos func(id ScriptID, offset int) int) error {
	for _, id := range t.ids {
		s := t.scripts[id]
		for off, cmd := range s.Commands {
			arg, ok := cmd.Op.CallOperand()
			if !ok {
				continue
			}
			target := ScriptID(cmd.Args[arg])
			if _, found := t.Lookup(target); found {
				continue
			}
			if extern != nil {
				if _, found := extern.Lookup(target); found {
					continue
				}
			}
			p := -1
			if pos != nil {
				p = pos(id, off)
			}
			return &DecodeError{
				Script: id,
				Offset: off,
				Pos:    p,
				Op:     cmd.Op,
				Reason: fmt.Sprintf("call to unknown script %04d", target),
			}
		}
	}
	return nil
}

// Lookup returns the script with the given id.
func (t *Table) Lookup(id ScriptID) (*Script, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.scripts[id]
	return s, ok
}

// IDs returns the script ids in ascending order.
func (t *Table) IDs() []ScriptID {
	if t == nil {
		return nil
	}
	return append([]ScriptID(nil), t.ids...)
}

// Scripts returns the scripts in ascending id order.
func (t *Table) Scripts() []*Script {
	if t == nil {
		return nil
	}
	out := make([]*Script, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.scripts[id]
	}
	return out
}

// Len returns the number of scripts.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}
