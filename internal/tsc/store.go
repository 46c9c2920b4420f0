package tsc

import (
	"errors"
	"fmt"
)

// ErrStageBusy is returned when a stage table is replaced while one of
// its scripts is still active.
var ErrStageBusy = errors.New("tsc: stage table is in use by an active script")

// Store is the Script Store: a global bank shared by every stage and the
// table of the currently loaded stage. Stage scripts shadow global ones.
type Store struct {
	global *Table
	stage  *Table
}

// NewStore creates a store over an already decoded global bank, which may
// be shared read-only between stores.
func NewStore(global *Table) *Store {
	return &Store{global: global}
}

// LoadGlobal decodes and installs the global bank. Its CAL targets must
// resolve inside the bank itself.
func (s *Store) LoadGlobal(blob []byte) error {
	t, err := Decode(blob, nil)
	if err != nil {
		return err
	}
	s.global = t
	return nil
}

// SetGlobal installs an already built global bank. Stage tables resolve
// CAL targets against the bank, so it can only be set before the first one.
func (s *Store) SetGlobal(t *Table) error {
	if s.stage != nil {
		return errors.New("tsc: global bank replaced after a stage was loaded")
	}
	s.global = t
	return nil
}

// LoadStage decodes a stage blob and replaces the stage table wholesale.
// CAL targets may resolve in the blob or in the global bank. active lists
// the scripts currently running or on a call stack; if any of them lives
// in the old stage table, or would be shadowed by the new one, the load is
// refused with ErrStageBusy.
func (s *Store) LoadStage(blob []byte, active []ScriptID) error {
	if err := s.checkIdle(nil, active); err != nil {
		return err
	}
	t, err := Decode(blob, s.global)
	if err != nil {
		return err
	}
	if err := s.checkIdle(t, active); err != nil {
		return err
	}
	s.stage = t
	return nil
}

// SetStage installs an already built stage table under the same rules
// as LoadStage.
func (s *Store) SetStage(t *Table, active []ScriptID) error {
	if t == nil {
		return errors.New("tsc: nil stage table")
	}
	if err := s.checkIdle(t, active); err != nil {
		return err
	}
	if err := t.checkCalls(s.global, nil); err != nil {
		return err
	}
	s.stage = t
	return nil
}

// checkIdle reports ErrStageBusy when an active script lives in the
// current stage table or in next. Either way the swap would change what
// the id resolves to under a running cursor.
func (s *Store) checkIdle(next *Table, active []ScriptID) error {
	for _, id := range active {
		if _, ok := s.stage.Lookup(id); ok {
			return fmt.Errorf("%w: script %04d", ErrStageBusy, id)
		}
		if _, ok := next.Lookup(id); ok {
			return fmt.Errorf("%w: script %04d is shadowed by the new stage", ErrStageBusy, id)
		}
	}
	return nil
}

// Lookup resolves id against the stage table, then the global bank.
func (s *Store) Lookup(id ScriptID) (*Script, bool) {
	if sc, ok := s.stage.Lookup(id); ok {
		return sc, true
	}
	return s.global.Lookup(id)
}

// Global returns the global bank.
func (s *Store) Global() *Table {
	return s.global
}

// Stage returns the current stage table, or nil before the first stage load.
func (s *Store) Stage() *Table {
	return s.stage
}
