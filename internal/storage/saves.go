package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSlot is returned when a save slot does not exist.
var ErrNoSlot = errors.New("storage: no such save slot")

// Slot is one saved game.
type Slot struct {
	Slot       int
	StageID    int
	PlayerX    int
	PlayerY    int
	Flags      []byte // Encoded flag bank
	VMSnapshot []byte // Encoded interpreter snapshot, nil when idle
	UpdatedAt  time.Time
}

// SaveSlot writes or replaces a save slot.
func (s *Store) SaveSlot(slot Slot) error {
	if slot.Slot <= 0 {
		return fmt.Errorf("storage: slot number must be positive, got %d", slot.Slot)
	}
	_, err := s.db.Exec(
		`INSERT INTO saves (slot, stage_id, player_x, player_y, flags, vm_snapshot, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET
		   stage_id = excluded.stage_id,
		   player_x = excluded.player_x,
		   player_y = excluded.player_y,
		   flags = excluded.flags,
		   vm_snapshot = excluded.vm_snapshot,
		   updated_at = excluded.updated_at`,
		slot.Slot, slot.StageID, slot.PlayerX, slot.PlayerY, slot.Flags, slot.VMSnapshot,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save slot %d: %w", slot.Slot, err)
	}
	return nil
}

// LoadSlot reads a save slot. Returns ErrNoSlot if it was never written.
func (s *Store) LoadSlot(n int) (Slot, error) {
	var slot Slot
	var updatedAt any

	err := s.db.QueryRow(
		`SELECT slot, stage_id, player_x, player_y, flags, vm_snapshot, updated_at
		 FROM saves
		 WHERE slot = ?`,
		n,
	).Scan(&slot.Slot, &slot.StageID, &slot.PlayerX, &slot.PlayerY, &slot.Flags, &slot.VMSnapshot, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, fmt.Errorf("%w: %d", ErrNoSlot, n)
	}
	if err != nil {
		return Slot{}, fmt.Errorf("storage: cannot load slot %d: %w", n, err)
	}
	slot.UpdatedAt = parseTime(updatedAt)
	return slot, nil
}

// ListSlots returns all save slots ordered by slot number.
// Blob columns are left empty.
func (s *Store) ListSlots() ([]Slot, error) {
	rows, err := s.db.Query(
		`SELECT slot, stage_id, player_x, player_y, updated_at
		 FROM saves
		 ORDER BY slot`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		var updatedAt any
		if err := rows.Scan(&slot.Slot, &slot.StageID, &slot.PlayerX, &slot.PlayerY, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		slot.UpdatedAt = parseTime(updatedAt)
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return slots, nil
}

// DeleteSlot removes a save slot. Returns ErrNoSlot if it does not exist.
func (s *Store) DeleteSlot(n int) error {
	res, err := s.db.Exec("DELETE FROM saves WHERE slot = ?", n)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %d: %w", n, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrNoSlot, n)
	}
	return nil
}
