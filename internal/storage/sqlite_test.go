package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-cave/internal/vm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveAndLoadSlot(t *testing.T) {
	store := openTestStore(t)

	want := Slot{
		Slot:       1,
		StageID:    3,
		PlayerX:    10,
		PlayerY:    4,
		Flags:      []byte{1, 2, 3},
		VMSnapshot: []byte("VMS1..."),
	}
	if err := store.SaveSlot(want); err != nil {
		t.Fatalf("SaveSlot() failed: %v", err)
	}

	got, err := store.LoadSlot(1)
	if err != nil {
		t.Fatalf("LoadSlot() failed: %v", err)
	}
	if got.StageID != 3 || got.PlayerX != 10 || got.PlayerY != 4 {
		t.Errorf("LoadSlot() = %+v", got)
	}
	if string(got.Flags) != string(want.Flags) || string(got.VMSnapshot) != string(want.VMSnapshot) {
		t.Errorf("blob columns differ: %v %q", got.Flags, got.VMSnapshot)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestSaveSlotOverwrites(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveSlot(Slot{Slot: 2, StageID: 1, Flags: []byte{0}}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSlot(Slot{Slot: 2, StageID: 5, Flags: []byte{9}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadSlot(2)
	if err != nil {
		t.Fatal(err)
	}
	if got.StageID != 5 || got.Flags[0] != 9 {
		t.Errorf("slot not overwritten: %+v", got)
	}
	if got.VMSnapshot != nil {
		t.Errorf("idle save should have no snapshot, got %v", got.VMSnapshot)
	}

	slots, err := store.ListSlots()
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 {
		t.Errorf("expected 1 slot, got %d", len(slots))
	}
}

func TestSlotErrors(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadSlot(9); !errors.Is(err, ErrNoSlot) {
		t.Errorf("LoadSlot(9) = %v, expected ErrNoSlot", err)
	}
	if err := store.DeleteSlot(9); !errors.Is(err, ErrNoSlot) {
		t.Errorf("DeleteSlot(9) = %v, expected ErrNoSlot", err)
	}
	if err := store.SaveSlot(Slot{Slot: 0, Flags: []byte{}}); err == nil {
		t.Error("slot 0 should be rejected")
	}
}

func TestListAndDeleteSlots(t *testing.T) {
	store := openTestStore(t)
	for _, n := range []int{3, 1, 2} {
		if err := store.SaveSlot(Slot{Slot: n, StageID: n * 10, Flags: []byte{}}); err != nil {
			t.Fatal(err)
		}
	}

	slots, err := store.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots() failed: %v", err)
	}
	if len(slots) != 3 || slots[0].Slot != 1 || slots[2].Slot != 3 {
		t.Fatalf("ListSlots() = %+v, expected slots 1..3 in order", slots)
	}

	if err := store.DeleteSlot(2); err != nil {
		t.Fatalf("DeleteSlot() failed: %v", err)
	}
	slots, _ = store.ListSlots()
	if len(slots) != 2 {
		t.Errorf("expected 2 slots after delete, got %d", len(slots))
	}
}

func TestRecordAndListAborts(t *testing.T) {
	store := openTestStore(t)

	aborts := []vm.Abort{
		{Script: 200, Offset: 3, Command: "<CAL0200", Reason: "call stack overflow", Frame: 10},
		{Script: 300, Offset: 0, Command: "<FL+9000", Reason: "flag 9000 outside bank", Frame: 20},
		{Script: 200, Offset: 5, Command: "<JMP0099", Reason: "jump target", Frame: 30},
	}
	for _, a := range aborts {
		if err := store.RecordAbort(a); err != nil {
			t.Fatalf("RecordAbort() failed: %v", err)
		}
	}

	recent, err := store.RecentAborts(2)
	if err != nil {
		t.Fatalf("RecentAborts() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Frame != 30 || recent[0].Command != "<JMP0099" {
		t.Errorf("newest entry = %+v", recent[0])
	}

	sums, err := store.AbortSummaries()
	if err != nil {
		t.Fatalf("AbortSummaries() failed: %v", err)
	}
	if len(sums) != 2 || sums[0].ScriptID != 200 || sums[0].Count != 2 {
		t.Errorf("AbortSummaries() = %+v", sums)
	}

	if err := store.ClearAborts(); err != nil {
		t.Fatal(err)
	}
	recent, _ = store.RecentAborts(10)
	if len(recent) != 0 {
		t.Errorf("expected no aborts after clear, got %d", len(recent))
	}
}
