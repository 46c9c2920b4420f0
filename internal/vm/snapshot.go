package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/tsc"
)

// snapshotMagic opens every encoded snapshot.
var snapshotMagic = []byte("VMS1")

// Snapshot is the complete interpreter state for save slots.
// It holds no references into the live machine.
type Snapshot struct {
	Status Status
	Wait   int
	Mask   core.Key
	Cursor Cursor
}

// Snapshot captures the interpreter state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Status: m.status,
		Wait:   m.wait,
		Mask:   m.mask,
		Cursor: m.cursor.clone(),
	}
}

// Restore replaces the interpreter state with s. Every script on the
// cursor must resolve and every offset must lie within its script.
func (m *Machine) Restore(s Snapshot) error {
	if s.Status < StatusIdle || s.Status > StatusTerminated {
		return fmt.Errorf("vm: restore: invalid status %d", s.Status)
	}
	if s.Status == StatusIdle || s.Status == StatusTerminated {
		m.Stop()
		return nil
	}
	if s.Cursor.Depth() > m.consts.CallStackDepth {
		return fmt.Errorf("vm: restore: call stack depth %d exceeds %d", s.Cursor.Depth(), m.consts.CallStackDepth)
	}
	if err := m.checkPosition(s.Cursor.Script, s.Cursor.Offset); err != nil {
		return err
	}
	for _, f := range s.Cursor.Stack {
		if err := m.checkPosition(f.Script, f.Offset); err != nil {
			return err
		}
	}

	m.status = s.Status
	m.wait = s.Wait
	m.mask = s.Mask
	m.cursor = s.Cursor.clone()
	return nil
}

func (m *Machine) checkPosition(id tsc.ScriptID, offset int) error {
	script, ok := m.scripts.Lookup(id)
	if !ok {
		return fmt.Errorf("vm: restore: %w: %04d", ErrUnknownScript, id)
	}
	if offset < 0 || offset > script.Len() {
		return fmt.Errorf("vm: restore: offset %d outside script %04d", offset, id)
	}
	return nil
}

// MarshalBinary encodes the snapshot in little-endian order.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	w := func(v any) {
		// bytes.Buffer writes cannot fail.
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	w(uint8(s.Status))
	w(int32(s.Wait))
	w(uint16(s.Mask))
	writeFrame(w, s.Cursor.Script, s.Cursor.Offset, s.Cursor.Loops)
	w(uint16(len(s.Cursor.Stack)))
	for _, f := range s.Cursor.Stack {
		writeFrame(w, f.Script, f.Offset, f.Loops)
	}
	return buf.Bytes(), nil
}

func writeFrame(w func(any), id tsc.ScriptID, offset int, loops map[int]int) {
	w(int32(id))
	w(int32(offset))

	keys := make([]int, 0, len(loops))
	for k := range loops {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	w(uint16(len(keys)))
	for _, k := range keys {
		w(int32(k))
		w(int32(loops[k]))
	}
}

// UnmarshalBinary decodes a snapshot produced by MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if !bytes.HasPrefix(data, snapshotMagic) {
		return fmt.Errorf("vm: snapshot: bad magic")
	}
	r := bytes.NewReader(data[len(snapshotMagic):])

	var hdr struct {
		Status uint8
		Wait   int32
		Mask   uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("vm: snapshot: header: %w", err)
	}

	var out Snapshot
	out.Status = Status(hdr.Status)
	out.Wait = int(hdr.Wait)
	out.Mask = core.Key(hdr.Mask)

	var err error
	if out.Cursor.Script, out.Cursor.Offset, out.Cursor.Loops, err = readFrame(r); err != nil {
		return err
	}
	var depth uint16
	if err := binary.Read(r, binary.LittleEndian, &depth); err != nil {
		return fmt.Errorf("vm: snapshot: stack depth: %w", err)
	}
	for i := 0; i < int(depth); i++ {
		var f Frame
		if f.Script, f.Offset, f.Loops, err = readFrame(r); err != nil {
			return err
		}
		out.Cursor.Stack = append(out.Cursor.Stack, f)
	}
	if r.Len() != 0 {
		return fmt.Errorf("vm: snapshot: %d trailing bytes", r.Len())
	}

	*s = out
	return nil
}

func readFrame(r *bytes.Reader) (tsc.ScriptID, int, map[int]int, error) {
	var pos struct {
		Script int32
		Offset int32
		Loops  uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
		return 0, 0, nil, fmt.Errorf("vm: snapshot: frame: %w", err)
	}
	var loops map[int]int
	if pos.Loops > 0 {
		loops = make(map[int]int, pos.Loops)
	}
	for i := 0; i < int(pos.Loops); i++ {
		var kv [2]int32
		if err := binary.Read(r, binary.LittleEndian, &kv); err != nil {
			return 0, 0, nil, fmt.Errorf("vm: snapshot: loop counter: %w", err)
		}
		loops[int(kv[0])] = int(kv[1])
	}
	return tsc.ScriptID(pos.Script), int(pos.Offset), loops, nil
}
