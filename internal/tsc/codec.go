package tsc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Magic opens every script blob.
var Magic = []byte("TSC1")

// DecodeError reports a malformed script blob or table.
// Offset is the command index, -1 for errors about a whole script and
// headerOffset for the blob header. Pos is the byte position or -1.
type DecodeError struct {
	Script ScriptID
	Offset int
	Pos    int
	Op     Op
	Reason string
}

func (e *DecodeError) Error() string {
	msg := "tsc: decode"
	if e.Offset != headerOffset {
		msg += fmt.Sprintf(" script %04d", e.Script)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" command %d", e.Offset)
	}
	if e.Pos >= 0 {
		msg += fmt.Sprintf(" at byte %d", e.Pos)
	}
	return msg + ": " + e.Reason
}

// headerOffset marks errors in the blob header, before any script.
const headerOffset = -2

// decoder reads little-endian values from a blob.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) u8() (uint8, bool) {
	if d.pos+1 > len(d.buf) {
		return 0, false
	}
	v := d.buf[d.pos]
	d.pos++
	return v, true
}

func (d *decoder) u16() (uint16, bool) {
	if d.pos+2 > len(d.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, true
}

func (d *decoder) i32() (int32, bool) {
	if d.pos+4 > len(d.buf) {
		return 0, false
	}
	v := int32(binary.LittleEndian.Uint32(d.buf[d.pos:]))
	d.pos += 4
	return v, true
}

func (d *decoder) bytes(n int) ([]byte, bool) {
	if d.pos+n > len(d.buf) {
		return nil, false
	}
	v := d.buf[d.pos : d.pos+n]
	d.pos += n
	return v, true
}

// IsBlob reports whether data starts with the blob magic.
func IsBlob(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Decode parses a script blob into a table. CAL targets must resolve
// inside the blob or in extern. Any failure rejects the whole blob.
func Decode(blob []byte, extern Resolver) (*Table, error) {
	d := &decoder{buf: blob}
	headerErr := func(reason string) error {
		return &DecodeError{Offset: headerOffset, Pos: d.pos, Reason: reason}
	}

	magic, ok := d.bytes(len(Magic))
	if !ok || !bytes.Equal(magic, Magic) {
		d.pos = 0
		return nil, headerErr("bad magic")
	}
	count, ok := d.u16()
	if !ok {
		return nil, headerErr("truncated script count")
	}

	positions := make(map[ScriptID][]int, count)
	scripts := make([]*Script, 0, count)
	seen := make(map[ScriptID]bool, count)

	for i := 0; i < int(count); i++ {
		start := d.pos
		id16, ok := d.u16()
		if !ok {
			return nil, headerErr(fmt.Sprintf("truncated header of script #%d", i))
		}
		id := ScriptID(id16)
		if seen[id] {
			return nil, &DecodeError{Script: id, Offset: -1, Pos: start, Reason: "duplicate script id"}
		}
		seen[id] = true

		n, ok := d.u16()
		if !ok {
			return nil, &DecodeError{Script: id, Offset: -1, Pos: d.pos, Reason: "truncated command count"}
		}

		s := &Script{ID: id, Commands: make([]Command, 0, n)}
		pos := make([]int, 0, n)
		for off := 0; off < int(n); off++ {
			cmdPos := d.pos
			cmd, err := decodeCommand(d, id, off)
			if err != nil {
				return nil, err
			}
			s.Commands = append(s.Commands, cmd)
			pos = append(pos, cmdPos)
		}
		scripts = append(scripts, s)
		positions[id] = pos
	}

	if d.pos != len(blob) {
		return nil, headerErr(fmt.Sprintf("%d trailing bytes", len(blob)-d.pos))
	}

	t, err := buildTable(scripts)
	if err != nil {
		return nil, err
	}
	if err := t.checkCalls(extern, func(id ScriptID, off int) int { return positions[id][off] }); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeCommand(d *decoder, id ScriptID, off int) (Command, error) {
	fail := func(op Op, reason string) error {
		return &DecodeError{Script: id, Offset: off, Pos: d.pos, Op: op, Reason: reason}
	}

	b, ok := d.u8()
	if !ok {
		return Command{}, fail(0, "truncated opcode")
	}
	op := Op(b)
	if !op.Valid() {
		d.pos--
		return Command{}, fail(op, fmt.Sprintf("unknown opcode 0x%02x", b))
	}

	cmd := Command{Op: op}
	for i := 0; i < op.Arity(); i++ {
		v, ok := d.i32()
		if !ok {
			return Command{}, fail(op, fmt.Sprintf("truncated operand %d of %s", i, op))
		}
		cmd.Args[i] = int(v)
	}

	if op.HasText() {
		n, ok := d.u16()
		if !ok {
			return Command{}, fail(op, "truncated text length")
		}
		raw, ok := d.bytes(int(n))
		if !ok {
			return Command{}, fail(op, fmt.Sprintf("truncated text: want %d bytes", n))
		}
		if !utf8.Valid(raw) {
			return Command{}, fail(op, "text is not valid UTF-8")
		}
		cmd.Text = string(raw)
	}
	return cmd, nil
}

// Encode writes scripts in the blob format.
func Encode(scripts []*Script) ([]byte, error) {
	if len(scripts) > 0xffff {
		return nil, fmt.Errorf("tsc: encode: %d scripts exceed the format limit", len(scripts))
	}
	var buf bytes.Buffer
	buf.Write(Magic)
	writeU16(&buf, uint16(len(scripts)))

	for _, s := range scripts {
		if s.ID < 0 || s.ID > MaxScriptID {
			return nil, fmt.Errorf("tsc: encode: script id %d out of range", s.ID)
		}
		if len(s.Commands) > 0xffff {
			return nil, fmt.Errorf("tsc: encode: script %04d has too many commands (%d)", s.ID, len(s.Commands))
		}
		writeU16(&buf, uint16(s.ID))
		writeU16(&buf, uint16(len(s.Commands)))

		for off, cmd := range s.Commands {
			if !cmd.Op.Valid() {
				return nil, fmt.Errorf("tsc: encode: script %04d command %d: invalid opcode %d", s.ID, off, cmd.Op)
			}
			buf.WriteByte(byte(cmd.Op))
			for i := 0; i < cmd.Op.Arity(); i++ {
				v := cmd.Args[i]
				if v < -1<<31 || v > 1<<31-1 {
					return nil, fmt.Errorf("tsc: encode: script %04d command %d: operand %d overflows int32", s.ID, off, v)
				}
				var b [4]byte
				binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
				buf.Write(b[:])
			}
			if cmd.Op.HasText() {
				if len(cmd.Text) > 0xffff {
					return nil, fmt.Errorf("tsc: encode: script %04d command %d: text too long", s.ID, off)
				}
				writeU16(&buf, uint16(len(cmd.Text)))
				buf.WriteString(cmd.Text)
			}
		}
	}
	return buf.Bytes(), nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
