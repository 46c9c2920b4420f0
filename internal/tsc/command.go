// Package tsc defines the Text Script command set, its binary codec,
// the source assembler and the Script Store.
package tsc

import (
	"fmt"
	"strings"
)

// ScriptID is the numeric id scripts are called and started by.
type ScriptID int

// MaxScriptID is the largest id the binary format can hold.
const MaxScriptID = 0xffff

// MaxArgs is the operand capacity of a command.
const MaxArgs = 4

// Op is a Text Script opcode. The set is closed; the numeric values are
// the opcode bytes of the binary format.
type Op uint8

const (
	OpEnd Op = iota
	OpReturn
	OpJump
	OpFlagJump
	OpNotFlagJump
	OpLoop
	OpCall
	OpTransition
	OpWait
	OpNod
	OpWaitKey
	OpWaitText
	OpYield
	OpFlagSet
	OpFlagClear
	OpSound
	OpMusic
	OpFadeIn
	OpFadeOut
	OpCaret
	OpKeyLock
	OpFreeze
	OpRelease
	OpMove
	OpMyDir
	OpQuake
	OpFocusOn
	OpFocusOff
	OpSave
	OpMessage
	OpMessageTop
	OpClear
	OpClose
	OpTurbo
	OpFace
	OpText

	opCount
)

// Family groups opcodes by how the interpreter treats them.
type Family int

const (
	FamilyMutate  Family = iota // Changes shared state and continues
	FamilyControl               // Moves the cursor
	FamilyBlock                 // Suspends until a condition holds
	FamilyText                  // Writes to the text box
	FamilyFrame                 // Ends the frame
)

func (f Family) String() string {
	switch f {
	case FamilyMutate:
		return "mutate"
	case FamilyControl:
		return "control"
	case FamilyBlock:
		return "block"
	case FamilyText:
		return "text"
	case FamilyFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// noArg marks opInfo fields that do not apply.
const noArg = -1

type opInfo struct {
	mnemonic string
	arity    int
	family   Family
	text     bool // Carries a text payload
	jumpArg  int  // Operand holding a jump target
	callArg  int  // Operand holding a script id resolved at load time
}

var ops = [opCount]opInfo{
	OpEnd:         {"END", 0, FamilyControl, false, noArg, noArg},
	OpReturn:      {"RET", 0, FamilyControl, false, noArg, noArg},
	OpJump:        {"JMP", 1, FamilyControl, false, 0, noArg},
	OpFlagJump:    {"FLJ", 2, FamilyControl, false, 1, noArg},
	OpNotFlagJump: {"FNJ", 2, FamilyControl, false, 1, noArg},
	OpLoop:        {"LOP", 2, FamilyControl, false, 1, noArg},
	OpCall:        {"CAL", 1, FamilyControl, false, noArg, 0},
	OpTransition:  {"TRA", 4, FamilyControl, false, noArg, noArg},
	OpWait:        {"WAI", 1, FamilyBlock, false, noArg, noArg},
	OpNod:         {"NOD", 0, FamilyBlock, false, noArg, noArg},
	OpWaitKey:     {"WKY", 1, FamilyBlock, false, noArg, noArg},
	OpWaitText:    {"WTX", 0, FamilyBlock, false, noArg, noArg},
	OpYield:       {"YLD", 0, FamilyFrame, false, noArg, noArg},
	OpFlagSet:     {"FL+", 1, FamilyMutate, false, noArg, noArg},
	OpFlagClear:   {"FL-", 1, FamilyMutate, false, noArg, noArg},
	OpSound:       {"SOU", 1, FamilyMutate, false, noArg, noArg},
	OpMusic:       {"CMU", 1, FamilyMutate, false, noArg, noArg},
	OpFadeIn:      {"FAI", 1, FamilyMutate, false, noArg, noArg},
	OpFadeOut:     {"FAO", 1, FamilyMutate, false, noArg, noArg},
	OpCaret:       {"CAR", 4, FamilyMutate, false, noArg, noArg},
	OpKeyLock:     {"KEY", 0, FamilyMutate, false, noArg, noArg},
	OpFreeze:      {"PRI", 0, FamilyMutate, false, noArg, noArg},
	OpRelease:     {"FRE", 0, FamilyMutate, false, noArg, noArg},
	OpMove:        {"MOV", 2, FamilyMutate, false, noArg, noArg},
	OpMyDir:       {"MYD", 1, FamilyMutate, false, noArg, noArg},
	OpQuake:       {"QUA", 1, FamilyMutate, false, noArg, noArg},
	OpFocusOn:     {"FON", 2, FamilyMutate, false, noArg, noArg},
	OpFocusOff:    {"FOM", 0, FamilyMutate, false, noArg, noArg},
	OpSave:        {"SVP", 0, FamilyMutate, false, noArg, noArg},
	OpMessage:     {"MSG", 0, FamilyText, false, noArg, noArg},
	OpMessageTop:  {"MS2", 0, FamilyText, false, noArg, noArg},
	OpClear:       {"CLR", 0, FamilyText, false, noArg, noArg},
	OpClose:       {"CLO", 0, FamilyText, false, noArg, noArg},
	OpTurbo:       {"TUR", 0, FamilyText, false, noArg, noArg},
	OpFace:        {"FAC", 1, FamilyText, false, noArg, noArg},
	OpText:        {"TXT", 0, FamilyText, true, noArg, noArg},
}

var opByMnemonic = func() map[string]Op {
	m := make(map[string]Op, opCount)
	for op := Op(0); op < opCount; op++ {
		m[ops[op].mnemonic] = op
	}
	return m
}()

// Valid reports whether op is a defined opcode.
func (op Op) Valid() bool {
	return op < opCount
}

// String returns the three-character mnemonic.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("OP(0x%02x)", uint8(op))
	}
	return ops[op].mnemonic
}

// Arity returns the number of integer operands.
func (op Op) Arity() int {
	if !op.Valid() {
		return 0
	}
	return ops[op].arity
}

// Family returns the opcode family.
func (op Op) Family() Family {
	if !op.Valid() {
		return FamilyControl
	}
	return ops[op].family
}

// HasText reports whether the opcode carries a text payload.
func (op Op) HasText() bool {
	return op.Valid() && ops[op].text
}

// JumpOperand returns the index of the operand that is a jump target.
func (op Op) JumpOperand() (int, bool) {
	if !op.Valid() || ops[op].jumpArg == noArg {
		return 0, false
	}
	return ops[op].jumpArg, true
}

// LookupMnemonic finds the opcode for a mnemonic such as "FL+".
func LookupMnemonic(m string) (Op, bool) {
	op, ok := opByMnemonic[m]
	return op, ok
}

// Command is one decoded instruction.
type Command struct {
	Op   Op
	Args [MaxArgs]int
	Text string
}

// Arg returns operand i.
func (c Command) Arg(i int) int {
	return c.Args[i]
}

// String formats the command in source syntax, e.g. <FLJ0005:0003.
func (c Command) String() string {
	if c.Op.HasText() {
		return fmt.Sprintf("%q", c.Text)
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(c.Op.String())
	for i := 0; i < c.Op.Arity(); i++ {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%04d", c.Args[i])
	}
	return sb.String()
}

// Script is an immutable command sequence addressed by offset.
type Script struct {
	ID       ScriptID
	Commands []Command
}

// Len returns the number of commands.
func (s *Script) Len() int {
	return len(s.Commands)
}

// At returns the command at offset, or false past the end.
func (s *Script) At(offset int) (Command, bool) {
	if offset < 0 || offset >= len(s.Commands) {
		return Command{}, false
	}
	return s.Commands[offset], true
}

// CallOperand returns the index of the operand naming a called script.
func (op Op) CallOperand() (int, bool) {
	if !op.Valid() || ops[op].callArg == noArg {
		return 0, false
	}
	return ops[op].callArg, true
}
