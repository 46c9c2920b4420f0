package tsc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	tokenHeader = iota
	tokenCommand
	tokenLabel
	tokenText
	tokenSlash
	tokenNewline
	tokenComment
)

const operandPattern = `([\-]?[0-9]+|@[a-zA-Z_][a-zA-Z0-9_]*)`

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`#[0-9]+`), getToken(tokenHeader))
	lexer.Add([]byte(`<[A-Z0-9\+\-][A-Z0-9\+\-][A-Z0-9\+\-](`+operandPattern+`(:`+operandPattern+`)*)?`), getToken(tokenCommand))
	lexer.Add([]byte(`@[a-zA-Z_][a-zA-Z0-9_]*`), getToken(tokenLabel))
	lexer.Add([]byte(`//[^\n]*`), getToken(tokenComment))
	lexer.Add([]byte(`/`), getToken(tokenSlash))
	lexer.Add([]byte(`\r?\n`), getToken(tokenNewline))
	lexer.Add([]byte(`[^<@#/\r\n]+`), getToken(tokenText))
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

// AsmError is a source error with its location.
type AsmError struct {
	Name string
	Line int
	Msg  string
}

func (e *AsmError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
}

// pendingLabel is a label operand waiting for its definition.
type pendingLabel struct {
	offset int
	arg    int
	name   string
	line   int
}

// assembler holds the state of one Assemble call.
type assembler struct {
	name    string
	scripts []*Script
	cur     *Script
	labels  map[string]int
	fixups  []pendingLabel
	text    strings.Builder
	inText  bool // Last token was text, so a newline joins it
	textAt  int  // Line the pending text starts on
	seen    map[ScriptID]bool
}

// Assemble compiles script source into scripts in file order.
// name is used in error messages.
func Assemble(name string, source []byte) ([]*Script, error) {
	scanner, err := lexer.Scanner(source)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to create lexer scanner", name)
	}

	a := &assembler{name: name, seen: make(map[ScriptID]bool)}
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, a.errorf(ui.StartLine, "unexpected input %q", snippet(ui.Text, ui.StartTC))
			}
			return nil, errors.Wrapf(err, "%s: failed to scan", name)
		}
		tok := itok.(*lexmachine.Token)
		lexeme := string(tok.Lexeme)

		switch tok.Type {
		case tokenHeader:
			if err := a.flushText(); err != nil {
				return nil, err
			}
			if err := a.startScript(lexeme[1:], tok.StartLine); err != nil {
				return nil, err
			}
		case tokenCommand:
			if err := a.flushText(); err != nil {
				return nil, err
			}
			if err := a.command(lexeme, tok.StartLine); err != nil {
				return nil, err
			}
		case tokenLabel:
			if err := a.flushText(); err != nil {
				return nil, err
			}
			if err := a.defineLabel(lexeme[1:], tok.StartLine); err != nil {
				return nil, err
			}
		case tokenText, tokenSlash:
			if a.text.Len() == 0 {
				a.textAt = tok.StartLine
			}
			a.text.WriteString(lexeme)
			a.inText = true
		case tokenNewline:
			if a.inText {
				a.text.WriteByte('\n')
			}
		case tokenComment:
			a.inText = false
		}
	}

	if err := a.flushText(); err != nil {
		return nil, err
	}
	if err := a.finishScript(); err != nil {
		return nil, err
	}
	return a.scripts, nil
}

func snippet(text []byte, at int) string {
	if at < 0 || at >= len(text) {
		return ""
	}
	end := at + 8
	if end > len(text) {
		end = len(text)
	}
	return string(text[at:end])
}

func (a *assembler) errorf(line int, format string, args ...interface{}) error {
	return errors.WithStack(&AsmError{Name: a.name, Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (a *assembler) startScript(digits string, line int) error {
	if err := a.finishScript(); err != nil {
		return err
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > MaxScriptID {
		return a.errorf(line, "script id %q out of range", digits)
	}
	id := ScriptID(n)
	if a.seen[id] {
		return a.errorf(line, "duplicate script #%04d", id)
	}
	a.seen[id] = true
	a.cur = &Script{ID: id}
	a.labels = make(map[string]int)
	a.fixups = nil
	return nil
}

func (a *assembler) finishScript() error {
	if a.cur == nil {
		return nil
	}
	for _, f := range a.fixups {
		target, ok := a.labels[f.name]
		if !ok {
			return a.errorf(f.line, "undefined label @%s in script #%04d", f.name, a.cur.ID)
		}
		a.cur.Commands[f.offset].Args[f.arg] = target
	}
	a.scripts = append(a.scripts, a.cur)
	a.cur = nil
	return nil
}

// flushText emits accumulated text as a TXT command.
// Whitespace-only runs are dropped and trailing blanks trimmed.
func (a *assembler) flushText() error {
	s := strings.TrimRight(a.text.String(), " \t")
	a.text.Reset()
	a.inText = false
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if a.cur == nil {
		return a.errorf(a.textAt, "text outside a script: %q", strings.TrimSpace(s))
	}
	a.cur.Commands = append(a.cur.Commands, Command{Op: OpText, Text: s})
	return nil
}

func (a *assembler) defineLabel(name string, line int) error {
	if a.cur == nil {
		return a.errorf(line, "label @%s outside a script", name)
	}
	if _, dup := a.labels[name]; dup {
		return a.errorf(line, "label @%s defined twice", name)
	}
	a.labels[name] = len(a.cur.Commands)
	return nil
}

func (a *assembler) command(lexeme string, line int) error {
	if a.cur == nil {
		return a.errorf(line, "command %s outside a script", lexeme)
	}
	mnemonic := lexeme[1:4]
	op, ok := LookupMnemonic(mnemonic)
	if !ok || op.HasText() {
		return a.errorf(line, "unknown command <%s", mnemonic)
	}

	var operands []string
	if rest := lexeme[4:]; rest != "" {
		operands = strings.Split(rest, ":")
	}
	if len(operands) != op.Arity() {
		return a.errorf(line, "<%s takes %d operands, got %d", mnemonic, op.Arity(), len(operands))
	}

	cmd := Command{Op: op}
	offset := len(a.cur.Commands)
	jumpArg, canJump := op.JumpOperand()
	for i, operand := range operands {
		if strings.HasPrefix(operand, "@") {
			if !canJump || i != jumpArg {
				return a.errorf(line, "<%s operand %d cannot be a label", mnemonic, i+1)
			}
			a.fixups = append(a.fixups, pendingLabel{offset: offset, arg: i, name: operand[1:], line: line})
			continue
		}
		v, err := strconv.Atoi(operand)
		if err != nil || v < -1<<31 || v > 1<<31-1 {
			return a.errorf(line, "<%s operand %q is not a 32-bit integer", mnemonic, operand)
		}
		cmd.Args[i] = v
	}
	a.cur.Commands = append(a.cur.Commands, cmd)
	return nil
}

// Load builds a table from data, which is either a blob or source text.
// CAL targets must resolve in data or in extern.
func Load(name string, data []byte, extern Resolver) (*Table, error) {
	if IsBlob(data) {
		t, err := Decode(data, extern)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		return t, nil
	}
	scripts, err := Assemble(name, data)
	if err != nil {
		return nil, err
	}
	t, err := NewTable(scripts, extern)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return t, nil
}
