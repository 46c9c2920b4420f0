package tsc

import (
	"errors"
	"strings"
	"testing"
)

const sampleSource = `// greeting
#0200
<KEY<MSG
Hello there.<NOD<CLR
<FL+0005<FLJ0005:@seen
<FL+0006
@seen
<END

#0201
Line one
Line two<NOD<END
`

func TestAssembleSample(t *testing.T) {
	scripts, err := Assemble("sample.tsc", []byte(sampleSource))
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(scripts))
	}

	s := scripts[0]
	if s.ID != 200 {
		t.Errorf("ID = %d, expected 200", s.ID)
	}
	want := []Command{
		{Op: OpKeyLock},
		{Op: OpMessage},
		{Op: OpText, Text: "Hello there."},
		{Op: OpNod},
		{Op: OpClear},
		{Op: OpFlagSet, Args: [MaxArgs]int{5}},
		{Op: OpFlagJump, Args: [MaxArgs]int{5, 8}},
		{Op: OpFlagSet, Args: [MaxArgs]int{6}},
		{Op: OpEnd},
	}
	if s.Len() != len(want) {
		t.Fatalf("script 200 has %d commands, expected %d: %v", s.Len(), len(want), s.Commands)
	}
	for i := range want {
		if s.Commands[i] != want[i] {
			t.Errorf("command %d = %v, expected %v", i, s.Commands[i], want[i])
		}
	}

	text, _ := scripts[1].At(0)
	if text.Text != "Line one\nLine two" {
		t.Errorf("multi-line text = %q", text.Text)
	}
}

func TestAssembleSlashInText(t *testing.T) {
	scripts, err := Assemble("s", []byte("#0001\n<MSG\nand/or<END\n"))
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := scripts[0].At(1)
	if cmd.Op != OpText || cmd.Text != "and/or" {
		t.Errorf("text = %v", cmd)
	}
}

func TestAssembleNegativeOperand(t *testing.T) {
	scripts, err := Assemble("s", []byte("#0001\n<CAR0010:-0002:0001:0004<END"))
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := scripts[0].At(0)
	if cmd.Args != [MaxArgs]int{10, -2, 1, 4} {
		t.Errorf("Args = %v", cmd.Args)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unknown command", "#0001\n<ZZZ", 2, "unknown command"},
		{"wrong arity", "#0001\n\n<FL+0001:0002", 3, "takes 1 operands"},
		{"undefined label", "#0001\n<JMP@nowhere<END", 2, "undefined label"},
		{"label on non-jump operand", "#0001\n<FLJ@x:0001\n@x", 2, "cannot be a label"},
		{"text before header", "hello\n#0001", 1, "outside a script"},
		{"duplicate script", "#0001\n<END\n#0001\n<END", 3, "duplicate script"},
		{"duplicate label", "#0001\n@a\n@a\n<END", 3, "defined twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble("bad.tsc", []byte(tt.src))
			var ae *AsmError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *AsmError, got %v", err)
			}
			if ae.Line != tt.line {
				t.Errorf("Line = %d, expected %d (%v)", ae.Line, tt.line, ae)
			}
			if !strings.Contains(ae.Msg, tt.msg) {
				t.Errorf("Msg = %q, expected it to contain %q", ae.Msg, tt.msg)
			}
		})
	}
}

func TestLoadDetectsFormat(t *testing.T) {
	scripts, err := Assemble("s", []byte("#0005\n<FL+0001<END"))
	if err != nil {
		t.Fatal(err)
	}
	blob, err := Encode(scripts)
	if err != nil {
		t.Fatal(err)
	}

	fromBlob, err := Load("s.tsb", blob, nil)
	if err != nil {
		t.Fatalf("Load(blob) failed: %v", err)
	}
	fromSource, err := Load("s.tsc", []byte("#0005\n<FL+0001<END"), nil)
	if err != nil {
		t.Fatalf("Load(source) failed: %v", err)
	}
	a, _ := fromBlob.Lookup(5)
	b, _ := fromSource.Lookup(5)
	if a == nil || b == nil || a.Len() != b.Len() {
		t.Fatalf("tables differ: %v vs %v", a, b)
	}

	if _, err := Load("s.tsc", []byte("#0005\n<CAL0009"), nil); err == nil {
		t.Error("dangling call in source should fail")
	}
}
