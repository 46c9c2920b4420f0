package game

import "strings"

// TextBox is the dialogue box written by text script commands.
// Text is appended whole and revealed a few characters per frame.
type TextBox struct {
	Visible bool
	Framed  bool // Bottom box with border; false is the frameless top box
	Face    int  // Portrait id, 0 for none
	Instant bool // Reveal appended text immediately

	text     []rune
	revealed int
}

// Open shows the box, clears it and leaves instant mode.
func (t *TextBox) Open(framed bool) {
	t.Visible = true
	t.Framed = framed
	t.Instant = false
	t.Face = 0
	t.Clear()
}

// Clear removes all text but keeps the box open.
func (t *TextBox) Clear() {
	t.text = t.text[:0]
	t.revealed = 0
}

// Close hides the box and drops its content.
func (t *TextBox) Close() {
	t.Visible = false
	t.Face = 0
	t.Instant = false
	t.Clear()
}

// Append adds a run of text. In instant mode it is revealed at once.
func (t *TextBox) Append(s string) {
	t.text = append(t.text, []rune(s)...)
	if t.Instant {
		t.revealed = len(t.text)
	}
}

// Reveal shows up to n more characters and returns how many were revealed.
func (t *TextBox) Reveal(n int) int {
	left := len(t.text) - t.revealed
	if n > left {
		n = left
	}
	if n < 0 {
		n = 0
	}
	t.revealed += n
	return n
}

// RevealAll shows all pending text.
func (t *TextBox) RevealAll() {
	t.revealed = len(t.text)
}

// FullyRevealed reports whether every appended character has been shown.
func (t *TextBox) FullyRevealed() bool {
	return t.revealed >= len(t.text)
}

// Text returns the full content, revealed or not.
func (t *TextBox) Text() string {
	return string(t.text)
}

// Shown returns the revealed prefix of the content.
func (t *TextBox) Shown() string {
	return string(t.text[:t.revealed])
}

// Progress returns the revealed and total character counts.
func (t *TextBox) Progress() (revealed, total int) {
	return t.revealed, len(t.text)
}

// Lines wraps the revealed text to width, keeping the last maxLines lines.
func (t *TextBox) Lines(width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	var out []string
	for _, para := range strings.Split(t.Shown(), "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > width {
			cut := width
			for i := width; i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(runes[:cut]), " "))
			runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		}
		out = append(out, string(runes))
	}
	if len(out) > maxLines {
		out = out[len(out)-maxLines:]
	}
	return out
}
