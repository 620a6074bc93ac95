package terminal

// Kind styles a line of terminal output.
type Kind string

const (
	KindNormal  Kind = "normal"
	KindCommand Kind = "command"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Line is one row of terminal output.
type Line struct {
	Kind Kind
	Text string
}

const DefaultBufferLines = 100

// Buffer is an append-only line log that drops its oldest lines once it
// holds more than its capacity.
type Buffer struct {
	lines []Line
	max   int
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferLines
	}
	return &Buffer{max: max}
}

func (b *Buffer) Append(kind Kind, text string) {
	b.lines = append(b.lines, Line{Kind: kind, Text: text})
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append(b.lines[:0:0], b.lines[over:]...)
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *Buffer) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) Len() int { return len(b.lines) }

func (b *Buffer) Cap() int { return b.max }

func (b *Buffer) Clear() { b.lines = nil }
