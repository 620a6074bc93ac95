package terminal

import (
	"fmt"
	"strings"
)

// output collects the lines of a single command.
type output struct {
	lines []Line
	clear bool
}

func (o *output) add(kind Kind, text string) {
	o.lines = append(o.lines, Line{Kind: kind, Text: text})
}

// block adds a multi-line text as normal lines, trimming the surrounding
// blank lines.
func (o *output) block(text string) {
	for _, l := range strings.Split(strings.Trim(text, "\n"), "\n") {
		o.add(KindNormal, l)
	}
}

func (o *output) printf(format string, args ...any) {
	o.add(KindNormal, fmt.Sprintf(format, args...))
}

func (o *output) info(text string)    { o.add(KindInfo, text) }
func (o *output) success(text string) { o.add(KindSuccess, text) }
func (o *output) warning(text string) { o.add(KindWarning, text) }

func (o *output) errorf(format string, args ...any) {
	o.add(KindError, fmt.Sprintf(format, args...))
}

func (o *output) blank() { o.add(KindNormal, "") }

// reset drops everything, the echo included, and marks the buffer for
// clearing.
func (o *output) reset() {
	o.lines = nil
	o.clear = true
}
