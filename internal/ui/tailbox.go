package ui

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/moby/term"
)

// tailState is the currently rendered tail box, if any.
type tailState struct {
	name      string
	buf       []string
	boxHeight int
	closed    bool
}

// Tail receives streamed engine output (docker build / push progress)
// and renders the last N lines in a redrawing box. It is an io.Writer
// so it can sit directly behind a progress stream.
type Tail interface {
	Write(p []byte) (int, error)
	Println(msg string)
	Close()
}

type tailHandle struct {
	l       *Logger
	partial []byte
}

// NewTail starts a tail stream, finalizing any previous one into a
// static box first. Only one tail is live at a time.
func (l *Logger) NewTail(name string) Tail {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tail != nil && !l.tail.closed {
		l.finalizeTailLocked()
	}
	l.tail = &tailState{name: name, buf: make([]string, 0, l.tailLines)}
	l.writeFullLocked(fmt.Sprintf("[tail %s] start\n", name))

	return &tailHandle{l: l}
}

func (t *tailHandle) Write(p []byte) (int, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()

	t.partial = append(t.partial, p...)
	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}
		line := t.partial[:i]
		t.partial = t.partial[i+1:]
		// docker progress lines end in \r\n
		line = bytes.TrimRight(line, "\r")
		t.appendLocked(string(line))
	}
	return len(p), nil
}

func (t *tailHandle) Println(msg string) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	t.appendLocked(msg)
}

func (t *tailHandle) Close() {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if len(t.partial) > 0 {
		t.appendLocked(string(t.partial))
		t.partial = nil
	}
	t.l.finalizeTailLocked()
}

// appendLocked records a tail line and redraws. Caller holds l.mu.
func (t *tailHandle) appendLocked(msg string) {
	l := t.l
	if l.tail == nil || l.tail.closed {
		l.writeFullLocked("[tail] " + msg + "\n")
		return
	}

	l.writeFullLocked(fmt.Sprintf("[tail %s] %s\n", l.tail.name, msg))

	if !l.enableTail {
		fmt.Fprintln(l.out, msg)
		return
	}

	l.tail.buf = append(l.tail.buf, fitToWidth(msg, boxWidth()))
	if len(l.tail.buf) > l.tailLines {
		l.tail.buf = l.tail.buf[len(l.tail.buf)-l.tailLines:]
	}

	l.clearLiveTailLocked()
	l.redrawLiveTailLocked()
}

// fitToWidth pads or truncates a line so every box row has the same
// width and redraws don't leave residue from longer previous lines.
// Truncation happens on rune boundaries: engine output can carry
// multi-byte characters and cutting by byte would split one apart.
func fitToWidth(msg string, width int) string {
	runes := []rune(msg)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return msg + strings.Repeat(" ", width-len(runes))
}

func boxWidth() int {
	width := terminalWidth() - 8
	if width < 20 {
		width = 20
	}
	return width
}

func terminalWidth() int {
	if ws, err := term.GetWinsize(os.Stdout.Fd()); err == nil && ws.Width > 0 {
		return int(ws.Width)
	}
	return 120
}

func renderTailBox(title string, lines []string, s styles) string {
	inner := s.tailTitle.Render(title)
	if len(lines) > 0 {
		inner += "\n" + strings.Join(lines, "\n")
	}
	return s.tailBox.Render(inner)
}

// clearLiveTailLocked erases the currently drawn box, if any.
// Caller holds l.mu.
func (l *Logger) clearLiveTailLocked() {
	if !l.enableTail || l.tail == nil || l.tail.boxHeight <= 0 {
		return
	}
	h := l.tail.boxHeight
	fmt.Fprintf(l.out, "\x1b[%dF", h)
	for range h {
		fmt.Fprint(l.out, "\x1b[2K\r\n")
	}
	fmt.Fprintf(l.out, "\x1b[%dF", h)
	l.tail.boxHeight = 0
}

// redrawLiveTailLocked paints the box at the cursor. Caller holds l.mu.
func (l *Logger) redrawLiveTailLocked() {
	if !l.enableTail || l.tail == nil || l.tail.closed || len(l.tail.buf) == 0 {
		return
	}
	box := renderTailBox(l.tail.name, l.tail.buf, l.style)
	fmt.Fprint(l.out, box+"\n")
	l.tail.boxHeight = strings.Count(box, "\n") + 1
}

// finalizeTailLocked clears the live box, leaves a static snapshot on
// screen and in the full log, and closes the tail. Caller holds l.mu.
func (l *Logger) finalizeTailLocked() {
	if l.tail == nil || l.tail.closed {
		return
	}

	l.clearLiveTailLocked()
	if l.enableTail && len(l.tail.buf) > 0 {
		fmt.Fprint(l.out, renderTailBox(l.tail.name, l.tail.buf, l.style)+"\n")
	}
	l.writeFullLocked(fmt.Sprintf("[tail %s] end\n", l.tail.name))

	l.tail.closed = true
	l.tail = nil
}
