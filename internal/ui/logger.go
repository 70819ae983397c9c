// Package ui renders shipit's terminal output: leveled logs, a live
// tail box for streamed engine output, interactive prompts, and plain
// tables. Everything user-facing goes through one Logger so the tail
// box and regular log lines never interleave mid-redraw.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelDebug
)

// syncer matches *os.File and *SyncWriter.
type syncer interface {
	Sync() error
}

// Options configures a Logger.
type Options struct {
	// Out receives user-facing output, normally os.Stdout.
	Out io.Writer

	// TailLines is how many lines the live tail box keeps. <=0 means 8.
	TailLines int

	// EnableTail turns on the live tail box. Leave off when Out is not
	// a terminal: the box redraws with ANSI cursor movement.
	EnableTail bool

	// LogLevel caps what reaches Out. Everything always reaches the
	// full log once a writer is set.
	LogLevel LogLevel

	// Component tags each line with its origin, e.g. "shipit:release".
	Component string
}

// Logger writes leveled lines to stdout and mirrors everything into a
// full-log writer. Lines logged before the full-log writer exists are
// buffered and flushed when it is set.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	full      io.Writer
	pending   []string
	style     styles
	level     LogLevel
	component string

	tail       *tailState
	tailLines  int
	enableTail bool
}

type styles struct {
	info      lipgloss.Style
	warn      lipgloss.Style
	err       lipgloss.Style
	banner    lipgloss.Style
	tailBox   lipgloss.Style
	tailTitle lipgloss.Style
}

func newStyles() styles {
	return styles{
		info:      lipgloss.NewStyle(),
		warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		err:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		banner:    lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder()).Padding(0, 1).Margin(1, 0),
		tailBox:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		tailTitle: lipgloss.NewStyle().Bold(true),
	}
}

// New creates a Logger.
func New(opts Options) *Logger {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 8
	}
	return &Logger{
		out:        opts.Out,
		style:      newStyles(),
		level:      opts.LogLevel,
		component:  opts.Component,
		tailLines:  opts.TailLines,
		enableTail: opts.EnableTail,
	}
}

func (l *Logger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetComponent(component string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.component = component
}

// SetFullLogWriter attaches the run-log destination and flushes any
// buffered lines. A second call is ignored with a complaint: the run
// log is opened once per process.
func (l *Logger) SetFullLogWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full != nil {
		fmt.Fprintln(l.out, l.style.err.Render("full log writer already set, ignoring"))
		return
	}
	l.full = w
	for _, line := range l.pending {
		io.WriteString(l.full, line)
	}
	l.pending = nil
}

// Close finalizes any live tail and closes the full log if closable.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tail != nil && !l.tail.closed {
		l.finalizeTailLocked()
	}
	if c, ok := l.full.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *Logger) Error(format string, args ...any) {
	l.printLog(false, "ERR ", l.style.err, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.printLog(l.level < LogLevelWarn, "WARN", l.style.warn, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.printLog(l.level < LogLevelInfo, "INFO", l.style.info, format, args...)
}

// InfoSilent records a line in the full log only.
func (l *Logger) InfoSilent(format string, args ...any) {
	l.printLog(true, "INFO", l.style.info, format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if l.level >= LogLevelDebug {
		l.printLog(false, "DEBG", l.style.info, format, args...)
	}
}

func (l *Logger) Spacer() {
	l.printLog(false, "", l.style.info, "")
}

// Banner prints a boxed title marking a pipeline phase.
func (l *Logger) Banner(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearLiveTailLocked()
	l.writeFullLocked(fmt.Sprintf("\n===== %s =====\n\n", title))
	if s, ok := l.full.(syncer); ok {
		s.Sync()
	}
	fmt.Fprintln(l.out, l.style.banner.Render(title))
	l.redrawLiveTailLocked()
}

func (l *Logger) printLog(silent bool, level string, style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	tag := ""
	if l.component != "" {
		tag = "[" + l.component + "] "
	}
	fullLine := tag + msg + "\n"
	stdoutLine := fmt.Sprintf("[%s] %s%s", time.Now().Format("2006-01-02T15:04:05.000"), tag, msg)
	if level != "" {
		fullLine = fmt.Sprintf("[%s] %s%s\n", level, tag, msg)
		stdoutLine = fmt.Sprintf("[%s] [%s] %s%s", time.Now().Format("2006-01-02T15:04:05.000"), level, tag, msg)
	}

	l.writeFullLocked(fullLine)
	if silent {
		return
	}

	l.clearLiveTailLocked()
	fmt.Fprintln(l.out, style.Render(stdoutLine))
	l.redrawLiveTailLocked()
}

// writeFullLocked mirrors a line into the run log, buffering while the
// writer is not attached yet. Caller holds l.mu.
func (l *Logger) writeFullLocked(line string) {
	if l.full != nil {
		io.WriteString(l.full, line)
		return
	}
	l.pending = append(l.pending, line)
}
