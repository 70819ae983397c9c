package logs

import (
	"io"
	"os"
	"sync"

	"github.com/moby/term"

	"github.com/adatari/shipit/internal/ui"
)

var (
	initOnce sync.Once
	logger   *ui.Logger
)

func Init() {
	initOnce.Do(func() {
		opts := ui.Options{
			Out:        os.Stdout,
			TailLines:  15,
			EnableTail: term.IsTerminal(os.Stdout.Fd()),
			LogLevel:   ui.LogLevelWarn,
		}
		logger = ui.New(opts)
		logger.Debug("logs initialized with opts %v", opts)
	})
}

func L() *ui.Logger {
	Init()
	return logger
}

func SetDebugVerbosity(cnt int) {
	switch {
	case cnt <= 0:
		// Warn is the default: warnings must reach the terminal without -v.
		L().SetLogLevel(ui.LogLevelWarn)
	default:
		L().SetLogLevel(ui.LogLevelDebug)
	}
}

func SetComponent(component string) {
	L().SetComponent(component)
}

func SetFullLogWriter(w io.Writer) {
	L().SetFullLogWriter(w)
}

func Banner(title string) {
	L().Banner(title)
}

func Spacer() {
	L().Spacer()
}

func Infof(format string, args ...any) {
	L().Info(format, args...)
}

func InfofSilent(format string, args ...any) {
	L().InfoSilent(format, args...)
}

func Debugf(format string, args ...any) {
	L().Debug(format, args...)
}

func Warnf(format string, args ...any) {
	L().Warn(format, args...)
}

func Errorf(format string, args ...any) {
	L().Error(format, args...)
}

func NewTailBox(name string) ui.Tail {
	return L().NewTail(name)
}

func PromptInput(label string) (string, error) {
	return L().AskInput(label)
}

func PromptSecret(label string) (string, error) {
	return L().AskSecret(label)
}

func PromptConfirm(text string) (bool, error) {
	return L().Confirm(text)
}

// Close closes the underlying log file, if any.
func Close() error {
	if logger != nil {
		return logger.Close()
	}
	return nil
}
