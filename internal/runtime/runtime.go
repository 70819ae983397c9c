package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	hostappconfig "github.com/adatari/shipit/internal/apps/shipit/config"
	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/ui"
)

// ExitCoder is implemented by errors that carry a specific process exit
// code. Finalize checks for it on the command error; plain errors exit 1.
type ExitCoder interface {
	error
	ExitCode() int
}

type Runtime struct {
	runID string

	ctx        context.Context    // global context
	cancelFunc context.CancelFunc // cancelFunc of global context

	mu sync.Mutex

	wg              sync.WaitGroup
	shutdownTimeout time.Duration

	firstFailErr error
}

func (rt *Runtime) CancelCtx() {
	rt.cancelFunc()
}

func (rt *Runtime) Ctx() context.Context {
	return rt.ctx
}

func (rt *Runtime) RunID() string {
	return rt.runID
}

type runtimeKey struct{}

func New() *Runtime {
	baseCtx, cancel := context.WithCancel(context.Background())
	runID := strconv.FormatInt(time.Now().Unix(), 10)
	rt := &Runtime{
		runID:           runID,
		cancelFunc:      cancel,
		shutdownTimeout: 5 * time.Second,
	}
	// Context carries exactly one value, the Runtime pointer itself.
	// Commands load it once at their root handler and pass it explicitly
	// from there; nothing below the cmd layer touches FromContext.
	ctx := context.WithValue(baseCtx, runtimeKey{}, rt)
	rt.ctx = ctx
	return rt
}

func FromContext(ctx context.Context) *Runtime {
	v := ctx.Value(runtimeKey{})
	if v == nil {
		return nil
	}
	rt, _ := v.(*Runtime)
	return rt
}

func FromContextOrPanic(ctx context.Context) *Runtime {
	rt := FromContext(ctx)
	if rt == nil {
		panic(errors.New("runtime not found in this context"))
	}
	return rt
}

// OpenRunLog attaches the per-run log file to the logs facade. Lines
// logged before this call are buffered by the logger and flushed here.
func (rt *Runtime) OpenRunLog() {
	f, err := hostappconfig.RunLogPathOpen(rt.RunID())
	if err != nil {
		logs.Warnf("can't open run log file: %v", err)
		return
	}
	// SyncWriter keeps the file readable by other processes mid-run;
	// TimestampWriter stamps at the final destination so tail lines and
	// log lines share a timeline.
	syncWriter := ui.NewSyncWriter(f, 200*time.Millisecond)
	logs.SetFullLogWriter(ui.NewTimestampWriter(syncWriter))
}

// GoNamed runs fn in a new goroutine, with panic recovery.
//
// Contract:
//   - If fn panics, the panic is recovered, wrapped into an error, recorded,
//     and the context is cancelled.
//   - Runtime.Wait() will wait for all such goroutines and return the first error.
func (rt *Runtime) GoNamed(name string, fn func()) {
	if name == "" {
		name = "annonymous"
	}
	rt.wg.Go(func() {
		logs.Debugf("%s goroutine start", name)
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v\n%s", r, debug.Stack())
				rt.mu.Lock()
				if rt.firstFailErr == nil {
					rt.firstFailErr = err
					// cancel everyone on first failure
					rt.cancelFunc()
				}
				rt.mu.Unlock()
			}
		}()

		fn()
		logs.Debugf("%s goroutine finish", name)
	})
}

func (rt *Runtime) Wait() error {
	rt.wg.Wait()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.firstFailErr
}

func (rt *Runtime) OnShutdown(fn func(ctx context.Context)) {
	rt.GoNamed("OnShutdown", func() {
		// wait until runtime context is cancelled
		<-rt.ctx.Done()

		cleanupCtx, cancel := context.WithTimeout(context.Background(), rt.shutdownTimeout)
		defer cancel()

		fn(cleanupCtx)
	})
}

// Finalize handles both panic and normal exit.
// Call it in a defer at the top of main.
func (rt *Runtime) Finalize(appName, helpHint string, execErr *error) {
	// detect panic
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "%s panic: %v\n", appName, r)
		fmt.Fprintf(os.Stderr, "%s\n", debug.Stack())
		fmt.Fprintln(os.Stderr, "")
		if helpHint != "" {
			fmt.Fprintln(os.Stderr, helpHint)
		}

		// cancel & wait so OnShutdown hooks run
		rt.CancelCtx()
		_ = rt.Wait()

		logs.Close()
		os.Exit(1)
	}

	// trigger OnShutdown hooks
	rt.CancelCtx()
	waitErr := rt.Wait()

	if execErr != nil && *execErr != nil {
		logs.Errorf("%s error: %v", appName, *execErr)
		if helpHint != "" {
			fmt.Fprintln(os.Stderr, helpHint)
		}
		logs.Close()

		var ec ExitCoder
		if errors.As(*execErr, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}

	if waitErr != nil {
		logs.Errorf("%s fail reason: %v", appName, waitErr)
		logs.Close()
		os.Exit(1)
	}

	logs.Close()
}
