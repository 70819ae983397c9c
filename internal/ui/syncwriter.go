package ui

import (
	"io"
	"os"
	"sync"
	"time"
)

// SyncWriter wraps an *os.File and fsyncs it on an interval instead of
// after every write, so the run log stays readable by other processes
// without per-line sync cost.
type SyncWriter struct {
	f        *os.File
	mu       sync.Mutex
	dirty    bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	interval time.Duration
}

var _ io.WriteCloser = (*SyncWriter)(nil)

// NewSyncWriter starts the background sync loop. interval <= 0
// defaults to 200ms.
func NewSyncWriter(f *os.File, interval time.Duration) *SyncWriter {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	sw := &SyncWriter{
		f:        f,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		interval: interval,
	}
	go sw.loop()
	return sw
}

func (sw *SyncWriter) loop() {
	defer close(sw.doneCh)
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.Sync()
		case <-sw.stopCh:
			sw.Sync()
			return
		}
	}
}

func (sw *SyncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	n, err := sw.f.Write(p)
	if n > 0 {
		sw.dirty = true
	}
	return n, err
}

// Sync flushes to disk now if there is anything unflushed.
func (sw *SyncWriter) Sync() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if !sw.dirty {
		return nil
	}
	sw.dirty = false
	return sw.f.Sync()
}

// Close stops the loop and closes the file.
func (sw *SyncWriter) Close() error {
	close(sw.stopCh)
	<-sw.doneCh
	return sw.f.Close()
}

// TimestampWriter prefixes each write with a wall-clock timestamp.
// Used at the run-log destination so tail lines and log lines share a
// timeline.
type TimestampWriter struct {
	w io.Writer
}

func NewTimestampWriter(w io.Writer) *TimestampWriter {
	return &TimestampWriter{w: w}
}

func (tw *TimestampWriter) Write(p []byte) (int, error) {
	stamp := time.Now().Format("2006-01-02T15:04:05.000")
	if _, err := tw.w.Write([]byte("[" + stamp + "] " + string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (tw *TimestampWriter) Sync() error {
	if s, ok := tw.w.(syncer); ok {
		return s.Sync()
	}
	return nil
}

func (tw *TimestampWriter) Close() error {
	if c, ok := tw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
