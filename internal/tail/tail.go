// Package tail reads range files line by line.
//
// In follow mode it keeps watching the file like "tail -f" and hands every
// appended line to the caller, surviving rotation when asked to.
package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrRotated is returned when the followed file is removed or renamed and
// FollowRotate is off.
var ErrRotated = errors.New("file rotated")

// Line is one non-empty line of the file. Number counts from 1 and restarts
// when a rotated file is reopened.
type Line struct {
	Number int
	Text   string
}

// Options configures the tailer behavior.
type Options struct {
	FilePath     string
	Follow       bool   // keep reading appended lines until ctx is done
	FollowRotate bool   // reopen the file after it is renamed or removed
	Comment      string // lines starting with this prefix are skipped
	OnLine       func(Line) error
	Logger       *slog.Logger
}

// Tailer reads one file.
type Tailer struct {
	opts    Options
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	lineNum int
	watcher *fsnotify.Watcher
}

// New creates a new Tailer with the given options.
func New(opts Options) *Tailer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tailer{opts: opts}
}

// Run reads the whole file, then follows it if asked. It blocks until the
// file is read, ctx is cancelled or an error occurs.
func (t *Tailer) Run(ctx context.Context) error {
	if err := t.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer t.close()

	if !t.opts.Follow {
		return t.readLines(true)
	}

	// Watch before the first read so no append is missed in between.
	if err := t.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}
	if err := t.readLines(false); err != nil {
		return err
	}
	return t.watch(ctx)
}

func (t *Tailer) openFile() error {
	f, err := os.Open(t.opts.FilePath)
	if err != nil {
		return err
	}
	t.file = f
	t.reader = bufio.NewReader(f)
	t.offset = 0
	t.lineNum = 0
	return nil
}

// readLines emits every complete line from the current offset. A trailing
// line without newline is emitted only when final is set; otherwise it is
// left for the next write to complete.
func (t *Tailer) readLines(final bool) error {
	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	t.reader.Reset(t.file)

	for {
		text, err := t.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			if text != "" && final {
				t.offset += int64(len(text))
				return t.emit(text)
			}
			return nil
		}
		if err != nil {
			return err
		}

		t.offset += int64(len(text))
		if err := t.emit(text); err != nil {
			return err
		}
	}
}

func (t *Tailer) emit(text string) error {
	t.lineNum++

	text = strings.TrimRight(text, "\r\n")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if t.opts.Comment != "" && strings.HasPrefix(trimmed, t.opts.Comment) {
		return nil
	}
	if t.opts.OnLine == nil {
		return nil
	}
	return t.opts.OnLine(Line{Number: t.lineNum, Text: text})
}

func (t *Tailer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher

	return watcher.Add(t.opts.FilePath)
}

// watch monitors the file for changes and emits new lines.
func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-t.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}

			if err := t.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (t *Tailer) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return t.readLines(false)

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return t.handleRotation(ctx)
	}

	return nil
}

func (t *Tailer) handleRotation(ctx context.Context) error {
	if !t.opts.FollowRotate {
		return ErrRotated
	}

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return fmt.Errorf("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			if _, err := os.Stat(t.opts.FilePath); err != nil {
				continue
			}
			if err := t.openFile(); err != nil {
				return err
			}
			if err := t.watcher.Add(t.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}

			t.opts.Logger.Info("file rotated, following new file", "file", t.opts.FilePath)
			return t.readLines(false)
		}
	}
}

func (t *Tailer) close() {
	if t.file != nil {
		t.file.Close()
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
}
