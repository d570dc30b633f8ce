package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWatcher(dir string, convert ConvertFunc) *Watcher {
	return New(Config{
		Dir:          dir,
		PollInterval: 10 * time.Millisecond,
		StablePolls:  2,
		Logger:       testLogger(),
	}, convert)
}

// startWatcher runs w in the background and returns its cancel func
// and a channel carrying Run's result.
func startWatcher(t *testing.T, w *Watcher) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func TestWatcherConvertsDroppedPDF(t *testing.T) {
	dir := t.TempDir()
	converted := make(chan string, 4)
	w := newTestWatcher(dir, func(ctx context.Context, pdfPath string) error {
		converted <- pdfPath
		return nil
	})
	startWatcher(t, w)

	path := filepath.Join(dir, "deck.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}

	select {
	case got := <-converted:
		if got != path {
			t.Errorf("converted %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("conversion was not triggered")
	}
}

func TestWatcherIgnoresNonPDFFiles(t *testing.T) {
	dir := t.TempDir()
	converted := make(chan string, 4)
	w := newTestWatcher(dir, func(ctx context.Context, pdfPath string) error {
		converted <- pdfPath
		return nil
	})
	startWatcher(t, w)

	for _, name := range []string{"notes.txt", "image.png", "deck.pdf.part"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	// A real PDF afterwards proves the watcher is alive; anything
	// converted before it means a non-PDF slipped through.
	path := filepath.Join(dir, "real.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}

	select {
	case got := <-converted:
		if got != path {
			t.Errorf("converted %q, want only %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("conversion was not triggered")
	}

	select {
	case got := <-converted:
		t.Errorf("unexpected extra conversion of %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherKeepsRunningAfterFailure(t *testing.T) {
	dir := t.TempDir()
	var failures atomic.Int32
	converted := make(chan string, 4)
	w := newTestWatcher(dir, func(ctx context.Context, pdfPath string) error {
		if strings.Contains(pdfPath, "bad") {
			failures.Add(1)
			return errors.New("simulated conversion failure")
		}
		converted <- pdfPath
		return nil
	})
	startWatcher(t, w)

	if err := os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if failures.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if failures.Load() == 0 {
		t.Fatal("failing conversion was never attempted")
	}

	path := filepath.Join(dir, "good.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}

	select {
	case got := <-converted:
		if got != path {
			t.Errorf("converted %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher stopped converting after a failure")
	}
}

func TestWatcherReconvertsChangedFile(t *testing.T) {
	dir := t.TempDir()
	converted := make(chan string, 8)
	w := newTestWatcher(dir, func(ctx context.Context, pdfPath string) error {
		converted <- pdfPath
		return nil
	})
	startWatcher(t, w)

	path := filepath.Join(dir, "deck.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 first"), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}

	select {
	case <-converted:
	case <-time.After(2 * time.Second):
		t.Fatal("first conversion was not triggered")
	}

	// The create/write burst of a single drop converts once.
	select {
	case got := <-converted:
		t.Errorf("event burst converted %q twice", got)
	case <-time.After(200 * time.Millisecond):
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open PDF for append: %v", err)
	}
	if _, err := f.WriteString(" updated"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	f.Close()

	select {
	case got := <-converted:
		if got != path {
			t.Errorf("converted %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("changed file was not reconverted")
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(dir, func(ctx context.Context, pdfPath string) error {
		return nil
	})
	cancel, done := startWatcher(t, w)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := newTestWatcher(filepath.Join(t.TempDir(), "does-not-exist"), func(ctx context.Context, pdfPath string) error {
		return nil
	})
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error for missing watch directory")
	}
}

func TestWaitStable(t *testing.T) {
	newWaiter := func(poll time.Duration, stable int) *Watcher {
		return New(Config{
			Dir:          ".",
			PollInterval: poll,
			StablePolls:  stable,
			Logger:       testLogger(),
		}, nil)
	}

	t.Run("steady file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "steady.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		w := newWaiter(5*time.Millisecond, 2)
		if err := w.waitStable(context.Background(), path); err != nil {
			t.Errorf("waitStable() = %v, want nil", err)
		}
	})

	t.Run("growing file settles before return", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "growing.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		const chunks = 10
		chunk := []byte(strings.Repeat("x", 100))
		wrote := make(chan int64, 1)
		go func() {
			var total int64 = 8
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				for i := 0; i < chunks; i++ {
					f.Write(chunk)
					total += int64(len(chunk))
					time.Sleep(5 * time.Millisecond)
				}
				f.Close()
			}
			wrote <- total
		}()

		w := newWaiter(25*time.Millisecond, 2)
		if err := w.waitStable(context.Background(), path); err != nil {
			t.Fatalf("waitStable() = %v, want nil", err)
		}

		total := <-wrote
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if fi.Size() != total {
			t.Errorf("returned at size %d, want the final %d", fi.Size(), total)
		}
	})

	t.Run("vanished file", func(t *testing.T) {
		w := newWaiter(5*time.Millisecond, 2)
		err := w.waitStable(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
		if err == nil {
			t.Error("expected error for a vanished file")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "steady.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := newWaiter(time.Second, 2)
		if err := w.waitStable(ctx, path); !errors.Is(err, context.Canceled) {
			t.Errorf("waitStable() = %v, want context.Canceled", err)
		}
	})
}
