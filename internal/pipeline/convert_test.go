package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redeck/redeck/internal/deck"
	"github.com/redeck/redeck/internal/home"
	"github.com/redeck/redeck/internal/providers"
	"github.com/redeck/redeck/internal/vision"
)

const validStructure = `{"page_type": "content_slide", "title": "Quarterly Report", "content_blocks": [], "layout": "single_column"}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRasterizer struct {
	pages    int
	failPage int // 1-indexed page whose render fails, 0 for none
}

func (f *fakeRasterizer) PageCount(pdfPath string) (int, error) {
	return f.pages, nil
}

func (f *fakeRasterizer) RenderPage(pdfPath string, page int) ([]byte, error) {
	if f.failPage != 0 && page == f.failPage {
		return nil, errors.New("rasterizer exploded")
	}
	return []byte(fmt.Sprintf("png bytes for page %d", page)), nil
}

func newTestPipeline(t *testing.T, client *providers.MockVisionClient, ras *fakeRasterizer) (*Pipeline, *home.Dir) {
	t.Helper()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home: %v", err)
	}

	analyzer := vision.New(vision.Config{
		Client:     client,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		Logger:     testLogger(),
	})

	p, err := New(Config{
		Home:       h,
		Rasterizer: ras,
		Analyzer:   analyzer,
		Deck:       deck.New(deck.Config{Logger: testLogger()}),
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, h
}

// readDeckPart extracts one named part from a finished presentation.
func readDeckPart(t *testing.T, path, name string) string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open deck %s: %v", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open part %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read part %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("part %s not found in deck", name)
	return ""
}

func TestConvertProducesDeck(t *testing.T) {
	p, h := newTestPipeline(t, providers.NewMockVisionClient(), &fakeRasterizer{pages: 3})

	out := filepath.Join(t.TempDir(), "deck.pptx")
	summary, err := p.Convert(context.Background(), "/fake/deck.pdf", Options{OutputPath: out})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if summary.RunID == "" {
		t.Error("expected a run ID")
	}
	if summary.OutputPath != out {
		t.Errorf("OutputPath = %q, want %q", summary.OutputPath, out)
	}
	if summary.Pages != 3 || summary.Converted != 3 || summary.Fallback != 0 {
		t.Errorf("summary = %d pages, %d converted, %d fallback; want 3, 3, 0",
			summary.Pages, summary.Converted, summary.Fallback)
	}

	slide := readDeckPart(t, out, "ppt/slides/slide3.xml")
	if !strings.Contains(slide, "Mock") {
		t.Error("slide 3 is missing the analyzed title")
	}

	for page := 1; page <= 3; page++ {
		if _, err := os.Stat(h.PageImagePath(summary.RunID, page)); err != nil {
			t.Errorf("page %d image not saved: %v", page, err)
		}
		if _, err := os.Stat(h.PageStructurePath(summary.RunID, page)); err != nil {
			t.Errorf("page %d structure not saved: %v", page, err)
		}
	}
}

func TestConvertDefaultOutputPath(t *testing.T) {
	p, h := newTestPipeline(t, providers.NewMockVisionClient(), &fakeRasterizer{pages: 1})

	summary, err := p.Convert(context.Background(), "/fake/briefing.pdf", Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	want := h.OutputPath("briefing.pptx")
	if summary.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", summary.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("presentation not written: %v", err)
	}
}

func TestConvertFallbackOnExhaustedRetries(t *testing.T) {
	// Page 2 fails both attempts; pages 1 and 3 analyze normally.
	client := &providers.MockVisionClient{Script: []providers.VisionTurn{
		{Text: validStructure},
		{Err: errors.New("vision API unreachable")},
		{Err: errors.New("vision API unreachable")},
		{Text: validStructure},
	}}
	p, h := newTestPipeline(t, client, &fakeRasterizer{pages: 3})

	out := filepath.Join(t.TempDir(), "deck.pptx")
	summary, err := p.Convert(context.Background(), "/fake/deck.pdf", Options{OutputPath: out})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if summary.Converted != 2 || summary.Fallback != 1 {
		t.Errorf("summary = %d converted, %d fallback; want 2, 1", summary.Converted, summary.Fallback)
	}
	if got := client.RequestCount(); got != 4 {
		t.Errorf("vision calls = %d, want 4", got)
	}

	slide := readDeckPart(t, out, "ppt/slides/slide2.xml")
	if !strings.Contains(slide, "Slide 2") {
		t.Error("degraded page 2 is missing its placeholder title")
	}

	data, err := os.ReadFile(h.PageStructurePath(summary.RunID, 2))
	if err != nil {
		t.Fatalf("page 2 structure not saved: %v", err)
	}
	if !strings.Contains(string(data), "Slide 2") {
		t.Error("saved structure for page 2 is not the placeholder document")
	}
}

func TestConvertRenderFailureAborts(t *testing.T) {
	p, _ := newTestPipeline(t, providers.NewMockVisionClient(), &fakeRasterizer{pages: 3, failPage: 2})

	out := filepath.Join(t.TempDir(), "deck.pptx")
	_, err := p.Convert(context.Background(), "/fake/deck.pdf", Options{OutputPath: out})
	if err == nil {
		t.Fatal("expected error when rendering fails")
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error %q does not name the failed page", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no presentation should be written on an aborted run")
	}
}

func TestConvertCancelledContext(t *testing.T) {
	p, _ := newTestPipeline(t, providers.NewMockVisionClient(), &fakeRasterizer{pages: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Convert(ctx, "/fake/deck.pdf", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() = %v, want context.Canceled", err)
	}
}

func TestDeriveOutputName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deck.pdf", "deck.pptx"},
		{"/drops/inbox/q3-review.pdf", "q3-review.pptx"},
		{"UPPER.PDF", "UPPER.pptx"},
		{"noext", "noext.pptx"},
	}
	for _, tt := range tests {
		if got := DeriveOutputName(tt.in); got != tt.want {
			t.Errorf("DeriveOutputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewValidation(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home: %v", err)
	}
	analyzer := vision.New(vision.Config{Client: providers.NewMockVisionClient(), Logger: testLogger()})
	builder := deck.New(deck.Config{Logger: testLogger()})

	valid := Config{
		Home:       h,
		Rasterizer: &fakeRasterizer{pages: 1},
		Analyzer:   analyzer,
		Deck:       builder,
	}

	if _, err := New(valid); err != nil {
		t.Errorf("New() with full config error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing home", func(c *Config) { c.Home = nil }},
		{"missing rasterizer", func(c *Config) { c.Rasterizer = nil }},
		{"missing analyzer", func(c *Config) { c.Analyzer = nil }},
		{"missing deck builder", func(c *Config) { c.Deck = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
