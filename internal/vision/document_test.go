package vision

import (
	"encoding/json"
	"strings"
	"testing"
)

const validStructureJSON = `{
  "page_type": "content_slide",
  "title": "Revenue Overview",
  "subtitle": "Q3 2024",
  "content_blocks": [
    {
      "type": "bullet_list",
      "position": {"x": 0.1, "y": 0.3, "width": 0.8, "height": 0.5},
      "hierarchy_level": 2,
      "content": "Key results",
      "items": ["Growth up 12%", "Margins stable"]
    }
  ],
  "layout": "single_column",
  "visual_hierarchy": ["title", "bullet_list"]
}`

func TestParseStructureDocument(t *testing.T) {
	t.Run("strict JSON", func(t *testing.T) {
		doc, err := ParseStructureDocument(validStructureJSON)
		if err != nil {
			t.Fatalf("ParseStructureDocument() error = %v", err)
		}
		if doc.PageType != "content_slide" {
			t.Errorf("PageType = %q", doc.PageType)
		}
		if doc.Title != "Revenue Overview" {
			t.Errorf("Title = %q", doc.Title)
		}
		if len(doc.ContentBlocks) != 1 {
			t.Fatalf("got %d content blocks, want 1", len(doc.ContentBlocks))
		}
		block := doc.ContentBlocks[0]
		if block.Type != "bullet_list" {
			t.Errorf("block type = %q", block.Type)
		}
		if block.Position.X != 0.1 || block.Position.Width != 0.8 {
			t.Errorf("block position = %+v", block.Position)
		}
		if block.HierarchyLevel != 2 {
			t.Errorf("hierarchy level = %d", block.HierarchyLevel)
		}
		if len(block.Items) != 2 {
			t.Errorf("got %d items, want 2", len(block.Items))
		}
		if doc.Layout != "single_column" {
			t.Errorf("Layout = %q", doc.Layout)
		}
	})

	t.Run("fenced with language tag", func(t *testing.T) {
		doc, err := ParseStructureDocument("```json\n" + validStructureJSON + "\n```")
		if err != nil {
			t.Fatalf("ParseStructureDocument() error = %v", err)
		}
		if doc.Title != "Revenue Overview" {
			t.Errorf("Title = %q", doc.Title)
		}
	})

	t.Run("fenced without language tag", func(t *testing.T) {
		doc, err := ParseStructureDocument("```\n" + validStructureJSON + "\n```")
		if err != nil {
			t.Fatalf("ParseStructureDocument() error = %v", err)
		}
		if doc.PageType != "content_slide" {
			t.Errorf("PageType = %q", doc.PageType)
		}
	})

	t.Run("repaired response is still validated", func(t *testing.T) {
		_, err := ParseStructureDocument("```json\n{\"page_type\": \"content_slide\"}\n```")
		if err == nil {
			t.Fatal("expected validation error for fenced partial document")
		}
		if !strings.Contains(err.Error(), "validation") {
			t.Errorf("error = %v, want validation failure", err)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		for _, missing := range []string{"page_type", "title", "content_blocks", "layout"} {
			t.Run(missing, func(t *testing.T) {
				doc := map[string]string{
					"page_type":      `"content_slide"`,
					"title":          `"T"`,
					"content_blocks": `[]`,
					"layout":         `"single_column"`,
				}
				delete(doc, missing)
				var parts []string
				for k, v := range doc {
					parts = append(parts, `"`+k+`": `+v)
				}
				payload := "{" + strings.Join(parts, ", ") + "}"

				if _, err := ParseStructureDocument(payload); err == nil {
					t.Errorf("expected error with %s missing", missing)
				}
			})
		}
	})

	t.Run("optional fields may be absent", func(t *testing.T) {
		doc, err := ParseStructureDocument(`{"page_type": "title_slide", "title": "T", "content_blocks": [], "layout": "title_only"}`)
		if err != nil {
			t.Fatalf("ParseStructureDocument() error = %v", err)
		}
		if doc.Subtitle != "" || doc.VisualHierarchy != nil {
			t.Errorf("unexpected optional values: %+v", doc)
		}
	})

	t.Run("null title counts as present", func(t *testing.T) {
		// Field presence is the contract. A null decodes to the empty
		// string downstream.
		doc, err := ParseStructureDocument(`{"page_type": "content_slide", "title": null, "content_blocks": [], "layout": "custom"}`)
		if err != nil {
			t.Fatalf("ParseStructureDocument() error = %v", err)
		}
		if doc.Title != "" {
			t.Errorf("Title = %q, want empty", doc.Title)
		}
	})

	t.Run("content_blocks must be an array", func(t *testing.T) {
		_, err := ParseStructureDocument(`{"page_type": "content_slide", "title": "T", "content_blocks": "none", "layout": "custom"}`)
		if err == nil {
			t.Error("expected validation error for non-array content_blocks")
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		if _, err := ParseStructureDocument("The slide shows a revenue chart."); err == nil {
			t.Error("expected error for prose response")
		}
	})

	t.Run("empty response", func(t *testing.T) {
		if _, err := ParseStructureDocument(""); err == nil {
			t.Error("expected error for empty response")
		}
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no tag", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"missing closing fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"not fenced", `{"a": 1}`, ""},
		{"fence only", "```", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFallback(t *testing.T) {
	doc := Fallback(7)

	if doc.PageType != "content_slide" {
		t.Errorf("PageType = %q", doc.PageType)
	}
	if doc.Title != "Slide 7" {
		t.Errorf("Title = %q, want %q", doc.Title, "Slide 7")
	}
	if len(doc.ContentBlocks) != 0 {
		t.Errorf("got %d content blocks, want none", len(doc.ContentBlocks))
	}
	if doc.Layout != "single_column" {
		t.Errorf("Layout = %q", doc.Layout)
	}
	if len(doc.VisualHierarchy) != 1 || doc.VisualHierarchy[0] != "title" {
		t.Errorf("VisualHierarchy = %v", doc.VisualHierarchy)
	}

	t.Run("passes validation", func(t *testing.T) {
		payload, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if _, err := ParseStructureDocument(string(payload)); err != nil {
			t.Errorf("fallback rejected by its own validator: %v", err)
		}
	})
}
