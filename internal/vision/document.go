package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// StructureDocument is the semantic layout of one slide as inferred by
// the vision model.
type StructureDocument struct {
	PageType        string         `json:"page_type" yaml:"page_type"`
	Title           string         `json:"title" yaml:"title"`
	Subtitle        string         `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	ContentBlocks   []ContentBlock `json:"content_blocks" yaml:"content_blocks"`
	Layout          string         `json:"layout" yaml:"layout"`
	VisualHierarchy []string       `json:"visual_hierarchy,omitempty" yaml:"visual_hierarchy,omitempty"`
}

// ContentBlock is one region of slide content with a normalized
// position.
type ContentBlock struct {
	Type           string        `json:"type" yaml:"type"`
	Position       BlockPosition `json:"position" yaml:"position"`
	HierarchyLevel int           `json:"hierarchy_level" yaml:"hierarchy_level"`
	Content        string        `json:"content" yaml:"content"`
	Items          []string      `json:"items,omitempty" yaml:"items,omitempty"`
}

// BlockPosition locates a block in 0.0-1.0 page-relative coordinates.
type BlockPosition struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// structureSchemaJSON keeps validation close to what the model is
// instructed to produce: the four required fields must be present and
// the basic shapes must hold. Anything extra passes through.
const structureSchemaJSON = `{
  "type": "object",
  "required": ["page_type", "title", "content_blocks", "layout"],
  "properties": {
    "page_type": {"type": "string"},
    "content_blocks": {"type": "array"},
    "layout": {"type": "string"}
  }
}`

var structureSchema = jsonschema.MustCompileString("structure.json", structureSchemaJSON)

// ParseStructureDocument parses a vision response into a validated
// StructureDocument. A strict JSON parse is tried first; when it fails
// and the response is wrapped in a markdown code fence, the fence is
// stripped and the parse retried once.
func ParseStructureDocument(text string) (*StructureDocument, error) {
	payload, err := structureJSON(text)
	if err != nil {
		return nil, err
	}

	var probe any
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode structure document: %w", err)
	}
	if err := structureSchema.Validate(probe); err != nil {
		return nil, fmt.Errorf("structure document failed validation: %w", err)
	}

	var doc StructureDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode structure document: %w", err)
	}
	return &doc, nil
}

// structureJSON returns the parseable JSON payload within text.
func structureJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty vision response")
	}

	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err == nil {
		return []byte(text), nil
	}

	stripped := stripCodeFence(text)
	if stripped == "" {
		return nil, fmt.Errorf("vision response is not valid JSON")
	}
	if err := json.Unmarshal([]byte(stripped), &probe); err != nil {
		return nil, fmt.Errorf("vision response is not valid JSON after removing code fence: %w", err)
	}
	return []byte(stripped), nil
}

// stripCodeFence removes a surrounding markdown code fence, with or
// without a language tag. Returns empty when text is not fenced.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop the opening fence line, language tag included.
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Fallback is the minimal single-title structure substituted when
// analysis of a page fails permanently. It depends on nothing but the
// page number.
func Fallback(pageNum int) *StructureDocument {
	return &StructureDocument{
		PageType:        "content_slide",
		Title:           fmt.Sprintf("Slide %d", pageNum),
		Subtitle:        "",
		ContentBlocks:   []ContentBlock{},
		Layout:          "single_column",
		VisualHierarchy: []string{"title"},
	}
}
