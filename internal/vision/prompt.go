package vision

// StructurePrompt instructs the vision model to describe a slide as
// strict JSON. The layout of the expected document is spelled out
// inline because the model follows a concrete example far more
// reliably than a prose description.
const StructurePrompt = `
You are analyzing a presentation slide to understand its structure and layout.
Analyze this slide image and return ONLY valid JSON (no markdown, no explanations) with this exact structure:

{
  "page_type": "<title_slide|content_slide|section_header>",
  "title": "<main title text or empty string>",
  "subtitle": "<subtitle text or empty string>",
  "content_blocks": [
    {
      "type": "<text|bullet_list|numbered_list|image|table|chart>",
      "position": {
        "x": <0.0-1.0 normalized left position>,
        "y": <0.0-1.0 normalized top position>,
        "width": <0.0-1.0 normalized width>,
        "height": <0.0-1.0 normalized height>
      },
      "hierarchy_level": <1-3, where 1=main, 2=sub, 3=detail>,
      "content": "<text content or description of visual element>",
      "items": ["<item1>", "<item2>"] // Only for bullet/numbered lists
    }
  ],
  "layout": "<single_column|two_column|three_column|title_only|custom>",
  "visual_hierarchy": ["<element1>", "<element2>"] // Reading order
}

Focus on STRUCTURE and CONTENT, not styling. Be precise with positioning (use relative coordinates 0.0-1.0).
Return ONLY the JSON, nothing else.
`
