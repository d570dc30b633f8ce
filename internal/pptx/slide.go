package pptx

import (
	"fmt"
	"math"
	"strings"
)

// generateSlideXML creates one slide part: background fill, then picture
// shapes in order, then text boxes. Shape IDs start at 2 (ID 1 is the
// shape-tree group); picture relationship IDs start at rId2 (rId1 is the
// layout).
func generateSlideXML(s Slide) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
`)

	if s.Background != nil {
		sb.WriteString(fmt.Sprintf("    <p:bg>\n      <p:bgPr>\n        <a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill>\n        <a:effectLst/>\n      </p:bgPr>\n    </p:bg>\n", s.Background.Hex()))
	}

	sb.WriteString(`    <p:spTree>
      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
`)

	id := 2
	for i, img := range s.Images {
		sb.WriteString(generatePicture(id, i+2, img))
		id++
	}
	for _, tb := range s.Texts {
		sb.WriteString(generateTextBox(id, tb))
		id++
	}

	sb.WriteString(`    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:sld>
`)

	return sb.String()
}

// generateSlideRels creates a slide's relationships part. firstImage is
// the deck-global number of the slide's first media file.
func generateSlideRels(s Slide, firstImage int) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
`)

	for i := range s.Images {
		sb.WriteString(fmt.Sprintf("  <Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/image\" Target=\"../media/image%d.png\"/>\n", i+2, firstImage+i))
	}

	sb.WriteString("</Relationships>\n")
	return sb.String()
}

// generatePicture creates one p:pic shape referencing an embedded image.
func generatePicture(id, rel int, img Image) string {
	var sb strings.Builder

	sb.WriteString("      <p:pic>\n        <p:nvPicPr>\n")
	sb.WriteString(fmt.Sprintf("          <p:cNvPr id=\"%d\" name=\"Picture %d\"/>\n", id, id-1))
	sb.WriteString("          <p:cNvPicPr/>\n          <p:nvPr/>\n        </p:nvPicPr>\n")
	sb.WriteString("        <p:blipFill>\n")
	sb.WriteString(fmt.Sprintf("          <a:blip r:embed=\"rId%d\"/>\n", rel))
	sb.WriteString("          <a:stretch><a:fillRect/></a:stretch>\n        </p:blipFill>\n")
	sb.WriteString("        <p:spPr>\n")
	sb.WriteString(fmt.Sprintf("          <a:xfrm><a:off x=\"%d\" y=\"%d\"/><a:ext cx=\"%d\" cy=\"%d\"/></a:xfrm>\n", img.X, img.Y, img.W, img.H))
	sb.WriteString("          <a:prstGeom prst=\"rect\"><a:avLst/></a:prstGeom>\n")
	sb.WriteString("        </p:spPr>\n      </p:pic>\n")

	return sb.String()
}

// generateTextBox creates one p:sp text box. Run sizes are written in
// hundredths of a point.
func generateTextBox(id int, tb TextBox) string {
	font := tb.Font
	if font == "" {
		font = DefaultFont
	}
	size := tb.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	align := tb.Align
	if align == "" {
		align = AlignLeft
	}
	anchor := tb.Anchor
	if anchor == "" {
		anchor = AnchorMiddle
	}

	var sb strings.Builder

	sb.WriteString("      <p:sp>\n        <p:nvSpPr>\n")
	sb.WriteString(fmt.Sprintf("          <p:cNvPr id=\"%d\" name=\"TextBox %d\"/>\n", id, id-1))
	sb.WriteString("          <p:cNvSpPr txBox=\"1\"/>\n          <p:nvPr/>\n        </p:nvSpPr>\n")
	sb.WriteString("        <p:spPr>\n")
	sb.WriteString(fmt.Sprintf("          <a:xfrm><a:off x=\"%d\" y=\"%d\"/><a:ext cx=\"%d\" cy=\"%d\"/></a:xfrm>\n", tb.X, tb.Y, tb.W, tb.H))
	sb.WriteString("          <a:prstGeom prst=\"rect\"><a:avLst/></a:prstGeom>\n")
	sb.WriteString("        </p:spPr>\n        <p:txBody>\n")
	sb.WriteString(fmt.Sprintf("          <a:bodyPr wrap=\"square\" anchor=\"%s\"/>\n", anchor))
	sb.WriteString("          <a:lstStyle/>\n")

	for _, line := range strings.Split(tb.Text, "\n") {
		sb.WriteString("          <a:p>\n")
		sb.WriteString(fmt.Sprintf("            <a:pPr algn=\"%s\"/>\n", align))
		sb.WriteString("            <a:r>\n")
		sb.WriteString(fmt.Sprintf("              <a:rPr lang=\"en-US\" sz=\"%d\"", int(math.Round(size*100))))
		if tb.Bold {
			sb.WriteString(" b=\"1\"")
		}
		if tb.Italic {
			sb.WriteString(" i=\"1\"")
		}
		sb.WriteString(" dirty=\"0\">\n")
		sb.WriteString(fmt.Sprintf("                <a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill>\n", tb.Color.Hex()))
		sb.WriteString(fmt.Sprintf("                <a:latin typeface=\"%s\"/>\n", escapeXML(font)))
		sb.WriteString("              </a:rPr>\n")
		sb.WriteString(fmt.Sprintf("              <a:t>%s</a:t>\n", escapeXML(line)))
		sb.WriteString("            </a:r>\n          </a:p>\n")
	}

	sb.WriteString("        </p:txBody>\n      </p:sp>\n")
	return sb.String()
}

// escapeXML escapes special XML characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
