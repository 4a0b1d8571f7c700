package ai

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"
)

// aspectTolerance is the relative error allowed between the declared viewBox
// ratio and the requested plot ratio.
const aspectTolerance = 0.01

// ExtractSVG pulls the first <svg>...</svg> document out of a model reply,
// which may wrap it in prose or a markdown fence. Returns "" when no
// well-formed document is found.
func ExtractSVG(reply string) string {
	start := strings.Index(reply, "<svg")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(reply, "</svg>")
	if end < start {
		return ""
	}
	doc := reply[start : end+len("</svg>")]
	var probe struct {
		XMLName xml.Name `xml:"svg"`
	}
	if err := xml.Unmarshal([]byte(doc), &probe); err != nil {
		return ""
	}
	return doc
}

// SVGMatchesAspect reports whether the document's declared viewBox ratio
// equals width/height within tolerance. A document without a parseable
// viewBox does not match.
func SVGMatchesAspect(doc string, width, height float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	var svg struct {
		XMLName xml.Name `xml:"svg"`
		ViewBox string   `xml:"viewBox,attr"`
	}
	if err := xml.Unmarshal([]byte(doc), &svg); err != nil {
		return false
	}
	fields := strings.Fields(strings.ReplaceAll(svg.ViewBox, ",", " "))
	if len(fields) != 4 {
		return false
	}
	boxWidth, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || boxWidth <= 0 {
		return false
	}
	boxHeight, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || boxHeight <= 0 {
		return false
	}
	want := width / height
	got := boxWidth / boxHeight
	return math.Abs(got-want)/want <= aspectTolerance
}
