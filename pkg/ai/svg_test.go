package ai

import "testing"

func TestExtractSVG(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "bare document",
			reply: `<svg viewBox="0 0 20 15"><rect/></svg>`,
			want:  `<svg viewBox="0 0 20 15"><rect/></svg>`,
		},
		{
			name:  "wrapped in prose and fence",
			reply: "Here is the plan:\n```svg\n<svg viewBox=\"0 0 20 15\"></svg>\n```\nEnjoy.",
			want:  `<svg viewBox="0 0 20 15"></svg>`,
		},
		{
			name:  "no svg at all",
			reply: "I cannot draw that.",
			want:  "",
		},
		{
			name:  "opening tag without close",
			reply: "<svg viewBox=\"0 0 1 1\">",
			want:  "",
		},
		{
			name:  "malformed xml",
			reply: "<svg><rect></svg>",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSVG(tt.reply); got != tt.want {
				t.Fatalf("ExtractSVG = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSVGMatchesAspect(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		width  float64
		height float64
		want   bool
	}{
		{"exact match", `<svg viewBox="0 0 20 15"></svg>`, 20, 15, true},
		{"scaled match", `<svg viewBox="0 0 400 300"></svg>`, 20, 15, true},
		{"comma separated", `<svg viewBox="0,0,400,300"></svg>`, 20, 15, true},
		{"mismatch", `<svg viewBox="0 0 100 100"></svg>`, 20, 15, false},
		{"missing viewBox", `<svg></svg>`, 20, 15, false},
		{"garbage viewBox", `<svg viewBox="a b c d"></svg>`, 20, 15, false},
		{"zero plot", `<svg viewBox="0 0 20 15"></svg>`, 0, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SVGMatchesAspect(tt.doc, tt.width, tt.height); got != tt.want {
				t.Fatalf("SVGMatchesAspect = %v, want %v", got, tt.want)
			}
		})
	}
}
