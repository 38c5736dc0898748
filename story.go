package idml

import (
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/idml/document"
)

// Run is a styled range of a story's text, with Start and End as rune offsets into the combined
// text. Weight and Style are normalized to CSS-like keywords, Caps keeps the document's
// capitalization keyword.
type Run struct {
	Start, End int
	Color      RGBA
	Size       float64
	Font       string
	Weight     string
	Style      string
	Caps       string
}

// Story is the reassembled free-flowing text of one story: the combined character stream of all
// its ranges plus the per-range styling.
type Story struct {
	Text string
	Runs []Run
}

// Len returns the length of the story text in runes.
func (s *Story) Len() int {
	return utf8.RuneCountInString(s.Text)
}

// ParseStory reassembles a story's text and styled runs. Content elements contribute their text
// and Br elements a newline, in document order. Each CharacterStyleRange produces one run,
// layering the applied character style under the range's own properties.
func ParseStory(elem *document.Elem, styles *StyleSheet, colors map[string]RGBA, diags *Diagnostics) *Story {
	story := &Story{}
	var sb strings.Builder
	offset := 0
	for _, rng := range elem.FindAll("CharacterStyleRange") {
		style := CharacterStyle{}
		if applied := rng.Attr("AppliedCharacterStyle"); applied != "" {
			if base, ok := styles.Character(applied); ok {
				style = base
			}
		}
		style = style.merge(parseCharacterStyle(rng, diags))

		n := 0
		for _, child := range rng.Children {
			switch child.Tag {
			case "Content":
				sb.WriteString(child.Text)
				n += utf8.RuneCountInString(child.Text)
			case "Br":
				sb.WriteByte('\n')
				n++
			}
		}
		if n == 0 {
			continue
		}

		run := Run{
			Start:  offset,
			End:    offset + n,
			Color:  Black,
			Size:   12.0,
			Font:   style.Font,
			Weight: "normal",
			Style:  "normal",
			Caps:   style.Caps,
		}
		if style.HasSize {
			run.Size = style.Size
		}
		if style.Fill != "" && style.Fill != "Swatch/None" {
			if col, ok := colors[style.Fill]; ok {
				run.Color = col
			} else {
				diags.Warnf(rng.Attr("AppliedCharacterStyle"), "missing text color: %s", style.Fill)
			}
		}
		if strings.Contains(style.Style, "Bold") {
			run.Weight = "bold"
		}
		if strings.Contains(style.Style, "Italic") || strings.Contains(style.Style, "Oblique") {
			run.Style = "italic"
		}
		story.Runs = append(story.Runs, run)
		offset += n
	}
	story.Text = sb.String()
	return story
}

// clip returns the runs overlapping the [start,end) rune range, re-based so the range starts at
// zero. Text frames carry only their own slice of the story.
func (s *Story) clip(start, end int) []Run {
	var runs []Run
	for _, run := range s.Runs {
		if run.End <= start || end <= run.Start {
			continue
		}
		run.Start = max(run.Start, start) - start
		run.End = min(run.End, end) - start
		runs = append(runs, run)
	}
	return runs
}

// slice returns the rune range [start,end) of the story text.
func (s *Story) slice(start, end int) string {
	runes := []rune(s.Text)
	if start < 0 {
		start = 0
	}
	if len(runes) < end {
		end = len(runes)
	}
	if end <= start {
		return ""
	}
	return string(runes[start:end])
}
