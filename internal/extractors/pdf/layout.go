package pdf

import (
	"math"
	"sort"
	"strings"
)

const (
	// lineTolerance is the vertical distance, in points, within which two
	// fragments belong to the same line.
	lineTolerance = 5

	// defaultLineHeight is used when a fragment carries no font size.
	defaultLineHeight = 12

	// paragraphGap is the gap, in line heights, that starts a new paragraph.
	paragraphGap = 1.5

	// wordGap is the horizontal gap, in font sizes, that separates two
	// glyph runs with a space.
	wordGap = 0.2
)

// Fragment is a piece of text positioned on a page. Y grows upwards, as in
// PDF user space.
type Fragment struct {
	X, Y   float64
	Width  float64
	Height float64
	Text   string
}

type line struct {
	y      float64
	text   string
	height float64
}

// MergeGlyphs joins consecutive glyphs that sit on the same baseline into
// runs. A horizontal gap wider than a fraction of the font size, or a jump
// backwards, starts a new run.
func MergeGlyphs(glyphs []Fragment) []Fragment {
	var runs []Fragment //nolint:prealloc // size unknown until merged
	for _, g := range glyphs {
		if g.Text == "" {
			continue
		}
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			end := last.X + last.Width
			size := math.Max(last.Height, g.Height)
			if size <= 0 {
				size = defaultLineHeight
			}
			sameLine := math.Abs(last.Y-g.Y) < 0.5
			if sameLine && g.X >= end-size*wordGap && g.X-end <= size*wordGap {
				last.Text += g.Text
				last.Width = g.X + g.Width - last.X
				last.Height = math.Max(last.Height, g.Height)
				continue
			}
		}
		runs = append(runs, g)
	}
	return runs
}

// ReconstructPage rebuilds the reading order of one page.
//
// Fragments are taken in content-stream order and grouped into lines while
// their rounded vertical position stays within lineTolerance of the current
// line. Lines are then sorted top to bottom, and a blank line is inserted
// wherever the gap to the previous line exceeds 1.5 line heights.
func ReconstructPage(fragments []Fragment) string {
	var lines []line
	current := line{height: defaultLineHeight}

	for _, f := range fragments {
		if f.Text == "" {
			continue
		}
		y := math.Round(f.Y)
		height := f.Height
		if height <= 0 {
			height = defaultLineHeight
		}

		if math.Abs(y-current.y) > lineTolerance && current.text != "" {
			lines = append(lines, current)
			current = line{y: y, text: f.Text, height: height}
			continue
		}
		if current.text != "" {
			current.text += " "
		}
		current.text += f.Text
		current.y = y
		current.height = math.Max(current.height, height)
	}
	if current.text != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return ""
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var out []string
	prevY := lines[0].y
	for _, l := range lines {
		text := strings.Join(strings.Fields(l.text), " ")
		if text == "" {
			continue
		}
		if prevY-l.y > l.height*paragraphGap && len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, text)
		prevY = l.y
	}
	return strings.Join(out, "\n")
}

// JoinPages separates page texts with a blank line.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n\n")
}
