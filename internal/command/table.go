package command

import (
	"strings"

	"github.com/rivo/uniseg"
)

// truncate shortens s to at most maxWidth display columns, ending it with
// tail when cut. Grapheme clusters are never split.
func truncate(s string, maxWidth int, tail string) string {
	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}
	tailWidth := uniseg.StringWidth(tail)
	if tailWidth > maxWidth {
		return tail
	}
	target := maxWidth - tailWidth

	var sb strings.Builder
	width := 0
	state := -1
	for rest := s; len(rest) > 0; {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > target {
			break
		}
		width += w
		sb.WriteString(cluster)
	}
	sb.WriteString(tail)
	return sb.String()
}

// pad right-pads s with spaces to width display columns.
func pad(s string, width int) string {
	if n := width - uniseg.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// table renders rows as left-aligned columns separated by two spaces. Column
// widths are measured in display columns, so emoji and accented text line
// up.
func table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(pad(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
