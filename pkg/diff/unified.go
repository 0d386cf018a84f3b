package diff

import (
	"fmt"
	"io"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Hunk is a contiguous window of an edit script, [Start, End).
type Hunk struct {
	Start, End int
}

// Hunks groups the changes of script into windows with context unchanged
// lines on each side. Windows that touch or overlap are merged.
func Hunks(script []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}
	var hunks []Hunk
	for i, l := range script {
		if l.Kind == Equal {
			continue
		}
		start := max(i-context, 0)
		end := min(i+context+1, len(script))
		if len(hunks) == 0 || start > hunks[len(hunks)-1].End {
			hunks = append(hunks, Hunk{Start: start, End: end})
			continue
		}
		if end > hunks[len(hunks)-1].End {
			hunks[len(hunks)-1].End = end
		}
	}
	return hunks
}

// Range returns the 1-based "@@ -oldStart,oldCount +newStart,newCount @@"
// numbers for h. An empty side reports the line before the hunk, as
// unified diff does.
func (h Hunk) Range(script []Line) (oldStart, oldCount, newStart, newCount int) {
	oldLine, newLine := 1, 1
	for _, l := range script[:h.Start] {
		switch l.Kind {
		case Equal:
			oldLine++
			newLine++
		case Delete:
			oldLine++
		case Insert:
			newLine++
		}
	}
	oldStart, newStart = oldLine, newLine
	for _, l := range script[h.Start:h.End] {
		switch l.Kind {
		case Equal:
			oldCount++
			newCount++
		case Delete:
			oldCount++
		case Insert:
			newCount++
		}
	}
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	return oldStart, oldCount, newStart, newCount
}

// WriteUnified writes a unified diff of one file. A nil before or after
// stands for a file that does not exist on that side. Nothing is written
// when the contents are equal.
func WriteUnified(w io.Writer, path string, before, after []byte, context int) error {
	script := Lines(before, after)
	if !Changed(script) && (before == nil) == (after == nil) {
		return nil
	}

	oldName, newName := "a/"+path, "b/"+path
	if before == nil {
		oldName = "/dev/null"
	}
	if after == nil {
		newName = "/dev/null"
	}
	if _, err := fmt.Fprintf(w, "diff --gitlet a/%s b/%s\n--- %s\n+++ %s\n", path, path, oldName, newName); err != nil {
		return err
	}

	for _, h := range Hunks(script, context) {
		oldStart, oldCount, newStart, newCount := h.Range(script)
		if _, err := fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount); err != nil {
			return err
		}
		for _, l := range script[h.Start:h.End] {
			prefix := " "
			switch l.Kind {
			case Insert:
				prefix = "+"
			case Delete:
				prefix = "-"
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, l.Text); err != nil {
				return err
			}
		}
	}
	return nil
}
