// Package diff computes line-level edit scripts between two file versions
// and renders them as unified diffs.
package diff

import "strings"

// Kind classifies a line in an edit script.
type Kind int

const (
	Equal  Kind = iota // present in both versions
	Insert             // present in the new version only
	Delete             // present in the old version only
)

// Line is one entry of an edit script.
type Line struct {
	Kind Kind
	Text string
}

// Lines splits both versions into lines and returns the shortest edit
// script turning before into after. A trailing newline does not produce an
// extra empty line.
func Lines(before, after []byte) []Line {
	return myers(splitLines(string(before)), splitLines(string(after)))
}

// Changed reports whether an edit script contains any insertion or deletion.
func Changed(script []Line) bool {
	for _, l := range script {
		if l.Kind != Equal {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// myers runs the greedy Myers algorithm in O((N+M)*D) time, keeping one
// snapshot of the frontier per edit distance for the backtrack.
func myers(a, b []string) []Line {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return fill(Insert, b)
	case m == 0:
		return fill(Delete, a)
	}

	offset := n + m
	v := make([]int, 2*offset+1)
	var trace [][]int

	for d := 0; d <= offset; d++ {
		for k := -d; k <= d; k += 2 {
			i := k + offset
			var x int
			if k == -d || (k != d && v[i-1] < v[i+1]) {
				x = v[i+1]
			} else {
				x = v[i-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[i] = x
			if x >= n && y >= m {
				trace = append(trace, append([]int(nil), v...))
				return backtrack(trace, a, b)
			}
		}
		trace = append(trace, append([]int(nil), v...))
	}
	return nil
}

func backtrack(trace [][]int, a, b []string) []Line {
	offset := len(a) + len(b)
	x, y := len(a), len(b)
	var rev []Line

	for d := len(trace) - 1; d > 0; d-- {
		prev := trace[d-1]
		k := x - y
		var prevK int
		if k == -d || (k != d && prev[k-1+offset] < prev[k+1+offset]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[prevK+offset]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, Line{Kind: Equal, Text: a[x]})
		}
		if prevK == k-1 {
			x--
			rev = append(rev, Line{Kind: Delete, Text: a[x]})
		} else {
			y--
			rev = append(rev, Line{Kind: Insert, Text: b[y]})
		}
	}
	for x > 0 && y > 0 {
		x--
		y--
		rev = append(rev, Line{Kind: Equal, Text: a[x]})
	}

	out := make([]Line, len(rev))
	for i, l := range rev {
		out[len(rev)-1-i] = l
	}
	return out
}

func fill(kind Kind, lines []string) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Kind: kind, Text: l}
	}
	return out
}
