package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const ignoreFileName = ".gitletignore"

// IgnoreChecker decides which working-tree paths the repository never
// tracks, reports as untracked, or overwrites.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // match against the full path instead of the base name
	regex    *regexp.Regexp
}

// NewIgnoreChecker always ignores .gitlet/ and adds the patterns of a
// .gitletignore file in repoRoot when one exists.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{
		patterns: []ignorePattern{{pattern: gitletDirName, dirOnly: true}},
	}

	f, err := os.Open(filepath.Join(repoRoot, ignoreFileName))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	return ic
}

// parseIgnoreLine returns nil for blank lines and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}
	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored reports whether a slash-separated, repo-relative path is
// ignored. The last matching pattern wins, so "!" lines can re-include.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	rel = filepath.ToSlash(rel)
	ignored := false
	for i := range ic.patterns {
		if ic.patterns[i].matches(rel) {
			ignored = !ic.patterns[i].negated
		}
	}
	return ignored
}

func (p *ignorePattern) matches(rel string) bool {
	if p.dirOnly {
		// rel is a file; a directory pattern matches any of its ancestors.
		dir := path.Dir(rel)
		for dir != "." && dir != "/" {
			if p.matchOne(dir) {
				return true
			}
			dir = path.Dir(dir)
		}
		return false
	}
	if p.matchOne(rel) {
		return true
	}
	// A plain pattern naming a directory covers everything below it.
	dir := path.Dir(rel)
	for dir != "." && dir != "/" {
		if p.matchOne(dir) {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}

func (p *ignorePattern) matchOne(target string) bool {
	if !p.hasSlash {
		target = path.Base(target)
	}
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// "**/" matches zero or more leading directories.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
