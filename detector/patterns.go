package detector

import "regexp"

// FilePattern matches repository paths by glob (doublestar syntax).
type FilePattern struct {
	Pattern     string
	Weight      float64
	Description string
}

// CodePattern matches source content by regex, scoped to file extensions.
// Patterns are compiled case-insensitive and multiline at construction.
type CodePattern struct {
	Pattern     string
	FileTypes   []string // applicable extensions, e.g. ".py"; empty = all
	Weight      float64
	Description string

	re *regexp.Regexp
}

// compile prepares the regex. Invalid patterns are a programming error in a
// detector's pattern table, so this panics like regexp.MustCompile.
func (p *CodePattern) compile() {
	p.re = regexp.MustCompile("(?mi)" + p.Pattern)
}

// label returns the human-readable identity of a pattern for match lists.
func (p *CodePattern) label() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Pattern
}

func (p *FilePattern) label() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Pattern
}
