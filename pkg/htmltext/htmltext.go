// Package htmltext renders the HTML fragments found in patent full-text
// fields (claims, abstracts, NPL citation lists) as plain text.
package htmltext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags start a new line when opened or closed.
var blockTags = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true,
	atom.Ol: true, atom.Tr: true, atom.Table: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
}

// skipTags have content that never reaches the output.
var skipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true,
}

// ToText strips markup from s.  Block-level elements and <br> become line
// breaks, entities are decoded, runs of horizontal whitespace collapse to a
// single space and blank lines are dropped.  Plain text passes through with
// only whitespace normalization applied.
func ToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed trailing markup: keep what was rendered.
			return normalizeLines(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipTags[a] && tt == html.StartTagToken {
				skipDepth++
				continue
			}
			if blockTags[a] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipTags[a] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockTags[a] {
				b.WriteByte('\n')
			}
		}
	}
}

// LooksLikeHTML reports whether s contains something that parses as a tag.
func LooksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	for i >= 0 && i+1 < len(s) {
		c := s[i+1]
		if c == '/' || c == '!' || unicode.IsLetter(rune(c)) {
			return true
		}
		next := strings.IndexByte(s[i+1:], '<')
		if next < 0 {
			return false
		}
		i += next + 1
	}
	return false
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.FieldsFunc(line, isHorizontalSpace), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}

//Personal.AI order the ending
