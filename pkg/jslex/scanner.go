// Package jslex locates comments in JavaScript source text.
//
// The scanner is a single forward pass, not a parser: it tracks just
// enough lexical state (strings, template literals, regex literals) to
// tell a comment from a lookalike byte sequence inside one of those.
package jslex

import (
	"strings"
	"unicode/utf8"
)

// CommentType classifies a comment for removal decisions.
type CommentType string

const (
	// TypeLicense marks comments carrying license or preservation
	// pragmas (/*! openers, @license, @preserve).
	TypeLicense CommentType = "license"

	// TypeJSDoc marks documentation comments opened with /**.
	TypeJSDoc CommentType = "jsdoc"

	// TypeRegular marks every other comment, including all line comments.
	TypeRegular CommentType = "regular"
)

// Comment is a half-open [Start, End) byte range of one comment,
// delimiters included.
type Comment struct {
	Start int
	End   int
	Type  CommentType
}

// Keywords after which a `/` begins a regex literal rather than a
// division. Any other identifier leaves the scanner in a state where
// `/` means division.
var regexPrecedingKeywords = map[string]bool{
	"return": true, "throw": true, "typeof": true, "void": true,
	"delete": true, "new": true, "in": true, "instanceof": true,
	"case": true, "yield": true, "await": true, "of": true,
	"export": true, "import": true, "default": true, "extends": true,
	"else": true,
}

type scanner struct {
	src string
	pos int

	// exprEnd is true when the previous significant token could end an
	// expression, which makes a following `/` a division operator
	// instead of a regex opener.
	exprEnd bool

	// tmpl holds one brace-depth counter per open `${` substitution.
	// Empty means we are not inside any template substitution.
	tmpl []int

	out []Comment
}

// Scan walks src once and returns every comment as a sorted,
// non-overlapping list of ranges. It never fails: malformed input
// (unterminated strings, comments, regexes) degrades to the documented
// boundary fallbacks instead of an error.
func Scan(src string) []Comment {
	s := &scanner{src: src}
	s.run()
	return s.out
}

func (s *scanner) run() {
	n := len(s.src)

	// A leading hashbang is not a comment and does not touch exprEnd.
	if strings.HasPrefix(s.src, "#!") {
		for s.pos < n && s.src[s.pos] != '\n' {
			s.pos++
		}
	}

	for s.pos < n {
		c := s.src[s.pos]

		if c <= 0x20 {
			s.pos++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			if r == 0xFEFF || r == 0x00A0 {
				s.pos += size
				continue
			}
			// Non-ASCII identifier character; fold it into an
			// identifier run so keywords stay intact.
			s.scanWord()
			continue
		}

		switch {
		case c == '/':
			s.scanSlash()
		case c == '\'' || c == '"':
			s.scanString(c)
		case c == '`':
			s.pos++
			s.scanTemplateBody()
		case c == '}':
			s.scanCloseBrace()
		case c == '{':
			if len(s.tmpl) > 0 {
				s.tmpl[len(s.tmpl)-1]++
			}
			s.pos++
			s.exprEnd = false
		case c == ')' || c == ']':
			s.pos++
			s.exprEnd = true
		case (c == '+' || c == '-') && s.pos+1 < n && s.src[s.pos+1] == c:
			s.pos += 2
			s.exprEnd = true
		case isWordByte(c):
			s.scanWord()
		default:
			s.pos++
			s.exprEnd = false
		}
	}
}

// scanSlash handles the three meanings of `/`: comment opener, regex
// opener, or division operator.
func (s *scanner) scanSlash() {
	n := len(s.src)
	if s.pos+1 < n {
		switch s.src[s.pos+1] {
		case '/':
			start := s.pos
			end := strings.IndexByte(s.src[start:], '\n')
			if end < 0 {
				end = n
			} else {
				end += start
			}
			s.out = append(s.out, Comment{Start: start, End: end, Type: TypeRegular})
			s.pos = end
			return
		case '*':
			start := s.pos
			end := strings.Index(s.src[start+2:], "*/")
			if end < 0 {
				end = n // unterminated: extend to end of text
			} else {
				end += start + 2 + 2
			}
			s.out = append(s.out, Comment{
				Start: start,
				End:   end,
				Type:  classify(s.src[start:end]),
			})
			s.pos = end
			return
		}
	}
	if s.exprEnd {
		// Division operator.
		s.pos++
		s.exprEnd = false
		return
	}
	s.scanRegex()
}

// scanRegex consumes a regex literal starting at the current `/`.
// `]` inside a `[` class does not terminate the class's special
// handling; an unterminated literal stops at the line break.
func (s *scanner) scanRegex() {
	n := len(s.src)
	i := s.pos + 1
	inClass := false
	for i < n {
		c := s.src[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '\n' {
			break
		}
		if inClass {
			if c == ']' {
				inClass = false
			}
		} else if c == '[' {
			inClass = true
		} else if c == '/' {
			i++
			break
		}
		i++
	}
	// Trailing flag characters (g, i, m, ...).
	for i < n && isASCIIAlpha(s.src[i]) {
		i++
	}
	s.pos = i
	s.exprEnd = true
}

// scanString consumes a single- or double-quoted string. An
// unterminated string stops at the line break so the rest of the file
// keeps scanning sanely.
func (s *scanner) scanString(quote byte) {
	n := len(s.src)
	i := s.pos + 1
	for i < n {
		c := s.src[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == quote {
			i++
			break
		}
		if c == '\n' {
			break
		}
		i++
	}
	s.pos = i
	s.exprEnd = true
}

// scanTemplateBody consumes template-literal text starting at the
// current position (just past the opening back-tick or a closing `}`
// of a substitution). On `${` it records a new substitution level and
// hands control back to the main loop so the embedded expression is
// scanned as ordinary code.
func (s *scanner) scanTemplateBody() {
	n := len(s.src)
	i := s.pos
	for i < n {
		c := s.src[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '`' {
			s.pos = i + 1
			s.exprEnd = true
			return
		}
		if c == '$' && i+1 < n && s.src[i+1] == '{' {
			s.tmpl = append(s.tmpl, 0)
			s.pos = i + 2
			s.exprEnd = false
			return
		}
		i++
	}
	// Unterminated template extends to end of text.
	s.pos = n
	s.exprEnd = true
}

// scanCloseBrace distinguishes the `}` that closes a template
// substitution from an ordinary closing brace inside one.
func (s *scanner) scanCloseBrace() {
	if len(s.tmpl) > 0 {
		top := len(s.tmpl) - 1
		if s.tmpl[top] == 0 {
			s.tmpl = s.tmpl[:top]
			s.pos++
			s.scanTemplateBody()
			return
		}
		s.tmpl[top]--
	}
	s.pos++
	// Conservative: a `}` could close a block, so the next `/` is
	// treated as a possible regex start. This misreads a division
	// right after an object-literal expression; accepted trade-off.
	s.exprEnd = false
}

// scanWord consumes an identifier, keyword, or number run.
func (s *scanner) scanWord() {
	n := len(s.src)
	start := s.pos
	i := s.pos
	for i < n {
		c := s.src[i]
		if c < utf8.RuneSelf {
			if !isWordByte(c) {
				break
			}
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s.src[i:])
		i += size
	}
	s.pos = i
	s.exprEnd = !regexPrecedingKeywords[s.src[start:i]]
}

// classify types a block comment. License signals win over jsdoc.
func classify(body string) CommentType {
	if strings.HasPrefix(body, "/*!") ||
		strings.Contains(body, "@license") ||
		strings.Contains(body, "@preserve") {
		return TypeLicense
	}
	if strings.HasPrefix(body, "/**") && len(body) > len("/**/") {
		return TypeJSDoc
	}
	return TypeRegular
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

func isASCIIAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
