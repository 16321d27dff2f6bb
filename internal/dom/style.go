package dom

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is one property: value pair from an inline style attribute.
type Declaration struct {
	Property  string `json:"property"`
	Value     string `json:"value"`
	Important bool   `json:"important,omitempty"`
}

// Style holds the parsed declarations of a style attribute.
// Later declarations of the same property replace earlier ones.
type Style struct {
	decls []Declaration
	index map[string]int
}

// ParseStyle parses the body of a style attribute with the CSS inline
// declaration grammar. Comments are ignored; malformed declarations and
// declarations with an empty value are dropped.
func ParseStyle(raw string) *Style {
	s := &Style{index: make(map[string]int)}

	p := css.NewParser(parse.NewInputString(raw), true)
	for {
		gt, tt, data := p.Next()
		if gt == css.ErrorGrammar && tt == css.ErrorToken {
			break
		}

		var prop string
		switch gt {
		case css.DeclarationGrammar:
			prop = strings.ToLower(string(data))
		case css.CustomPropertyGrammar:
			prop = string(data)
		default:
			// comments and recovered parse errors
			continue
		}

		value, important := declarationValue(p.Values())
		if prop == "" || value == "" {
			continue
		}
		s.add(Declaration{Property: prop, Value: value, Important: important})
	}
	return s
}

func (s *Style) add(d Declaration) {
	if i, ok := s.index[d.Property]; ok {
		// An earlier !important declaration survives a later normal one.
		if s.decls[i].Important && !d.Important {
			return
		}
		s.decls[i] = d
		return
	}
	s.index[d.Property] = len(s.decls)
	s.decls = append(s.decls, d)
}

// declarationValue joins value tokens, collapsing whitespace, and strips a
// trailing !important.
func declarationValue(tokens []css.Token) (string, bool) {
	var vals []css.Token
	for _, t := range tokens {
		if t.TokenType == css.CommentToken {
			continue
		}
		vals = append(vals, t)
	}

	important := false
	end := trimTrailingSpace(vals, len(vals))
	if end > 0 && vals[end-1].TokenType == css.IdentToken && bytes.EqualFold(vals[end-1].Data, []byte("important")) {
		bang := trimTrailingSpace(vals, end-1)
		if bang > 0 && vals[bang-1].TokenType == css.DelimToken && bytes.Equal(vals[bang-1].Data, []byte("!")) {
			important = true
			end = bang - 1
		}
	}

	var b strings.Builder
	for _, t := range vals[:end] {
		if t.TokenType == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String()), important
}

func trimTrailingSpace(vals []css.Token, end int) int {
	for end > 0 && vals[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	return end
}

// Get returns the value of property, or "" when it is not declared.
// Both CSS names (background-color) and DOM names (backgroundColor) work.
func (s *Style) Get(property string) string {
	i, ok := s.index[CSSPropertyName(property)]
	if !ok {
		return ""
	}
	return s.decls[i].Value
}

// Declarations returns the declarations in source order.
func (s *Style) Declarations() []Declaration {
	out := make([]Declaration, len(s.decls))
	copy(out, s.decls)
	return out
}

// Len returns the number of distinct properties declared.
func (s *Style) Len() int {
	return len(s.decls)
}

// CSSPropertyName converts a DOM style property name to its CSS form:
// backgroundColor -> background-color, WebkitTransform -> -webkit-transform,
// cssFloat -> float. Names that are already hyphenated are only lowercased.
func CSSPropertyName(name string) string {
	name = strings.TrimSpace(name)
	if name == "cssFloat" {
		return "float"
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	if strings.Contains(name, "-") {
		return strings.ToLower(name)
	}

	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
