package css

import (
	"fmt"

	"github.com/gorilla/css/scanner"
)

// SafeValue reports whether a setting value can be substituted into a
// declaration without escaping it: no blocks, statement terminators,
// at-rules, markup, or unterminated tokens.
func SafeValue(v string) bool {
	s := scanner.New(v)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return true
		case scanner.TokenError, scanner.TokenAtKeyword, scanner.TokenCDO, scanner.TokenCDC:
			return false
		case scanner.TokenChar:
			switch tok.Value {
			case "{", "}", ";", "<":
				return false
			}
		}
	}
}

// ValidateStylesheet checks raw CSS appended by extension filters: it must
// tokenize cleanly, keep its blocks balanced, and contain no markup.
func ValidateStylesheet(text string) error {
	s := scanner.New(text)
	depth := 0
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if depth != 0 {
				return fmt.Errorf("unbalanced block: %d unclosed", depth)
			}
			return nil
		case scanner.TokenError:
			return fmt.Errorf("invalid token %q at %d:%d", tok.Value, tok.Line, tok.Column)
		case scanner.TokenCDO, scanner.TokenCDC:
			return fmt.Errorf("markup comment at %d:%d", tok.Line, tok.Column)
		case scanner.TokenChar:
			switch tok.Value {
			case "{":
				depth++
			case "}":
				depth--
				if depth < 0 {
					return fmt.Errorf("unexpected } at %d:%d", tok.Line, tok.Column)
				}
			case "<":
				return fmt.Errorf("markup at %d:%d", tok.Line, tok.Column)
			}
		}
	}
}
