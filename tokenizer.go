package pdftabular

import (
	"strings"
	"unicode"
)

// DefaultMinGap is the shortest run of whitespace that separates two tokens.
// A single space never splits, so multi-word cells such as product
// descriptions stay whole.
const DefaultMinGap = 2

// SplitLines splits page text on line breaks. A trailing carriage return is
// treated as part of the break. Blank lines are kept; the empty segment after
// a final newline is not.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

// TokenizeLine splits a line into tokens wherever minGap or more consecutive
// whitespace characters occur. Whitespace at either end of the line belongs
// to no token. Offsets are in runes.
func TokenizeLine(text string, minGap int) []Token {
	if minGap < 1 {
		minGap = DefaultMinGap
	}

	runes := []rune(text)
	var tokens []Token
	start, end := -1, -1

	flush := func() {
		if start >= 0 {
			tokens = append(tokens, Token{
				Text:  string(runes[start:end]),
				Start: start,
				End:   end,
			})
		}
		start, end = -1, -1
	}

	for i := 0; i < len(runes); {
		if !unicode.IsSpace(runes[i]) {
			if start < 0 {
				start = i
			}
			i++
			end = i
			continue
		}

		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j-i >= minGap {
			flush()
		}
		i = j
	}
	flush()

	return tokens
}

// Tokenize splits the raw text of one page into lines and tokenizes each.
// Empty text yields no lines.
func Tokenize(text string, page, minGap int) []Line {
	raw := SplitLines(text)
	if len(raw) == 0 {
		return nil
	}

	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Line{
			Page:   page,
			Number: i + 1,
			Text:   r,
			Tokens: TokenizeLine(r, minGap),
		}
	}
	return lines
}
