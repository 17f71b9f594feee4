package external

import (
	"strings"
)

// RepairJSON normalizes generative model output into a parseable JSON
// document. Models wrap answers in markdown code fences, prepend prose,
// or truncate the closing braces; this strips the decoration, cuts the
// text down to the outermost JSON value and balances unclosed braces and
// brackets.
func RepairJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip markdown code fences, with or without a language tag
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Cut down to the outermost JSON object or array
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	s = s[start:]

	end := lastBalancedIndex(s)
	if end > 0 {
		s = s[:end]
	}

	return balanceBrackets(s)
}

// lastBalancedIndex returns the index one past the character that closes
// the outermost value, or -1 when the text ends before balancing.
func lastBalancedIndex(s string) int {
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
	}
	return -1
}

// balanceBrackets appends missing closing braces/brackets for truncated
// output. An unterminated string is closed first.
func balanceBrackets(s string) string {
	var stack []rune
	inString := false
	escaped := false

	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, r)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
