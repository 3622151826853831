package parser

// FindMatchingParen returns the index of the ')' closing the '(' at
// tokens[start]. Depth starts at 1 just after the opening token.
func FindMatchingParen(tokens []string, start int) (int, error) {
	return findMatching(tokens, start, "(", ")", "unbalanced parentheses")
}

// FindMatchingBrace returns the index of the '}' closing the '{' at
// tokens[start].
func FindMatchingBrace(tokens []string, start int) (int, error) {
	return findMatching(tokens, start, "{", "}", "unbalanced braces")
}

func findMatching(tokens []string, start int, open, closing, msg string) (int, error) {
	depth := 1
	for i := start + 1; i < len(tokens); i++ {
		switch tokens[i] {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, syntaxError(msg, nil)
}

// SplitForParts splits a for-loop header on ';' at combined paren and brace
// depth zero. A header without separators yields a single part.
func SplitForParts(tokens []string) [][]string {
	bounds := splitBounds(tokens, 0, len(tokens))
	parts := make([][]string, len(bounds))
	for i, b := range bounds {
		parts[i] = tokens[b[0]:b[1]]
	}
	return parts
}

// splitBounds is SplitForParts over tokens[lo:hi], returning [start, end)
// index pairs into tokens.
func splitBounds(tokens []string, lo, hi int) [][2]int {
	var parts [][2]int
	depth := 0
	start := lo
	for i := lo; i < hi; i++ {
		switch tokens[i] {
		case "(", "{":
			depth++
		case ")", "}":
			depth--
		case ";":
			if depth == 0 {
				parts = append(parts, [2]int{start, i})
				start = i + 1
			}
		}
	}
	return append(parts, [2]int{start, hi})
}
