package offer

import (
	"regexp"
	"strconv"
)

// amountPattern matches a currency marker immediately followed by digits.
// Fractional parts and thousands separators are deliberately not consumed:
// "$45.50" yields 45.
var amountPattern = regexp.MustCompile(`\$([0-9]+)`)

// Extract scans an utterance for currency amounts and returns the last one
// in reading order, so later restatements within the same utterance win
// ("maybe $50, actually $60" yields 60). The second return is false when no
// parseable amount is present; that is a normal outcome, never an error. A
// matched token that overflows int is treated the same as no match.
func Extract(utterance string) (int, bool) {
	matches := amountPattern.FindAllStringSubmatch(utterance, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		value, err := strconv.Atoi(matches[i][1])
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}
