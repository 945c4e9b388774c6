// Package token manages the model context budget with a weighted
// character count. True tokenization is neither cheap nor stable across
// models; a per-character cost with non-ASCII weighted double is a
// conservative proxy that never under-counts wide scripts.
package token

import "unicode/utf8"

// DefaultCharLimit bounds one prompt payload. It leaves a wide safety
// margin under a 4096-token completion window for mixed-script text.
const DefaultCharLimit = 2000

// Weight returns the budget cost of text: 1 per ASCII rune, 2 per
// non-ASCII rune.
func Weight(text string) int {
	cost := 0
	for _, r := range text {
		if r < utf8.RuneSelf {
			cost++
		} else {
			cost += 2
		}
	}
	return cost
}

// Estimate approximates the token count of text: ASCII averages four
// characters per token, non-ASCII roughly two tokens per rune. The floor
// of len/4 guards against pathological short-rune inputs.
func Estimate(text string) int {
	ascii := 0
	runes := 0
	for _, r := range text {
		runes++
		if r < utf8.RuneSelf {
			ascii++
		}
	}

	estimated := ascii/4 + (runes-ascii)*2
	if floor := runes / 4; estimated < floor {
		return floor
	}
	return estimated
}

// WithinLimit reports whether text fits the weighted budget.
func WithinLimit(text string, limit int) bool {
	return Weight(text) <= limit
}

// Truncate cuts text so its weighted cost fits limit, appending a marker
// when anything was dropped. Truncation happens only at the boundary to
// the inference client; chunking and batching never split text.
func Truncate(text string, limit int) string {
	const marker = "\n... (truncated to fit the token budget)"

	if Weight(text) <= limit {
		return text
	}

	budget := limit - len(marker)
	if budget < 0 {
		budget = 0
	}

	cost := 0
	end := 0
	for i, r := range text {
		w := 1
		if r >= utf8.RuneSelf {
			w = 2
		}
		if cost+w > budget {
			break
		}
		cost += w
		end = i + utf8.RuneLen(r)
	}

	return text[:end] + marker
}
