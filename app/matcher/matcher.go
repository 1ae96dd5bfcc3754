// Package matcher scores how likely two videos on different platforms are
// the same real-world content. Channel names vary more across platforms
// than title words, so acceptance is a deliberately permissive OR gate over
// the two signals.
package matcher

import (
	"strings"
	"unicode"
)

// ChannelSimilarity compares two channel names on normalized text: exact
// match, then containment, then word overlap, then edit-distance ratio.
func ChannelSimilarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.85
	}

	overlap := tokenOverlap(tokenize(na), tokenize(nb))
	ratio := levenshteinRatio(na, nb)
	if overlap > ratio {
		return overlap
	}
	return ratio
}

// TitleOverlap is the fraction of the original title's significant tokens
// (words longer than 2 characters) found in the candidate title, counting
// near-matches at or above nearMatchRatio.
func TitleOverlap(original, candidate string, nearMatchRatio float64) float64 {
	origTokens := significantTokens(tokenize(normalize(original)))
	if len(origTokens) == 0 {
		return 0
	}
	candTokens := tokenize(normalize(candidate))

	found := 0
	for _, ot := range origTokens {
		for _, ct := range candTokens {
			if ot == ct || levenshteinRatio(ot, ct) >= nearMatchRatio {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(origTokens))
}

// normalize case-folds and strips punctuation, keeping letters, digits and
// spaces.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func significantTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if len([]rune(t)) > 2 {
			out = append(out, t)
		}
	}
	return out
}

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	shared := 0
	for _, t := range a {
		if set[t] {
			shared++
		}
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(shared) / float64(longest)
}

// levenshteinRatio is 1 - editDistance/longestLength over runes.
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
