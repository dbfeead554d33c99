// internal/similarity/similarity.go

// Package similarity provides the pure text-similarity primitives the stage
// evaluators score with: normalized edit distance, token-set Jaccard, and
// keyword-bucket overlap. No state, no I/O.
package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var nonWord = regexp.MustCompile(`\W+`)

// EditSimilarity returns 1 - levenshtein(a,b)/max(runeLen(a),runeLen(b)).
// Distance and normalization both count runes, so multi-byte characters
// weigh the same as ASCII. Two empty strings are identical (1.0).
func EditSimilarity(a, b string) float64 {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Tokenize lowercases, splits on non-word characters, and drops tokens
// shorter than minLen plus any token in stopwords.
func Tokenize(s string, minLen int, stopwords []string) []string {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}

	var out []string
	for _, tok := range nonWord.Split(strings.ToLower(s), -1) {
		if len(tok) < minLen {
			continue
		}
		if _, ok := stops[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// TokenJaccard computes |intersection|/|union| over the token sets of a and
// b. Empty union yields 0.
func TokenJaccard(a, b string, minLen int, stopwords []string) float64 {
	setA := toSet(Tokenize(a, minLen, stopwords))
	setB := toSet(Tokenize(b, minLen, stopwords))

	union := len(setA)
	intersection := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// KeywordOverlap scores two texts against a keyword bucket: a keyword is
// touched when either text contains it and matched when both do. The score
// is matched/touched, 0 when no keyword touches either text.
func KeywordOverlap(textA, textB string, keywords []string) float64 {
	touched := 0
	matched := 0
	for _, kw := range keywords {
		inA := ContainsKeyword(textA, kw)
		inB := ContainsKeyword(textB, kw)
		if inA || inB {
			touched++
		}
		if inA && inB {
			matched++
		}
	}
	if touched == 0 {
		return 0
	}
	return float64(matched) / float64(touched)
}

// ContainsKeyword reports whole-word, case-insensitive presence. Multi-word
// keywords match as a phrase on word boundaries.
func ContainsKeyword(text, keyword string) bool {
	re, err := keywordPattern(keyword)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// CountKeyword counts whole-word occurrences of keyword in text.
func CountKeyword(text, keyword string) int {
	re, err := keywordPattern(keyword)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// CountAny sums whole-word occurrences across a keyword bucket.
func CountAny(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		total += CountKeyword(text, kw)
	}
	return total
}

// ContainsAny reports whether any keyword in the bucket is present.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}

func keywordPattern(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(keyword)) + `\b`)
}

var alphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// NormalizeName strips every non-alphanumeric character and lowercases, used
// for exact-name comparison against corpus entries.
func NormalizeName(s string) string {
	return strings.ToLower(alphanumeric.ReplaceAllString(s, ""))
}
