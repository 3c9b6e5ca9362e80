package cards

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const shortFragmentLen = 4

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ParsedQuery is the result of splitting a free-text card search.
type ParsedQuery struct {
	// NumberToken is the first token containing a digit, matched against
	// card numbers. Empty when the query carries no number.
	NumberToken string
	// NameFragment is the remaining query text, matched against card names.
	NameFragment string
}

// ParseQuery splits a query into an optional card-number token and a name
// fragment. "dracaufeu 136" yields {NumberToken: "136", NameFragment: "dracaufeu"}.
func ParseQuery(query string) ParsedQuery {
	var parsed ParsedQuery
	var nameParts []string

	for _, token := range strings.Fields(strings.TrimSpace(query)) {
		if parsed.NumberToken == "" && containsDigit(token) {
			parsed.NumberToken = token
			continue
		}
		nameParts = append(nameParts, token)
	}

	parsed.NameFragment = strings.Join(nameParts, " ")
	return parsed
}

// Fold lowercases the input and strips diacritics, so "Évoli" and "evoli"
// compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// MatchesName reports whether the card name matches the (already folded)
// query fragment: folded substring match first, then a bounded edit
// distance against individual name words for typo tolerance.
func MatchesName(cardName, foldedFragment string) bool {
	if foldedFragment == "" {
		return true
	}
	foldedName := Fold(cardName)
	if strings.Contains(foldedName, foldedFragment) {
		return true
	}

	maxDist := 2
	if len([]rune(foldedFragment)) <= shortFragmentLen {
		maxDist = 1
	}
	for _, word := range strings.Fields(foldedName) {
		if editDistance(word, foldedFragment, maxDist) <= maxDist {
			return true
		}
	}
	return false
}

// MatchesNumber reports whether the card number starts with the query's
// number token, ignoring case.
func MatchesNumber(cardNumber, numberToken string) bool {
	if numberToken == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(cardNumber), strings.ToLower(numberToken))
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// editDistance computes the optimal string alignment distance (insertions,
// deletions, substitutions, adjacent transpositions) between a and b,
// bailing out early once every path exceeds max.
func editDistance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if abs(la-lb) > max {
		return max + 1
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if swapped := prev2[j-2] + 1; swapped < curr[j] {
					curr[j] = swapped
				}
			}
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[lb]
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
