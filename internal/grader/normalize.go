package grader

import "strings"

var accentFold = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// normalize lowercases, strips Portuguese diacritics and collapses
// whitespace so that "Anemia Ferropriva " and "anemia ferropriva"
// compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = accentFold.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func tokens(s string) []string {
	return strings.Fields(normalize(s))
}

// tokenOverlap reports the fraction of reference tokens present in the
// candidate.
func tokenOverlap(candidate, reference string) float64 {
	ref := tokens(reference)
	if len(ref) == 0 {
		return 0
	}
	have := make(map[string]bool)
	for _, t := range tokens(candidate) {
		have[t] = true
	}
	hit := 0
	for _, t := range ref {
		if have[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(ref))
}

// editDistance is the Levenshtein distance between two strings, used to
// absorb small typos in exam names.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
