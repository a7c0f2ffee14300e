package dsketch

// maxSuggestDistance bounds typo corrections. Two edits catches transposed
// and doubled letters without matching unrelated words.
const maxSuggestDistance = 2

// Suggest finds the candidate closest to word within the correction distance.
// An exact match yields no suggestion, since the word is not a typo then.
func Suggest(word string, candidates []string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, cand := range candidates {
		if cand == word {
			return "", false
		}
		if d := len([]rune(cand)) - len([]rune(word)); d > bestDist || -d > bestDist {
			continue // length difference is a lower bound for the edit distance
		}
		if d := EditDistance(word, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, best != ""
}

// EditDistance computes the Levenshtein distance between two strings,
// counted in runes.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
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
