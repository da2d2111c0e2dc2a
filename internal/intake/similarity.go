package intake

import "strings"

// NameSimilarityThreshold is the ratio at or above which two names on the
// same company are treated as the same person.
const NameSimilarityThreshold = 0.85

// NameSimilarity returns the Ratcliff/Obershelp similarity ratio between two
// names, case-insensitive, in [0, 1]. The ratio is 2*M/T where M is the total
// matched characters found by recursively splitting around the longest common
// substring and T is the combined length.
func NameSimilarity(a, b string) float64 {
	left := []rune(strings.ToLower(a))
	right := []rune(strings.ToLower(b))
	total := len(left) + len(right)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedChars(left, right)) / float64(total)
}

func matchedChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedChars(a[:ai], b[:bi]) +
		matchedChars(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestSize {
					bestSize = curr[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestA, bestB, bestSize
}
