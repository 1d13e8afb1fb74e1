// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

// Similarity returns the Ratcliff/Obershelp ratio of a and b: twice the
// number of runes in matching blocks over the total rune count. The longest
// common block is matched first, then the unmatched sides on its left and
// right recursively. Ties between equally long blocks can make one argument
// order score lower than the other, so the larger of both orders is
// returned and Similarity(a, b) == Similarity(b, a).
//
// Similarity of two empty strings is 1.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := matchingRunes(ra, rb)
	if n := matchingRunes(rb, ra); n > m {
		m = n
	}
	return 2 * float64(m) / float64(total)
}

// matchingRunes counts runes covered by the recursive longest-block match.
func matchingRunes(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside
// a[alo:ahi] and b[blo:bhi]. Among equally long blocks it returns the one
// starting earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo

	// prev[j+1] holds the length of the match ending at a[i-1], b[j].
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				cur[j-blo+1] = 0
				continue
			}
			k := prev[j-blo] + 1
			cur[j-blo+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
