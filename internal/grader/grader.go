// Package grader scores a free-text submission against a reference
// answer using a sequence-matching similarity ratio.
package grader

import "strings"

// Threshold is the minimum similarity ratio for a submission to count
// as correct. Scoring is binary: full credit at or above the
// threshold, zero below it.
const Threshold = 0.60

// Grade compares a student's submitted text against the reference
// answer. An empty submission is wrong with score 0 and no comparison
// is performed. Otherwise both strings are trimmed and lowercased and
// the match is decided by Ratio against Threshold.
//
// Grade is pure and deterministic.
func Grade(submitted, reference string) (bool, float64) {
	if submitted == "" {
		return false, 0
	}

	s := normalize(submitted)
	m := normalize(reference)

	if Ratio(s, m) >= Threshold {
		return true, 1
	}
	return false, 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Ratio returns a similarity measure in [0, 1] between two strings:
// twice the total length of matching contiguous blocks divided by the
// sum of both lengths (the classic Ratcliff/Obershelp gestalt ratio).
// Two empty strings are identical, ratio 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	matched := 0
	for _, blk := range matchingBlocks(ra, rb) {
		matched += blk.size
	}
	return 2 * float64(matched) / float64(total)
}

type match struct {
	a, b, size int
}

// matchingBlocks finds the non-overlapping matching blocks of a and b
// by recursively splitting around the longest match, processed with an
// explicit queue to keep the stack flat.
func matchingBlocks(a, b []rune) []match {
	// Index positions of every rune in b once; longestMatch filters by
	// the active window.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type window struct {
		alo, ahi, blo, bhi int
	}

	queue := []window{{0, len(a), 0, len(b)}}
	var blocks []match

	for len(queue) > 0 {
		w := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, w.alo, w.ahi, w.blo, w.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if w.alo < m.a && w.blo < m.b {
			queue = append(queue, window{w.alo, m.a, w.blo, m.b})
		}
		if m.a+m.size < w.ahi && m.b+m.size < w.bhi {
			queue = append(queue, window{m.a + m.size, w.ahi, m.b + m.size, w.bhi})
		}
	}

	return blocks
}

// longestMatch finds the longest block where a[alo:ahi] and b[blo:bhi]
// agree. Ties go to the earliest block in a, then in b, matching the
// conventional sequence-matcher behavior.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) match {
	best := match{a: alo, b: blo, size: 0}

	// j2len[j] is the length of the longest match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > best.size {
				best = match{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newJ2len
	}

	return best
}
