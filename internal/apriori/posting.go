package apriori

import "sort"

// posting is a strictly increasing list of transaction positions.
type posting []int

// gallopRatio is the size ratio above which intersect switches from a
// linear merge to binary probing of the larger list.
const gallopRatio = 8

// intersect returns the common elements of a and b in a new slice.
// Cost is O(min·log(max/min)) when sizes are skewed and O(a+b) otherwise.
func intersect(a, b posting) posting {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make(posting, 0, len(a))
	if len(a) == 0 {
		return out
	}
	if len(b) >= gallopRatio*len(a) {
		lo := 0
		for _, v := range a {
			lo += gallop(b[lo:], v)
			if lo >= len(b) {
				break
			}
			if b[lo] == v {
				out = append(out, v)
				lo++
			}
		}
		return out
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// gallop returns the first position in p whose value is >= v, probing
// exponentially before a binary search so nearby hits stay cheap.
func gallop(p posting, v int) int {
	bound := 1
	for bound < len(p) && p[bound-1] < v {
		bound *= 2
	}
	lo := bound / 2
	hi := bound
	if hi > len(p) {
		hi = len(p)
	}
	return lo + sort.SearchInts(p[lo:hi], v)
}
