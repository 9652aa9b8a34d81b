package naming

import "fmt"

// Uniquer hands out identifiers within one generation pass. Every
// occurrence of a base name after the first gets the suffix _1, _2, ...
// in the order it is seen, regardless of the element it belongs to.
// Suffixed names are not checked against other base names, a clash
// has to be resolved by the caller.
type Uniquer struct {
	counts map[string]int
}

func NewUniquer() *Uniquer {
	return &Uniquer{counts: map[string]int{}}
}

// Identifier returns the identifier for the next occurrence of base.
func (u *Uniquer) Identifier(base string) string {
	n, seen := u.counts[base]
	if !seen {
		u.counts[base] = 0
		return base
	}
	n++
	u.counts[base] = n
	return fmt.Sprintf("%s_%d", base, n)
}
