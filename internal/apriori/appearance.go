package apriori

// Appearance restricts which items may appear on each side of a rule.
// A nil *Appearance allows everything.
type Appearance struct {
	lhs  map[int]bool // nil: every item
	rhs  map[int]bool // nil: every item
	none map[int]bool
}

// NewAppearance builds a constraint from labels. An empty lhs or rhs list
// allows every item on that side; items in none may appear on neither side.
// Labels not present in idx are ignored.
func NewAppearance(idx *ItemIndex, lhs, rhs, none []string) *Appearance {
	return &Appearance{
		lhs:  idSet(idx, lhs),
		rhs:  idSet(idx, rhs),
		none: idSet(idx, none),
	}
}

func idSet(idx *ItemIndex, labels []string) map[int]bool {
	if len(labels) == 0 {
		return nil
	}
	set := make(map[int]bool, len(labels))
	for _, label := range labels {
		if id, ok := idx.ID(label); ok {
			set[id] = true
		}
	}
	return set
}

func (a *Appearance) allowed(side map[int]bool, items []int) bool {
	if a == nil {
		return true
	}
	for _, id := range items {
		if a.none[id] {
			return false
		}
		if side != nil && !side[id] {
			return false
		}
	}
	return true
}

// AllowsAntecedent reports whether every item may appear on the left side.
func (a *Appearance) AllowsAntecedent(items []int) bool {
	if a == nil {
		return true
	}
	return a.allowed(a.lhs, items)
}

// AllowsConsequent reports whether every item may appear on the right side.
func (a *Appearance) AllowsConsequent(items []int) bool {
	if a == nil {
		return true
	}
	return a.allowed(a.rhs, items)
}
