package namedbus

import "slices"

// typeSet is an ordered set of event types. Empty means "all types".
// Values are never mutated in place; operations return new slices so that a
// set handed out under the bus lock stays valid after the lock is released.
type typeSet []string

// normalizeTypes drops duplicates, keeping first-seen order. Only a nil or
// empty list yields the empty set; "" is an ordinary type.
func normalizeTypes(types []string) typeSet {
	if len(types) == 0 {
		return nil
	}
	out := make(typeSet, 0, len(types))
	for _, t := range types {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func (s typeSet) wildcard() bool {
	return len(s) == 0
}

func (s typeSet) contains(t string) bool {
	return slices.Contains(s, t)
}

// union returns s ∪ other and the members of other that were not in s.
func (s typeSet) union(other typeSet) (typeSet, typeSet) {
	var added typeSet
	for _, t := range other {
		if !s.contains(t) {
			added = append(added, t)
		}
	}
	if len(added) == 0 {
		return s, nil
	}
	merged := make(typeSet, 0, len(s)+len(added))
	merged = append(merged, s...)
	merged = append(merged, added...)
	return merged, added
}

// difference returns s − other.
func (s typeSet) difference(other typeSet) typeSet {
	var out typeSet
	for _, t := range s {
		if !other.contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// matches reports whether an event of eventType should reach a subscription
// with this set. Restricted dispatch skips wildcard subscriptions.
func (s typeSet) matches(eventType string, restricted bool) bool {
	if s.wildcard() {
		return !restricted
	}
	return s.contains(eventType)
}

func (s typeSet) clone() []string {
	if len(s) == 0 {
		return []string{}
	}
	return slices.Clone([]string(s))
}
