package relation

// Contains reports whether id is present in ids.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id when it is absent. The returned flag reports whether ids
// changed.
func Add(ids []string, id string) ([]string, bool) {
	if Contains(ids, id) {
		return ids, false
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id), true
}

// Remove drops every occurrence of id. The returned flag reports whether
// ids changed.
func Remove(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, v := range ids {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

// Dedupe returns ids with repeats dropped, keeping first occurrences.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Diff returns the ids present only in next (added) and only in prev
// (removed), each in the order they appear.
func Diff(prev, next []string) (added, removed []string) {
	inPrev := make(map[string]bool, len(prev))
	for _, v := range prev {
		inPrev[v] = true
	}
	inNext := make(map[string]bool, len(next))
	for _, v := range next {
		inNext[v] = true
	}

	for _, v := range Dedupe(next) {
		if !inPrev[v] {
			added = append(added, v)
		}
	}
	for _, v := range Dedupe(prev) {
		if !inNext[v] {
			removed = append(removed, v)
		}
	}
	return added, removed
}
