package example

// Projection selects which names a decoder returns: every name, or an
// explicit ordered set. The zero value selects every name.
type Projection struct {
	keys     []string
	explicit bool
}

// All selects every name in the group.
func All() Projection {
	return Projection{}
}

// Keys selects exactly the given names. Duplicates are dropped, keeping the
// first occurrence.
func Keys(keys ...string) Projection {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return Projection{keys: out, explicit: true}
}

// IsAll reports whether the projection selects every name.
func (p Projection) IsAll() bool {
	return !p.explicit
}

// Names returns a copy of the requested names, or nil for All.
func (p Projection) Names() []string {
	if !p.explicit {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// requestsKeys reports whether at least one name is explicitly requested.
func (p Projection) requestsKeys() bool {
	return p.explicit && len(p.keys) > 0
}

// SequenceProjection holds independent projections for the two groups of a
// SequenceExample.
type SequenceProjection struct {
	Context      Projection
	FeatureLists Projection
}

// Take splits features into the projected entries and the remaining ones in a
// single pass. Requested names are looked up in order; the first one that is
// absent yields a *ProjectionError. features itself is never modified.
func Take(group string, features Features, p Projection) (selected, remaining Features, err error) {
	return take(group, features, p)
}

// TakeLists is Take for feature lists.
func TakeLists(group string, lists FeatureLists, p Projection) (selected, remaining FeatureLists, err error) {
	return take(group, lists, p)
}

func take[M ~map[string]V, V any](group string, m M, p Projection) (M, M, error) {
	if p.IsAll() {
		return m, M{}, nil
	}

	selected := make(M, len(p.keys))
	for _, k := range p.keys {
		v, ok := m[k]
		if !ok {
			return nil, nil, &ProjectionError{Group: group, Key: k}
		}
		selected[k] = v
	}

	remaining := make(M, len(m)-len(selected))
	for k, v := range m {
		if _, ok := selected[k]; !ok {
			remaining[k] = v
		}
	}
	return selected, remaining, nil
}

// ProjectSequence applies p to both groups of seq. A group absent from the
// record stays nil unless names were requested from it, which is an error.
func ProjectSequence(seq SequenceExample, p SequenceProjection) (SequenceExample, error) {
	var (
		out SequenceExample
		err error
	)

	if seq.Context == nil {
		if p.Context.requestsKeys() {
			return SequenceExample{}, &ProjectionError{Group: GroupContext}
		}
	} else if out.Context, _, err = Take(GroupContext, seq.Context, p.Context); err != nil {
		return SequenceExample{}, err
	}

	if seq.FeatureLists == nil {
		if p.FeatureLists.requestsKeys() {
			return SequenceExample{}, &ProjectionError{Group: GroupFeatureLists}
		}
	} else if out.FeatureLists, _, err = TakeLists(GroupFeatureLists, seq.FeatureLists, p.FeatureLists); err != nil {
		return SequenceExample{}, err
	}

	return out, nil
}
