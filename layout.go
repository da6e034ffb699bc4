package depot

import (
	"fmt"
	"sort"
)

// Layout describes how component storages are arranged into group families.
// Groups within a family are strictly nested: every group is a superset of
// the previous one. Build with a LayoutBuilder.
type Layout struct {
	families [][][]Component
}

// LayoutBuilder collects groups and validates them into a Layout.
type LayoutBuilder struct {
	groups [][]Component
}

// AddGroup declares that entities holding all the given components should be
// kept contiguous in every participating storage.
func (b *LayoutBuilder) AddGroup(components ...Component) *LayoutBuilder {
	b.groups = append(b.groups, components)
	return b
}

// Build validates the declared groups and partitions them into families.
// Groups must be at least two components wide, free of duplicates, within the
// configured arity cap, and pairwise either disjoint or strictly nested.
func (b *LayoutBuilder) Build() (*Layout, error) {
	for _, g := range b.groups {
		if len(g) < 2 {
			return nil, InvalidGroupError{Components: g, Reason: "groups need at least two components"}
		}
		if len(g) > Config.maxFamilyArity {
			return nil, InvalidGroupError{
				Components: g,
				Reason:     fmt.Sprintf("group arity %d exceeds the maximum of %d", len(g), Config.maxFamilyArity),
			}
		}
		for i, c := range g {
			for _, other := range g[:i] {
				if c.ID() == other.ID() {
					return nil, InvalidGroupError{Components: g, Reason: "duplicate component in group"}
				}
			}
		}
	}

	groups := make([][]Component, len(b.groups))
	copy(groups, b.groups)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) < len(groups[j])
	})

	var families [][][]Component
	for _, g := range groups {
		familyIndex := -1
		for fi, family := range families {
			last := family[len(family)-1]
			switch overlap(last, g) {
			case overlapNone:
				continue
			case overlapNested:
				if len(g) == len(last) {
					return nil, InvalidGroupError{Components: g, Reason: "group declared twice"}
				}
				if familyIndex != -1 {
					return nil, InvalidGroupError{Components: g, Reason: "group overlaps two families"}
				}
				familyIndex = fi
			case overlapPartial:
				return nil, InvalidGroupError{Components: g, Reason: "groups must be disjoint or nested"}
			}
		}
		if familyIndex == -1 {
			families = append(families, [][]Component{g})
		} else {
			families[familyIndex] = append(families[familyIndex], g)
		}
	}

	return &Layout{families: families}, nil
}

type overlapKind int

const (
	overlapNone overlapKind = iota
	overlapNested
	overlapPartial
)

// overlap classifies how group b relates to group a, where len(a) <= len(b).
func overlap(a, b []Component) overlapKind {
	shared := 0
	for _, ca := range a {
		for _, cb := range b {
			if ca.ID() == cb.ID() {
				shared++
				break
			}
		}
	}
	switch shared {
	case 0:
		return overlapNone
	case len(a):
		return overlapNested
	default:
		return overlapPartial
	}
}
