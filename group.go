package depot

import (
	"github.com/TheBitDrifter/mask"
)

// queryMask is the pair of include/exclude storage masks that identifies what
// a query asks of a group family. Comparable, so resolution is two equality
// checks per candidate group.
type queryMask struct {
	include mask.Mask
	exclude mask.Mask
}

// maskFromTo marks the bits in [from, to).
func maskFromTo(from, to int) mask.Mask {
	var m mask.Mask
	for i := from; i < to; i++ {
		m.Mark(uint32(i))
	}
	return m
}

// includeQueryMask is the mask a query must carry to match group's full range.
func includeQueryMask(arity int) queryMask {
	return queryMask{include: maskFromTo(0, arity)}
}

// excludeQueryMask is the mask a query must carry to match the span between a
// nested group pair: everything in the inner group, nothing the outer adds.
func excludeQueryMask(prevArity, arity int) queryMask {
	return queryMask{
		include: maskFromTo(0, prevArity),
		exclude: maskFromTo(prevArity, arity),
	}
}

// group is one contiguous span of component arities within a family. len
// counts the entities holding all of the group's components; those entities
// occupy [0, len) of every participating dense array.
type group struct {
	arity       int
	prevArity   int
	includeMask queryMask
	excludeMask queryMask
	len         int
}

// groupFamily is an ordered list of nested groups. storages holds the
// participating storages in family order: group j covers storages[:groups[j].arity].
//
// Within [0, len) the dense arrays of a group's storages agree on entity
// order, because grouping swaps every storage of the group identically.
type groupFamily struct {
	storages []componentStorage
	groups   []group
}

// storageGroupInfo is the per-storage back-reference into its family: the
// family pointer, the index of the innermost group containing the storage,
// and the storage's family-local mask bit. It is read fresh per borrow and
// must not be cached across SetLayout.
type storageGroupInfo struct {
	family      *groupFamily
	groupOffset int
	bit         uint32
}

// queryGroupInfo accumulates the group info of every view in a query. A dense
// range exists only when all views share a family and the combined masks match
// one of the family's precomputed group masks.
type queryGroupInfo struct {
	family *groupFamily
	offset int
	mask   queryMask
}

func newQueryGroupInfo(info *storageGroupInfo) (queryGroupInfo, bool) {
	if info == nil {
		return queryGroupInfo{}, false
	}
	qi := queryGroupInfo{family: info.family, offset: info.groupOffset}
	qi.mask.include.Mark(info.bit)
	return qi, true
}

func (qi queryGroupInfo) include(info *storageGroupInfo) (queryGroupInfo, bool) {
	if info == nil || info.family != qi.family {
		return qi, false
	}
	if info.groupOffset > qi.offset {
		qi.offset = info.groupOffset
	}
	qi.mask.include.Mark(info.bit)
	return qi, true
}

func (qi queryGroupInfo) exclude(info *storageGroupInfo) (queryGroupInfo, bool) {
	if info == nil || info.family != qi.family {
		return qi, false
	}
	if info.groupOffset > qi.offset {
		qi.offset = info.groupOffset
	}
	qi.mask.exclude.Mark(info.bit)
	return qi, true
}

// groupRange resolves the query's dense range, if any. Wider groups pack the
// tighter prefix, so a group's full range is [0, len) and the span between a
// group and its narrower neighbour is [len, neighbour.len).
func (qi queryGroupInfo) groupRange() (lo, hi int, ok bool) {
	g := &qi.family.groups[qi.offset]

	if qi.mask == g.includeMask {
		return 0, g.len, true
	}
	if qi.offset > 0 && qi.mask == g.excludeMask {
		outer := &qi.family.groups[qi.offset-1]
		return g.len, outer.len, true
	}
	return 0, 0, false
}

// satisfies reports whether e owns every component of the family's first arity
// storages.
func (f *groupFamily) satisfies(e Entity, arity int) bool {
	for _, sto := range f.storages[:arity] {
		if !sto.Contains(e) {
			return false
		}
	}
	return true
}

// groupEntity advances e into every family group it now satisfies, swapping
// its slot past the group boundary in all participating storages. Walks the
// groups narrowest arity first and stops at the first unsatisfied one, so an
// entity ends up packed exactly as deep as its component set allows.
func (f *groupFamily) groupEntity(e Entity) {
	for gi := range f.groups {
		g := &f.groups[gi]
		if !f.satisfies(e, g.arity) {
			return
		}

		slot, _ := f.storages[0].DenseIndexOf(e)
		if slot < g.len {
			continue // already grouped
		}
		for _, sto := range f.storages[:g.arity] {
			i, _ := sto.DenseIndexOf(e)
			sto.Swap(i, g.len)
		}
		g.len++
	}
}

// ungroupEntity removes e from every group at or beyond fromGroup that it is
// currently part of, swapping the last in-group element into its place. Walks
// widest group first so the nested prefixes stay consistent.
func (f *groupFamily) ungroupEntity(e Entity, fromGroup int) {
	for gi := len(f.groups) - 1; gi >= fromGroup; gi-- {
		g := &f.groups[gi]

		slot, ok := f.storages[0].DenseIndexOf(e)
		if !ok {
			return // never grouped
		}
		if slot >= g.len {
			continue // not in this group
		}
		g.len--
		for _, sto := range f.storages[:g.arity] {
			i, _ := sto.DenseIndexOf(e)
			sto.Swap(i, g.len)
		}
	}
}
