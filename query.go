// Package depot provides query mechanisms for sparse-set entity storage
package depot

import (
	"errors"

	"github.com/TheBitDrifter/bark"
)

// Query describes what a cursor iterates: the views it yields (Get), the
// views that must be present but aren't yielded (Include), the views that
// must be absent (Exclude), and an optional change-tick filter.
//
// When every view belongs to the same group family and the combined masks
// line up with a declared group, the cursor walks a contiguous dense range.
// Otherwise it performs a sparse rendezvous driven by the shortest dense
// slice among the Get and Include views.
type Query struct {
	gets     []View
	includes []View
	excludes []View
	filter   TickFilter
}

// newQuery creates a query yielding the given views.
func newQuery(gets ...View) *Query {
	if len(gets) == 0 {
		panic(bark.AddTrace(errors.New("query needs at least one view to yield")))
	}
	return &Query{gets: gets}
}

// Include requires the given views to be present without yielding them.
func (q *Query) Include(views ...View) *Query {
	q.includes = append(q.includes, views...)
	return q
}

// Exclude requires the given views to be absent.
func (q *Query) Exclude(views ...View) *Query {
	q.excludes = append(q.excludes, views...)
	return q
}

// Filter narrows the query by change ticks.
func (q *Query) Filter(f TickFilter) *Query {
	q.filter = f
	return q
}

// groupRange resolves the query against the declared groups: a range exists
// only when every view shares one family and the masks match a group exactly.
func (q *Query) groupRange() (lo, hi int, ok bool) {
	qi, ok := newQueryGroupInfo(q.gets[0].viewGroupInfo())
	if !ok {
		return 0, 0, false
	}
	for _, v := range q.gets[1:] {
		if qi, ok = qi.include(v.viewGroupInfo()); !ok {
			return 0, 0, false
		}
	}
	for _, v := range q.includes {
		if qi, ok = qi.include(v.viewGroupInfo()); !ok {
			return 0, 0, false
		}
	}
	for _, v := range q.excludes {
		if qi, ok = qi.exclude(v.viewGroupInfo()); !ok {
			return 0, 0, false
		}
	}
	return qi.groupRange()
}

// shortestDriver picks the smallest dense slice among the Get and Include
// storages to drive sparse iteration.
func (q *Query) shortestDriver() componentStorage {
	driver := q.gets[0].viewStorage()
	for _, v := range q.gets[1:] {
		if v.viewStorage().Len() < driver.Len() {
			driver = v.viewStorage()
		}
	}
	for _, v := range q.includes {
		if v.viewStorage().Len() < driver.Len() {
			driver = v.viewStorage()
		}
	}
	return driver
}

// participants returns every required storage except the driver.
func (q *Query) participants(driver componentStorage) []componentStorage {
	var others []componentStorage
	for _, v := range q.gets {
		if sto := v.viewStorage(); sto != driver {
			others = append(others, sto)
		}
	}
	for _, v := range q.includes {
		if sto := v.viewStorage(); sto != driver {
			others = append(others, sto)
		}
	}
	return others
}

func (q *Query) excludedStorages() []componentStorage {
	var excluded []componentStorage
	for _, v := range q.excludes {
		excluded = append(excluded, v.viewStorage())
	}
	return excluded
}
