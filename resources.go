package depot

import "reflect"

// resourceStorage holds singleton values keyed by type. Cells are stable once
// created so borrowed pointers survive unrelated inserts.
type resourceStorage struct {
	cellIndices map[reflect.Type]int
	cells       []*resourceCell
}

type resourceCell struct {
	value   any
	present bool
}

func newResourceStorage() resourceStorage {
	return resourceStorage{cellIndices: make(map[reflect.Type]int)}
}

func (rs *resourceStorage) cellFor(t reflect.Type) *resourceCell {
	if i, ok := rs.cellIndices[t]; ok {
		return rs.cells[i]
	}
	cell := &resourceCell{}
	rs.cellIndices[t] = len(rs.cells)
	rs.cells = append(rs.cells, cell)
	return cell
}

func (rs *resourceStorage) lookup(t reflect.Type) *resourceCell {
	if i, ok := rs.cellIndices[t]; ok {
		return rs.cells[i]
	}
	return nil
}

func (rs *resourceStorage) insert(t reflect.Type, value any) (any, bool) {
	cell := rs.cellFor(t)
	prev, had := cell.value, cell.present
	cell.value = value
	cell.present = true
	return prev, had
}

func (rs *resourceStorage) remove(t reflect.Type) (any, bool) {
	cell := rs.lookup(t)
	if cell == nil || !cell.present {
		return nil, false
	}
	prev := cell.value
	cell.value = nil
	cell.present = false
	return prev, true
}

func (rs *resourceStorage) contains(t reflect.Type) bool {
	cell := rs.lookup(t)
	return cell != nil && cell.present
}

func (rs *resourceStorage) clear() {
	for _, cell := range rs.cells {
		cell.value = nil
		cell.present = false
	}
}
