package policy

import "container/list"

// Recency evicts the identity least recently inserted or accessed (LRU).
type Recency struct {
	capacity int
	order    *list.List // front = most recent
	items    map[int64]*list.Element
}

// NewRecency creates a recency policy bound to the given capacity.
func NewRecency(capacity int) *Recency {
	return &Recency{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[int64]*list.Element),
	}
}

func (p *Recency) Name() string  { return "recency" }
func (p *Recency) Capacity() int { return p.capacity }
func (p *Recency) Size() int     { return p.order.Len() }

func (p *Recency) Contains(id int64) bool {
	_, ok := p.items[id]
	return ok
}

func (p *Recency) RecordInsert(id int64) {
	// Re-inserting a tracked identity just refreshes it
	if elem, ok := p.items[id]; ok {
		p.order.MoveToFront(elem)
		return
	}
	p.items[id] = p.order.PushFront(id)
}

func (p *Recency) RecordAccess(id int64) {
	if elem, ok := p.items[id]; ok {
		p.order.MoveToFront(elem)
	}
}

func (p *Recency) Evict() (int64, bool) {
	elem := p.order.Back()
	if elem == nil {
		return 0, false
	}
	id := elem.Value.(int64)
	p.order.Remove(elem)
	delete(p.items, id)
	return id, true
}

func (p *Recency) Forget(id int64) {
	if elem, ok := p.items[id]; ok {
		p.order.Remove(elem)
		delete(p.items, id)
	}
}

func (p *Recency) Rekey(oldID, newID int64) {
	elem, ok := p.items[oldID]
	if !ok {
		return
	}
	elem.Value = newID
	delete(p.items, oldID)
	p.items[newID] = elem
}
