package policy

import "container/heap"

// freqItem represents an item in the priority queue.
type freqItem struct {
	id    int64
	count int
	seq   uint64 // insertion sequence, secondary key for ties
	index int    // the index of the item in the heap
}

// freqQueue implements heap.Interface as a min-heap over (count, seq).
type freqQueue []*freqItem

func (pq freqQueue) Len() int { return len(pq) }

func (pq freqQueue) Less(i, j int) bool {
	// Lowest count wins; among equal counts the earliest-inserted wins.
	// The composite key is total, so victim selection never depends on
	// heap-internal layout.
	if pq[i].count != pq[j].count {
		return pq[i].count < pq[j].count
	}
	return pq[i].seq < pq[j].seq
}

func (pq freqQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *freqQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*freqItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *freqQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*pq = old[0 : n-1]
	return item
}

// Frequency evicts the identity with the fewest insert+access events (LFU),
// ties broken by earliest insertion.
type Frequency struct {
	capacity int
	nextSeq  uint64
	pq       freqQueue
	items    map[int64]*freqItem
}

// NewFrequency creates a frequency policy bound to the given capacity.
func NewFrequency(capacity int) *Frequency {
	return &Frequency{
		capacity: capacity,
		pq:       make(freqQueue, 0),
		items:    make(map[int64]*freqItem),
	}
}

func (p *Frequency) Name() string  { return "frequency" }
func (p *Frequency) Capacity() int { return p.capacity }
func (p *Frequency) Size() int     { return len(p.pq) }

func (p *Frequency) Contains(id int64) bool {
	_, ok := p.items[id]
	return ok
}

func (p *Frequency) RecordInsert(id int64) {
	if item, ok := p.items[id]; ok {
		item.count++
		heap.Fix(&p.pq, item.index)
		return
	}
	p.nextSeq++
	item := &freqItem{
		id:    id,
		count: 1,
		seq:   p.nextSeq,
	}
	heap.Push(&p.pq, item)
	p.items[id] = item
}

func (p *Frequency) RecordAccess(id int64) {
	if item, ok := p.items[id]; ok {
		item.count++
		heap.Fix(&p.pq, item.index)
	}
}

func (p *Frequency) Evict() (int64, bool) {
	if len(p.pq) == 0 {
		return 0, false
	}
	item := heap.Pop(&p.pq).(*freqItem)
	delete(p.items, item.id)
	return item.id, true
}

func (p *Frequency) Forget(id int64) {
	if item, ok := p.items[id]; ok {
		heap.Remove(&p.pq, item.index)
		delete(p.items, id)
	}
}

func (p *Frequency) Rekey(oldID, newID int64) {
	item, ok := p.items[oldID]
	if !ok {
		return
	}
	item.id = newID
	delete(p.items, oldID)
	p.items[newID] = item
}
