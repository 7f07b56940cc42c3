// Package queue holds pending highlight jobs ordered by viewport relevance.
package queue

import (
	"sort"
	"time"

	"github.com/riverfjs/streamdown-go/internal/types"
)

// Item is one pending highlight job.
type Item struct {
	Block     types.Block
	Priority  types.Priority
	Index     int
	Signature types.Signature
	QueuedAt  time.Time
}

// Queue is an ordered list of highlight jobs. It is not safe for concurrent
// use; the owning scheduler serializes access.
type Queue struct {
	items       []Item
	byID        map[string]int // block id -> position in items
	maxSize     int
	windowStart int // last observed window start, anchors the distance tie-break
}

// New creates a queue bounded to maxSize items. maxSize <= 0 means unbounded.
func New(maxSize int) *Queue {
	return &Queue{
		byID:    make(map[string]int),
		maxSize: maxSize,
	}
}

// SetMaxSize adjusts the capacity bound for future pushes.
func (q *Queue) SetMaxSize(n int) {
	q.maxSize = n
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Contains reports whether a block id is queued.
func (q *Queue) Contains(id string) bool {
	_, ok := q.byID[id]
	return ok
}

// Push 插入任务并保持队列有序，重复 id 会被拒绝。
//
// When the queue is full the oldest background-priority item is evicted to
// make room; visible and overscan items are never evicted. If no background
// item exists the incoming item is silently dropped. The return value
// reports whether the item was inserted.
func (q *Queue) Push(item Item) bool {
	if _, dup := q.byID[item.Block.ID]; dup {
		return false
	}
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		if !q.evictOldestBackground() {
			return false
		}
	}
	if item.QueuedAt.IsZero() {
		item.QueuedAt = time.Now()
	}
	q.items = append(q.items, item)
	q.sortItems(q.windowStart)
	return true
}

// Pop removes and returns the head item.
func (q *Queue) Pop() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	q.reindex()
	return head, true
}

// Remove deletes the item with the given block id.
func (q *Queue) Remove(id string) bool {
	pos, ok := q.byID[id]
	if !ok {
		return false
	}
	q.items = append(q.items[:pos], q.items[pos+1:]...)
	q.reindex()
	return true
}

// Get returns the queued item for a block id.
func (q *Queue) Get(id string) (Item, bool) {
	pos, ok := q.byID[id]
	if !ok {
		return Item{}, false
	}
	return q.items[pos], true
}

// Items returns a copy of the queued jobs in order.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// Clear drops all queued jobs.
func (q *Queue) Clear() {
	q.items = nil
	q.byID = make(map[string]int)
}

// Recompute 根据新窗口重新计算所有任务的优先级并重新排序。
// Ordering is (priority ascending, |index-windowStart| ascending, index
// ascending) so results are deterministic.
func (q *Queue) Recompute(window types.VirtualWindow, overscan int) {
	q.windowStart = window.Start
	for i := range q.items {
		q.items[i].Priority = window.PriorityFor(q.items[i].Index, overscan)
	}
	q.sortItems(window.Start)
}

func (q *Queue) sortItems(windowStart int) {
	sort.SliceStable(q.items, func(i, j int) bool {
		a, b := q.items[i], q.items[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		da, db := absDistance(a.Index, windowStart), absDistance(b.Index, windowStart)
		if da != db {
			return da < db
		}
		return a.Index < b.Index
	})
	q.reindex()
}

func (q *Queue) evictOldestBackground() bool {
	oldest := -1
	for i, it := range q.items {
		if it.Priority != types.PriorityBackground {
			continue
		}
		if oldest < 0 || it.QueuedAt.Before(q.items[oldest].QueuedAt) {
			oldest = i
		}
	}
	if oldest < 0 {
		return false
	}
	q.items = append(q.items[:oldest], q.items[oldest+1:]...)
	q.reindex()
	return true
}

func (q *Queue) reindex() {
	q.byID = make(map[string]int, len(q.items))
	for i, it := range q.items {
		q.byID[it.Block.ID] = i
	}
}

func absDistance(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
