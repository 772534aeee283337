// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import "container/heap"

// taskQueue orders pending submissions by priority, FIFO within a tier,
// so low-priority work has bounded worst-case latency. It is mutated
// only while holding the orchestrator's lock.
type taskQueue struct {
	items []*submission
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	heap.Init(q)
	return q
}

func (q *taskQueue) Len() int { return len(q.items) }

func (q *taskQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.task.Priority != b.task.Priority {
		return a.task.Priority > b.task.Priority
	}
	return a.seq < b.seq
}

func (q *taskQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *taskQueue) Push(x any) {
	q.items = append(q.items, x.(*submission))
}

func (q *taskQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

func (q *taskQueue) push(sub *submission) {
	heap.Push(q, sub)
}

func (q *taskQueue) pop() *submission {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*submission)
}

// remove takes a submission out of the queue by task id, used when a
// queued task is cancelled before dispatch.
func (q *taskQueue) remove(taskID string) *submission {
	for i, sub := range q.items {
		if sub.task.ID == taskID {
			heap.Remove(q, i)
			return sub
		}
	}
	return nil
}
