package engine

import (
	"sort"
	"sync"
)

// groupLocks serializes reconciliation per group: a roster replace-in-place
// is not safe to run twice concurrently for the same group, while different
// groups may be reconciled in parallel.
type groupLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the mutex for the given group and returns its unlock func.
func (l *groupLocks) Lock(groupID uint) func() {
	l.mu.Lock()

	m, ok := l.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[groupID] = m
	}

	l.mu.Unlock()

	m.Lock()

	return m.Unlock
}

// LockAll acquires the mutexes for every given group and returns a single
// unlock func releasing all of them. Duplicates are collapsed and the locks
// are taken in ascending group ID order so two overlapping batches cannot
// deadlock each other.
func (l *groupLocks) LockAll(groupIDs []uint) func() {
	ids := make([]uint, 0, len(groupIDs))
	seen := make(map[uint]struct{}, len(groupIDs))

	for _, id := range groupIDs {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	unlocks := make([]func(), 0, len(ids))
	for _, id := range ids {
		unlocks = append(unlocks, l.Lock(id))
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}
