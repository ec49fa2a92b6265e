// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import "time"

// entry is one L1 record: value plus the bookkeeping the eviction
// policies and the preheater need.
type entry[V any] struct {
	key         string
	value       V
	size        int64
	expiresAt   time.Time // zero means no expiry
	accessCount int64
	lastAccess  time.Time
	inserted    time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// list is an intrusive doubly-linked list of *listNode, used by the L1
// shard to track eviction order without a second map lookup per touch.
// Adapted from the teacher pack's pypi/internal/lru.list.
type list[T any] struct {
	head, tail *listNode[T]
	size       int
}

type listNode[T any] struct {
	value      T
	prev, next *listNode[T]
}

func (l *list[T]) pushFront(v T) *listNode[T] {
	n := &listNode[T]{value: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.size++
	return n
}

func (l *list[T]) remove(n *listNode[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.size--
}

func (l *list[T]) moveToFront(n *listNode[T]) {
	if n == l.head {
		return
	}
	l.remove(n)
	n.prev, n.next = nil, l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.size++
}
