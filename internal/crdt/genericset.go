// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crdt implements component D of the holonic coordination
// core: conflict-free shared state for the agent roster, task
// registry, and reputation counters. genericSet is a small building
// block adapted from the teacher's utils/set.Set[T] (map-backed set
// with Union/Difference/List), used here as the backing collection for
// the OR-set roster's per-DID tag sets rather than as a general
// utility in its own right.
package crdt

// genericSet is a map-backed set of comparable elements.
type genericSet[T comparable] map[T]struct{}

func newGenericSet[T comparable]() genericSet[T] {
	return make(genericSet[T])
}

func (s genericSet[T]) add(elt T) {
	s[elt] = struct{}{}
}

func (s genericSet[T]) remove(elt T) {
	delete(s, elt)
}

func (s genericSet[T]) contains(elt T) bool {
	_, ok := s[elt]
	return ok
}

// union returns a new set containing the elements of both a and b.
// Commutative, associative, idempotent — the merge primitive every
// CRDT in this package is built from.
func union[T comparable](a, b genericSet[T]) genericSet[T] {
	out := make(genericSet[T], len(a)+len(b))
	for elt := range a {
		out[elt] = struct{}{}
	}
	for elt := range b {
		out[elt] = struct{}{}
	}
	return out
}

// difference returns the elements of a not present in b.
func difference[T comparable](a, b genericSet[T]) genericSet[T] {
	out := make(genericSet[T], len(a))
	for elt := range a {
		if !b.contains(elt) {
			out[elt] = struct{}{}
		}
	}
	return out
}

func (s genericSet[T]) list() []T {
	out := make([]T, 0, len(s))
	for elt := range s {
		out = append(out, elt)
	}
	return out
}
