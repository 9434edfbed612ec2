// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package cache

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// PrefixMatch is one indexed key and the ID it was inserted with.
type PrefixMatch struct {
	Key string
	ID  int
}

type prefixNode struct {
	children map[rune]*prefixNode
	entries  []PrefixMatch
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[rune]*prefixNode)}
}

// PrefixIndex is a case-insensitive trie for title autocomplete. Each key
// is reachable from the start of every word in it, so "wars" finds
// "Star Wars (1977)".
type PrefixIndex struct {
	mu   sync.RWMutex
	root *prefixNode
	size int
}

// NewPrefixIndex creates an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{root: newPrefixNode()}
}

// Insert indexes key under id. Empty keys are ignored; duplicate keys with
// different IDs are all kept.
func (x *PrefixIndex) Insert(key string, id int) {
	normalized := []rune(strings.ToLower(key))
	if len(strings.TrimSpace(key)) == 0 {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	match := PrefixMatch{Key: key, ID: id}
	for _, start := range wordStarts(normalized) {
		node := x.root
		for _, ch := range normalized[start:] {
			next := node.children[ch]
			if next == nil {
				next = newPrefixNode()
				node.children[ch] = next
			}
			node = next
		}
		node.entries = append(node.entries, match)
	}
	x.size++
}

// Search returns up to limit distinct matches whose key, or any word
// suffix of it, starts with query. Results are ordered by key then ID.
// A non-positive limit defaults to 10.
func (x *PrefixIndex) Search(query string, limit int) []PrefixMatch {
	if limit <= 0 {
		limit = 10
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	node := x.root
	for _, ch := range query {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}

	seen := make(map[PrefixMatch]struct{})
	var results []PrefixMatch
	collect(node, seen, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Key != results[j].Key {
			return results[i].Key < results[j].Key
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Len returns the number of inserted keys.
func (x *PrefixIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}

func collect(node *prefixNode, seen map[PrefixMatch]struct{}, out *[]PrefixMatch) {
	for _, m := range node.entries {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		*out = append(*out, m)
	}
	for _, child := range node.children {
		collect(child, seen, out)
	}
}

// wordStarts returns the offset of every maximal run of non-space runes.
func wordStarts(s []rune) []int {
	var starts []int
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if i == 0 || unicode.IsSpace(s[i-1]) {
			starts = append(starts, i)
		}
	}
	return starts
}
