// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

/*
Package cache provides the in-memory structures behind prediction caching
and movie title search.

# LRU

LRU is a generic, thread-safe least recently used cache with a TTL per
entry. The recommender session keys predictions by model version and
dense indices, so a retrain never serves stale values, and clears the
cache on every new model:

	c := cache.NewLRU[recommend.Prediction](10000, 10*time.Minute)
	session.SetPredictionCache(c)

# PrefixIndex

PrefixIndex is a case-insensitive trie that matches a query against the
start of every word of an indexed title:

	idx := cache.NewPrefixIndex()
	idx.Insert("Star Wars (1977)", 50)
	idx.Search("wars", 10) // [{Star Wars (1977) 50}]

# Thread Safety

Both types are safe for concurrent use.
*/
package cache
