// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package storage persists trained factorization models.
//
// # Overview
//
// The storage system provides:
//   - Gob serialization of the model and the index IDs it was trained on
//   - Gzip compression to reduce storage footprint
//   - SHA-256 checksums verified on every load
//   - Version tracking per model name
//   - Pruning of old versions after each save
//
// # Storage Format
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata
//	  - CompressedData (gzip-compressed gob-encoded model)
//
// Files are written to a temporary name and renamed into place, so a crash
// never leaves a truncated snapshot under a valid name.
//
// # Usage Example
//
//	store, err := storage.NewStore("data/models")
//	if err != nil {
//	    return err
//	}
//	session.SetModelStore(storage.NewRepository(store, 5, logger))
//
// # Thread Safety
//
// Store and Repository are safe for concurrent use.
package storage
