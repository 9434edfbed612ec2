// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package config loads Cinelens configuration with Koanf v2.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. A YAML file found via CONFIG_PATH or DefaultConfigPaths
//  3. Environment variables, mapped explicitly by envTransformFunc
//
// Example config.yaml:
//
//	dataset:
//	  movies_source: https://files.grouplens.org/datasets/movielens/ml-100k/u.item
//	  ratings_source: https://files.grouplens.org/datasets/movielens/ml-100k/u.data
//	  malformed_lines: strict
//	training:
//	  epochs: 8
//	  batch_size: 64
//	server:
//	  port: 8080
package config
