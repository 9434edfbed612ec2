// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"fmt"
	"strconv"
)

// Movie is one catalog entry from u.item.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Year  *int   `json:"year"`
}

// DisplayTitle returns "Title (Year)", or the bare title when no year is known.
func (m Movie) DisplayTitle() string {
	if m.Year == nil {
		return m.Title
	}
	return fmt.Sprintf("%s (%d)", m.Title, *m.Year)
}

// Rating is one row of u.data.
type Rating struct {
	UserID  int     `json:"user_id"`
	MovieID int     `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

// UserLabel is the display label for a user selection.
func UserLabel(userID int) string {
	return "User " + strconv.Itoa(userID)
}
