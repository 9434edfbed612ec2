// Cinelens - MovieLens Matrix Factorization Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package movielens

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MalformedPolicy decides what happens to lines that cannot be parsed.
type MalformedPolicy string

const (
	// MalformedSkip drops the line and records it in the ParseReport.
	MalformedSkip MalformedPolicy = "skip"

	// MalformedStrict fails the parse with a *ParseError.
	MalformedStrict MalformedPolicy = "strict"
)

// ParseMalformedPolicy converts a configuration string to a MalformedPolicy.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case MalformedSkip, "":
		return MalformedSkip, nil
	case MalformedStrict:
		return MalformedStrict, nil
	default:
		return "", fmt.Errorf("unknown malformed line policy %q", s)
	}
}

// maxSkippedSamples bounds ParseReport.SkippedLines.
const maxSkippedSamples = 10

// ParseReport summarizes one parse.
type ParseReport struct {
	// Lines counts non-blank lines.
	Lines int `json:"lines"`

	Parsed  int `json:"parsed"`
	Skipped int `json:"skipped"`

	// SkippedLines holds the 1-based numbers of the first skipped lines.
	SkippedLines []int `json:"skipped_lines,omitempty"`
}

func (r *ParseReport) skip(line int) {
	r.Skipped++
	if len(r.SkippedLines) < maxSkippedSamples {
		r.SkippedLines = append(r.SkippedLines, line)
	}
}

// titleYear matches a title ending in a four digit year in parentheses.
var titleYear = regexp.MustCompile(`^(.+)\s+\((\d{4})\)$`)

// lineScanner splits on '\n'; bufio.ScanLines also drops a trailing '\r'.
func lineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return sc
}

// ParseMovies parses u.item content.
//
// Blank lines are ignored. A line needs at least an ID and a title field and
// the ID must be an integer. A trailing "(YYYY)" on the trimmed title becomes
// Year and is removed from Title; otherwise Title keeps the field verbatim.
// Duplicate IDs are kept.
func ParseMovies(r io.Reader, policy MalformedPolicy) ([]Movie, ParseReport, error) {
	var (
		movies []Movie
		report ParseReport
	)

	sc := lineScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		report.Lines++

		movie, reason := parseMovieLine(line)
		if reason != "" {
			if policy == MalformedStrict {
				return nil, report, &ParseError{File: "u.item", Line: lineNo, Reason: reason}
			}
			report.skip(lineNo)
			continue
		}

		movies = append(movies, movie)
		report.Parsed++
	}
	if err := sc.Err(); err != nil {
		return nil, report, fmt.Errorf("read movies: %w", err)
	}

	return movies, report, nil
}

func parseMovieLine(line string) (Movie, string) {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return Movie{}, "expected at least 2 pipe-delimited fields"
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Movie{}, fmt.Sprintf("movie id %q is not an integer", parts[0])
	}

	movie := Movie{ID: id, Title: parts[1]}
	if m := titleYear.FindStringSubmatch(strings.TrimSpace(parts[1])); m != nil {
		year, _ := strconv.Atoi(m[2]) // four ASCII digits always parse
		movie.Title = strings.TrimSpace(m[1])
		movie.Year = &year
	}
	return movie, ""
}

// ParseRatings parses u.data content.
//
// Each trimmed, non-blank line is split on runs of whitespace; the first three
// tokens are user ID, movie ID and rating. Further tokens are ignored. The
// rating range is not enforced.
func ParseRatings(r io.Reader, policy MalformedPolicy) ([]Rating, ParseReport, error) {
	var (
		ratings []Rating
		report  ParseReport
	)

	sc := lineScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		report.Lines++

		rating, reason := parseRatingLine(line)
		if reason != "" {
			if policy == MalformedStrict {
				return nil, report, &ParseError{File: "u.data", Line: lineNo, Reason: reason}
			}
			report.skip(lineNo)
			continue
		}

		ratings = append(ratings, rating)
		report.Parsed++
	}
	if err := sc.Err(); err != nil {
		return nil, report, fmt.Errorf("read ratings: %w", err)
	}

	return ratings, report, nil
}

func parseRatingLine(line string) (Rating, string) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Rating{}, fmt.Sprintf("expected at least 3 fields, got %d", len(fields))
	}

	userID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Rating{}, fmt.Sprintf("user id %q is not an integer", fields[0])
	}
	movieID, err := strconv.Atoi(fields[1])
	if err != nil {
		return Rating{}, fmt.Sprintf("movie id %q is not an integer", fields[1])
	}
	value, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Rating{}, fmt.Sprintf("rating %q is not a finite number", fields[2])
	}

	return Rating{UserID: userID, MovieID: movieID, Rating: value}, ""
}
