//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SolrFeed Authors
//
// This file is part of SolrFeed.
//
// SolrFeed is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SolrFeed is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SolrFeed. If not, see https://www.gnu.org/licenses/.

package dates

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// Package dates normalizes free-text date strings into sorted integer year
// lists. Date ranges use "/" as separator, the convention of the DLCS
// normalized-date field; years rather than full dates are the unit of record
// because the index only facets by year.

// fallbackYear fills in when a value parses but carries no year at all.
// A value with an explicit year is never altered by the fallback.
const fallbackYear = 1978

const rangeSeparator = "/"

var bareYear = regexp.MustCompile(`^\d{3,4}$`)

// ExtractYears maps a multi-valued date field to a sorted list of distinct
// years. The input is the raw field value, so anything that is not a list of
// strings yields an empty list; non-string elements inside a list are
// skipped. An element containing exactly one "/" is treated as a range and
// contributes both endpoint years, but only when both endpoints parse.
//
// Per-value parse failures are logged and contribute nothing; they never
// fail the batch.
func ExtractYears(dates interface{}) []int {
	values := stringValues(dates)

	set := make(map[int]struct{})
	for _, value := range values {
		if strings.Count(value, rangeSeparator) == 1 {
			parts := strings.SplitN(value, rangeSeparator, 2)
			start, okStart := parseYear(parts[0])
			end, okEnd := parseYear(parts[1])
			if okStart && okEnd {
				set[start] = struct{}{}
				set[end] = struct{}{}
			}
			continue
		}
		if year, ok := parseYear(value); ok {
			set[year] = struct{}{}
		}
	}

	years := make([]int, 0, len(set))
	for year := range set {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// parseYear extracts the year from one free-text date string. Partial dates
// (bare year, year-month) are accepted; only the year component is kept, so
// the fallback day and month never leak into the result.
func parseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}

	// A bare 3- or 4-digit year needs no date parsing.
	if bareYear.MatchString(date) {
		year, err := strconv.Atoi(date)
		if err != nil {
			return 0, false
		}
		return year, true
	}

	parsed, err := dateparse.ParseAny(date)
	if err != nil {
		slog.Debug("unparseable date value", "value", date, "error", err)
		return 0, false
	}

	year := parsed.Year()
	if year <= 0 {
		year = fallbackYear
	}
	return year, true
}

// stringValues coerces a raw field value to its string elements. Anything
// that is not a list yields nil; non-string elements are skipped.
func stringValues(dates interface{}) []string {
	switch v := dates.(type) {
	case []string:
		return v
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, element := range v {
			if s, ok := element.(string); ok {
				values = append(values, s)
			}
		}
		return values
	default:
		return nil
	}
}
