// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frametable

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAdjacency parses the textual encoding of a neighbor-id list, e.g.
// "[3, 17, 42]" or "[]". It is strict: the value must be a bracketed list
// of integers. Callers that want the degree-0 degradation apply it at
// their own boundary; this function reports the failure.
func ParseAdjacency(s string) ([]int64, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("%w: %q", ErrAdjacencyParse, s)
	}

	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return []int64{}, nil
	}

	fields := strings.Split(inner, ",")
	ids := make([]int64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("%w: empty element in %q", ErrAdjacencyParse, s)
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrAdjacencyParse, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
