// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frametable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdjacency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{name: "simple list", input: "[1, 2, 3]", want: []int64{1, 2, 3}},
		{name: "no spaces", input: "[4,5]", want: []int64{4, 5}},
		{name: "single element", input: "[7]", want: []int64{7}},
		{name: "empty list", input: "[]", want: []int64{}},
		{name: "surrounding whitespace", input: "  [1, 2]  ", want: []int64{1, 2}},
		{name: "missing brackets", input: "1, 2, 3", wantErr: true},
		{name: "non-integer element", input: "[1, x, 3]", wantErr: true},
		{name: "float element", input: "[1.5]", wantErr: true},
		{name: "trailing comma", input: "[1, 2,]", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "not a list", input: "nan", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAdjacency(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAdjacencyParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
