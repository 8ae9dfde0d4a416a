package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    Pagination
		expected Pagination
	}{
		{name: "defaults", input: Pagination{}, expected: Pagination{Page: 1, Limit: 6}},
		{name: "negative values", input: Pagination{Page: -3, Limit: -1}, expected: Pagination{Page: 1, Limit: 6}},
		{name: "limit capped", input: Pagination{Page: 2, Limit: 1000}, expected: Pagination{Page: 2, Limit: MaxPageSize}},
		{name: "huge page capped", input: Pagination{Page: math.MaxInt, Limit: 6}, expected: Pagination{Page: math.MaxInt32/6 + 1, Limit: 6}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Normalize(6)

			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got.Offset(), 0)
			assert.LessOrEqual(t, got.Offset(), math.MaxInt32)
		})
	}
}

func TestPageLinks_HugePage(t *testing.T) {
	page := Page[int]{Count: 1, Pagination: Pagination{Page: math.MaxInt, Limit: 6}.Normalize(6)}

	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())
}
