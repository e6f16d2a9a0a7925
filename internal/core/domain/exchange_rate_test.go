package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExchangeRateFilterPageBounds(t *testing.T) {
	cases := []struct {
		name       string
		filter     ExchangeRateFilter
		total      int
		start, end int
	}{
		{"first page", ExchangeRateFilter{Limit: 10}, 25, 0, 10},
		{"last partial page", ExchangeRateFilter{Limit: 10, Offset: 20}, 25, 20, 25},
		{"no limit", ExchangeRateFilter{Offset: 5}, 25, 5, 25},
		{"offset at end", ExchangeRateFilter{Limit: 10, Offset: 25}, 25, 25, 25},
		{"offset past end", ExchangeRateFilter{Limit: 10, Offset: 1000}, 25, 25, 25},
		{"negative offset", ExchangeRateFilter{Limit: 10, Offset: -10}, 25, 25, 25},
		{"huge offset and limit", ExchangeRateFilter{Limit: math.MaxInt, Offset: math.MaxInt}, 25, 25, 25},
		{"huge limit", ExchangeRateFilter{Limit: math.MaxInt, Offset: 3}, 25, 3, 25},
		{"empty listing", ExchangeRateFilter{Limit: 10}, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := tc.filter.PageBounds(tc.total)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}
