package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportStateCurrentYear(t *testing.T) {
	state := &ExportState{YearsToProcess: []string{"2024", "2023"}}

	year, ok := state.CurrentYear()
	assert.True(t, ok)
	assert.Equal(t, "2024", year)

	state.CurrentYearIndex = 1
	year, ok = state.CurrentYear()
	assert.True(t, ok)
	assert.Equal(t, "2023", year)

	state.CurrentYearIndex = 2
	_, ok = state.CurrentYear()
	assert.False(t, ok)
}

func TestExportStateAddOrder(t *testing.T) {
	state := &ExportState{}

	assert.True(t, state.AddOrder(Order{OrderID: "123-4567890-1234567"}))
	assert.False(t, state.AddOrder(Order{OrderID: "123-4567890-1234567"}))
	assert.True(t, state.AddOrder(Order{OrderID: "123-4567890-7654321"}))

	assert.Len(t, state.CollectedOrders, 2)
	assert.Equal(t, []string{"123-4567890-1234567", "123-4567890-7654321"}, state.SeenOrderIDs)

	seen := state.SeenSet()
	_, ok := seen["123-4567890-1234567"]
	assert.True(t, ok)
}
