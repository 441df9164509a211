package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSuppliers() []Supplier {
	return []Supplier{
		{ID: 10, FirstName: "C", City: "Sjenica", OrderIndex: 2},
		{ID: 11, FirstName: "A", City: "Komarani", OrderIndex: 0},
		{ID: 12, FirstName: "B", City: "Sjenica", OrderIndex: 1},
		{ID: 13, FirstName: "D", City: "", OrderIndex: 1},
	}
}

func TestSortByOrderIndex_StableAndCopy(t *testing.T) {
	in := fixtureSuppliers()
	out := SortByOrderIndex(in)

	ids := make([]int64, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	assert.Equal(t, []int64{11, 12, 13, 10}, ids)
	assert.Equal(t, int64(10), in[0].ID)
}

func TestCitiesAndFilter(t *testing.T) {
	suppliers := fixtureSuppliers()
	assert.Equal(t, []string{"Komarani", "Sjenica"}, Cities(suppliers))
	assert.Len(t, FilterByCity(suppliers, "sjenica"), 2)
	assert.Len(t, FilterByCity(suppliers, ""), 4)
}

func TestMoveSupplier(t *testing.T) {
	suppliers := fixtureSuppliers()

	order, err := MoveSupplier(suppliers, 10, Up)
	require.NoError(t, err)
	assert.Equal(t, []SupplierOrder{
		{ID: 11, OrderIndex: 0},
		{ID: 12, OrderIndex: 1},
		{ID: 10, OrderIndex: 2},
		{ID: 13, OrderIndex: 3},
	}, order)

	_, err = MoveSupplier(suppliers, 11, Up)
	assert.ErrorIs(t, err, ErrCannotMove)

	_, err = MoveSupplier(suppliers, 10, Down)
	assert.ErrorIs(t, err, ErrCannotMove)

	_, err = MoveSupplier(suppliers, 99, Down)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" UP ")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	_, err = ParseDirection("left")
	assert.Error(t, err)
}

func TestDailyEntry_DateHelpers(t *testing.T) {
	e := DailyEntry{Date: "2024-02-29"}
	assert.Equal(t, 29, e.Day())
	assert.True(t, e.InMonth(2024, 2))
	assert.False(t, e.InMonth(2024, 3))
	assert.Equal(t, 0, DailyEntry{Date: "bad"}.Day())
}
