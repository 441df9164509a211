package grid

import (
	"context"
	"errors"
	"testing"

	"milkdesk/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_AverageFatPct(t *testing.T) {
	store := february2025Store()
	store.entries = append(store.entries, api.DailyEntry{ID: 15, SupplierID: 1, Date: "2025-02-10", Qty: 3, FatPct: fat(4.0)})

	g := loadedGrid(t, store, FirstHalf)
	avg, ok := g.AverageFatPct(1)
	require.True(t, ok)
	assert.InDelta(t, 3.8, avg, 1e-9)

	_, ok = g.AverageFatPct(99)
	assert.False(t, ok)

	require.NoError(t, g.SetPeriod(SecondHalf))
	avg, ok = g.AverageFatPct(1)
	require.True(t, ok)
	assert.InDelta(t, 4.0, avg, 1e-9)

	_, ok = g.AverageFatPct(2)
	assert.False(t, ok, "supplier 2 has no reading in the second half")
}

func TestGrid_HasQuality(t *testing.T) {
	g := loadedGrid(t, february2025Store(), FirstHalf)

	assert.True(t, g.HasQuality(1, 3))
	assert.False(t, g.HasQuality(1, 4))

	v, ok := g.FatPctForDay(2, 3)
	require.True(t, ok)
	assert.Equal(t, 3.9, v)
}

func TestGrid_QualityReadings(t *testing.T) {
	g := loadedGrid(t, february2025Store(), FirstHalf)

	readings := g.QualityReadings(1)
	require.Len(t, readings, 2, "the whole month, not only the visible days")
	assert.Equal(t, "2025-02-03", readings[0].Date)
	assert.Equal(t, "2025-02-20", readings[1].Date)
	require.NotNil(t, readings[0].ID)
	assert.Equal(t, int64(11), *readings[0].ID)

	fresh := g.NewQualityReading()
	assert.Nil(t, fresh.ID)
	assert.Equal(t, "2025-02-01", fresh.Date)
	assert.Equal(t, DefaultFatPct, fresh.FatPct)

	require.NoError(t, g.SetPeriod(SecondHalf))
	assert.Equal(t, "2025-02-16", g.NewQualityReading().Date)
}

func TestPlanQuality(t *testing.T) {
	id := func(v int64) *int64 { return &v }

	existing := []QualityReading{
		{ID: id(11), Date: "2025-02-03", FatPct: 3.6},
		{ID: id(13), Date: "2025-02-20", FatPct: 4.0},
	}
	edited := []QualityReading{
		{ID: id(11), Date: "2025-02-03", FatPct: 3.7},
		{Date: "2025-02-05", FatPct: 3.8},
	}

	plan := PlanQuality(1, existing, edited)
	assert.Equal(t, []int64{13}, plan.Deletes)
	assert.Equal(t, []api.QualityUpsert{
		{ID: id(11), Date: "2025-02-03", SupplierID: 1, FatPct: 3.7},
		{Date: "2025-02-05", SupplierID: 1, FatPct: 3.8},
	}, plan.Upserts)
	assert.False(t, plan.Empty())

	assert.True(t, PlanQuality(1, nil, nil).Empty())
}

func TestGrid_SaveQuality(t *testing.T) {
	store := february2025Store()
	g := loadedGrid(t, store, FirstHalf)

	readings := g.QualityReadings(1)
	readings[0].FatPct = 3.7
	edited := []QualityReading{readings[0], g.NewQualityReading()}

	require.NoError(t, g.SaveQuality(context.Background(), store, 1, edited))
	assert.Equal(t, []int64{13}, store.deletes)
	assert.Len(t, store.upserts, 2)

	v, ok := g.FatPctForDay(1, 3)
	require.True(t, ok)
	assert.Equal(t, 3.7, v)
	assert.True(t, g.HasQuality(1, 1))
	assert.Len(t, g.QualityReadings(1), 2)
}

func TestGrid_SaveQualityValidation(t *testing.T) {
	store := february2025Store()
	g := loadedGrid(t, store, FirstHalf)

	err := g.SaveQuality(context.Background(), store, 99, nil)
	assert.ErrorIs(t, err, ErrUnknownSupplier)

	err = g.SaveQuality(context.Background(), store, 1, []QualityReading{{Date: "2025-03-01", FatPct: 4}})
	assert.Error(t, err)
	assert.Empty(t, store.upserts)
}

func TestGrid_SaveQualityFailureStillReloads(t *testing.T) {
	store := february2025Store()
	store.upsertErr = errors.New("rejected")
	g := loadedGrid(t, store, FirstHalf)
	fetches := store.fetches

	err := g.SaveQuality(context.Background(), store, 2, []QualityReading{g.NewQualityReading()})
	assert.ErrorContains(t, err, "rejected")
	assert.Equal(t, fetches+1, store.fetches)
	assert.NoError(t, g.Ready())
}
