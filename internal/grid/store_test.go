package grid

import (
	"context"
	"errors"
	"strings"

	"milkdesk/internal/api"
)

// fakeStore is an in-memory stand-in for the cooperative API.
type fakeStore struct {
	suppliers []api.Supplier
	entries   []api.DailyEntry
	nextID    int64

	suppliersErr error
	entriesErr   error
	bulkErr      error
	upsertErr    error

	bulkCalls [][]api.EntryUpsert
	upserts   []api.QualityUpsert
	deletes   []int64
	fetches   int
}

func (s *fakeStore) ListSuppliers(context.Context) ([]api.Supplier, error) {
	s.fetches++
	if s.suppliersErr != nil {
		return nil, s.suppliersErr
	}
	return s.suppliers, nil
}

func (s *fakeStore) ListDailyEntries(_ context.Context, year, month int) ([]api.DailyEntry, error) {
	if s.entriesErr != nil {
		return nil, s.entriesErr
	}
	var out []api.DailyEntry
	for _, e := range s.entries {
		if e.InMonth(year, month) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) BulkUpsertEntries(_ context.Context, upserts []api.EntryUpsert) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulkCalls = append(s.bulkCalls, upserts)
	for _, u := range upserts {
		idx := s.find(u.SupplierID, u.Date)
		if idx >= 0 {
			s.entries[idx].Qty = u.Qty
			continue
		}
		s.nextID++
		s.entries = append(s.entries, api.DailyEntry{ID: 1000 + s.nextID, SupplierID: u.SupplierID, Date: u.Date, Qty: u.Qty})
	}
	return nil
}

func (s *fakeStore) UpsertEntry(_ context.Context, u api.QualityUpsert) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, u)
	fat := u.FatPct
	if u.ID != nil {
		for i := range s.entries {
			if s.entries[i].ID == *u.ID {
				s.entries[i].Date = u.Date
				s.entries[i].FatPct = &fat
				return nil
			}
		}
	}
	if idx := s.find(u.SupplierID, u.Date); idx >= 0 {
		s.entries[idx].FatPct = &fat
		return nil
	}
	s.nextID++
	s.entries = append(s.entries, api.DailyEntry{ID: 1000 + s.nextID, SupplierID: u.SupplierID, Date: u.Date, FatPct: &fat})
	return nil
}

func (s *fakeStore) DeleteEntry(_ context.Context, id int64) error {
	s.deletes = append(s.deletes, id)
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("entry not found")
}

func (s *fakeStore) find(supplierID int64, date string) int {
	for i, e := range s.entries {
		if e.SupplierID == supplierID && strings.EqualFold(e.Date, date) {
			return i
		}
	}
	return -1
}

func fat(v float64) *float64 {
	return &v
}

func february2025Store() *fakeStore {
	return &fakeStore{
		suppliers: []api.Supplier{
			{ID: 2, FirstName: "Milan", LastName: "Jovic", OrderIndex: 1},
			{ID: 1, FirstName: "Ana", LastName: "Peric", OrderIndex: 0},
		},
		entries: []api.DailyEntry{
			{ID: 11, SupplierID: 1, Date: "2025-02-03", Qty: 10, FatPct: fat(3.6)},
			{ID: 12, SupplierID: 1, Date: "2025-02-04", Qty: 8},
			{ID: 13, SupplierID: 1, Date: "2025-02-20", Qty: 7, FatPct: fat(4.0)},
			{ID: 21, SupplierID: 2, Date: "2025-02-03", Qty: 5.5, FatPct: fat(3.9)},
			{ID: 22, SupplierID: 2, Date: "2025-02-15", Qty: 4},
			{ID: 31, SupplierID: 1, Date: "2025-03-03", Qty: 99},
		},
	}
}
