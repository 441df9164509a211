package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrCannotMove = errors.New("supplier cannot move further")

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(value string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(value))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want up or down)", value)
	}
}

// SortByOrderIndex returns a copy ordered by OrderIndex; ties keep their list order.
func SortByOrderIndex(suppliers []Supplier) []Supplier {
	out := make([]Supplier, len(suppliers))
	copy(out, suppliers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// Cities lists the distinct supplier cities, sorted. Suppliers without a city are skipped.
func Cities(suppliers []Supplier) []string {
	seen := map[string]struct{}{}
	var cities []string
	for _, s := range suppliers {
		city := strings.TrimSpace(s.City)
		if city == "" {
			continue
		}
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

func FilterByCity(suppliers []Supplier, city string) []Supplier {
	city = strings.TrimSpace(city)
	if city == "" {
		return suppliers
	}
	var out []Supplier
	for _, s := range suppliers {
		if strings.EqualFold(strings.TrimSpace(s.City), city) {
			out = append(out, s)
		}
	}
	return out
}

func FindSupplier(suppliers []Supplier, id int64) (Supplier, bool) {
	for _, s := range suppliers {
		if s.ID == id {
			return s, true
		}
	}
	return Supplier{}, false
}

// MoveSupplier swaps the supplier with its neighbour in display order and returns the
// renumbered order for every supplier, ready for ReorderSuppliers.
func MoveSupplier(suppliers []Supplier, id int64, dir Direction) ([]SupplierOrder, error) {
	ordered := SortByOrderIndex(suppliers)

	idx := -1
	for i, s := range ordered {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
	}

	switch dir {
	case Up:
		if idx == 0 {
			return nil, ErrCannotMove
		}
		ordered[idx-1], ordered[idx] = ordered[idx], ordered[idx-1]
	case Down:
		if idx == len(ordered)-1 {
			return nil, ErrCannotMove
		}
		ordered[idx+1], ordered[idx] = ordered[idx], ordered[idx+1]
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}

	order := make([]SupplierOrder, len(ordered))
	for i, s := range ordered {
		order[i] = SupplierOrder{ID: s.ID, OrderIndex: i}
	}
	return order, nil
}
