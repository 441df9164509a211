package grid

import (
	"context"
	"errors"
)

type GuardChoice int

const (
	GuardCancel GuardChoice = iota
	GuardSave
	GuardDiscard
)

// Guard protects pending edits before an action that would lose them. Without pending
// edits it proceeds immediately; otherwise ask decides between saving first, discarding,
// or cancelling. The result reports whether the action may proceed.
func (g *Grid) Guard(ctx context.Context, store Store, ask func() GuardChoice) (bool, error) {
	if !g.HasChanges() {
		return true, nil
	}

	switch ask() {
	case GuardSave:
		if _, err := g.Save(ctx, store); err != nil {
			if errors.Is(err, ErrNothingToSave) {
				g.Discard()
				return true, nil
			}
			return false, err
		}
		return true, nil
	case GuardDiscard:
		g.Discard()
		return true, nil
	default:
		return false, nil
	}
}
