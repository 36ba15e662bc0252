package button

import (
	"context"
	"fmt"
	"time"
)

// ClickResult is the outcome of a click arbitration.
type ClickResult int

const (
	// Won means this click was the first to resolve the pending message.
	Won ClickResult = iota
	// AlreadyResolved means the message was stale or another click won.
	AlreadyResolved
)

// Arbitrator resolves concurrent click events for a pending button message,
// guaranteeing exactly one winner per posted message. All coordination goes
// through the store's conditional update, never in-process locks, since
// clicks for the same message may be handled by different workers.
type Arbitrator struct {
	store Store
}

func NewArbitrator(store Store) *Arbitrator {
	return &Arbitrator{store: store}
}

// ResolveClick records userID as the winner of messageID for teamID, iff
// messageID is still the installation's live pending message. The winning
// transition is a single conditional update that clears the pending id and
// re-arms the next cycle's fire instant, so of N concurrent calls exactly
// one observes Won; the rest observe AlreadyResolved and write nothing.
func (a *Arbitrator) ResolveClick(ctx context.Context, teamID, messageID, userID string, clickAt time.Time) (ClickResult, error) {
	inst, err := a.store.GetInstallation(ctx, teamID)
	if err != nil {
		return AlreadyResolved, fmt.Errorf("resolve click: load installation %s: %w", teamID, err)
	}

	if messageID == "" || inst.ScheduledMessageID != messageID {
		return AlreadyResolved, nil
	}

	// Committing NextFire here is what arms the following cycle; only the
	// winning click performs it, so exactly one re-arm happens per cycle.
	ok, err := a.store.ConditionalUpdateScheduled(ctx, teamID, messageID, Scheduled{
		Fire:      inst.NextFire,
		MessageID: "",
		NextFire:  0,
	})
	if err != nil {
		return AlreadyResolved, fmt.Errorf("resolve click: conditional update for team %s: %w", teamID, err)
	}
	if !ok {
		return AlreadyResolved, nil
	}

	rec := &WinRecord{TeamID: teamID, UserID: userID, WonAt: clickAt.UTC()}
	if err := a.store.AppendWinRecord(ctx, rec); err != nil {
		return Won, fmt.Errorf("resolve click: append win for team %s user %s: %w", teamID, userID, err)
	}
	return Won, nil
}
