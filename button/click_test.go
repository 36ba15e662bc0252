package button

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store whose conditional update is atomic under a
// mutex, standing in for the database's single-row CAS.
type memStore struct {
	mu    sync.Mutex
	insts map[string]*Installation
	wins  []WinRecord
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{insts: map[string]*Installation{}}
}

func (m *memStore) GetInstallation(ctx context.Context, teamID string) (*Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.insts[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s not found", teamID)
	}
	c := *inst
	return &c, nil
}

func (m *memStore) ListInstallations(ctx context.Context) ([]Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Installation{}
	for _, inst := range m.insts {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (m *memStore) SaveInstallation(ctx context.Context, inst *Installation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *inst
	m.insts[inst.TeamID] = &c
	return nil
}

func (m *memStore) DeleteInstallation(ctx context.Context, teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.insts, teamID)
	return nil
}

func (m *memStore) UpdateConfig(ctx context.Context, teamID string, upd ConfigUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.insts[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	if upd.ChannelID != nil {
		inst.ChannelID = *upd.ChannelID
	}
	if upd.Weekdays != nil {
		inst.Weekdays = *upd.Weekdays
	}
	if upd.IntervalStart != nil {
		inst.IntervalStart = *upd.IntervalStart
	}
	if upd.IntervalEnd != nil {
		inst.IntervalEnd = *upd.IntervalEnd
	}
	if upd.Timezone != nil {
		inst.Timezone = *upd.Timezone
	}
	if upd.ManualAnnounce != nil {
		inst.ManualAnnounce = *upd.ManualAnnounce
	}
	return nil
}

func (m *memStore) ConditionalUpdateScheduled(ctx context.Context, teamID, expectedMessageID string, next Scheduled) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.insts[teamID]
	if !ok || inst.ScheduledMessageID != expectedMessageID {
		return false, nil
	}
	inst.ScheduledFire = next.Fire
	inst.ScheduledMessageID = next.MessageID
	inst.NextFire = next.NextFire
	return true, nil
}

func (m *memStore) SetPostFailure(ctx context.Context, teamID string, failures int, needsAttention bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.insts[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}
	inst.ConsecutiveFailures = failures
	inst.NeedsAttention = needsAttention
	return nil
}

func (m *memStore) AppendWinRecord(ctx context.Context, rec *WinRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := *rec
	r.ID = uint(len(m.wins) + 1)
	m.wins = append(m.wins, r)
	return nil
}

func (m *memStore) ListWinRecords(ctx context.Context, teamID string) ([]WinRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []WinRecord{}
	for _, rec := range m.wins {
		if rec.TeamID == teamID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WonAt.Before(out[j].WonAt) })
	return out, nil
}

func pendingInstallation(teamID, messageID string, nextFire int64) *Installation {
	return &Installation{
		TeamID:             teamID,
		ChannelID:          "C00000000",
		Weekdays:           Monday | Tuesday | Wednesday | Thursday | Friday,
		IntervalStart:      9 * 3600,
		IntervalEnd:        16 * 3600,
		Timezone:           "Europe/Copenhagen",
		ScheduledFire:      time.Now().Add(-time.Minute).Unix(),
		ScheduledMessageID: messageID,
		NextFire:           nextFire,
	}
}

func TestResolveClickExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	nextFire := time.Now().Add(24 * time.Hour).Unix()
	store.SaveInstallation(ctx, pendingInstallation("T1", "111.222", nextFire))

	arb := NewArbitrator(store)

	const clickers = 50
	results := make(chan ClickResult, clickers)
	var wg sync.WaitGroup
	for i := 0; i < clickers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := arb.ResolveClick(ctx, "T1", "111.222", fmt.Sprintf("U%03d", n), time.Now())
			if err != nil {
				t.Errorf("resolve click: %v", err)
			}
			results <- res
		}(i)
	}
	wg.Wait()
	close(results)

	won := 0
	for res := range results {
		if res == Won {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}

	wins, _ := store.ListWinRecords(ctx, "T1")
	if len(wins) != 1 {
		t.Fatalf("expected exactly one win record, got %d", len(wins))
	}

	inst, _ := store.GetInstallation(ctx, "T1")
	if inst.Pending() {
		t.Fatalf("expected pending message cleared, got %q", inst.ScheduledMessageID)
	}
	if inst.ScheduledFire != nextFire {
		t.Fatalf("expected re-arm at %d, got %d", nextFire, inst.ScheduledFire)
	}
	if inst.NextFire != 0 {
		t.Fatalf("expected NextFire consumed, got %d", inst.NextFire)
	}
}

func TestResolveClickStaleMessage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.SaveInstallation(ctx, pendingInstallation("T1", "111.222", 0))

	arb := NewArbitrator(store)

	res, err := arb.ResolveClick(ctx, "T1", "999.999", "U001", time.Now())
	if err != nil {
		t.Fatalf("resolve click: %v", err)
	}
	if res != AlreadyResolved {
		t.Fatalf("expected AlreadyResolved for stale message, got %v", res)
	}

	if wins, _ := store.ListWinRecords(ctx, "T1"); len(wins) != 0 {
		t.Fatalf("expected no win records, got %d", len(wins))
	}

	inst, _ := store.GetInstallation(ctx, "T1")
	if inst.ScheduledMessageID != "111.222" {
		t.Fatalf("expected pending message untouched, got %q", inst.ScheduledMessageID)
	}
}

func TestResolveClickNoPendingMessage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.SaveInstallation(ctx, pendingInstallation("T1", "", 0))

	arb := NewArbitrator(store)

	res, err := arb.ResolveClick(ctx, "T1", "111.222", "U001", time.Now())
	if err != nil {
		t.Fatalf("resolve click: %v", err)
	}
	if res != AlreadyResolved {
		t.Fatalf("expected AlreadyResolved with no pending message, got %v", res)
	}
	if wins, _ := store.ListWinRecords(ctx, "T1"); len(wins) != 0 {
		t.Fatalf("expected no win records, got %d", len(wins))
	}
}
