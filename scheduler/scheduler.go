package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"wildbutton/button"
)

const (
	tickSpec   = "@every 30s"
	tickBudget = 25 * time.Second

	// claimTTL bounds how long a crashed worker can hold a post claim.
	claimTTL = time.Minute

	// maxConsecutiveFailures flags an installation for operator attention.
	maxConsecutiveFailures = 3
)

// Claimer hands out cross-worker exclusive claims for in-flight posts.
type Claimer interface {
	Claim(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Scheduler drives the fire/re-arm cycle for all installations. It keeps no
// installation state in memory: every tick re-reads the store, so the loop
// is restart-safe and multiple workers can tick concurrently.
type Scheduler struct {
	store     button.Store
	messenger button.Messenger
	claims    Claimer
	cron      *cron.Cron
}

func New(store button.Store, messenger button.Messenger, claims Claimer) *Scheduler {
	return &Scheduler{
		store:     store,
		messenger: messenger,
		claims:    claims,
	}
}

// Start begins the fixed-tick loop in the background.
func (s *Scheduler) Start() {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(tickSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickBudget)
		defer cancel()
		s.Tick(ctx, time.Now())
	})
	if err != nil {
		log.Fatalf("[ERROR] Scheduler: invalid tick spec: %v", err)
	}
	s.cron.Start()
	log.Println("Scheduler started...")
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Println("Scheduler stopped")
}

// Tick evaluates every installation against now. Pure with respect to time:
// now is a parameter so the cycle is fully testable.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	insts, err := s.store.ListInstallations(ctx)
	if err != nil {
		log.Printf("[ERROR] Scheduler: failed to list installations: %v\n", err)
		return
	}

	for i := range insts {
		s.evaluate(ctx, &insts[i], now)
	}
}

func (s *Scheduler) evaluate(ctx context.Context, inst *button.Installation, now time.Time) {
	// A pending message means the current cycle is still awaiting its click;
	// the one-pending-per-installation invariant forbids posting another.
	if inst.Pending() {
		return
	}

	if inst.ScheduledFire == 0 {
		s.rearm(ctx, inst, now)
		return
	}

	if inst.ScheduledFire > now.Unix() {
		return
	}

	// Manual-announce teams get fire times computed but are only posted
	// through the explicit announce command.
	if inst.ManualAnnounce {
		return
	}

	// No channel configured yet; the fire instant stays armed until the
	// admin picks one.
	if inst.ChannelID == "" {
		return
	}

	// Atomic claim before touching Slack: if two ticks race on the same due
	// installation, only the claim holder posts.
	key := fmt.Sprintf("post_claim:%s:%d", inst.TeamID, inst.ScheduledFire)
	ok, err := s.claims.Claim(ctx, key, uuid.NewString(), claimTTL)
	if err != nil {
		log.Printf("[ERROR] Scheduler: claim failed for team %s: %v\n", inst.TeamID, err)
		return
	}
	if !ok {
		return
	}

	if err := s.PostNow(ctx, inst, now); err != nil {
		// Scheduled state is untouched on failure, so releasing the claim
		// lets the next tick retry immediately.
		if rerr := s.claims.Release(ctx, key); rerr != nil {
			log.Printf("[ERROR] Scheduler: release claim for team %s: %v\n", inst.TeamID, rerr)
		}
	}
}

// rearm computes a fresh fire instant for an un-armed installation. This
// self-heals teams whose configuration could not fire earlier and has since
// been corrected by an admin.
func (s *Scheduler) rearm(ctx context.Context, inst *button.Installation, now time.Time) {
	fire, err := button.NextFireTime(inst, now)
	if err != nil {
		if !inst.NeedsAttention {
			log.Printf("[WARN] Scheduler: team %s cannot be scheduled: %v\n", inst.TeamID, err)
			if serr := s.store.SetPostFailure(ctx, inst.TeamID, inst.ConsecutiveFailures, true); serr != nil {
				log.Printf("[ERROR] Scheduler: flag team %s: %v\n", inst.TeamID, serr)
			}
		}
		return
	}

	ok, err := s.store.ConditionalUpdateScheduled(ctx, inst.TeamID, "", button.Scheduled{
		Fire: fire.Unix(),
	})
	if err != nil {
		log.Printf("[ERROR] Scheduler: arm team %s: %v\n", inst.TeamID, err)
		return
	}
	if ok && inst.NeedsAttention {
		if serr := s.store.SetPostFailure(ctx, inst.TeamID, 0, false); serr != nil {
			log.Printf("[ERROR] Scheduler: clear attention for team %s: %v\n", inst.TeamID, serr)
		}
	}
	if ok {
		log.Printf("[INFO] Scheduler: armed team %s for %s\n", inst.TeamID, fire.UTC().Format(time.RFC3339))
	}
}

// PostNow posts the button for inst and commits the posted message id. The
// next cycle's fire instant is computed from the post instant but stays
// uncommitted in NextFire until the pending message resolves, which is what
// keeps a single installation from ever holding two pending messages.
// Also invoked directly by the announce slash command for manual teams.
func (s *Scheduler) PostNow(ctx context.Context, inst *button.Installation, now time.Time) error {
	messageID, err := s.messenger.PostButtonMessage(ctx, inst)
	if err != nil {
		failures := inst.ConsecutiveFailures + 1
		attention := failures >= maxConsecutiveFailures
		if attention {
			log.Printf("[ERROR] Scheduler: team %s has %d consecutive post failures, flagging for attention\n",
				inst.TeamID, failures)
		}
		if serr := s.store.SetPostFailure(ctx, inst.TeamID, failures, attention || inst.NeedsAttention); serr != nil {
			log.Printf("[ERROR] Scheduler: record post failure for team %s: %v\n", inst.TeamID, serr)
		}
		return fmt.Errorf("post button for team %s: %w", inst.TeamID, err)
	}

	next, err := button.NextFireTime(inst, now)
	var nextUnix int64
	if err != nil {
		// The current message still arbitrates normally; the team just is
		// not re-armed when it resolves.
		log.Printf("[WARN] Scheduler: no next fire time for team %s: %v\n", inst.TeamID, err)
	} else {
		nextUnix = next.Unix()
	}

	fire := inst.ScheduledFire
	if fire == 0 {
		fire = now.Unix()
	}

	ok, err := s.store.ConditionalUpdateScheduled(ctx, inst.TeamID, "", button.Scheduled{
		Fire:      fire,
		MessageID: messageID,
		NextFire:  nextUnix,
	})
	if err != nil {
		return fmt.Errorf("commit posted message for team %s: %w", inst.TeamID, err)
	}
	if !ok {
		// Lost the commit race to a concurrent worker; its post stands.
		log.Printf("[WARN] Scheduler: post commit conflict for team %s, message %s orphaned\n", inst.TeamID, messageID)
		return nil
	}

	if inst.ConsecutiveFailures > 0 || inst.NeedsAttention {
		if serr := s.store.SetPostFailure(ctx, inst.TeamID, 0, false); serr != nil {
			log.Printf("[ERROR] Scheduler: reset failures for team %s: %v\n", inst.TeamID, serr)
		}
	}

	log.Printf("[INFO] Scheduler: posted button %s for team %s\n", messageID, inst.TeamID)
	return nil
}
