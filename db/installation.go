package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wildbutton/button"
)

// ErrNotFound means no installation exists for the requested team.
var ErrNotFound = errors.New("installation not found")

// Store is the Postgres-backed implementation of button.Store.
type Store struct {
	db *gorm.DB
}

var _ button.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetInstallation(ctx context.Context, teamID string) (*button.Installation, error) {
	var inst button.Installation
	err := s.db.WithContext(ctx).Where("team_id = ?", teamID).First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetInstallation: team %s: %w", teamID, err)
	}
	return &inst, nil
}

func (s *Store) ListInstallations(ctx context.Context) ([]button.Installation, error) {
	var insts []button.Installation
	if err := s.db.WithContext(ctx).Find(&insts).Error; err != nil {
		return nil, fmt.Errorf("ListInstallations: %w", err)
	}
	return insts, nil
}

// SaveInstallation upserts on team id. A reinstall refreshes credentials and
// identity fields but keeps the existing schedule configuration and state.
func (s *Store) SaveInstallation(ctx context.Context, inst *button.Installation) error {
	now := time.Now().UTC()
	inst.UpdatedAt = now
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"team_name", "access_token", "bot_user_id", "admin_user_id", "updated_at",
		}),
	}).Create(inst).Error
	if err != nil {
		return fmt.Errorf("SaveInstallation: team %s: %w", inst.TeamID, err)
	}
	return nil
}

func (s *Store) DeleteInstallation(ctx context.Context, teamID string) error {
	if err := s.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&button.Installation{}).Error; err != nil {
		return fmt.Errorf("DeleteInstallation: team %s: %w", teamID, err)
	}
	return nil
}

// ConditionalUpdateScheduled is the single serialization point for an
// installation's scheduling state: one UPDATE keyed on the currently
// recorded pending message id. Zero rows affected means the caller lost the
// race and nothing was written.
func (s *Store) ConditionalUpdateScheduled(ctx context.Context, teamID, expectedMessageID string, next button.Scheduled) (bool, error) {
	res := s.db.WithContext(ctx).Model(&button.Installation{}).
		Where("team_id = ? AND scheduled_message_id = ?", teamID, expectedMessageID).
		Updates(map[string]any{
			"scheduled_fire":       next.Fire,
			"scheduled_message_id": next.MessageID,
			"next_fire":            next.NextFire,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("ConditionalUpdateScheduled: team %s: %w", teamID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateConfig applies admin configuration changes; nil fields are skipped.
func (s *Store) UpdateConfig(ctx context.Context, teamID string, upd button.ConfigUpdate) error {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if upd.ChannelID != nil {
		changes["channel_id"] = *upd.ChannelID
	}
	if upd.Weekdays != nil {
		changes["weekdays"] = *upd.Weekdays
	}
	if upd.IntervalStart != nil {
		changes["interval_start"] = *upd.IntervalStart
	}
	if upd.IntervalEnd != nil {
		changes["interval_end"] = *upd.IntervalEnd
	}
	if upd.Timezone != nil {
		changes["timezone"] = *upd.Timezone
	}
	if upd.ManualAnnounce != nil {
		changes["manual_announce"] = *upd.ManualAnnounce
	}

	err := s.db.WithContext(ctx).Model(&button.Installation{}).
		Where("team_id = ?", teamID).
		Updates(changes).Error
	if err != nil {
		return fmt.Errorf("UpdateConfig: team %s: %w", teamID, err)
	}
	return nil
}

// SetPostFailure bumps the consecutive-failure counter and, past the given
// threshold, flags the installation for operator attention.
func (s *Store) SetPostFailure(ctx context.Context, teamID string, failures int, needsAttention bool) error {
	err := s.db.WithContext(ctx).Model(&button.Installation{}).
		Where("team_id = ?", teamID).
		Updates(map[string]any{
			"consecutive_failures": failures,
			"needs_attention":      needsAttention,
			"updated_at":           time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("SetPostFailure: team %s: %w", teamID, err)
	}
	return nil
}
