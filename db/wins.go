package db

import (
	"context"
	"fmt"

	"wildbutton/button"
)

func (s *Store) AppendWinRecord(ctx context.Context, rec *button.WinRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("AppendWinRecord: team %s user %s: %w", rec.TeamID, rec.UserID, err)
	}
	return nil
}

func (s *Store) ListWinRecords(ctx context.Context, teamID string) ([]button.WinRecord, error) {
	var records []button.WinRecord
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("won_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("ListWinRecords: team %s: %w", teamID, err)
	}
	return records, nil
}
