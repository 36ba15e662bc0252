package button

import (
	"context"
	"time"
)

// Weekday mask bits, bit 0 = Sunday through bit 6 = Saturday,
// matching time.Weekday numbering.
const (
	Sunday = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Installation is one Slack workspace's bot configuration plus its live
// scheduling state. The scheduled triple (ScheduledFire, ScheduledMessageID,
// NextFire) is only ever mutated through Store.ConditionalUpdateScheduled.
type Installation struct {
	ID          uint   `gorm:"primaryKey"`
	TeamID      string `gorm:"uniqueIndex;not null"`
	TeamName    string
	AccessToken string `gorm:"not null"` // AES-GCM encrypted at rest
	BotUserID   string
	AdminUserID string
	ChannelID   string

	Weekdays       int    `gorm:"not null;default:62"` // Mon-Fri
	IntervalStart  int    `gorm:"not null;default:32400"`
	IntervalEnd    int    `gorm:"not null;default:57600"`
	Timezone       string `gorm:"not null;default:UTC"`
	ManualAnnounce bool

	// Live scheduling state. ScheduledFire is the armed fire instant in epoch
	// seconds; ScheduledMessageID is non-empty while a posted button awaits
	// its first click; NextFire holds the following cycle's fire instant,
	// committed into ScheduledFire only when the pending message resolves.
	ScheduledFire      int64
	ScheduledMessageID string
	NextFire           int64

	ConsecutiveFailures int
	NeedsAttention      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pending reports whether a posted button is still awaiting resolution.
func (inst *Installation) Pending() bool {
	return inst.ScheduledMessageID != ""
}

// Scheduled is the CAS payload for an installation's scheduling state.
type Scheduled struct {
	Fire      int64
	MessageID string
	NextFire  int64
}

// WinRecord is the immutable fact of one user resolving one scheduled
// message first. Append-only, never mutated.
type WinRecord struct {
	ID     uint   `gorm:"primaryKey"`
	TeamID string `gorm:"index;not null"`
	UserID string `gorm:"not null"`
	WonAt  time.Time
}

// LeaderboardEntry is a derived ranking row, never stored.
type LeaderboardEntry struct {
	UserID   string
	Wins     int
	FirstWin time.Time
}

// Stats is an immutable snapshot of a team's win history.
type Stats struct {
	Leaderboard []LeaderboardEntry
	TotalWins   int
	FirstWin    time.Time
	LastWin     time.Time
}

// ConfigUpdate carries optional per-field configuration changes from admin
// commands; nil fields are left untouched.
type ConfigUpdate struct {
	ChannelID      *string
	Weekdays       *int
	IntervalStart  *int
	IntervalEnd    *int
	Timezone       *string
	ManualAnnounce *bool
}

// Store abstracts the durable installation and win-record storage. All
// cross-worker coordination relies on the conditional update being atomic
// at single-installation granularity.
type Store interface {
	GetInstallation(ctx context.Context, teamID string) (*Installation, error)
	ListInstallations(ctx context.Context) ([]Installation, error)
	SaveInstallation(ctx context.Context, inst *Installation) error
	DeleteInstallation(ctx context.Context, teamID string) error
	UpdateConfig(ctx context.Context, teamID string, upd ConfigUpdate) error

	// ConditionalUpdateScheduled atomically replaces the scheduling state of
	// the installation iff its current pending message id equals
	// expectedMessageID. Returns false (and performs no write) on conflict.
	ConditionalUpdateScheduled(ctx context.Context, teamID, expectedMessageID string, next Scheduled) (bool, error)

	// SetPostFailure records the consecutive delivery-failure count and the
	// operator-attention flag for an installation.
	SetPostFailure(ctx context.Context, teamID string, failures int, needsAttention bool) error

	AppendWinRecord(ctx context.Context, rec *WinRecord) error
	// ListWinRecords returns a team's win history ordered by WonAt ascending.
	ListWinRecords(ctx context.Context, teamID string) ([]WinRecord, error)
}

// Messenger abstracts the outbound Slack surface. Delivery failures surface
// as *DeliveryError.
type Messenger interface {
	// PostButtonMessage posts the interactive button to the installation's
	// configured channel and returns the posted message id.
	PostButtonMessage(ctx context.Context, inst *Installation) (string, error)
	// UpdateMessage replaces a previously posted message, used to swap the
	// button for the winner announcement.
	UpdateMessage(ctx context.Context, inst *Installation, messageID, text string) error
	// Respond delivers an ephemeral reply through a Slack response URL.
	Respond(ctx context.Context, responseURL, text string) error
}
