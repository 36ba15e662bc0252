package api

import (
	"context"
	"net/http"
	"time"

	"wildbutton/button"
)

// Poster is the manual-announce entry into the scheduler's post path.
type Poster interface {
	PostNow(ctx context.Context, inst *button.Installation, now time.Time) error
}

// Handler carries the Slack-facing HTTP endpoints and their collaborators.
type Handler struct {
	store      button.Store
	messenger  button.Messenger
	arbitrator *button.Arbitrator
	poster     Poster

	// Exchange performs the OAuth v2 code exchange. Overridable in tests.
	Exchange func(ctx context.Context, code string) (*OAuthResponse, error)
}

func NewHandler(store button.Store, messenger button.Messenger, poster Poster) *Handler {
	h := &Handler{
		store:      store,
		messenger:  messenger,
		arbitrator: button.NewArbitrator(store),
		poster:     poster,
	}
	h.Exchange = h.slackExchange
	return h
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("wildbutton API is ready"))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("✅ wildbutton is alive"))
}
