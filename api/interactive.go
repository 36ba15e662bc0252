package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"wildbutton/button"
)

// HandleInteractive consumes Slack interactivity payloads. Only a
// block_actions payload whose single action is the wildbutton click reaches
// the arbitrator; every other shape is a client error.
func (h *Handler) HandleInteractive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Unable to parse interactive form", http.StatusBadRequest)
		return
	}

	var payload InteractivePayload
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &payload); err != nil {
		http.Error(w, "Invalid interactive payload", http.StatusBadRequest)
		return
	}

	if payload.Type != "block_actions" || len(payload.Actions) != 1 || payload.Actions[0].ActionID != wildButtonActionID {
		http.Error(w, "Unsupported interactive payload", http.StatusBadRequest)
		return
	}

	messageID := payload.Message.Ts
	if messageID == "" {
		messageID = payload.Container.MessageTs
	}

	result, err := h.arbitrator.ResolveClick(r.Context(),
		payload.Team.ID, messageID, payload.User.ID, clickInstant(payload.Actions[0]))
	if err != nil {
		log.Printf("[ERROR] Click resolution for team %s message %s: %v\n", payload.Team.ID, messageID, err)
	}

	// Slack wants an immediate empty 200; the winner announcement and the
	// consolation reply go out of band.
	w.WriteHeader(http.StatusOK)

	switch result {
	case button.Won:
		go h.announceWinner(payload.Team.ID, messageID, payload.User.ID)
	case button.AlreadyResolved:
		go h.consoleLoser(payload.ResponseURL)
	}
}

// clickInstant prefers Slack's own action timestamp so the recorded win
// instant matches click order even when delivery to us is delayed.
func clickInstant(action PayloadAction) time.Time {
	if secs, err := strconv.ParseFloat(action.ActionTs, 64); err == nil && secs > 0 {
		return time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9))
	}
	return time.Now()
}

func (h *Handler) announceWinner(teamID, messageID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inst, err := h.store.GetInstallation(ctx, teamID)
	if err != nil {
		log.Printf("[ERROR] announceWinner: failed to load installation %s: %v\n", teamID, err)
		return
	}

	text := fmt.Sprintf(":tada: <@%s> won the wildbutton today! :trophy:", userID)
	if err := h.messenger.UpdateMessage(ctx, inst, messageID, text); err != nil {
		log.Printf("[ERROR] announceWinner: failed to update message %s for team %s: %v\n", messageID, teamID, err)
	}
}

func (h *Handler) consoleLoser(responseURL string) {
	if responseURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.messenger.Respond(ctx, responseURL, "Someone beat you to it. Better luck next time!"); err != nil {
		log.Printf("[ERROR] consoleLoser: %v\n", err)
	}
}
