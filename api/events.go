package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// HandleSlackEvents answers the Events API: the URL verification handshake
// plus the uninstall events that retire an installation.
func (h *Handler) HandleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read request body", http.StatusBadRequest)
		return
	}

	var verification urlVerification
	if err := json.Unmarshal(body, &verification); err == nil && verification.Type == "url_verification" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(verification.Challenge))
		return
	}

	var event SlackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid Slack event format", http.StatusBadRequest)
		return
	}

	switch event.Event.Type {
	case "app_uninstalled", "tokens_revoked":
		if err := h.store.DeleteInstallation(r.Context(), event.TeamID); err != nil {
			log.Printf("[ERROR] Failed to delete installation for team %s: %v\n", event.TeamID, err)
		} else {
			log.Printf("[INFO] Uninstalled team %s\n", event.TeamID)
		}
	}

	w.WriteHeader(http.StatusOK)
}
