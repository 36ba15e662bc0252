package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"wildbutton/button"
	"wildbutton/utils"
)

func (h *Handler) HandleSlackInstall(w http.ResponseWriter, r *http.Request) {
	clientID := os.Getenv("SLACK_CLIENT_ID")
	baseURL := os.Getenv("BASE_URL")
	if clientID == "" || baseURL == "" {
		log.Println("[ERROR] SLACK_CLIENT_ID or BASE_URL not set in environment variables")
		http.Error(w, "Slack Client ID or Base URL not configured", http.StatusInternalServerError)
		return
	}

	state := uuid.NewString()
	if utils.RedisClient != nil {
		if err := utils.SaveOAuthState(r.Context(), state); err != nil {
			log.Printf("[ERROR] Failed to save OAuth state: %v\n", err)
			http.Error(w, "Failed to start install flow", http.StatusInternalServerError)
			return
		}
	}

	redirect := fmt.Sprintf(
		"%s?client_id=%s&scope=%s&state=%s&redirect_uri=%s%s",
		slackOAuthAuthorizeURL,
		clientID,
		slackOAuthAuthorizeScope,
		state,
		baseURL,
		slackCallbackEndpoint,
	)

	log.Println("[INFO] Redirecting to Slack OAuth URL:", redirect)
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *Handler) HandleSlackOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		log.Println("[ERROR] Missing authorization code in request")
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	if utils.RedisClient != nil {
		state := r.URL.Query().Get("state")
		if state == "" || !utils.ConsumeOAuthState(r.Context(), state) {
			log.Println("[ERROR] Missing or unknown OAuth state")
			http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
			return
		}
	}

	oauthResp, err := h.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[ERROR] OAuth code exchange failed: %v\n", err)
		http.Error(w, "OAuth exchange failed", http.StatusBadRequest)
		return
	}

	encryptedToken, err := utils.Encrypt(oauthResp.AccessToken)
	if err != nil {
		log.Printf("[ERROR] Failed to encrypt access token: %v\n", err)
		encryptedToken = oauthResp.AccessToken
	}

	inst := &button.Installation{
		TeamID:        oauthResp.Team.ID,
		TeamName:      oauthResp.Team.Name,
		AccessToken:   encryptedToken,
		BotUserID:     oauthResp.BotUserID,
		AdminUserID:   oauthResp.AuthedUser.ID,
		Weekdays:      button.Monday | button.Tuesday | button.Wednesday | button.Thursday | button.Friday,
		IntervalStart: 9 * 3600,
		IntervalEnd:   16 * 3600,
		Timezone:      "UTC",
	}

	if err := h.store.SaveInstallation(r.Context(), inst); err != nil {
		log.Printf("[ERROR] Failed to save installation for team %s: %v\n", inst.TeamID, err)
		http.Error(w, "Failed to save installation", http.StatusInternalServerError)
		return
	}

	h.armFirstFire(r.Context(), inst)

	log.Printf("[INFO] Slack OAuth installation successful for team '%s' (%s)\n", oauthResp.Team.Name, oauthResp.Team.ID)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("✅ wildbutton installed with success. You can now return to Slack."))
}

// armFirstFire schedules the installation's first button. A reinstall keeps
// its live state, so the conditional update is a no-op when a message is
// already pending or a fire instant is already armed.
func (h *Handler) armFirstFire(ctx context.Context, inst *button.Installation) {
	current, err := h.store.GetInstallation(ctx, inst.TeamID)
	if err != nil {
		log.Printf("[ERROR] Failed to reload installation %s: %v\n", inst.TeamID, err)
		return
	}
	if current.Pending() || current.ScheduledFire != 0 {
		return
	}

	fire, err := button.NextFireTime(current, time.Now())
	if err != nil {
		log.Printf("[WARN] Could not arm first fire for team %s: %v\n", inst.TeamID, err)
		return
	}

	if _, err := h.store.ConditionalUpdateScheduled(ctx, inst.TeamID, "", button.Scheduled{Fire: fire.Unix()}); err != nil {
		log.Printf("[ERROR] Failed to arm first fire for team %s: %v\n", inst.TeamID, err)
	}
}

func (h *Handler) slackExchange(ctx context.Context, code string) (*OAuthResponse, error) {
	clientID := os.Getenv("SLACK_CLIENT_ID")
	clientSecret := os.Getenv("SLACK_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if clientID == "" || clientSecret == "" || baseURL == "" {
		return nil, fmt.Errorf("missing Slack credentials or base URL")
	}

	resp, err := http.PostForm(slackOAuthTokenURL, url.Values{
		"code":          {code},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"redirect_uri":  {baseURL + slackCallbackEndpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	var oauthResp OAuthResponse
	if err := json.Unmarshal(body, &oauthResp); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if !oauthResp.Ok {
		return nil, fmt.Errorf("slack error: %s", oauthResp.Error)
	}
	return &oauthResp, nil
}
