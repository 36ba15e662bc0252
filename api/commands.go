package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"wildbutton/button"
)

func (h *Handler) HandleSlackCommand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Unable to parse command form", http.StatusBadRequest)
		return
	}

	teamID := r.FormValue("team_id")
	userID := r.FormValue("user_id")
	text := strings.TrimSpace(r.FormValue("text"))

	switch {
	case strings.EqualFold(text, "help"):
		respondText(w, helpMessage)
	case strings.EqualFold(text, "stats"):
		h.respondStats(w, r, teamID)
	case strings.EqualFold(text, "announce"):
		h.respondAnnounce(w, r, teamID, userID)
	case strings.HasPrefix(strings.ToLower(text), "config"):
		h.respondConfig(w, r, teamID, userID, text)
	default:
		respondText(w, usageMessage)
	}
}

func respondText(w http.ResponseWriter, text string) {
	respondJSON(w, map[string]any{
		"response_type": "ephemeral",
		"text":          text,
	})
}

// respondJSON writes a command reply without HTML escaping, which would
// mangle Slack's <@user> and <#channel> mentions.
func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(payload)
}

func (h *Handler) respondStats(w http.ResponseWriter, r *http.Request, teamID string) {
	stats, err := button.ComputeStats(r.Context(), h.store, teamID)
	if err != nil {
		log.Printf("[ERROR] Failed to compute stats for team %s: %v\n", teamID, err)
		respondText(w, "Couldn't fetch the statistics right now, please try again.")
		return
	}

	respondJSON(w, map[string]any{
		"response_type": "ephemeral",
		"blocks":        statsBlocks(stats),
	})
}

// statsBlocks renders the leaderboard: a STATISTICS header followed by one
// "<count> <@user>" line per entry, best first.
func statsBlocks(stats *button.Stats) []Block {
	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: statsHeader, Emoji: true},
		},
	}

	if stats.TotalWins == 0 {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: statsEmpty},
		})
		return blocks
	}

	var board strings.Builder
	for _, entry := range stats.Leaderboard {
		fmt.Fprintf(&board, "%d <@%s>\n", entry.Wins, entry.UserID)
	}
	blocks = append(blocks, Block{
		Type: "section",
		Text: &TextObject{Type: "mrkdwn", Text: board.String()},
	})

	blocks = append(blocks, Block{
		Type: "section",
		Text: &TextObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("_%d wins in total since %s._",
				stats.TotalWins, stats.FirstWin.UTC().Format("2006-01-02")),
		},
	})
	return blocks
}

func (h *Handler) respondAnnounce(w http.ResponseWriter, r *http.Request, teamID, userID string) {
	inst, err := h.store.GetInstallation(r.Context(), teamID)
	if err != nil {
		log.Printf("[ERROR] announce: failed to load installation %s: %v\n", teamID, err)
		respondText(w, "This workspace doesn't seem to be installed yet.")
		return
	}

	if inst.Pending() {
		respondText(w, "A button is already out there waiting to be clicked!")
		return
	}

	if err := h.poster.PostNow(r.Context(), inst, time.Now()); err != nil {
		log.Printf("[ERROR] announce: post failed for team %s: %v\n", teamID, err)
		respondText(w, "I couldn't post the button right now, please try again.")
		return
	}

	log.Printf("[INFO] Manual announce by user %s for team %s\n", userID, teamID)
	respondText(w, "The button is out. May the fastest finger win!")
}

func (h *Handler) respondConfig(w http.ResponseWriter, r *http.Request, teamID, userID, text string) {
	inst, err := h.store.GetInstallation(r.Context(), teamID)
	if err != nil {
		log.Printf("[ERROR] config: failed to load installation %s: %v\n", teamID, err)
		respondText(w, "This workspace doesn't seem to be installed yet.")
		return
	}

	if userID != inst.AdminUserID {
		log.Printf("[INFO] Unauthorized config attempt by user %s in team %s\n", userID, teamID)
		respondText(w, "Sorry, only the team admin can change these settings. If you need something updated, please reach out to them!")
		return
	}

	var updates, errors []string
	upd := button.ConfigUpdate{}

	h.handleChannelConfig(text, &upd, &updates, &errors)
	h.handleWeekdaysConfig(text, &upd, &updates, &errors)
	h.handleIntervalConfig(text, &upd, &updates, &errors)
	h.handleTimezoneConfig(text, &upd, &updates, &errors)
	h.handleManualConfig(text, &upd, &updates, &errors)

	if len(updates) == 0 && len(errors) == 0 {
		respondText(w, configUsageMessage)
		return
	}

	if len(updates) > 0 {
		if err := h.store.UpdateConfig(r.Context(), teamID, upd); err != nil {
			log.Printf("[ERROR] config: failed to update team %s: %v\n", teamID, err)
			respondText(w, "Couldn't save the settings right now, please try again.")
			return
		}

		// A changed window or timezone invalidates the armed fire instant;
		// clearing it lets the scheduler re-arm under the new config. With a
		// message pending the conditional update is a deliberate no-op.
		if upd.Weekdays != nil || upd.IntervalStart != nil || upd.Timezone != nil {
			if _, err := h.store.ConditionalUpdateScheduled(r.Context(), teamID, "", button.Scheduled{}); err != nil {
				log.Printf("[ERROR] config: failed to reset schedule for team %s: %v\n", teamID, err)
			}
		}
	}

	sendCombinedConfigResponse(w, updates, errors)
}

func (h *Handler) handleChannelConfig(text string, upd *button.ConfigUpdate, updates, errors *[]string) {
	if channelID := extractValue(text, `<#(C\w+)\|?[^>]*>`); channelID != "" {
		upd.ChannelID = &channelID
		*updates = append(*updates, fmt.Sprintf("channel set to <#%s>", channelID))
	}
}

func (h *Handler) handleWeekdaysConfig(text string, upd *button.ConfigUpdate, updates, errors *[]string) {
	spec := extractValue(text, `weekdays ([a-zA-Z,\-]+)`)
	if spec == "" {
		return
	}

	mask, err := parseWeekdays(spec)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("I couldn't read `%s` as weekdays. Try `weekdays mon-fri` or `weekdays mon,wed,fri`.", spec))
		return
	}
	upd.Weekdays = &mask
	*updates = append(*updates, fmt.Sprintf("weekdays set to %s", strings.ToLower(spec)))
}

func (h *Handler) handleIntervalConfig(text string, upd *button.ConfigUpdate, updates, errors *[]string) {
	m := regexp.MustCompile(`interval (\d{2}:\d{2})-(\d{2}:\d{2})`).FindStringSubmatch(text)
	if len(m) != 3 {
		return
	}

	start, err1 := parseClock(m[1])
	end, err2 := parseClock(m[2])
	if err1 != nil || err2 != nil || start >= end {
		*errors = append(*errors, "That interval looks off. Use the 24-hour format with start before end, like `interval 09:00-16:00`.")
		return
	}
	upd.IntervalStart = &start
	upd.IntervalEnd = &end
	*updates = append(*updates, fmt.Sprintf("daily window set to %s-%s", m[1], m[2]))
}

func (h *Handler) handleTimezoneConfig(text string, upd *button.ConfigUpdate, updates, errors *[]string) {
	zone := extractValue(text, `timezone ([A-Za-z]+/[A-Za-z_/]+)`)
	if zone == "" {
		return
	}

	if _, err := time.LoadLocation(zone); err != nil {
		*errors = append(*errors, fmt.Sprintf("Hmm, '%s' doesn't seem to be a valid timezone. Try something like `timezone Europe/Copenhagen`.", zone))
		return
	}
	upd.Timezone = &zone
	*updates = append(*updates, fmt.Sprintf("timezone set to %s", zone))
}

func (h *Handler) handleManualConfig(text string, upd *button.ConfigUpdate, updates, errors *[]string) {
	mode := extractValue(text, `manual (on|off)`)
	if mode == "" {
		return
	}

	manual := mode == "on"
	upd.ManualAnnounce = &manual
	if manual {
		*updates = append(*updates, "manual announce enabled, use `announce` to post the button")
	} else {
		*updates = append(*updates, "manual announce disabled, the button posts automatically again")
	}
}

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays understands comma lists and ranges of three-letter day
// names, e.g. "mon-fri" or "mon,wed,fri". Ranges wrap across the weekend.
func parseWeekdays(spec string) (int, error) {
	mask := 0
	for _, part := range strings.Split(strings.ToLower(spec), ",") {
		part = strings.TrimSpace(part)
		if from, to, ok := strings.Cut(part, "-"); ok {
			start, ok1 := weekdayNames[from]
			end, ok2 := weekdayNames[to]
			if !ok1 || !ok2 {
				return 0, fmt.Errorf("unknown weekday in range %q", part)
			}
			for d := start; ; d = (d + 1) % 7 {
				mask |= 1 << d
				if d == end {
					break
				}
			}
			continue
		}

		day, ok := weekdayNames[part]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", part)
		}
		mask |= 1 << day
	}
	if mask == 0 {
		return 0, fmt.Errorf("no weekdays in %q", spec)
	}
	return mask, nil
}

// parseClock converts "HH:MM" into seconds since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}

func extractValue(text, pattern string) string {
	re := regexp.MustCompile(pattern)
	matches := re.FindStringSubmatch(text)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

func sendCombinedConfigResponse(w http.ResponseWriter, updates, errors []string) {
	var response strings.Builder

	if len(updates) > 0 {
		response.WriteString("✅ *Success! Here's what I've updated for you:*\n")
		for _, u := range updates {
			response.WriteString("• " + u + "\n")
		}
	}

	if len(errors) > 0 {
		if len(updates) > 0 {
			response.WriteString("\n")
		}
		response.WriteString("⚠️ *Just a heads-up, I ran into a couple of snags:*\n")
		for _, e := range errors {
			response.WriteString("• " + e + "\n")
		}
	}

	respondText(w, response.String())
}
