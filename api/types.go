package api

type OAuthResponse struct {
	Ok                  bool       `json:"ok"`
	AppID               string     `json:"app_id"`
	AuthedUser          AuthedUser `json:"authed_user"`
	Scope               string     `json:"scope"`
	TokenType           string     `json:"token_type"`
	AccessToken         string     `json:"access_token"`
	BotUserID           string     `json:"bot_user_id"`
	Team                Team       `json:"team"`
	Enterprise          any        `json:"enterprise"`
	IsEnterpriseInstall bool       `json:"is_enterprise_install"`
	Error               string     `json:"error,omitempty"`
}

type AuthedUser struct {
	ID string `json:"id"`
}

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type urlVerification struct {
	Challenge string `json:"challenge"`
	Type      string `json:"type"`
}

type SlackEvent struct {
	Type   string         `json:"type"`
	TeamID string         `json:"team_id"`
	Event  SlackEventData `json:"event"`
}

type SlackEventData struct {
	Type string `json:"type"`
}

// InteractivePayload is the subset of Slack's block_actions payload the
// click pathway needs.
type InteractivePayload struct {
	Type string `json:"type"`
	Team struct {
		ID string `json:"id"`
	} `json:"team"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	Container struct {
		MessageTs string `json:"message_ts"`
		ChannelID string `json:"channel_id"`
	} `json:"container"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Message struct {
		Ts string `json:"ts"`
	} `json:"message"`
	ResponseURL string          `json:"response_url"`
	Actions     []PayloadAction `json:"actions"`
}

type PayloadAction struct {
	ActionID string `json:"action_id"`
	BlockID  string `json:"block_id"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	ActionTs string `json:"action_ts"`
}

type MessageResponse struct {
	Ok      bool   `json:"ok"`
	Error   string `json:"error"`
	Channel string `json:"channel"`
	Ts      string `json:"ts"`
}

// Block kit types for outbound messages.

type Block struct {
	Type     string         `json:"type"`
	BlockID  string         `json:"block_id,omitempty"`
	Text     *TextObject    `json:"text,omitempty"`
	Elements []ButtonAction `json:"elements,omitempty"`
}

type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type ButtonAction struct {
	Type     string      `json:"type"`
	ActionID string      `json:"action_id"`
	Text     *TextObject `json:"text"`
	Value    string      `json:"value"`
}
