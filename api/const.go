package api

const (
	slackOAuthAuthorizeURL   = "https://slack.com/oauth/v2/authorize"
	slackOAuthTokenURL       = "https://slack.com/api/oauth.v2.access"
	slackOAuthAuthorizeScope = "chat:write,commands,channels:read"
	slackCallbackEndpoint    = "/auth"
	slackPostMessageURL      = "https://slack.com/api/chat.postMessage"
	slackUpdateMessageURL    = "https://slack.com/api/chat.update"

	wildButtonActionID = "wild_button"

	buttonMessageText = "The wildbutton has appeared! Who will be first?"
	buttonLabel       = "Click me!"

	helpMessage = ":information_source: wildbutton posts a totally useless button " +
		"in your configured channel once per scheduled day, at a random time inside " +
		"your team's window. Whoever clicks it first wins. That's it.\n\n" +
		"Commands:\n" +
		"• `help` — this text\n" +
		"• `stats` — the leaderboard of button winners\n" +
		"• `announce` — post the button now (manual-announce teams)\n" +
		"• `config` — admin settings, try `config help`"

	usageMessage = "Sorry, I didn't understand you. :cry:\n" +
		"Try `help`, `stats`, `announce` or `config`."

	configUsageMessage = "Config usage (admin only):\n" +
		"• `config #channel` — where the button is posted\n" +
		"• `config weekdays mon-fri` or `config weekdays mon,wed,fri`\n" +
		"• `config interval 09:00-16:00` — daily window, 24-hour clock\n" +
		"• `config timezone Europe/Copenhagen`\n" +
		"• `config manual on|off` — require `announce` instead of auto-posting"

	statsHeader = ":trophy: wildbutton STATISTICS :trophy:"
	statsEmpty  = "Nobody has clicked the button yet. The glory is still up for grabs!"
)
