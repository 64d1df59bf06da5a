package activity

// Config holds the Discord activity-feed settings.
type Config struct {
	// Token authorizes requests against the Discord API. An empty token
	// disables the feed; daily syncs then fall back to a full re-scan.
	Token string `mapstructure:"token"`
	// ChannelID is the feed channel the bot posts comment activity to.
	ChannelID string `mapstructure:"channel_id" default:"1180378569109671987"`
	// BaseURL is the Discord API root.
	BaseURL string `mapstructure:"base_url" default:"https://discord.com/api/v9"`
	// WindowHours bounds how far back the scan walks the channel.
	WindowHours int `mapstructure:"window_hours" default:"24"`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
