package api

// Config holds configuration for the upstream comment API and the identity
// provider it authenticates against.
type Config struct {
	// BaseURL is the comment API address.
	BaseURL string `mapstructure:"base_url" default:"https://api.dantotsu.app"`
	// AppAuthKey is the application key sent in the appauth header.
	AppAuthKey string `mapstructure:"app_auth_key" default:""`
	// AniListToken is the identity-provider access token exchanged for a
	// comment API session token.
	AniListToken string `mapstructure:"anilist_token" default:""`
	// AniListURL is the identity provider's GraphQL endpoint.
	AniListURL string `mapstructure:"anilist_url" default:"https://graphql.anilist.co"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// CooldownSeconds is how long a worker sleeps after a rate-limit
	// response before retrying the same request.
	CooldownSeconds int `mapstructure:"cooldown_seconds" default:"30"`
	// PageDelayMillis is the pause between successful page requests, to
	// stay under the steady-state rate limit.
	PageDelayMillis int `mapstructure:"page_delay_millis" default:"100"`
	// PageRetries bounds transport-level retries for a single page before
	// the target's fetch is abandoned as partial.
	PageRetries int `mapstructure:"page_retries" default:"3"`
}
