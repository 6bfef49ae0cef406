package placechat

import "log/slog"

// DefaultPageSize is the number of results revealed per page of an assistant
// turn.
const DefaultPageSize = 6

// NavigateFunc is called when the session must leave the active conversation,
// e.g. after the viewed conversation is deleted. The app layer supplies the
// actual navigation.
type NavigateFunc func()

// Config configures a Session.
type Config struct {
	// Backend is the place-search API the session talks to.
	// Required.
	Backend Backend

	// PageSize is how many results each page of an assistant turn reveals.
	// Defaults to DefaultPageSize.
	PageSize int

	// Navigate is invoked when the active conversation disappears and the
	// app should show the conversation-less search route.
	// Optional.
	Navigate NavigateFunc

	// Logger is the structured logger.
	// Optional - defaults to slog.Default().
	Logger *slog.Logger
}

// withDefaults applies default values to the config.
func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Navigate == nil {
		c.Navigate = func() {}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// validate checks that required config fields are set.
func (c Config) validate() error {
	if c.Backend == nil {
		return NewError(ErrCodeValidation, "Backend is required", nil)
	}
	return nil
}
