package core

// HTTP-related constants for REST operations

// HTTP Header Names
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-Id"
)

// HTTP Content Types
const (
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// AuthTypeApiKey is the Authorization scheme used for Storymarket API keys.
const AuthTypeApiKey = "mtk"

// Defaults applied by NewStorymarket validators.
const (
	DefaultHost       = "storymarket.com"
	DefaultScheme     = "https"
	DefaultApiVersion = "1.0"
)
