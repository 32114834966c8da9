package core

import (
	"net/http"
)

type Authenticator interface {
	setAuthHeader(headers *http.Header)
}

// createAuthenticator creates a new Authenticator instance based on the provided Config.
func createAuthenticator(config *Config) (Authenticator, error) {
	if err := WithAuth(config); err != nil {
		return nil, err
	}
	return &ApiKeyAuthenticator{Key: config.ApiKey}, nil
}

// ApiKeyAuthenticator sends the account API key with every request.
type ApiKeyAuthenticator struct {
	Key string
}

func (auth *ApiKeyAuthenticator) setAuthHeader(headers *http.Header) {
	headers.Set(HeaderAuthorization, AuthTypeApiKey+" "+auth.Key)
}
