package core

import (
	_ "embed"
	"strings"

	version "github.com/hashicorp/go-version"
)

//go:embed version
var clientVersion string

func ClientVersion() string {
	return strings.TrimSpace(clientVersion)
}

// CompareApiVersion compares the configured API version with other.
// It returns -1, 0 or 1 as version.Compare does.
func CompareApiVersion(config *Config, other string) (int, error) {
	current, err := version.NewVersion(config.ApiVersion)
	if err != nil {
		return 0, err
	}
	target, err := version.NewVersion(other)
	if err != nil {
		return 0, err
	}
	return current.Compare(target), nil
}
