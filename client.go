package storymarket

import (
	"github.com/storymarket/go-storymarket/core"
	"github.com/storymarket/go-storymarket/resources"
	"github.com/storymarket/go-storymarket/rest"
)

type (
	Config      = core.Config
	Params      = core.Params
	Record      = core.Record
	RecordSet   = core.RecordSet
	Renderable  = core.Renderable
	Storymarket = rest.Storymarket

	Audio = resources.Audio
	Data  = resources.Data
	Photo = resources.Photo
	Text  = resources.Text
	Video = resources.Video
	User  = resources.User
)

// NewStorymarket validates config and returns a client bound to it.
// It panics if config fails validation, e.g. when no API key is set.
func NewStorymarket(config *Config) (*Storymarket, error) {
	return rest.NewStorymarket(config)
}

// ClientVersion returns the version of this client library.
func ClientVersion() string {
	return core.ClientVersion()
}
