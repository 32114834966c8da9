package rest

import (
	"context"
	"sort"
	"time"

	"github.com/storymarket/go-storymarket/core"
	"github.com/storymarket/go-storymarket/resources"
)

// Storymarket is the entry point to the API. All managers share one session
// and one bound context.
type Storymarket struct {
	ctx     context.Context
	Session core.RESTSession

	Subcategories *resources.CategoryManager
	Orgs          *resources.OrgManager
	Pricing       *resources.PricingSchemeManager
	Rights        *resources.RightsSchemeManager

	Audio *resources.AudioManager
	Data  *resources.DataManager
	Photo *resources.PhotoManager
	Text  *resources.TextManager
	Video *resources.VideoManager
}

func NewStorymarket(config *core.Config) (*Storymarket, error) {
	config.Validate(
		core.WithAuth,
		core.WithHost(core.DefaultHost),
		core.WithScheme(core.DefaultScheme),
		core.WithPort,
		core.WithUserAgent,
		core.WithApiVersion(core.DefaultApiVersion),
		core.WithTimeout(time.Second*30),
		core.WithMaxConnections(10),
		core.WithLogger,
	)
	session, err := core.NewStorymarketSession(config)
	if err != nil {
		return nil, err
	}
	return newStorymarket(config.Context, session), nil
}

// newStorymarket wires every manager to the given session.
func newStorymarket(ctx context.Context, session core.RESTSession) *Storymarket {
	rest := &Storymarket{Session: session}

	// Set context: use provided context or default to background context
	if ctx != nil {
		rest.SetCtx(ctx)
	} else {
		rest.SetCtx(context.Background())
	}

	rest.Subcategories = resources.NewCategoryManager(rest)
	rest.Orgs = resources.NewOrgManager(rest)
	rest.Pricing = resources.NewPricingSchemeManager(rest)
	rest.Rights = resources.NewRightsSchemeManager(rest)

	rest.Audio = resources.NewAudioManager(rest)
	rest.Data = resources.NewDataManager(rest)
	rest.Photo = resources.NewPhotoManager(rest)
	rest.Text = resources.NewTextManager(rest)
	rest.Video = resources.NewVideoManager(rest)
	return rest
}

func (rest *Storymarket) GetSession() core.RESTSession {
	return rest.Session
}

func (rest *Storymarket) GetCtx() context.Context {
	return rest.ctx
}

func (rest *Storymarket) SetCtx(ctx context.Context) {
	rest.ctx = ctx
}

func (rest *Storymarket) GetSubcategories() *resources.CategoryManager {
	return rest.Subcategories
}

func (rest *Storymarket) GetOrgs() *resources.OrgManager {
	return rest.Orgs
}

func (rest *Storymarket) GetPricing() *resources.PricingSchemeManager {
	return rest.Pricing
}

func (rest *Storymarket) GetRights() *resources.RightsSchemeManager {
	return rest.Rights
}

// Kinds returns the content managers keyed by urlbit.
func (rest *Storymarket) Kinds() map[string]resources.ContentKind {
	return map[string]resources.ContentKind{
		rest.Audio.Urlbit(): rest.Audio,
		rest.Data.Urlbit():  rest.Data,
		rest.Photo.Urlbit(): rest.Photo,
		rest.Text.Urlbit():  rest.Text,
		rest.Video.Urlbit(): rest.Video,
	}
}

// KindNames returns the sorted urlbits of all content kinds.
func (rest *Storymarket) KindNames() []string {
	var names []string
	for name := range rest.Kinds() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
