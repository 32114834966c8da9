// Package resources is the typed object model over the Storymarket content API.
//
// Content kinds (Audio, Data, Photo, Text, Video) are loaded by their managers
// from raw API records. Relation fields (author, category, org, pricing and
// rights schemes, uploader) are kept as raw sub-records and turned into typed
// values on every access. Writes flatten a resource back into the wire shape
// the API accepts.
package resources

import (
	"errors"

	"github.com/storymarket/go-storymarket/core"
)

// ErrUnbound is returned by resource-level writes on a resource that was not
// produced by a manager.
var ErrUnbound = errors.New("resource is not bound to a manager")

// API is the shared context every content manager is bound to. It exposes the
// sibling managers relation values are constructed against.
type API interface {
	core.Rest
	GetSubcategories() *CategoryManager
	GetOrgs() *OrgManager
	GetPricing() *PricingSchemeManager
	GetRights() *RightsSchemeManager
}
