package resources

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/storymarket/go-storymarket/core"
)

// Collection paths of the resource families content relations point at.
const (
	SubcategoriesPath = "/content/sub_category/"
	OrgsPath          = "/orgs/"
	PricingPath       = "/pricing/"
	RightsPath        = "/rights/"
)

// RelatedResource holds what content relations need from a category, org or
// scheme: an id, a display name and whatever else the server sent.
type RelatedResource struct {
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name,omitempty"`
	Extra core.Record `json:"-"`

	manager *core.Manager
}

func (r *RelatedResource) related() *RelatedResource {
	return r
}

func (r *RelatedResource) GetID() string {
	return r.ID
}

// Manager returns the sibling manager this value was constructed against, if any.
func (r *RelatedResource) Manager() *core.Manager {
	return r.manager
}

func (r *RelatedResource) record() core.Record {
	rec := core.Record{}
	for k, v := range r.Extra {
		rec[k] = v
	}
	if r.ID != "" {
		rec["id"] = r.ID
	}
	if r.Name != "" {
		rec["name"] = r.Name
	}
	return rec
}

type Category struct {
	RelatedResource
}

// Reference returns the path-style reference used in write payloads.
func (c *Category) Reference() string {
	return core.BuildResourcePathWithID(SubcategoriesPath, c.ID)
}

func (c *Category) String() string {
	return fmt.Sprintf("<Category: %s>", c.Name)
}

type Org struct {
	RelatedResource
}

// Reference returns the path-style reference used in write payloads.
func (o *Org) Reference() string {
	return core.BuildResourcePathWithID(OrgsPath, o.ID)
}

func (o *Org) String() string {
	return fmt.Sprintf("<Org: %s>", o.Name)
}

type PricingScheme struct {
	RelatedResource
}

func (p *PricingScheme) Reference() string {
	return core.BuildResourcePathWithID(PricingPath, p.ID)
}

func (p *PricingScheme) String() string {
	return fmt.Sprintf("<PricingScheme: %s>", p.Name)
}

type RightsScheme struct {
	RelatedResource
}

func (r *RightsScheme) Reference() string {
	return core.BuildResourcePathWithID(RightsPath, r.ID)
}

func (r *RightsScheme) String() string {
	return fmt.Sprintf("<RightsScheme: %s>", r.Name)
}

type relatedPtr[T any] interface {
	*T
	related() *RelatedResource
}

// newRelated builds a related value from a relation slot. A map is decoded as
// the embedded object; a string is taken as a reference ("/orgs/7/") or a bare id.
func newRelated[T any, PT relatedPtr[T]](manager *core.Manager, slot any) (PT, error) {
	var obj T
	res := PT(&obj)
	base := res.related()
	base.manager = manager

	var rec core.Record
	switch v := slot.(type) {
	case string:
		base.ID = idFromReference(v)
		return res, nil
	case map[string]any:
		rec = core.Record(v)
	case core.Record:
		rec = v
	default:
		return nil, fmt.Errorf("%s: unexpected value of type %T", reflect.TypeOf(obj).Name(), slot)
	}

	bag := rec.Copy()
	delete(bag, core.ResourceTypeKey)
	if err := bag.Fill(res); err != nil {
		return nil, err
	}
	base.Extra = extraFields(bag, reflect.TypeOf(obj))
	return res, nil
}

// idFromReference returns the last path segment of a reference string.
func idFromReference(ref string) string {
	trimmed := strings.Trim(ref, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// extraFields returns the keys of bag the struct type does not declare.
func extraFields(bag core.Record, typ reflect.Type) core.Record {
	known := core.JSONFieldNames(typ)
	extra := core.Record{}
	for k, v := range bag {
		if _, ok := known[k]; !ok {
			extra[k] = v
		}
	}
	return extra
}

//  ######################################################
//              RELATED MANAGERS
//  ######################################################

// RelatedManager reads one of the sibling resource families.
type RelatedManager[T any, PT relatedPtr[T]] struct {
	Untyped *core.Manager
}

type (
	CategoryManager      = RelatedManager[Category, *Category]
	OrgManager           = RelatedManager[Org, *Org]
	PricingSchemeManager = RelatedManager[PricingScheme, *PricingScheme]
	RightsSchemeManager  = RelatedManager[RightsScheme, *RightsScheme]
)

func NewCategoryManager(rest core.Rest) *CategoryManager {
	return &CategoryManager{Untyped: core.NewManager(SubcategoriesPath, "Category", rest)}
}

func NewOrgManager(rest core.Rest) *OrgManager {
	return &OrgManager{Untyped: core.NewManager(OrgsPath, "Org", rest)}
}

func NewPricingSchemeManager(rest core.Rest) *PricingSchemeManager {
	return &PricingSchemeManager{Untyped: core.NewManager(PricingPath, "PricingScheme", rest)}
}

func NewRightsSchemeManager(rest core.Rest) *RightsSchemeManager {
	return &RightsSchemeManager{Untyped: core.NewManager(RightsPath, "RightsScheme", rest)}
}

// New builds a value bound to this manager from a raw record without a remote call.
func (m *RelatedManager[T, PT]) New(raw core.Record) (PT, error) {
	return newRelated[T, PT](m.Untyped, raw)
}

func (m *RelatedManager[T, PT]) AllWithContext(ctx context.Context) ([]PT, error) {
	recordSet, err := m.Untyped.ListWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PT, 0, len(recordSet))
	for _, rec := range recordSet {
		res, err := m.New(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (m *RelatedManager[T, PT]) GetWithContext(ctx context.Context, resourceOrID any) (PT, error) {
	record, err := m.Untyped.GetByIdWithContext(ctx, core.GetID(resourceOrID))
	if err != nil {
		return nil, err
	}
	return m.New(record)
}

func (m *RelatedManager[T, PT]) All() ([]PT, error) {
	return m.AllWithContext(m.Untyped.Rest.GetCtx())
}

func (m *RelatedManager[T, PT]) Get(resourceOrID any) (PT, error) {
	return m.GetWithContext(m.Untyped.Rest.GetCtx(), resourceOrID)
}
