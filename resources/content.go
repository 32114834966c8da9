package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/storymarket/go-storymarket/core"
)

// Relation field names. At load time their values move out of the field bag
// into relation slots and are exposed through accessor methods instead.
const (
	RelAuthor        = "author"
	RelCategory      = "category"
	RelOrg           = "org"
	RelPricingScheme = "pricing_scheme"
	RelRightsScheme  = "rights_scheme"
	RelUploadedBy    = "uploaded_by"
)

var RelationNames = []string{RelAuthor, RelCategory, RelOrg, RelPricingScheme, RelRightsScheme, RelUploadedBy}

// Tags decodes from either a JSON list or a comma separated string.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags: expected list or string, got %s", string(data))
	}
	*t = nil
	for _, tag := range strings.Split(joined, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			*t = append(*t, tag)
		}
	}
	return nil
}

// String renders the wire form: tags joined by ", ".
func (t Tags) String() string {
	return strings.Join(t, ", ")
}

// Content is implemented by every content kind.
type Content interface {
	core.Identifier
	fmt.Stringer
	Attr(name string) (any, error)
	Record() core.Record
	content() *ContentResource
}

// contentManager is the back-reference a loaded resource keeps to its manager.
type contentManager interface {
	GetResourceType() string
	API() API
	boundCtx() context.Context
	updateResource(ctx context.Context, res any) error
	deleteResource(ctx context.Context, res any) error
}

type blobManager interface {
	contentManager
	uploadResourceBlob(ctx context.Context, res any, blob io.Reader) error
}

// ContentResource carries the fields and behaviour shared by all content kinds.
// Kinds embed it (directly or through BinaryContentResource) and declare their
// own wire fields next to it.
type ContentResource struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Tags  Tags   `json:"tags,omitempty"`

	// Extra holds wire fields no Go field is declared for.
	Extra core.Record `json:"-"`

	relations map[string]any
	manager   contentManager
	self      Content
	deleted   bool
}

func (c *ContentResource) content() *ContentResource {
	return c
}

func (c *ContentResource) GetID() string {
	return c.ID
}

// target is the concrete kind embedding c, or c itself for detached values.
func (c *ContentResource) target() any {
	if c.self != nil {
		return c.self
	}
	return c
}

func (c *ContentResource) kindName() string {
	if c.self != nil {
		return reflect.Indirect(reflect.ValueOf(c.self)).Type().Name()
	}
	if c.manager != nil {
		return c.manager.GetResourceType()
	}
	return "Content"
}

func (c *ContentResource) String() string {
	return fmt.Sprintf("<%s: %s>", c.kindName(), c.Title)
}

// Equal reports whether a and b are the same kind of content with the same
// non-empty id. Nil values, typed or not, are never equal.
func Equal(a, b Content) bool {
	if isNilContent(a) || isNilContent(b) {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return a.GetID() != "" && a.GetID() == b.GetID()
}

func isNilContent(c Content) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Deleted reports whether Delete succeeded on this resource.
func (c *ContentResource) Deleted() bool {
	return c.deleted
}

//  ######################################################
//              RELATIONS
//  ######################################################

func (c *ContentResource) slot(name string) (any, error) {
	value, ok := c.relations[name]
	if !ok || value == nil {
		return nil, &core.AttributeNotFoundError{Resource: c.kindName(), Attribute: name}
	}
	return value, nil
}

func (c *ContentResource) setSlot(name string, value any) {
	if value == nil {
		delete(c.relations, name)
		return
	}
	if c.relations == nil {
		c.relations = make(map[string]any)
	}
	c.relations[name] = value
}

// Relation returns the raw value stored for a relation field.
func (c *ContentResource) Relation(name string) (any, bool) {
	value, ok := c.relations[name]
	return value, ok
}

func (c *ContentResource) api() API {
	if c.manager == nil {
		return nil
	}
	return c.manager.API()
}

// Author builds the author from the stored sub-record. Each call returns a new value.
func (c *ContentResource) Author() (*User, error) {
	value, err := c.slot(RelAuthor)
	if err != nil {
		return nil, err
	}
	return newUser(value)
}

func (c *ContentResource) UploadedBy() (*User, error) {
	value, err := c.slot(RelUploadedBy)
	if err != nil {
		return nil, err
	}
	return newUser(value)
}

func (c *ContentResource) Category() (*Category, error) {
	value, err := c.slot(RelCategory)
	if err != nil {
		return nil, err
	}
	var manager *core.Manager
	if api := c.api(); api != nil {
		manager = api.GetSubcategories().Untyped
	}
	return newRelated[Category](manager, value)
}

func (c *ContentResource) Org() (*Org, error) {
	value, err := c.slot(RelOrg)
	if err != nil {
		return nil, err
	}
	var manager *core.Manager
	if api := c.api(); api != nil {
		manager = api.GetOrgs().Untyped
	}
	return newRelated[Org](manager, value)
}

func (c *ContentResource) PricingScheme() (*PricingScheme, error) {
	value, err := c.slot(RelPricingScheme)
	if err != nil {
		return nil, err
	}
	var manager *core.Manager
	if api := c.api(); api != nil {
		manager = api.GetPricing().Untyped
	}
	return newRelated[PricingScheme](manager, value)
}

func (c *ContentResource) RightsScheme() (*RightsScheme, error) {
	value, err := c.slot(RelRightsScheme)
	if err != nil {
		return nil, err
	}
	var manager *core.Manager
	if api := c.api(); api != nil {
		manager = api.GetRights().Untyped
	}
	return newRelated[RightsScheme](manager, value)
}

// SetAuthor replaces the author. nil clears it.
func (c *ContentResource) SetAuthor(user *User) {
	if user == nil {
		c.setSlot(RelAuthor, nil)
		return
	}
	c.setSlot(RelAuthor, user.record())
}

func (c *ContentResource) SetUploadedBy(user *User) {
	if user == nil {
		c.setSlot(RelUploadedBy, nil)
		return
	}
	c.setSlot(RelUploadedBy, user.record())
}

func (c *ContentResource) SetCategory(category *Category) {
	if category == nil {
		c.setSlot(RelCategory, nil)
		return
	}
	c.setSlot(RelCategory, category.record())
}

func (c *ContentResource) SetOrg(org *Org) {
	if org == nil {
		c.setSlot(RelOrg, nil)
		return
	}
	c.setSlot(RelOrg, org.record())
}

func (c *ContentResource) SetPricingScheme(scheme *PricingScheme) {
	if scheme == nil {
		c.setSlot(RelPricingScheme, nil)
		return
	}
	c.setSlot(RelPricingScheme, scheme.record())
}

func (c *ContentResource) SetRightsScheme(scheme *RightsScheme) {
	if scheme == nil {
		c.setSlot(RelRightsScheme, nil)
		return
	}
	c.setSlot(RelRightsScheme, scheme.record())
}

//  ######################################################
//              ATTRIBUTE LOOKUP
//  ######################################################

// Attr looks a field up by its wire name. Relation names yield the typed
// relation value, declared fields their Go value, other wire fields come from
// Extra. Anything else is an *core.AttributeNotFoundError.
func (c *ContentResource) Attr(name string) (any, error) {
	var (
		value any
		err   error
	)
	switch name {
	case RelAuthor:
		value, err = c.Author()
	case RelUploadedBy:
		value, err = c.UploadedBy()
	case RelCategory:
		value, err = c.Category()
	case RelOrg:
		value, err = c.Org()
	case RelPricingScheme:
		value, err = c.PricingScheme()
	case RelRightsScheme:
		value, err = c.RightsScheme()
	default:
		if v, ok := core.FieldByJSONName(c.target(), name); ok {
			return v, nil
		}
		if v, ok := c.Extra[name]; ok {
			return v, nil
		}
		return nil, &core.AttributeNotFoundError{Resource: c.kindName(), Attribute: name}
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Record renders the resource as an untyped record: declared fields, extras
// and the raw relation values.
func (c *ContentResource) Record() core.Record {
	rec := core.Record{}
	for k, v := range c.Extra {
		rec[k] = v
	}
	if params, err := core.NewParamsFromStruct(c.target()); err == nil {
		for k, v := range params {
			rec[k] = v
		}
	}
	for name, value := range c.relations {
		rec[name] = value
	}
	rec[core.ResourceTypeKey] = c.kindName()
	return rec
}

//  ######################################################
//              WRITES
//  ######################################################

func (c *ContentResource) writable() error {
	if c.deleted {
		return core.ErrDeleted
	}
	if c.manager == nil {
		return ErrUnbound
	}
	return nil
}

// SaveWithContext PUTs the flattened resource back to the server.
func (c *ContentResource) SaveWithContext(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	return c.manager.updateResource(ctx, c.target())
}

func (c *ContentResource) Save() error {
	if c.manager == nil {
		return ErrUnbound
	}
	return c.SaveWithContext(c.manager.boundCtx())
}

// DeleteWithContext removes the resource on the server. Further writes
// through it fail with core.ErrDeleted.
func (c *ContentResource) DeleteWithContext(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	return c.manager.deleteResource(ctx, c.target())
}

func (c *ContentResource) Delete() error {
	if c.manager == nil {
		return ErrUnbound
	}
	return c.DeleteWithContext(c.manager.boundCtx())
}

// BinaryContentResource is embedded by kinds that carry a binary payload.
type BinaryContentResource struct {
	ContentResource
}

// UploadBlobWithContext uploads a new blob for this resource through the
// configured core.BlobUploader.
func (b *BinaryContentResource) UploadBlobWithContext(ctx context.Context, blob io.Reader) error {
	if err := b.writable(); err != nil {
		return err
	}
	manager, ok := b.manager.(blobManager)
	if !ok {
		return core.ErrNotImplemented
	}
	return manager.uploadResourceBlob(ctx, b.target(), blob)
}

func (b *BinaryContentResource) UploadBlob(blob io.Reader) error {
	if b.manager == nil {
		return ErrUnbound
	}
	return b.UploadBlobWithContext(b.manager.boundCtx(), blob)
}
