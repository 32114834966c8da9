package resources

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/storymarket/go-storymarket/core"
)

type contentPtr[T any] interface {
	*T
	Content
}

// kindSpec describes one content kind: its name, the URL segment under
// /content/, the fields written by flatten and whether it carries a blob.
type kindSpec struct {
	name   string
	urlbit string
	fields []flattenField
	binary bool
}

func (k kindSpec) path() string {
	return "/content/" + k.urlbit + "/"
}

// ContentKind is the kind-independent view of a content manager, used by
// tooling that picks the kind at runtime.
type ContentKind interface {
	GetResourceType() string
	Urlbit() string
	FlattenFields() []string
	IsBinary() bool
	ListContentWithContext(ctx context.Context) ([]Content, error)
	GetContentWithContext(ctx context.Context, resourceOrID any) (Content, error)
	CreateContentWithContext(ctx context.Context, data core.Params) (Content, error)
	UpdateWithContext(ctx context.Context, resourceOrID any, data any) error
	DeleteWithContext(ctx context.Context, resourceOrID any) error
}

// BlobKind is a ContentKind whose resources accept blob uploads.
type BlobKind interface {
	ContentKind
	UploadBlobWithContext(ctx context.Context, resourceOrID any, blob io.Reader) error
}

// ContentManager turns API records of one kind into typed resources and
// dispatches CRUD calls to /content/{urlbit}/. It keeps no cache: every read
// returns fresh values.
type ContentManager[T any, PT contentPtr[T]] struct {
	Untyped *core.Manager
	api     API
	kind    kindSpec
	owner   contentManager // outermost manager, stored in loaded resources
}

func newContentManager[T any, PT contentPtr[T]](api API, kind kindSpec) *ContentManager[T, PT] {
	m := &ContentManager[T, PT]{
		Untyped: core.NewManager(kind.path(), kind.name, api),
		api:     api,
		kind:    kind,
	}
	m.owner = m
	return m
}

func (m *ContentManager[T, PT]) GetResourceType() string {
	return m.kind.name
}

func (m *ContentManager[T, PT]) Urlbit() string {
	return m.kind.urlbit
}

// FlattenFields returns the names of the fields flatten writes, in order.
func (m *ContentManager[T, PT]) FlattenFields() []string {
	names := make([]string, len(m.kind.fields))
	for i, field := range m.kind.fields {
		names[i] = field.name
	}
	return names
}

func (m *ContentManager[T, PT]) IsBinary() bool {
	return m.kind.binary
}

func (m *ContentManager[T, PT]) API() API {
	return m.api
}

func (m *ContentManager[T, PT]) boundCtx() context.Context {
	return m.api.GetCtx()
}

// Lock acquires a manager-level mutex for the given keys.
//
//	defer manager.Lock(audio.ID)()
func (m *ContentManager[T, PT]) Lock(keys ...any) func() {
	return m.Untyped.Lock(keys...)
}

func (m *ContentManager[T, PT]) String() string {
	return m.Untyped.String()
}

// Equal reports whether a and b address the same remote object.
func (m *ContentManager[T, PT]) Equal(a, b PT) bool {
	return Equal(a, b)
}

// New builds a resource bound to this manager from a raw record. Relation
// fields are moved into relation slots, declared fields are decoded into the
// kind's struct and the rest lands in Extra.
func (m *ContentManager[T, PT]) New(raw core.Record) (PT, error) {
	bag := raw.Copy()
	delete(bag, core.ResourceTypeKey)

	relations := make(map[string]any)
	for _, name := range RelationNames {
		if value, ok := bag[name]; ok {
			relations[name] = value
			delete(bag, name)
		}
	}

	var obj T
	res := PT(&obj)
	if err := bag.Fill(res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.kind.name, err)
	}
	c := res.content()
	c.Extra = extraFields(bag, reflect.TypeOf(obj))
	c.relations = relations
	c.manager = m.owner
	c.self = res
	return res, nil
}

// Flatten renders res into the flat mapping used for create and update calls.
func (m *ContentManager[T, PT]) Flatten(res PT) (core.Params, error) {
	return flatten(res, m.kind.fields)
}

// toParams accepts a typed resource (flattened) or a flat mapping (normalized).
func (m *ContentManager[T, PT]) toParams(data any) (core.Params, error) {
	switch v := data.(type) {
	case PT:
		if v == nil {
			return nil, core.ErrResourceRequired
		}
		return m.Flatten(v)
	case T:
		return m.Flatten(PT(&v))
	case core.Params:
		return normalizeFlat(v, m.kind.fields), nil
	case core.Record:
		return normalizeFlat(v, m.kind.fields), nil
	case map[string]any:
		return normalizeFlat(v, m.kind.fields), nil
	}
	return nil, fmt.Errorf("%s: unsupported data of type %T", m.kind.name, data)
}

func (m *ContentManager[T, PT]) resourceID(resourceOrID any) (any, error) {
	var id any
	switch v := resourceOrID.(type) {
	case PT:
		if v == nil {
			return nil, core.ErrResourceRequired
		}
		if v.content().deleted {
			return nil, core.ErrDeleted
		}
		id = v.GetID()
	case T:
		id = PT(&v).GetID()
	default:
		id = core.GetID(resourceOrID)
	}
	if id == nil || id == "" {
		return nil, &core.MissingFieldError{Type: m.kind.name, Field: "id"}
	}
	return id, nil
}

func (m *ContentManager[T, PT]) wrapAll(recordSet core.RecordSet) ([]PT, error) {
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

// AllWithContext lists every resource of this kind.
func (m *ContentManager[T, PT]) AllWithContext(ctx context.Context) ([]PT, error) {
	recordSet, err := m.Untyped.ListWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return m.wrapAll(recordSet)
}

// GetWithContext fetches one resource by resource or id.
func (m *ContentManager[T, PT]) GetWithContext(ctx context.Context, resourceOrID any) (PT, error) {
	id, err := m.resourceID(resourceOrID)
	if err != nil {
		return nil, err
	}
	record, err := m.Untyped.GetByIdWithContext(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.New(record)
}

// CreateWithContext creates a resource from a typed value or a flat mapping
// and returns the server's representation.
func (m *ContentManager[T, PT]) CreateWithContext(ctx context.Context, data any) (PT, error) {
	params, err := m.toParams(data)
	if err != nil {
		return nil, err
	}
	record, err := m.Untyped.CreateWithContext(ctx, params)
	if err != nil {
		return nil, err
	}
	return m.New(record)
}

// UpdateWithContext PUTs data to the resource addressed by resourceOrID.
// With nil data the resource argument itself is flattened, so it must be a
// resource rather than a bare id.
func (m *ContentManager[T, PT]) UpdateWithContext(ctx context.Context, resourceOrID any, data any) error {
	id, err := m.resourceID(resourceOrID)
	if err != nil {
		return err
	}
	if data == nil {
		switch resourceOrID.(type) {
		case PT, T:
			data = resourceOrID
		default:
			return core.ErrResourceRequired
		}
	}
	params, err := m.toParams(data)
	if err != nil {
		return err
	}
	_, err = m.Untyped.UpdateWithContext(ctx, id, params)
	return err
}

// DeleteWithContext removes the resource addressed by resourceOrID. A typed
// resource is marked deleted on success.
func (m *ContentManager[T, PT]) DeleteWithContext(ctx context.Context, resourceOrID any) error {
	id, err := m.resourceID(resourceOrID)
	if err != nil {
		return err
	}
	if err = m.Untyped.DeleteByIdWithContext(ctx, id); err != nil {
		return err
	}
	if res, ok := resourceOrID.(PT); ok && res != nil {
		res.content().deleted = true
	}
	return nil
}

func (m *ContentManager[T, PT]) All() ([]PT, error) {
	return m.AllWithContext(m.boundCtx())
}

func (m *ContentManager[T, PT]) Get(resourceOrID any) (PT, error) {
	return m.GetWithContext(m.boundCtx(), resourceOrID)
}

func (m *ContentManager[T, PT]) Create(data any) (PT, error) {
	return m.CreateWithContext(m.boundCtx(), data)
}

func (m *ContentManager[T, PT]) Update(resourceOrID any, data any) error {
	return m.UpdateWithContext(m.boundCtx(), resourceOrID, data)
}

func (m *ContentManager[T, PT]) Delete(resourceOrID any) error {
	return m.DeleteWithContext(m.boundCtx(), resourceOrID)
}

func (m *ContentManager[T, PT]) updateResource(ctx context.Context, res any) error {
	return m.UpdateWithContext(ctx, res, nil)
}

func (m *ContentManager[T, PT]) deleteResource(ctx context.Context, res any) error {
	return m.DeleteWithContext(ctx, res)
}

//  ######################################################
//              KIND-INDEPENDENT VIEW
//  ######################################################

func (m *ContentManager[T, PT]) ListContentWithContext(ctx context.Context) ([]Content, error) {
	items, err := m.AllWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Content, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func (m *ContentManager[T, PT]) GetContentWithContext(ctx context.Context, resourceOrID any) (Content, error) {
	res, err := m.GetWithContext(ctx, resourceOrID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *ContentManager[T, PT]) CreateContentWithContext(ctx context.Context, data core.Params) (Content, error) {
	res, err := m.CreateWithContext(ctx, data)
	if err != nil {
		return nil, err
	}
	return res, nil
}

//  ######################################################
//              BINARY CONTENT
//  ######################################################

// BinaryContentManager adds blob uploads. Uploads go through
// Config.BlobUploader; without one they fail with core.ErrNotImplemented.
type BinaryContentManager[T any, PT contentPtr[T]] struct {
	*ContentManager[T, PT]
}

func newBinaryContentManager[T any, PT contentPtr[T]](api API, kind kindSpec) *BinaryContentManager[T, PT] {
	kind.binary = true
	m := &BinaryContentManager[T, PT]{ContentManager: newContentManager[T, PT](api, kind)}
	m.owner = m
	return m
}

// UploadBlobWithContext associates blob with the resource addressed by resourceOrID.
func (m *BinaryContentManager[T, PT]) UploadBlobWithContext(ctx context.Context, resourceOrID any, blob io.Reader) error {
	id, err := m.resourceID(resourceOrID)
	if err != nil {
		return err
	}
	session := m.Untyped.Session()
	uploader := session.GetConfig().BlobUploader
	if uploader == nil {
		return core.ErrNotImplemented
	}
	path := core.BuildResourcePathWithID(m.Untyped.GetResourcePath(), id)
	if err = uploader.UploadBlob(core.WithCaller(ctx, m.Untyped), session, path, blob); err != nil {
		return fmt.Errorf("upload blob to %s: %w", path, err)
	}
	return nil
}

func (m *BinaryContentManager[T, PT]) UploadBlob(resourceOrID any, blob io.Reader) error {
	return m.UploadBlobWithContext(m.boundCtx(), resourceOrID, blob)
}

func (m *BinaryContentManager[T, PT]) uploadResourceBlob(ctx context.Context, res any, blob io.Reader) error {
	return m.UploadBlobWithContext(ctx, res, blob)
}
