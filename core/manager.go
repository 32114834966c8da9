package core

import (
	"context"
	"net/http"
)

//  ######################################################
//              MANAGER BASE CRUD OPS
//  ######################################################

// Manager performs raw CRUD calls for one resource collection. Results are
// untyped Records; typed layers wrap them.
type Manager struct {
	resourcePath string
	resourceType string
	Rest         Rest
	mu           *KeyLocker
	custom       RequestInterceptor
}

func NewManager(resourcePath, resourceType string, rest Rest) *Manager {
	return &Manager{
		resourcePath: BuildResourcePath(resourcePath),
		resourceType: resourceType,
		Rest:         rest,
		mu:           NewKeyLocker(),
	}
}

// Session returns the session shared by all managers of the bound API.
func (m *Manager) Session() RESTSession {
	return m.Rest.GetSession()
}

func (m *Manager) GetResourceType() string {
	return m.resourceType
}

// GetResourcePath returns the collection path, e.g. "/content/audio/".
func (m *Manager) GetResourcePath() string {
	return m.resourcePath
}

// SetInterceptor replaces the no-op request interceptor of this manager.
func (m *Manager) SetInterceptor(interceptor RequestInterceptor) {
	m.custom = interceptor
}

func (m *Manager) interceptor() RequestInterceptor {
	if m.custom != nil {
		return m.custom
	}
	return m
}

// ListWithContext fetches the whole collection.
func (m *Manager) ListWithContext(ctx context.Context) (RecordSet, error) {
	return Request[RecordSet](ctx, m, http.MethodGet, m.resourcePath, nil)
}

// GetByIdWithContext fetches one object. A missing object yields *NotFoundError.
func (m *Manager) GetByIdWithContext(ctx context.Context, id any) (Record, error) {
	return Request[Record](ctx, m, http.MethodGet, BuildResourcePathWithID(m.resourcePath, id), nil)
}

// CreateWithContext posts body to the collection and returns the server representation.
func (m *Manager) CreateWithContext(ctx context.Context, body Params) (Record, error) {
	return Request[Record](ctx, m, http.MethodPost, m.resourcePath, body)
}

// UpdateWithContext replaces the object addressed by id with body.
func (m *Manager) UpdateWithContext(ctx context.Context, id any, body Params) (Record, error) {
	return Request[Record](ctx, m, http.MethodPut, BuildResourcePathWithID(m.resourcePath, id), body)
}

// DeleteByIdWithContext removes the object addressed by id. The response body is discarded.
func (m *Manager) DeleteByIdWithContext(ctx context.Context, id any) error {
	_, err := Request[Record](ctx, m, http.MethodDelete, BuildResourcePathWithID(m.resourcePath, id), nil)
	return err
}

func (m *Manager) List() (RecordSet, error) {
	return m.ListWithContext(m.Rest.GetCtx())
}

func (m *Manager) GetById(id any) (Record, error) {
	return m.GetByIdWithContext(m.Rest.GetCtx(), id)
}

func (m *Manager) Create(body Params) (Record, error) {
	return m.CreateWithContext(m.Rest.GetCtx(), body)
}

func (m *Manager) Update(id any, body Params) (Record, error) {
	return m.UpdateWithContext(m.Rest.GetCtx(), id, body)
}

func (m *Manager) DeleteById(id any) error {
	return m.DeleteByIdWithContext(m.Rest.GetCtx(), id)
}

// Lock acquires the manager-level mutex and returns a function to release it.
//
//	defer manager.Lock(id)()
func (m *Manager) Lock(keys ...any) func() {
	return m.mu.Lock(keys...)
}

func (m *Manager) String() string {
	return "<" + m.resourceType + "Manager: " + m.resourcePath + ">"
}
