package resources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/storymarket/go-storymarket/core"
	"github.com/stretchr/testify/require"
)

// testAPI is a minimal API wired the same way the client facade wires it.
type testAPI struct {
	ctx     context.Context
	session core.RESTSession

	subcategories *CategoryManager
	orgs          *OrgManager
	pricing       *PricingSchemeManager
	rights        *RightsSchemeManager

	audio *AudioManager
	photo *PhotoManager
	text  *TextManager
	video *VideoManager
	data  *DataManager
}

func (a *testAPI) GetSession() core.RESTSession       { return a.session }
func (a *testAPI) GetCtx() context.Context            { return a.ctx }
func (a *testAPI) SetCtx(ctx context.Context)         { a.ctx = ctx }
func (a *testAPI) GetSubcategories() *CategoryManager { return a.subcategories }
func (a *testAPI) GetOrgs() *OrgManager               { return a.orgs }
func (a *testAPI) GetPricing() *PricingSchemeManager  { return a.pricing }
func (a *testAPI) GetRights() *RightsSchemeManager    { return a.rights }

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body, Raw: raw,
	})
	f.mu.Unlock()

	if handler, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeServer) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func jsonReply(status int, payload string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}
}

func newTestAPI(t *testing.T, fake *fakeServer, mutate ...func(*core.Config)) *testAPI {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.ParseUint(u.Port(), 10, 64)
	require.NoError(t, err)

	config := &core.Config{Host: u.Hostname(), Port: port, Scheme: "http", ApiKey: "secret"}
	for _, fn := range mutate {
		fn(config)
	}
	config.Validate(
		core.WithApiVersion(core.DefaultApiVersion),
		core.WithUserAgent,
		core.WithTimeout(5*time.Second),
		core.WithMaxConnections(4),
		core.WithLogger,
	)
	session, err := core.NewStorymarketSession(config)
	require.NoError(t, err)
	return wireTestAPI(session)
}

// newOfflineAPI returns an API whose session points nowhere. Good for tests
// that never reach the network.
func newOfflineAPI() *testAPI {
	config := &core.Config{Host: "127.0.0.1", Port: 1, Scheme: "http", ApiKey: "secret"}
	config.Validate(core.WithApiVersion(core.DefaultApiVersion), core.WithUserAgent, core.WithTimeout(time.Second), core.WithLogger)
	session := core.Must(core.NewStorymarketSession(config))
	return wireTestAPI(session)
}

func wireTestAPI(session core.RESTSession) *testAPI {
	api := &testAPI{ctx: context.Background(), session: session}
	api.subcategories = NewCategoryManager(api)
	api.orgs = NewOrgManager(api)
	api.pricing = NewPricingSchemeManager(api)
	api.rights = NewRightsSchemeManager(api)
	api.audio = NewAudioManager(api)
	api.photo = NewPhotoManager(api)
	api.text = NewTextManager(api)
	api.video = NewVideoManager(api)
	api.data = NewDataManager(api)
	return api
}

// fakeUploader records blob uploads.
type fakeUploader struct {
	path string
	blob []byte
	err  error
}

func (u *fakeUploader) UploadBlob(_ context.Context, _ core.RESTSession, path string, blob io.Reader) error {
	u.path = path
	u.blob, _ = io.ReadAll(blob)
	return u.err
}

func sampleAudioRecord() core.Record {
	return core.Record{
		"id":       "7",
		"title":    "Clip",
		"tags":     "news, city",
		"duration": 30.0,
		"bitrate":  128.0,
		"author": map[string]any{
			"username": "jdoe", "first_name": "Jane", "last_name": "Doe", "email": "jane@example.com",
		},
		"org":      map[string]any{"id": "7", "name": "Acme"},
		"category": map[string]any{"id": "3", "name": "City"},
	}
}
