package resources

import (
	"testing"

	"github.com/storymarket/go-storymarket/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_Audio(t *testing.T) {
	api := newOfflineAPI()
	audio, err := api.audio.New(sampleAudioRecord())
	require.NoError(t, err)

	flat, err := api.audio.Flatten(audio)
	require.NoError(t, err)
	assert.Equal(t, core.Params{
		"category": "/content/sub_category/3/",
		"author":   "jdoe",
		"title":    "Clip",
		"org":      "/orgs/7/",
		"tags":     "news, city",
		"duration": 30.0,
	}, flat)
}

func TestFlatten_SkipsMissingAndFalsy(t *testing.T) {
	api := newOfflineAPI()
	text, err := api.text.New(core.Record{"id": "1", "title": "Story", "tags": []any{}, "content": ""})
	require.NoError(t, err)

	flat, err := api.text.Flatten(text)
	require.NoError(t, err)
	assert.Equal(t, core.Params{"title": "Story"}, flat)
}

func TestFlatten_StringRelationsPassThrough(t *testing.T) {
	api := newOfflineAPI()
	photo, err := api.photo.New(core.Record{
		"title":    "Dusk",
		"org":      "/orgs/2/",
		"category": "/content/sub_category/8/",
		"author":   "jdoe",
		"caption":  "at dusk",
	})
	require.NoError(t, err)

	flat, err := api.photo.Flatten(photo)
	require.NoError(t, err)
	assert.Equal(t, "/orgs/2/", flat["org"])
	assert.Equal(t, "/content/sub_category/8/", flat["category"])
	assert.Equal(t, "jdoe", flat["author"])
	assert.Equal(t, "at dusk", flat["caption"])
}

func TestFlatten_Errors(t *testing.T) {
	api := newOfflineAPI()

	noOrgID, err := api.audio.New(core.Record{"title": "x", "org": map[string]any{"name": "Acme"}})
	require.NoError(t, err)
	_, err = api.audio.Flatten(noOrgID)
	var missing *core.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Org", missing.Type)

	badAuthor, err := api.audio.New(core.Record{"title": "x", "author": map[string]any{"username": "jdoe"}})
	require.NoError(t, err)
	_, err = api.audio.Flatten(badAuthor)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "User", missing.Type)
}

func TestFlatten_FieldOrder(t *testing.T) {
	a := newOfflineAPI()
	assert.Equal(t, []string{"category", "author", "title", "org", "tags", "duration"}, a.audio.FlattenFields())
	assert.Equal(t, []string{"category", "author", "title", "org", "tags"}, a.data.FlattenFields())
	assert.Equal(t, []string{"category", "author", "title", "org", "tags", "caption"}, a.photo.FlattenFields())
	assert.Equal(t, []string{"category", "author", "title", "org", "tags", "content"}, a.text.FlattenFields())
	assert.Equal(t, a.audio.FlattenFields(), a.video.FlattenFields())
}

// Loading a flattened resource and flattening it again yields the same mapping.
func TestFlatten_RoundTrip(t *testing.T) {
	a := newOfflineAPI()
	original, err := a.video.New(core.Record{
		"title":    "Parade",
		"duration": 12.5,
		"tags":     "city, night",
		"org":      map[string]any{"id": "4", "name": "Acme"},
		"category": map[string]any{"id": "9", "name": "Events"},
		"author":   map[string]any{"username": "jdoe", "first_name": "", "last_name": "", "email": ""},
	})
	require.NoError(t, err)

	first, err := a.video.Flatten(original)
	require.NoError(t, err)

	reloaded, err := a.video.New(core.Record(first))
	require.NoError(t, err)
	second, err := a.video.Flatten(reloaded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeFlat(t *testing.T) {
	out := normalizeFlat(map[string]any{
		"tags":     []string{"a", "b"},
		"author":   &User{Username: "jdoe"},
		"org":      &Org{RelatedResource{ID: "3"}},
		"category": &Category{RelatedResource{ID: "5"}},
		"title":    "",
		"extra":    0,
	}, audioKind.fields)

	assert.Equal(t, core.Params{
		"tags":     "a, b",
		"author":   "jdoe",
		"org":      "/orgs/3/",
		"category": "/content/sub_category/5/",
		"title":    "",
		"extra":    0,
	}, out)

	assert.Equal(t, "x, y", normalizeFlat(map[string]any{"tags": Tags{"x", "y"}}, audioKind.fields)["tags"])
	assert.Equal(t, "1, 2", normalizeFlat(map[string]any{"tags": []any{1, 2}}, audioKind.fields)["tags"])
}
