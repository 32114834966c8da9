package resources

import (
	"encoding/json"
	"testing"

	"github.com/storymarket/go-storymarket/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_UnmarshalJSON(t *testing.T) {
	var tags Tags
	require.NoError(t, json.Unmarshal([]byte(`["news","city"]`), &tags))
	assert.Equal(t, Tags{"news", "city"}, tags)

	require.NoError(t, json.Unmarshal([]byte(`"news, city ,, sport"`), &tags))
	assert.Equal(t, Tags{"news", "city", "sport"}, tags)
	assert.Equal(t, "news, city, sport", tags.String())

	require.NoError(t, json.Unmarshal([]byte(`""`), &tags))
	assert.Empty(t, tags)

	assert.Error(t, json.Unmarshal([]byte(`42`), &tags))
}

func TestContent_New(t *testing.T) {
	api := newOfflineAPI()
	audio, err := api.audio.New(sampleAudioRecord())
	require.NoError(t, err)

	assert.Equal(t, "7", audio.ID)
	assert.Equal(t, "7", audio.GetID())
	assert.Equal(t, "Clip", audio.Title)
	assert.Equal(t, Tags{"news", "city"}, audio.Tags)
	assert.Equal(t, 30.0, audio.Duration)
	assert.Equal(t, core.Record{"bitrate": 128.0}, audio.Extra)
	assert.Equal(t, "<Audio: Clip>", audio.String())
	assert.False(t, audio.Deleted())

	_, ok := audio.Relation(RelOrg)
	assert.True(t, ok)
	_, ok = audio.Relation(RelPricingScheme)
	assert.False(t, ok)
}

func TestContent_Relations(t *testing.T) {
	api := newOfflineAPI()
	audio, err := api.audio.New(sampleAudioRecord())
	require.NoError(t, err)

	org, err := audio.Org()
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	assert.Same(t, api.orgs.Untyped, org.Manager())

	category, err := audio.Category()
	require.NoError(t, err)
	assert.Equal(t, "/content/sub_category/3/", category.Reference())
	assert.Same(t, api.subcategories.Untyped, category.Manager())

	_, err = audio.PricingScheme()
	assert.True(t, core.IsAttributeNotFoundErr(err))
	_, err = audio.UploadedBy()
	assert.True(t, core.IsAttributeNotFoundErr(err))
}

func TestContent_AuthorIsBuiltOnEveryAccess(t *testing.T) {
	api := newOfflineAPI()
	audio, err := api.audio.New(sampleAudioRecord())
	require.NoError(t, err)

	first, err := audio.Author()
	require.NoError(t, err)
	second, err := audio.Author()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "Jane", first.FirstName)

	first.Username = "changed"
	third, err := audio.Author()
	require.NoError(t, err)
	assert.Equal(t, "jdoe", third.Username)
}

func TestContent_AuthorMissingField(t *testing.T) {
	raw := sampleAudioRecord()
	raw["author"] = map[string]any{"username": "jdoe"}
	audio, err := newOfflineAPI().audio.New(raw)
	require.NoError(t, err)

	_, err = audio.Author()
	var missing *core.MissingFieldError
	assert.ErrorAs(t, err, &missing)
}

func TestContent_Setters(t *testing.T) {
	audio := &Audio{}
	audio.SetAuthor(&User{Username: "jdoe"})
	audio.SetOrg(&Org{RelatedResource{ID: "9", Name: "Initech"}})
	audio.SetCategory(&Category{RelatedResource{ID: "4"}})
	audio.SetPricingScheme(&PricingScheme{RelatedResource{ID: "1"}})
	audio.SetRightsScheme(&RightsScheme{RelatedResource{ID: "2"}})
	audio.SetUploadedBy(&User{Username: "uploader"})

	author, err := audio.Author()
	require.NoError(t, err)
	assert.Equal(t, "jdoe", author.Username)

	org, err := audio.Org()
	require.NoError(t, err)
	assert.Equal(t, "/orgs/9/", org.Reference())
	assert.Nil(t, org.Manager())

	rights, err := audio.RightsScheme()
	require.NoError(t, err)
	assert.Equal(t, "2", rights.ID)

	audio.SetOrg(nil)
	_, err = audio.Org()
	assert.True(t, core.IsAttributeNotFoundErr(err))
}

func TestContent_Attr(t *testing.T) {
	api := newOfflineAPI()
	audio, err := api.audio.New(sampleAudioRecord())
	require.NoError(t, err)

	title, err := audio.Attr("title")
	require.NoError(t, err)
	assert.Equal(t, "Clip", title)

	duration, err := audio.Attr("duration")
	require.NoError(t, err)
	assert.Equal(t, 30.0, duration)

	bitrate, err := audio.Attr("bitrate")
	require.NoError(t, err)
	assert.Equal(t, 128.0, bitrate)

	author, err := audio.Attr(RelAuthor)
	require.NoError(t, err)
	assert.IsType(t, &User{}, author)

	org, err := audio.Attr(RelOrg)
	require.NoError(t, err)
	assert.IsType(t, &Org{}, org)

	_, err = audio.Attr("nope")
	var notFound *core.AttributeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Audio", notFound.Resource)
	assert.Equal(t, "nope", notFound.Attribute)
}

func TestContent_Record(t *testing.T) {
	api := newOfflineAPI()
	photo, err := api.photo.New(core.Record{
		"id": 5.0, "title": "Dusk", "caption": "at dusk", "width": 800.0,
		"org": map[string]any{"id": "1", "name": "Acme"},
	})
	require.NoError(t, err)

	rec := photo.Record()
	assert.Equal(t, "5", rec["id"])
	assert.Equal(t, "Dusk", rec["title"])
	assert.Equal(t, "at dusk", rec["caption"])
	assert.Equal(t, 800.0, rec["width"])
	assert.Equal(t, map[string]any{"id": "1", "name": "Acme"}, rec["org"])
	assert.Equal(t, "Photo", rec[core.ResourceTypeKey])
}

func TestContent_Equal(t *testing.T) {
	api := newOfflineAPI()
	a, err := api.audio.New(core.Record{"id": "1", "title": "a"})
	require.NoError(t, err)
	b, err := api.audio.New(core.Record{"id": "1", "title": "renamed"})
	require.NoError(t, err)
	c, err := api.audio.New(core.Record{"id": "2"})
	require.NoError(t, err)
	v, err := api.video.New(core.Record{"id": "1"})
	require.NoError(t, err)
	blank, err := api.audio.New(core.Record{})
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))
	assert.True(t, api.audio.Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, v))
	assert.False(t, Equal(blank, blank))
	assert.False(t, Equal(a, nil))

	detached := &Audio{}
	detached.ID = "1"
	assert.True(t, Equal(a, detached))
	assert.True(t, Equal(detached, a))

	var none *Audio
	assert.False(t, Equal(a, none))
	assert.False(t, Equal(none, a))
	assert.False(t, api.audio.Equal(none, none))
}

func TestContent_WritesNeedManager(t *testing.T) {
	audio := &Audio{}
	audio.ID = "1"
	assert.ErrorIs(t, audio.Save(), ErrUnbound)
	assert.ErrorIs(t, audio.Delete(), ErrUnbound)
	assert.ErrorIs(t, audio.UploadBlob(nil), ErrUnbound)
}
