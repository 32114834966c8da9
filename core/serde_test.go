package core

import (
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}
}

func TestUnmarshalToRecordUnion(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		want Renderable
	}{
		{"object", newResponse(200, `{"id": 1, "title": "a"}`), Record{"id": float64(1), "title": "a"}},
		{"list", newResponse(200, `[{"id": 1}, {"id": 2}]`), RecordSet{{"id": float64(1)}, {"id": float64(2)}}},
		{"raw list", newResponse(200, `["a", 3]`), RecordSet{{customRawKey: "a"}, {customRawKey: float64(3)}}},
		{"no content", newResponse(http.StatusNoContent, ""), Record{}},
		{"blank body", newResponse(200, "  \n"), Record{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unmarshalToRecordUnion(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := unmarshalToRecordUnion(newResponse(200, `"scalar"`))
	assert.Error(t, err)
}

func TestRecordFill_FlexibleTypes(t *testing.T) {
	type Embedded struct {
		ID string `json:"id"`
	}
	type target struct {
		Embedded
		Title    string `json:"title"`
		Duration int64  `json:"duration"`
		Flag     string `json:"flag"`
	}

	var out target
	err := Record{"id": float64(12), "title": "x", "duration": float64(30), "flag": true}.Fill(&out)
	require.NoError(t, err)
	assert.Equal(t, "12", out.ID)
	assert.Equal(t, "x", out.Title)
	assert.EqualValues(t, 30, out.Duration)
	assert.Equal(t, "true", out.Flag)

	assert.Error(t, Record{}.Fill(out))
}

func TestJSONFieldNames(t *testing.T) {
	type Inner struct {
		ID   string `json:"id,omitempty"`
		Skip string `json:"-"`
	}
	type outer struct {
		Inner
		Caption string `json:"caption"`
		hidden  string
	}
	names := JSONFieldNames(typeOf[outer]())
	assert.Equal(t, map[string]struct{}{"id": {}, "caption": {}}, names)
}

func TestSetResourceKey(t *testing.T) {
	rec := Record{"id": 1}
	require.NoError(t, setResourceKey(rec, "Audio"))
	assert.Equal(t, "Audio", rec[ResourceTypeKey])

	set := RecordSet{{"id": 1}, {}}
	require.NoError(t, setResourceKey(set, "Text"))
	assert.Equal(t, "Text", set[0][ResourceTypeKey])
	assert.NotContains(t, set[1], ResourceTypeKey)
}

func TestRecordPrettyTable(t *testing.T) {
	rec := Record{"id": 1, "title": "Song", "org": map[string]any{"id": 7}, ResourceTypeKey: "Audio"}
	out := rec.PrettyTable()
	assert.True(t, strings.HasPrefix(out, "Audio:"))
	assert.Contains(t, out, "Song")
	assert.Contains(t, out, `{"id":7}`)
	assert.Equal(t, "<>", Record{}.PrettyTable())
}

func TestParamsHelpers(t *testing.T) {
	p := Params{"a": 1, "b": 2}
	cp := p.Copy()
	cp.Without("a")
	assert.Len(t, p, 2)
	assert.Equal(t, Params{"b": 2}, cp)

	body, err := p.ToBody()
	require.NoError(t, err)
	raw, _ := io.ReadAll(body)
	assert.JSONEq(t, `{"a":1,"b":2}`, string(raw))
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
