package translate

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ufymau/newsdigest/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r fakeResponse) StatusCode() int { return r.status }
func (r fakeResponse) Body() []byte    { return r.body }

type fakeClient struct {
	status  int
	body    string
	err     error
	lastURL string
}

func (c *fakeClient) Get(_ context.Context, u string, _ map[string]string) (httpclient.Response, error) {
	c.lastURL = u
	if c.err != nil {
		return nil, c.err
	}
	return fakeResponse{status: c.status, body: []byte(c.body)}, nil
}

func (c *fakeClient) PostJSON(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	return nil, errors.New("not used")
}

func TestTranslateBuildsRequest(t *testing.T) {
	client := &fakeClient{status: 200, body: `[[["Bonjour le monde","Hello world",null,null,10]],null,"en"]`}
	tr, err := NewGoogleTranslator(client)
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "Hello world", "fr")
	require.NoError(t, err)
	require.Equal(t, "Bonjour le monde", got)

	parsed, err := url.Parse(client.lastURL)
	require.NoError(t, err)
	q := parsed.Query()
	require.Equal(t, "gtx", q.Get("client"))
	require.Equal(t, "auto", q.Get("sl"))
	require.Equal(t, "fr", q.Get("tl"))
	require.Equal(t, "t", q.Get("dt"))
	require.Equal(t, "Hello world", q.Get("q"))
}

func TestTranslateJoinsChunks(t *testing.T) {
	// Long inputs come back split into sentence chunks.
	client := &fakeClient{status: 200, body: `[[["Первое предложение. ","First sentence. "],["Второе.","Second."]],null,"en"]`}
	tr, err := NewGoogleTranslator(client)
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "First sentence. Second.", "ru")
	require.NoError(t, err)
	require.Equal(t, "Первое предложение. Второе.", got)
}

func TestTranslateEmptyInputSkipsNetwork(t *testing.T) {
	client := &fakeClient{err: errors.New("must not be called")}
	tr, err := NewGoogleTranslator(client)
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "   ", "fr")
	require.NoError(t, err)
	require.Equal(t, "   ", got)
}

func TestTranslateErrors(t *testing.T) {
	tr, err := NewGoogleTranslator(&fakeClient{status: 200, body: `[[["x"]]]`})
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "text", "")
	require.Error(t, err)

	tr, err = NewGoogleTranslator(&fakeClient{status: 429, body: `rate limited`})
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "text", "fr")
	require.Error(t, err)

	tr, err = NewGoogleTranslator(&fakeClient{status: 200, body: `not json`})
	require.NoError(t, err)
	_, err = tr.Translate(context.Background(), "text", "fr")
	require.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"single chunk", `[[["Hallo","Hello"]],null,"en"]`, "Hallo", false},
		{"empty array", `[]`, "", true},
		{"wrong shape", `{"data":1}`, "", true},
		{"no translation", `[[],null,"en"]`, "", true},
		{"non-string chunk ignored", `[[[1],["Hallo","Hello"]],null,"en"]`, "Hallo", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseResponse([]byte(tc.body))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestTranslateBatch(t *testing.T) {
	client := &fakeClient{status: 200, body: `[[["Hola","Hi"]],null,"en"]`}
	tr, err := NewGoogleTranslator(client)
	require.NoError(t, err)

	got, err := tr.TranslateBatch(context.Background(), []string{"Hi", "Hi"}, "es")
	require.NoError(t, err)
	require.Equal(t, []string{"Hola", "Hola"}, got)
}
