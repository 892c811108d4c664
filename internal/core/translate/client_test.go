package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartchef/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.TranslateConfig{
		BaseURL:      server.URL,
		SourceLocale: "en",
		Timeout:      2 * time.Second,
	})
}

func TestClientTranslate(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client": q.Get("client"),
			"sl":     q.Get("sl"),
			"tl":     q.Get("tl"),
			"dt":     q.Get("dt"),
			"q":      q.Get("q"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["నీళ్లు మరిగించండి.","Boil water.",null,null],[" ఉప్పు వేయండి."," Add salt.",null,null]],null,"en"]`))
	})

	out, err := client.Translate(context.Background(), "Boil water. Add salt.", LanguageTelugu)
	require.NoError(t, err)
	assert.Equal(t, "నీళ్లు మరిగించండి. ఉప్పు వేయండి.", out)

	assert.Equal(t, map[string]string{
		"client": "gtx",
		"sl":     "en",
		"tl":     "te",
		"dt":     "t",
		"q":      "Boil water. Add salt.",
	}, gotQuery)
}

func TestClientTranslateBlankInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("空白輸入不得發出請求")
	})

	out, err := client.Translate(context.Background(), "   ", LanguageHindi)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClientTranslateNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Translate(context.Background(), "hello", LanguageTelugu)
	assert.Error(t, err)
}

func TestParseTranslation(t *testing.T) {
	out, err := parseTranslation([]byte(`[[["bonjour","hello",null,null]],null,"en"]`))
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out)

	_, err = parseTranslation([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseTranslation([]byte(`[]`))
	assert.Error(t, err)

	// 段落缺譯文時跳過，得到空字串，降級交給調度層
	out, err = parseTranslation([]byte(`[[[]],null,"en"]`))
	require.NoError(t, err)
	assert.Empty(t, out)
}
