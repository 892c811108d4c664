package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"smartchef/internal/core/present"
	"smartchef/internal/core/session"
	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	common.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
}

// upstreams 測試替身：翻譯、收藏、隨機食譜三個外部服務
type upstreams struct {
	translate *httptest.Server
	favorites *httptest.Server
	discover  *httptest.Server
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()

	u := &upstreams{}

	// 翻譯：在原文前加上語言代碼
	u.translate = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		tl := r.URL.Query().Get("tl")
		payload := [][][]interface{}{{{fmt.Sprintf("[%s]%s", tl, q), q}}}
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(u.translate.Close)

	// 收藏：依路徑回固定回應
	u.favorites = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Access denied. No token provided."}`))
			return
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/recipes/favorites/check/"):
			w.Write([]byte(`{"isFavorited":false}`))
		case r.URL.Path == "/api/recipes/favorites" && r.Method == http.MethodGet:
			w.Write([]byte(`{"favorites":[{"recipeId":"soup-1","title":"Soup"}]}`))
		case r.URL.Path == "/api/recipes/favorites" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(u.favorites.Close)

	// 隨機食譜：固定回一份食譜
	u.discover = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recipe":{"id":"rand-1","title":"Dal","ingredients":"lentils, water","instructions":"Boil lentils.\nSeason."}}`))
	}))
	t.Cleanup(u.discover.Close)

	return u
}

func testConfig(u *upstreams) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:     "test",
			Debug:   true,
			Version: "test",
			Name:    "smart-chef",
		},
		Server: config.ServerConfig{Port: 8080},
		Translate: config.TranslateConfig{
			BaseURL:      u.translate.URL,
			SourceLocale: "en",
			Timeout:      2 * time.Second,
		},
		Favorites: config.FavoritesConfig{
			BaseURL: u.favorites.URL,
			Timeout: 2 * time.Second,
		},
		Discover: config.DiscoverConfig{
			BaseURL:     u.discover.URL,
			Timeout:     2 * time.Second,
			MaxAttempts: 3,
		},
		Views: config.ViewsConfig{
			MaxSize:         100,
			TTL:             time.Minute,
			CleanupInterval: time.Hour,
		},
		RateLimit:   config.RateLimitConfig{Enabled: false},
		DedupWindow: time.Millisecond,
	}
}

type routerFixture struct {
	router *gin.Engine
	store  *session.MemoryStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	u := newUpstreams(t)
	cfg := testConfig(u)

	store := session.NewMemoryStore()
	manager := present.NewManager(cfg.Views)
	t.Cleanup(func() { manager.Close() })

	router, err := SetupRouter(cfg, store, manager)
	require.NoError(t, err)

	return &routerFixture{router: router, store: store}
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/live", "").Code)
}

func TestNormalizeEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/recipe/normalize",
		`{"title":"Soup","instructions":"Boil water.\nAdd salt.","ingredients":"water, salt","id":"soup-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	r := body["recipe"].(map[string]interface{})
	assert.Equal(t, "Soup", r["title"])
	assert.Equal(t, []interface{}{"Boil water.", "Add salt."}, r["steps"])
	assert.Equal(t, []interface{}{"water", "salt"}, r["ingredients"])
}

func TestNormalizeEndpointRejectsMalformedJSON(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/recipe/normalize", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocalizeEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/recipe/localize",
		`{"recipe":{"title":"Soup","ingredients":["water"],"steps":["Boil water."],"identifier":"soup-1"},"language":"telugu"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	r := body["recipe"].(map[string]interface{})
	assert.Equal(t, "[te]Soup", r["title"])
	assert.Equal(t, "telugu", r["language"])
	assert.Equal(t, false, body["translation_degraded"])
}

func TestLocalizeEndpointUnknownLanguage(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/recipe/localize",
		`{"recipe":{"title":"Soup","identifier":"soup-1"},"language":"klingon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "UNKNOWN_LANGUAGE", body["code"])
}

func TestRandomRecipeEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/recipe/random?persons=4", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	r := body["recipe"].(map[string]interface{})
	assert.Equal(t, "Dal", r["title"])
	assert.Equal(t, "rand-1", r["identifier"])
	assert.Equal(t, []interface{}{"lentils", "water"}, r["ingredients"])
}

func TestViewLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	// 建立檢視
	w := f.do(http.MethodPost, "/api/v1/view",
		`{"recipe":{"title":"Soup","instructions":"Boil water.\nAdd salt.","ingredients":"water, salt","id":"soup-1"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	viewID := body["view_id"].(string)
	require.NotEmpty(t, viewID)
	view := body["view"].(map[string]interface{})
	assert.Equal(t, "ready", view["state"])
	// 未登入時收藏狀態停在 unknown
	assert.Equal(t, "unknown", view["favorite_status"])

	// 查詢檢視
	w = f.do(http.MethodGet, "/api/v1/view/"+viewID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 切換語言
	w = f.do(http.MethodPost, "/api/v1/view/"+url.PathEscape(viewID)+"/language", `{"language":"telugu"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	view = body["view"].(map[string]interface{})
	assert.Equal(t, "ready", view["state"])
	assert.Equal(t, "telugu", view["language"])
	recipeBody := view["recipe"].(map[string]interface{})
	assert.Equal(t, "[te]Soup", recipeBody["title"])
}

func TestViewWithoutRecipeIsUnavailable(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/view", `{"recipe":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	view := body["view"].(map[string]interface{})
	assert.Equal(t, "unavailable", view["state"])
	assert.Equal(t, false, view["available"])

	// 不可用檢視拒絕語言切換
	viewID := body["view_id"].(string)
	w = f.do(http.MethodPost, "/api/v1/view/"+viewID+"/language", `{"language":"hindi"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestViewNotFound(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/api/v1/view/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteRequiresSession(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/view", `{"recipe":{"title":"Soup","id":"soup-1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	viewID := decodeBody(t, w)["view_id"].(string)

	w = f.do(http.MethodPost, "/api/v1/view/"+viewID+"/favorite", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "UNAUTHENTICATED", body["code"])
}

func TestSessionLifecycleAndFavorites(t *testing.T) {
	f := newRouterFixture(t)

	// 未登入
	w := f.do(http.MethodGet, "/api/v1/auth/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])

	// 清單需要會話
	w = f.do(http.MethodGet, "/api/v1/favorites", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 安裝會話
	w = f.do(http.MethodPost, "/api/v1/auth/session", `{"token":"tok-1","username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/auth/session", "")
	body := decodeBody(t, w)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["username"])

	// 收藏清單
	w = f.do(http.MethodGet, "/api/v1/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	favs := decodeBody(t, w)["favorites"].([]interface{})
	require.Len(t, favs, 1)
	assert.Equal(t, "Soup", favs[0].(map[string]interface{})["title"])

	// 登出
	w = f.do(http.MethodDelete, "/api/v1/auth/session", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/auth/session", "")
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])
}

func TestEstablishSessionRequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPost, "/api/v1/auth/session", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
