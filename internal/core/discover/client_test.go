package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	common.Logger = zap.NewNop()
}

func newTestClient(t *testing.T, maxAttempts int, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewClient(config.DiscoverConfig{
		BaseURL:     server.URL,
		Timeout:     2 * time.Second,
		MaxAttempts: maxAttempts,
	}), &hits
}

func recipeBody(id, title string) string {
	return fmt.Sprintf(`{"recipe":{"id":%q,"title":%q,"ingredients":["water"],"instructions":"Boil."}}`, id, title)
}

func TestFetchReturnsRecipe(t *testing.T) {
	var gotPersons string
	client, hits := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		gotPersons = r.URL.Query().Get("persons")
		assert.NotEmpty(t, r.URL.Query().Get("t"), "防快取參數必須存在")
		w.Write([]byte(recipeBody("r-1", "Soup")))
	})

	raw, err := client.Fetch(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "r-1", raw.ID)
	assert.Equal(t, "Soup", raw.Title)
	assert.Equal(t, "4", gotPersons)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestFetchDefaultsPersons(t *testing.T) {
	var gotPersons string
	client, _ := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		gotPersons = r.URL.Query().Get("persons")
		w.Write([]byte(recipeBody("r-1", "Soup")))
	})

	_, err := client.Fetch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "2", gotPersons)
}

func TestFetchRetriesDuplicate(t *testing.T) {
	var served int32
	client, hits := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&served, 1)
		switch n {
		case 1, 2:
			w.Write([]byte(recipeBody("r-1", "Soup")))
		default:
			w.Write([]byte(recipeBody("r-2", "Rice")))
		}
	})

	first, err := client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "r-1", first.ID)

	// 第二輪先拿到重複的 r-1，重試一次後換到 r-2
	second, err := client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "r-2", second.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	client, hits := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(recipeBody("r-1", "Soup")))
	})

	first, err := client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "r-1", first.ID)

	_, err = client.Fetch(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrNoFreshRecipe)
	assert.Equal(t, int32(1+3), atomic.LoadInt32(hits), "重試必須有上限")
}

func TestFetchAcceptsRecipeWithoutIdentifier(t *testing.T) {
	client, hits := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recipe":{"title":"Mystery Dish","ingredients":"salt","instructions":"Mix."}}`))
	})

	first, err := client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mystery Dish", first.Title)

	// 無識別碼無從比對重複，不得陷入重試
	second, err := client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mystery Dish", second.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestFetchUpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrUpstreamError)
}
