package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetfeed/internal/config"
	"tweetfeed/internal/domain"
	"tweetfeed/internal/fetcher"
	"tweetfeed/internal/storage"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(t *testing.T, apiURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		TwitterAPIKey:       "key",
		TwitterAPISecretKey: "secret",
		TokenURL:            apiURL + "/oauth2/token",
		SearchURL:           apiURL + "/search.json",
		Query:               "from:PascalChorus 💡",
		FromDate:            "201501010000",
		MaxResults:          100,
		OutputPath:          filepath.Join(dir, "assets", "tweets.json"),
		BadgerDBPath:        filepath.Join(dir, "badger"),
		HTTPTimeout:         5 * time.Second,
		LogLevel:            "error",
	}
}

func apiServer(t *testing.T, searchStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"bearer","access_token":"AAAA"}`)
	})
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(searchStatus)
		_, _ = io.WriteString(w, `{"results": [
		  {"id_str": "7", "created_at": "Wed Oct 10 20:19:24 +0000 2018", "text": "Check this https://t.co/abc #rust",
		   "entities": {"urls": [{"url": "https://t.co/abc", "expanded_url": "https://example.com/page", "display_url": "example.com/page"}],
		                "hashtags": [{"text": "rust"}]},
		   "user": {"name": "Pascal", "screen_name": "PascalChorus", "profile_image_url_https": "https://pbs.twimg.com/p_normal.jpg"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLoadList(t *testing.T) {
	srv := apiServer(t, http.StatusOK)
	cfg := testConfig(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, runFetch(ctx, cfg, quietLogger()))
	_, err := os.Stat(cfg.OutputPath)
	require.NoError(t, err, "snapshot written")

	n, err := runLoad(ctx, cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var tweets []domain.Tweet
	require.NoError(t, json.Unmarshal(listOutput(t, cfg, ""), &tweets))
	require.Len(t, tweets, 1)
	assert.Equal(t, "7", tweets[0].ID)
	assert.Equal(t, []string{"rust"}, tweets[0].Hashtags)
	assert.Equal(t, "https://pbs.twimg.com/p_bigger.jpg", tweets[0].User.ProfileImage)
	assert.Contains(t, tweets[0].Text, `<a href="https://example.com/page" target="_blank" rel="noopener">example.com/page</a>`)

	var single domain.Tweet
	require.NoError(t, json.Unmarshal(listOutput(t, cfg, "7"), &single))
	assert.Equal(t, tweets[0], single)
	assert.Contains(t, string(listOutput(t, cfg, "7")), `<a href=`, "markup is printed unescaped")

	err = withStore(cfg, quietLogger(), func(store storage.NodeStore) error {
		return runList(ctx, store, "missing", io.Discard)
	})
	assert.ErrorIs(t, err, storage.ErrNodeNotFound)
}

// listOutput runs the list command body against the configured store.
func listOutput(t *testing.T, cfg config.Config, id string) []byte {
	t.Helper()
	var out bytes.Buffer
	err := withStore(cfg, quietLogger(), func(store storage.NodeStore) error {
		return runList(context.Background(), store, id, &out)
	})
	require.NoError(t, err)
	return out.Bytes()
}

func TestRunFetch_QueryFailureKeepsOldSnapshot(t *testing.T) {
	srv := apiServer(t, http.StatusInternalServerError)
	cfg := testConfig(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755))
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte(`{"results": []}`), 0o644))

	err := runFetch(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	var queryErr *fetcher.QueryError
	assert.True(t, errors.As(err, &queryErr))

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, `{"results": []}`, string(data))
}

func TestRunFetch_MissingCredentials(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.TwitterAPISecretKey = ""

	err := runFetch(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TWITTER_API_SECRET_KEY")
}

func TestRunList_Empty(t *testing.T) {
	cfg := testConfig(t, "")

	assert.JSONEq(t, `[]`, string(listOutput(t, cfg, "")))
}

func TestRootCmd_UnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("LOG_LEVEL: chatty\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", dir, "list"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "tweetfeed dev")
}
