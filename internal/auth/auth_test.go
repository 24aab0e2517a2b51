package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())

		var access string
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			assert.Equal(t, "abc", r.Form.Get("code"))
			assert.NotEmpty(t, r.Form.Get("code_verifier"), "expected PKCE verifier")
			access = "fresh-access"
		case "refresh_token":
			assert.Equal(t, "r1", r.Form.Get("refresh_token"))
			access = "refreshed-access"
		default:
			http.Error(w, "unsupported grant", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  access,
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "r1",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeSecret(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, shared.DefaultClientSecret)
	secret := fmt.Sprintf(`{"installed":{"client_id":"client.apps.googleusercontent.com","client_secret":"s3cret",`+
		`"auth_uri":"https://accounts.example.com/o/oauth2/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(secret), 0600))
	return path
}

func newFlow(dir string) *InstalledFlow {
	return &InstalledFlow{
		SecretPath: filepath.Join(dir, shared.DefaultClientSecret),
		CachePath:  filepath.Join(dir, shared.DefaultTokenCache),
		Timeout:    2 * time.Second,
		Output:     io.Discard,
		Logger:     log.New(io.Discard),
	}
}

func TestTokenCache(t *testing.T) {
	t.Run("missing cache", func(t *testing.T) {
		_, err := LoadToken(filepath.Join(t.TempDir(), "none.json"))
		assert.ErrorIs(t, err, shared.ErrNoCachedToken)
	})

	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tokencache.json")
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)

		require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		tok, err := LoadToken(path)
		require.NoError(t, err)
		assert.Equal(t, "a", tok.AccessToken)
		assert.Equal(t, "r", tok.RefreshToken)
		assert.True(t, tok.Expiry.Equal(expiry))
	})

	t.Run("corrupt cache", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokencache.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

		_, err := LoadToken(path)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNoCachedToken)
	})
}

func TestInstalledFlow(t *testing.T) {
	t.Run("missing secret is fatal", func(t *testing.T) {
		flow := newFlow(t.TempDir())

		_, err := flow.TokenSource(context.Background())
		assert.ErrorIs(t, err, shared.ErrMissingSecret)
	})

	t.Run("malformed secret", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, shared.DefaultClientSecret), []byte("{}"), 0600))

		_, err := newFlow(dir).OAuthConfig()
		assert.ErrorIs(t, err, shared.ErrAuthFailed)
	})

	t.Run("requests read-only scope by default", func(t *testing.T) {
		dir := t.TempDir()
		writeSecret(t, dir, "http://127.0.0.1/token")

		conf, err := newFlow(dir).OAuthConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{YouTubeReadOnlyScope}, conf.Scopes)
	})

	t.Run("valid cached token skips browser", func(t *testing.T) {
		dir := t.TempDir()
		writeSecret(t, dir, "http://127.0.0.1/token")

		flow := newFlow(dir)
		require.NoError(t, SaveToken(flow.CachePath, &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}))
		flow.OpenURL = func(string) error {
			t.Error("browser must not be opened")
			return nil
		}

		ts, err := flow.TokenSource(context.Background())
		require.NoError(t, err)

		tok, err := ts.Token()
		require.NoError(t, err)
		assert.Equal(t, "cached", tok.AccessToken)
	})

	t.Run("expired cached token is refreshed and persisted", func(t *testing.T) {
		dir := t.TempDir()
		tokenSrv := newTokenServer(t)
		writeSecret(t, dir, tokenSrv.URL)

		flow := newFlow(dir)
		require.NoError(t, SaveToken(flow.CachePath, &oauth2.Token{
			AccessToken:  "old",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Hour),
		}))

		ts, err := flow.TokenSource(context.Background())
		require.NoError(t, err)

		tok, err := ts.Token()
		require.NoError(t, err)
		assert.Equal(t, "refreshed-access", tok.AccessToken)

		cached, err := flow.CachedToken()
		require.NoError(t, err)
		assert.Equal(t, "refreshed-access", cached.AccessToken)
	})

	t.Run("interactive flow caches the token", func(t *testing.T) {
		dir := t.TempDir()
		tokenSrv := newTokenServer(t)
		writeSecret(t, dir, tokenSrv.URL)

		flow := newFlow(dir)
		flow.OpenURL = func(authURL string) error {
			u, err := url.Parse(authURL)
			require.NoError(t, err)

			q := u.Query()
			assert.Equal(t, YouTubeReadOnlyScope, q.Get("scope"))
			assert.Equal(t, "offline", q.Get("access_type"))
			assert.Equal(t, "S256", q.Get("code_challenge_method"))

			go func() {
				resp, err := http.Get(q.Get("redirect_uri") + "?state=" + url.QueryEscape(q.Get("state")) + "&code=abc")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		ts, err := flow.TokenSource(context.Background())
		require.NoError(t, err)

		tok, err := ts.Token()
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", tok.AccessToken)

		cached, err := flow.CachedToken()
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", cached.AccessToken)
		assert.Equal(t, "r1", cached.RefreshToken)
	})

	t.Run("unfinished browser flow times out", func(t *testing.T) {
		dir := t.TempDir()
		writeSecret(t, dir, "http://127.0.0.1/token")

		flow := newFlow(dir)
		flow.Timeout = 50 * time.Millisecond

		_, err := flow.TokenSource(context.Background())
		assert.ErrorIs(t, err, shared.ErrTimeout)

		_, err = flow.CachedToken()
		assert.ErrorIs(t, err, shared.ErrNoCachedToken, "nothing must be cached on failure")
	})

	t.Run("expired token without refresh token reauthorizes", func(t *testing.T) {
		dir := t.TempDir()
		writeSecret(t, dir, "http://127.0.0.1/token")

		flow := newFlow(dir)
		flow.Timeout = 50 * time.Millisecond
		require.NoError(t, SaveToken(flow.CachePath, &oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Minute)}))

		opened := false
		flow.OpenURL = func(string) error {
			opened = true
			return nil
		}

		_, err := flow.TokenSource(context.Background())
		assert.ErrorIs(t, err, shared.ErrTimeout)
		assert.True(t, opened, "expected the browser flow to start")
	})
}

func TestGetToken(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "http://127.0.0.1/token")
	require.NoError(t, SaveToken(filepath.Join(dir, shared.DefaultTokenCache), &oauth2.Token{
		AccessToken: "cached",
		Expiry:      time.Now().Add(time.Hour),
	}))

	tok, err := GetToken(context.Background(), dir, YouTubeReadOnlyScope)
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
}
