package gdrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

func writeClientSecrets(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	secrets := map[string]any{
		"installed": map[string]any{
			"client_id":     "client-id",
			"client_secret": "client-secret",
			"auth_uri":      "https://accounts.example.test/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	}
	data, err := json.Marshal(secrets)
	if err != nil {
		t.Fatalf("marshal secrets: %v", err)
	}
	path := filepath.Join(dir, "client_secrets.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}
	return path
}

func TestAuthenticateOAuthLoginCachesToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "auth-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	dir := t.TempDir()
	cfg := AuthConfig{
		Mode:              AuthOAuth,
		ClientSecretsFile: writeClientSecrets(t, dir, tokenSrv.URL),
		TokenFile:         filepath.Join(dir, "cache", "token.json"),
		CallbackAddr:      "127.0.0.1:0",
		Prompt: func(authURL string) {
			u, err := url.Parse(authURL)
			if err != nil {
				t.Errorf("parse auth url: %v", err)
				return
			}
			q := u.Query()
			callback := q.Get("redirect_uri") + "?state=" + url.QueryEscape(q.Get("state")) + "&code=auth-code"
			resp, err := http.Get(callback)
			if err != nil {
				t.Errorf("call redirect: %v", err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("callback status = %d", resp.StatusCode)
			}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts, err := Authenticate(ctx, cfg)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("expected one client option, got %d", len(opts))
	}

	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		t.Fatalf("token not cached: %v", err)
	}
	if tok.AccessToken != "access-1" || tok.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected cached token: %+v", tok)
	}

	// A second session reuses the cache without prompting.
	cfg.Prompt = func(string) { t.Errorf("cached token should skip the consent prompt") }
	if _, err := Authenticate(ctx, cfg); err != nil {
		t.Fatalf("Authenticate() with cache error = %v", err)
	}
}

func TestAuthenticateFailuresAreAuthenticationErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]AuthConfig{
		"missing client secrets":      {Mode: AuthOAuth, ClientSecretsFile: filepath.Join(dir, "missing.json")},
		"missing service credentials": {Mode: AuthServiceAccount, CredentialsFile: filepath.Join(dir, "sa.json")},
		"unknown mode":                {Mode: "kerberos"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Authenticate(context.Background(), cfg); !domain.IsKind(err, domain.ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got %v", err)
			}
		})
	}
}

func TestAuthenticateServiceAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	opts, err := Authenticate(context.Background(), AuthConfig{Mode: AuthServiceAccount, CredentialsFile: path})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected credentials and scope options, got %d", len(opts))
	}
}

func TestCallbackRouterRejectsStateMismatch(t *testing.T) {
	results := make(chan callbackResult, 1)
	rec := httptest.NewRecorder()
	callbackRouter("expected", results).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=x", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if res := <-results; res.err == nil {
		t.Fatalf("expected state mismatch error")
	}
}

func TestLoadTokenRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	data, _ := json.Marshal(&oauth2.Token{})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if _, err := loadToken(path); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
