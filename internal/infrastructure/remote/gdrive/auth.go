package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

type AuthMode string

const (
	AuthOAuth          AuthMode = "oauth"
	AuthServiceAccount AuthMode = "service-account"

	DefaultCallbackAddr = "127.0.0.1:8085"
	callbackPath        = "/callback"
)

type AuthConfig struct {
	Mode              AuthMode
	ClientSecretsFile string
	TokenFile         string
	CredentialsFile   string
	CallbackAddr      string
	// Prompt shows the consent URL to the user. Defaults to logging it.
	Prompt func(authURL string)
}

// Authenticate establishes the Drive session once and returns the client
// options that carry it. Every failure is ErrAuthentication.
func Authenticate(ctx context.Context, cfg AuthConfig) ([]option.ClientOption, error) {
	switch cfg.Mode {
	case AuthServiceAccount:
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, domain.WrapError(domain.ErrAuthentication, "read service account credentials", err)
		}
		return []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(drive.DriveFileScope),
		}, nil
	case AuthOAuth, "":
		ts, err := oauthTokenSource(ctx, cfg)
		if err != nil {
			return nil, domain.WrapError(domain.ErrAuthentication, "oauth login", err)
		}
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	default:
		return nil, domain.WrapError(domain.ErrAuthentication, "authenticate", fmt.Errorf("unknown auth mode %q", cfg.Mode))
	}
}

func oauthTokenSource(ctx context.Context, cfg AuthConfig) (oauth2.TokenSource, error) {
	secrets, err := os.ReadFile(cfg.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(secrets, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}

	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		slog.Info("oauth_token_cache_miss", "path", cfg.TokenFile, "error", err)
		tok, err = login(ctx, conf, cfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, tok); err != nil {
			slog.Warn("oauth_token_save_failed", "path", cfg.TokenFile, "error", err)
		}
	}
	// The session outlives ctx, which may be a login deadline.
	return conf.TokenSource(context.WithoutCancel(ctx), tok), nil
}

type callbackResult struct {
	code string
	err  error
}

// login runs the installed-app flow: a one-shot local server receives the
// authorization code and exchanges it for a token.
func login(ctx context.Context, conf *oauth2.Config, cfg AuthConfig) (*oauth2.Token, error) {
	addr := cfg.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}

	local := *conf
	local.RedirectURL = "http://" + ln.Addr().String() + callbackPath
	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	srv := &http.Server{
		Handler:           callbackRouter(state, results),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("oauth_callback_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := local.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if cfg.Prompt != nil {
		cfg.Prompt(authURL)
	} else {
		slog.Info("oauth_consent_required", "url", authURL)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := local.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

func callbackRouter(state string, results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("oauth state mismatch")
		case q.Get("code") == "":
			res.err = errors.New("missing authorization code")
		default:
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
			http.Error(w, "login already handled", http.StatusConflict)
			return
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("Authentication complete. You can close this window.\n"))
	})
	return r
}

func loadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, errors.New("no token file configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("token file holds no credentials")
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
