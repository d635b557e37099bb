// Package gcal exports schedule events to Google Calendar.
package gcal

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/nhle/cronograma/internal/credential"
)

// CallbackAddr is where the local OAuth redirect is received.
const CallbackAddr = "localhost:6789"

// ErrNoToken is returned when no Google token has been stored yet.
var ErrNoToken = errors.New("google calendar is not authorized; run `cronograma gcal auth`")

// TokenStore persists the serialized OAuth token.
type TokenStore interface {
	Lookup(key string) (string, error)
	Set(key, value string) error
}

// LoadConfig reads a client-secrets JSON file downloaded from the Google
// Cloud console. The redirect is always the local callback.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secrets %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secrets: %w", err)
	}
	cfg.RedirectURL = "http://" + CallbackAddr + "/oauth2callback"
	return cfg, nil
}

// LoadToken returns the stored token, or ErrNoToken.
func LoadToken(ts TokenStore) (*oauth2.Token, error) {
	raw, err := ts.Lookup(credential.KeyGoogleToken)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoToken
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal([]byte(raw), tok); err != nil {
		return nil, fmt.Errorf("decoding google token: %w", err)
	}
	return tok, nil
}

// SaveToken stores tok as JSON.
func SaveToken(ts TokenStore, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding google token: %w", err)
	}
	return ts.Set(credential.KeyGoogleToken, string(b))
}

// Authorize runs the authorization-code flow: it prints the consent URL to
// out, waits for the browser redirect on CallbackAddr and exchanges the code.
func Authorize(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", CallbackAddr, err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "invalid state", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect")
				return
			}
			fmt.Fprintln(w, "Autorização concluída. Você pode fechar esta janela.")
			codeCh <- code
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer server.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(out, "Abra o endereço abaixo no navegador para autorizar o Google Agenda:\n%s\n", authURL)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// savingTokenSource stores the token again whenever it is refreshed.
type savingTokenSource struct {
	src   oauth2.TokenSource
	store TokenStore

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := SaveToken(s.store, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// NewService builds an authorized Calendar client from the stored token.
func NewService(ctx context.Context, cfg *oauth2.Config, ts TokenStore) (*calendar.Service, error) {
	tok, err := LoadToken(ts)
	if err != nil {
		return nil, err
	}
	src := &savingTokenSource{
		src:   oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)),
		store: ts,
		last:  tok.AccessToken,
	}
	srv, err := calendar.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}
