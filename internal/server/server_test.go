package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklift/internal/shared"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (f *fakeExchanger) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.codes = append(f.codes, code)
	return f.token, f.err
}

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})
}

func TestLogging(t *testing.T) {
	var buf strings.Builder
	logger := shared.NewLogger(&buf)
	logger.SetLevel(log.DebugLevel)

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

	out := buf.String()
	if !strings.Contains(out, "418") || !strings.Contains(out, "/callback") {
		t.Errorf("expected status and path in log, got %q", out)
	}
	if strings.Contains(out, "secret") {
		t.Error("query string should not be logged")
	}
}

func TestOAuthHandler(t *testing.T) {
	token := &oauth2.Token{AccessToken: "access"}

	tests := []struct {
		name       string
		query      string
		exchanger  *fakeExchanger
		wantStatus int
		wantErr    bool
	}{
		{"success", "state=s1&code=abc", &fakeExchanger{token: token}, http.StatusOK, false},
		{"state mismatch", "state=other&code=abc", &fakeExchanger{token: token}, http.StatusBadRequest, true},
		{"denied", "state=s1&error=access_denied", &fakeExchanger{}, http.StatusBadRequest, true},
		{"exchange failure", "state=s1&code=abc", &fakeExchanger{err: errors.New("bad code")}, http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOAuthHandler(tt.exchanger, "s1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			result := <-h.Result()
			if (result.Error() != nil) != tt.wantErr {
				t.Errorf("unexpected result error %v", result.Error())
			}
			if !tt.wantErr && result.Token.AccessToken != "access" {
				t.Errorf("unexpected token %+v", result.Token)
			}
		})
	}

	t.Run("second callback rejected", func(t *testing.T) {
		ex := &fakeExchanger{token: token}
		h := NewOAuthHandler(ex, "s1")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=a", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=b", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
		if len(ex.codes) != 1 {
			t.Errorf("expected one exchange, got %v", ex.codes)
		}
	})
}

func TestAwaitCallback(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	listen := func(t *testing.T) net.Listener {
		t.Helper()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		return ln
	}

	t.Run("returns token from callback", func(t *testing.T) {
		ln := listen(t)
		h := NewOAuthHandler(&fakeExchanger{token: &oauth2.Token{AccessToken: "access"}}, "s1")
		url := fmt.Sprintf("http://%s/callback?state=s1&code=abc", ln.Addr())

		go func() {
			if resp, err := http.Get(url); err == nil {
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		token, err := AwaitCallback(ctx, ln, h, logger)
		if err != nil {
			t.Fatalf("AwaitCallback failed: %v", err)
		}
		if token.AccessToken != "access" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("callback error", func(t *testing.T) {
		ln := listen(t)
		h := NewOAuthHandler(&fakeExchanger{}, "s1")
		url := fmt.Sprintf("http://%s/callback?state=wrong", ln.Addr())

		go func() {
			if resp, err := http.Get(url); err == nil {
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := AwaitCallback(ctx, ln, h, logger); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		ln := listen(t)
		h := NewOAuthHandler(&fakeExchanger{}, "s1")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := AwaitCallback(ctx, ln, h, logger); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}
