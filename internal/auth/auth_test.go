package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef-test"

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator("owner", "s3cret", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

func TestNewAuthenticatorValidation(t *testing.T) {
	tests := []struct {
		name, user, pass, secret string
	}{
		{"missing user", "", "p", testSecret},
		{"missing password", "u", "", testSecret},
		{"short secret", "u", "p", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAuthenticator(tt.user, tt.pass, tt.secret, time.Hour); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuthenticator(t)

	if _, _, err := a.Login("owner", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login wrong password err = %v", err)
	}
	if _, _, err := a.Login("Owner", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login wrong user err = %v", err)
	}

	token, expires, err := a.Login("owner", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if d := time.Until(expires); d < 59*time.Minute || d > time.Hour+time.Minute {
		t.Fatalf("expiry %v not about one hour away", expires)
	}

	claims, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "owner" {
		t.Fatalf("Subject = %q", claims.Subject)
	}
}

func TestVerifyRejects(t *testing.T) {
	a := newTestAuthenticator(t)
	token, _, err := a.Login("owner", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other, err := NewAuthenticator("owner", "s3cret", "another-secret-value", time.Hour)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign secret err = %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := a.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"iss": issuer, "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := newTestAuthenticator(t).Verify(none); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none err = %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer   abc ", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, err := BearerToken(r)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestMiddleware(t *testing.T) {
	a := newTestAuthenticator(t)
	token, _, _ := a.Login("owner", "s3cret")

	var sawClaims bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	skip := func(r *http.Request) bool { return r.URL.Path == "/api/login" }
	onFail := func(w http.ResponseWriter, _ *http.Request, _ error) { w.WriteHeader(http.StatusUnauthorized) }
	h := Middleware(a, skip, onFail)(next)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
		claims bool
	}{
		{"no token", "/api/ledger", "", http.StatusUnauthorized, false},
		{"bad token", "/api/ledger", "Bearer nope", http.StatusUnauthorized, false},
		{"valid token", "/api/ledger", "Bearer " + token, http.StatusNoContent, true},
		{"skipped path", "/api/login", "", http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sawClaims = false
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if sawClaims != tt.claims {
				t.Fatalf("claims in context = %v, want %v", sawClaims, tt.claims)
			}
		})
	}
}
