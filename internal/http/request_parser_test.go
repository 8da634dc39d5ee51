package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"spesa/internal/core"
	"spesa/internal/services"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"name":"Milk"}`, nil},
		{"empty", ``, errBadRequest},
		{"truncated", `{"name":`, errBadRequest},
		{"trailing value", `{"name":"a"}{"name":"b"}`, errBadRequest},
		{"too large", `{"name":"` + strings.Repeat("x", maxJSONBody) + `"}`, errPayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst nameRequest
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == nil {
				if err != nil || dst.Name != "Milk" {
					t.Fatalf("err = %v, dst = %+v", err, dst)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		query   string
		want    core.Period
		wantErr bool
	}{
		{"", core.Last30Days, false},
		{"period=7d", core.Last7Days, false},
		{"period=ytd", core.YearToDate, false},
		{"period=all-time", core.AllTime, false},
		{"period=decade", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := parsePeriod(q)
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Fatalf("err = %v, want errBadRequest", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("parsePeriod = %q, %v, want %q", got, err, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 3, 4, 15, 0, 0, 0, time.Local)

	got, err := parseDay("  ", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("blank date = %v, %v", got, err)
	}
	got, err = parseDay("2025/02/01", now)
	if err != nil || core.DayKey(got) != "2025-02-01" {
		t.Fatalf("display date = %v, %v", got, err)
	}
	if _, err := parseDay("yesterday", now); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestRequiredQuery(t *testing.T) {
	q := url.Values{"name": {"  Rice\x00 "}, "blank": {"   "}}
	if got, err := requiredQuery(q, "name"); err != nil || got != "Rice" {
		t.Fatalf("requiredQuery(name) = %q, %v", got, err)
	}
	for _, key := range []string{"blank", "missing"} {
		if _, err := requiredQuery(q, key); !errors.Is(err, errBadRequest) {
			t.Fatalf("requiredQuery(%s) err = %v", key, err)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  plain  ":       "plain",
		"tab\tkept":       "tab\tkept",
		"bell\x07gone":    "bellgone",
		"multi\nline\r\n": "multi\nline",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errBadRequest, http.StatusBadRequest},
		{services.ErrListNotFound, http.StatusNotFound},
		{core.ErrInvalidFormat, http.StatusUnprocessableEntity},
		{core.ErrNegativePrice, http.StatusUnprocessableEntity},
		{services.ErrReceiptScan, http.StatusBadGateway},
		{services.ErrAIUnavailable, http.StatusServiceUnavailable},
		{errNoSession, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
