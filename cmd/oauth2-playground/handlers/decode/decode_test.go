package decode

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Header {"alg":"HS256"}, payload {"sub":"u1","exp":100}.
const expiredToken = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1MSIsImV4cCI6MTAwfQ.c2ln"

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/playground/decode", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDecodeExpiredToken(t *testing.T) {
	h := New().WithClock(func() time.Time { return time.Unix(200, 0) })

	w := post(t, h, `{"token":"`+expiredToken+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if resp.Claims["sub"] != "u1" {
		t.Errorf("sub = %v", resp.Claims["sub"])
	}
	if !resp.Expired {
		t.Error("token past exp must be flagged expired")
	}
	if resp.TimeRemaining != "expired" {
		t.Errorf("time_remaining = %q, want expired", resp.TimeRemaining)
	}
	if resp.Times.ExpiresAt == nil || resp.Times.ExpiresAt.Unix() != 100 {
		t.Errorf("exp = %v", resp.Times.ExpiresAt)
	}
}

func TestDecodeLiveToken(t *testing.T) {
	h := New().WithClock(func() time.Time { return time.Unix(50, 0) })

	w := post(t, h, `{"token":"`+expiredToken+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if resp.Expired {
		t.Error("token before exp must not be flagged expired")
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	w := post(t, New(), `{"token":"not-a-jwt"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if resp.Error != "invalid_token" {
		t.Errorf("error = %q, want invalid_token", resp.Error)
	}
}

func TestDecodeMissingToken(t *testing.T) {
	w := post(t, New(), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
