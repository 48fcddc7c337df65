package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/model"
)

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver("secret")
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "wrong"); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if _, err := r.Resolve(ctx, ""); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Empty token must be rejected, got %v", err)
	}

	id, err := r.Resolve(ctx, "secret")
	if err != nil || id.UserID != DefaultUserID {
		t.Errorf("Expected default user, got %+v %v", id, err)
	}

	id, _ = r.Resolve(WithUserHint(ctx, "alice"), "secret")
	if id.UserID != "alice" {
		t.Errorf("Expected hinted user, got %s", id.UserID)
	}
}

func newTokeninfoServer(t *testing.T, calls *int32, status int, body string) *GoogleResolver {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/oauth2/v2/tokeninfo" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	r, err := NewGoogleResolver(context.Background(), GoogleOptions{
		ClientID: "app.apps.googleusercontent.com",
		Endpoint: server.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewGoogleResolver failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestGoogleResolverCachesIdentity(t *testing.T) {
	var calls int32
	r := newTokeninfoServer(t, &calls, http.StatusOK,
		`{"user_id":"1234","email":"a@b.com","expires_in":3599,"audience":"app.apps.googleusercontent.com"}`)

	for i := 0; i < 3; i++ {
		id, err := r.Resolve(context.Background(), "ya29.token")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if id.UserID != "1234" || id.Email != "a@b.com" {
			t.Errorf("Unexpected identity %+v", id)
		}
	}

	if calls != 1 {
		t.Errorf("Expected a single tokeninfo call, got %d", calls)
	}
}

func TestGoogleResolverRejectsInvalidToken(t *testing.T) {
	var calls int32
	r := newTokeninfoServer(t, &calls, http.StatusBadRequest,
		`{"error":"invalid_token","error_description":"Invalid Value"}`)

	if _, err := r.Resolve(context.Background(), "bad"); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestGoogleResolverRejectsOtherAudience(t *testing.T) {
	var calls int32
	r := newTokeninfoServer(t, &calls, http.StatusOK,
		`{"user_id":"1234","expires_in":3599,"audience":"someone-else"}`)

	if _, err := r.Resolve(context.Background(), "tok"); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestGoogleResolverEmptyToken(t *testing.T) {
	var calls int32
	r := newTokeninfoServer(t, &calls, http.StatusOK, `{}`)

	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if calls != 0 {
		t.Error("Empty token must not reach tokeninfo")
	}
}

func TestCacheTTL(t *testing.T) {
	if got := cacheTTL(60); got != time.Minute {
		t.Errorf("cacheTTL(60) = %v", got)
	}
	if got := cacheTTL(3600); got != MaxCacheTTL {
		t.Errorf("cacheTTL must be capped, got %v", got)
	}
}

func TestTokenKeyIsNotPlaintext(t *testing.T) {
	if k := tokenKey("secret"); k == "secret" || len(k) != 64 {
		t.Errorf("Unexpected key %q", k)
	}
}
