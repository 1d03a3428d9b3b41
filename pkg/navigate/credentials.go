package navigate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenCache holds a single bearer credential and refreshes it on demand.
// Callers racing on an expired slot share one login request.
type TokenCache struct {
	loginURL   string
	email      string
	password   string
	ttl        time.Duration
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	cred  *Credential
	group singleflight.Group
}

// NewTokenCache creates a cache that logs in against baseURL.
func NewTokenCache(baseURL, email, password string, ttl time.Duration, httpClient *http.Client) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenCache{
		loginURL:   strings.TrimRight(baseURL, "/") + "/api/users/login/access-token",
		email:      email,
		password:   password,
		ttl:        ttl,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (t *TokenCache) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// cached returns the stored credential if it has not reached its expiry.
func (t *TokenCache) cached() (Credential, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cred == nil || !t.now().Before(t.cred.ExpiresAt) {
		return Credential{}, false
	}
	return *t.cred, true
}

// Ensure returns a valid credential, logging in if the cached one is
// missing or expired.
func (t *TokenCache) Ensure(ctx context.Context) (Credential, error) {
	if cred, ok := t.cached(); ok {
		return cred, nil
	}

	v, err, _ := t.group.Do("login", func() (any, error) {
		// A racing caller may have refreshed the slot while we queued.
		if cred, ok := t.cached(); ok {
			return cred, nil
		}
		cred, err := t.login(ctx)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.cred = &cred
		t.mu.Unlock()
		return cred, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

// Invalidate drops the cached credential so the next Ensure logs in again.
func (t *TokenCache) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cred = nil
}

func (t *TokenCache) login(ctx context.Context) (Credential, error) {
	form := url.Values{}
	form.Set("username", t.email)
	form.Set("password", t.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("sending login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credential{}, &AuthenticationError{
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}

	var cred Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return Credential{}, fmt.Errorf("parsing login response: %w", err)
	}
	if cred.AccessToken == "" {
		return Credential{}, fmt.Errorf("login response has no access_token")
	}

	t.mu.Lock()
	cred.ExpiresAt = t.now().Add(t.ttl)
	t.mu.Unlock()
	return cred, nil
}

// maxErrorBodySize caps how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return fmt.Sprintf("(failed to read body: %v)", err)
	}
	return strings.TrimSpace(string(body))
}
