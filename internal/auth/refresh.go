package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asleep-ai/skills/internal/sleephub"
)

// ErrCredentialsExpired indicates the refresh token itself was rejected or
// has lapsed. Recovery requires the user to re-run `insight setup`.
var ErrCredentialsExpired = errors.New("credentials expired; run 'insight setup' again")

// TokenSource mints a new token pair from a refresh token. *sleephub.Client
// satisfies it; tests substitute fakes.
type TokenSource interface {
	Refresh(ctx context.Context, refreshToken string) (*sleephub.TokenPair, error)
}

// Refresher wraps authenticated operations with the single-refresh retry
// policy: refresh proactively when the access token is known-stale, and on
// an auth failure refresh at most once before retrying the operation once.
//
// The state machine is Valid -> Refreshing -> Valid, or Refreshing ->
// Expired, which is terminal until the user runs setup. The one-refresh
// bound is deliberate: looping on a permanently invalid credential would
// turn a fatal condition into a hang.
type Refresher struct {
	store  *Store
	tokens TokenSource

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time

	// OnRefresh, when set, is invoked after each successful refresh has
	// been persisted.
	OnRefresh func(creds *Credentials)
}

// NewRefresher returns a Refresher over the given store and token source.
func NewRefresher(store *Store, tokens TokenSource) *Refresher {
	return &Refresher{store: store, tokens: tokens, Now: time.Now}
}

// Do loads credentials and runs op with them, applying the refresh policy.
// op receives the current credentials and may be invoked twice: once with
// the loaded (or proactively refreshed) credentials, and at most once more
// after a reactive refresh triggered by sleephub.ErrTokenInvalid.
func (r *Refresher) Do(ctx context.Context, op func(creds *Credentials) error) error {
	creds, err := r.store.Load()
	if err != nil {
		return err
	}

	refreshed := false
	if !creds.AccessValid(r.Now()) {
		if creds, err = r.refresh(ctx, creds); err != nil {
			return err
		}
		refreshed = true
	}

	err = op(creds)
	if err == nil || !errors.Is(err, sleephub.ErrTokenInvalid) || refreshed {
		return err
	}

	// The service rejected a token we thought was valid; refresh once and
	// retry once.
	if creds, err = r.refresh(ctx, creds); err != nil {
		return err
	}
	return op(creds)
}

// refresh exchanges the refresh token for a new pair and persists it.
func (r *Refresher) refresh(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if !creds.RefreshValid(r.Now()) {
		return nil, ErrCredentialsExpired
	}

	pair, err := r.tokens.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		// A rejection means the refresh token is spent; anything else
		// (network, 5xx) is surfaced as-is so an outage is not
		// misreported as an expired credential.
		var apiErr *sleephub.APIError
		if errors.Is(err, sleephub.ErrTokenInvalid) ||
			(errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500) {
			return nil, fmt.Errorf("%w: %v", ErrCredentialsExpired, err)
		}
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	next := &Credentials{
		UserID:           creds.UserID,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
	if next.RefreshToken == "" {
		// Some deployments rotate only the access token.
		next.RefreshToken = creds.RefreshToken
		next.RefreshExpiresAt = creds.RefreshExpiresAt
	}

	if err := r.store.Save(next); err != nil {
		return nil, fmt.Errorf("persisting refreshed credentials: %w", err)
	}

	if r.OnRefresh != nil {
		r.OnRefresh(next)
	}
	return next, nil
}
