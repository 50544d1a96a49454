package token

import "context"

// Pair holds the two opaque bearer credentials issued by the backend.
// The store never inspects their contents.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Empty reports whether neither token is present
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Store persists one browser's token pair. It is the only owner of the tokens;
// other components go through it rather than holding copies they mutate.
type Store interface {
	// Save replaces both tokens.
	Save(ctx context.Context, pair Pair) error
	// Read returns the stored pair. ok is false when neither token is present.
	Read(ctx context.Context) (pair Pair, ok bool, err error)
	// SetAccessToken replaces only the access token, keeping the refresh token.
	SetAccessToken(ctx context.Context, accessToken string) error
	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Keyed hands out a Store per browser key
type Keyed interface {
	For(key string) Store
}
