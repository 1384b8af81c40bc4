// Package roomtoken mints access tokens understood by LiveKit-compatible media servers.
package roomtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when the issuer lacks credentials or a server URL.
var ErrNotConfigured = errors.New("room token provider is not configured")

const defaultTTL = time.Hour

// VideoGrant is the room permission block carried in the "video" claim.
type VideoGrant struct {
	RoomJoin       bool   `json:"roomJoin,omitempty"`
	Room           string `json:"room,omitempty"`
	CanPublish     *bool  `json:"canPublish,omitempty"`
	CanSubscribe   *bool  `json:"canSubscribe,omitempty"`
	CanPublishData *bool  `json:"canPublishData,omitempty"`
}

// Claims is the JWT payload of a room access token.
type Claims struct {
	Name     string      `json:"name,omitempty"`
	Metadata string      `json:"metadata,omitempty"`
	Video    *VideoGrant `json:"video,omitempty"`
	jwt.RegisteredClaims
}

// Grant describes the participant a token is minted for.
type Grant struct {
	Room     string
	Identity string
	Name     string
	Metadata string
	TTL      time.Duration
}

// Token is a signed room token with the server URL the client should dial.
type Token struct {
	Value     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs room tokens with an API key pair.
type Issuer struct {
	url       string
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

// NewIssuer constructs an issuer. Missing credentials are reported at mint time so
// the API can boot without a media server.
func NewIssuer(url, apiKey, apiSecret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{url: url, apiKey: apiKey, apiSecret: apiSecret, ttl: ttl, now: time.Now}
}

// Configured reports whether tokens can be minted.
func (i *Issuer) Configured() bool {
	return i != nil && i.url != "" && i.apiKey != "" && i.apiSecret != ""
}

// Mint signs a join-only token for the grant.
func (i *Issuer) Mint(grant Grant) (*Token, error) {
	if !i.Configured() {
		return nil, ErrNotConfigured
	}
	if grant.Room == "" || grant.Identity == "" {
		return nil, fmt.Errorf("room and identity are required")
	}
	ttl := grant.TTL
	if ttl <= 0 {
		ttl = i.ttl
	}

	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	allow := true
	claims := &Claims{
		Name:     grant.Name,
		Metadata: grant.Metadata,
		Video: &VideoGrant{
			RoomJoin:       true,
			Room:           grant.Room,
			CanPublish:     &allow,
			CanSubscribe:   &allow,
			CanPublishData: &allow,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   grant.Identity,
			ID:        grant.Identity,
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.apiSecret))
	if err != nil {
		return nil, fmt.Errorf("sign room token: %w", err)
	}
	return &Token{Value: signed, URL: i.url, ExpiresAt: expiresAt}, nil
}

// Verify parses a token minted by this issuer.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if !i.Configured() {
		return nil, ErrNotConfigured
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(i.apiSecret), nil
	}, jwt.WithIssuer(i.apiKey), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid room token claims")
	}
	return claims, nil
}
