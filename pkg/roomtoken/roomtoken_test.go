package roomtoken

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	issuer := NewIssuer("wss://media.example.com", "APIkey", "secret", time.Hour)
	fixed := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.Mint(Grant{
		Room:     "session-abc",
		Identity: "tutor-u1",
		Name:     "Ada",
		Metadata: `{"sessionId":"abc","role":"tutor"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "wss://media.example.com", token.URL)
	assert.Equal(t, fixed.Add(time.Hour), token.ExpiresAt)

	claims, err := issuer.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "tutor-u1", claims.Subject)
	assert.Equal(t, "APIkey", claims.Issuer)
	assert.Equal(t, "Ada", claims.Name)
	require.NotNil(t, claims.Video)
	assert.True(t, claims.Video.RoomJoin)
	assert.Equal(t, "session-abc", claims.Video.Room)
	require.NotNil(t, claims.Video.CanPublish)
	assert.True(t, *claims.Video.CanPublish)
}

func TestMintRequiresConfiguration(t *testing.T) {
	issuer := NewIssuer("", "", "", 0)
	_, err := issuer.Mint(Grant{Room: "r", Identity: "i"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a := NewIssuer("wss://x", "key", "secret-a", time.Hour)
	b := NewIssuer("wss://x", "key", "secret-b", time.Hour)

	token, err := a.Mint(Grant{Room: "r", Identity: "student-1"})
	require.NoError(t, err)

	_, err = b.Verify(token.Value)
	assert.Error(t, err)
}

func TestMintGrantTTLOverridesDefault(t *testing.T) {
	issuer := NewIssuer("wss://x", "key", "secret", time.Hour)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.Mint(Grant{Room: "r", Identity: "i", TTL: 10 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(10*time.Minute), token.ExpiresAt)
}

func TestMintWritesLiveKitClaimLayout(t *testing.T) {
	issuer := NewIssuer("wss://media.example.com", "APIkey", "secret", time.Hour)
	token, err := issuer.Mint(Grant{Room: "session-abc", Identity: "student-u2", Name: "Grace", Metadata: `{"role":"student"}`})
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "APIkey", payload["iss"])
	assert.Equal(t, "student-u2", payload["sub"])
	assert.Equal(t, "student-u2", payload["jti"])
	assert.Equal(t, "Grace", payload["name"])
	assert.Equal(t, `{"role":"student"}`, payload["metadata"])
	assert.Contains(t, payload, "nbf")
	assert.Contains(t, payload, "exp")

	video, ok := payload["video"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, "session-abc", video["room"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
	assert.Equal(t, true, video["canPublishData"])
}
