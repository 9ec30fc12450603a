package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/google/uuid"
)

// DefaultStateTTL is how long a handshake state token is accepted
const DefaultStateTTL = 600 * time.Second

// HandshakeState is the payload carried through the provider redirect
type HandshakeState struct {
	TenantKey string `json:"tenantKey"`
	IssuedAt  int64  `json:"issuedAt"` // unix milliseconds
	Nonce     string `json:"nonce"`
}

// IssuedAtTime returns IssuedAt as a time.Time
func (s HandshakeState) IssuedAtTime() time.Time {
	return time.UnixMilli(s.IssuedAt)
}

// StateTokenCodec signs and verifies handshake state tokens.
// Token format: base64url(json payload) + "." + hex(hmac-sha256(secret, base64url part)).
type StateTokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateTokenCodec creates a codec. An empty secret is a configuration error.
func NewStateTokenCodec(secret string, ttl time.Duration) (*StateTokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: oauth state secret", integration.ErrConfigMissing)
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateTokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Encode returns a signed state token for tenantKey
func (c *StateTokenCodec) Encode(tenantKey string) (string, error) {
	payload, err := json.Marshal(HandshakeState{
		TenantKey: tenantKey,
		IssuedAt:  c.now().UnixMilli(),
		Nonce:     uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("encode state payload: %w", err)
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + c.sign(body), nil
}

// Decode verifies token and returns its payload.
// Every failure is reported as integration.ErrInvalidState.
func (c *StateTokenCodec) Decode(token string) (*HandshakeState, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" {
		return nil, fmt.Errorf("%w: missing separator", integration.ErrInvalidState)
	}

	expected := c.sign(body)
	if len(sig) != len(expected) {
		return nil, fmt.Errorf("%w: signature length mismatch", integration.ErrInvalidState)
	}
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return nil, fmt.Errorf("%w: signature mismatch", integration.ErrInvalidState)
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", integration.ErrInvalidState)
	}

	var state HandshakeState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: payload shape", integration.ErrInvalidState)
	}
	if state.TenantKey == "" {
		return nil, fmt.Errorf("%w: tenant key absent", integration.ErrInvalidState)
	}
	if c.now().UnixMilli()-state.IssuedAt > c.ttl.Milliseconds() {
		return nil, fmt.Errorf("%w: expired", integration.ErrInvalidState)
	}

	return &state, nil
}

func (c *StateTokenCodec) sign(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}
