package middleware

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
)

// BearerAuth protects API routes with OIDC ID tokens.
type BearerAuth struct {
	verifier *oidc.IDTokenVerifier
}

// NewBearerAuth discovers the issuer and verifies tokens issued for clientID.
func NewBearerAuth(ctx context.Context, issuer, clientID string) (*BearerAuth, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return NewBearerAuthWithVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

// NewBearerAuthWithVerifier creates the middleware around an existing verifier.
func NewBearerAuthWithVerifier(verifier *oidc.IDTokenVerifier) *BearerAuth {
	return &BearerAuth{verifier: verifier}
}

// RequireBearer rejects requests without a valid ID token and stores the
// token subject in the "subject" local.
func (m *BearerAuth) RequireBearer(c fiber.Ctx) error {
	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return unauthorized(c, "missing bearer token")
	}

	token, err := m.verifier.Verify(c.Context(), raw)
	if err != nil {
		log.Printf("Rejected bearer token from %s: %v", c.IP(), err)
		return unauthorized(c, "invalid bearer token")
	}

	c.Locals("subject", token.Subject)
	return c.Next()
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="flightdeals"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
