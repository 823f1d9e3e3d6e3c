package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// Claims captures the displayable metadata of an access token. The struct is
// populated from the token payload without signature verification: the remote
// service is the sole authority on token validity, so these values are for
// display only and never feed an authentication decision.
type Claims struct {
	Sub      *string        // Subject - the user's unique ID
	Iss      *string        // Issuer of the token
	Aud      []string       // Audience(s) the token was issued for
	IssuedAt *time.Time     // When the token was issued
	Expiry   *time.Time     // When the token expires
	TokenID  *string        // jti claim, if present
	Raw      map[string]any // All claims as decoded
}

// Inspect decodes a JWT access token without verifying its signature and
// returns its claims. Tokens that are not structurally valid JWTs return an
// error.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[Inspect] token is empty")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[Inspect] failed to parse token")
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[Inspect] unexpected claims format")
	}

	claims := &Claims{Raw: mapClaims}

	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Sub = utils.Ptr(sub)
	}
	if iss, ok := mapClaims["iss"].(string); ok {
		claims.Iss = utils.Ptr(iss)
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.TokenID = utils.Ptr(jti)
	}

	switch aud := mapClaims["aud"].(type) {
	case string:
		claims.Aud = []string{aud}
	case []any:
		claims.Aud = utils.ToStringSlice(aud)
	}

	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.Expiry = utils.Ptr(time.Unix(int64(exp), 0))
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = utils.Ptr(time.Unix(int64(iat), 0))
	}

	return claims, nil
}

// Expired reports whether the token carries an exp claim in the past.
// Informational only: the client still treats the server's 401 as the sole
// expiry signal.
func (c *Claims) Expired(now time.Time) bool {
	if c.Expiry == nil {
		return false
	}
	return c.Expiry.Before(now)
}
