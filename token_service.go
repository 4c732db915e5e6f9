package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and locally validates bearer tokens. Local means every
// check that is a pure function of the token bytes plus configuration:
// signature, expiry, issuer, audience. The live revocation check lives in
// BearerValidator because it needs the credential store.
type TokenService interface {
	IssueToken(claims *JWTClaims) (string, time.Time, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	lifetime   time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// DefaultTokenLifetime is used when configuration does not provide one.
const DefaultTokenLifetime = 30 * time.Minute

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, lifetime time.Duration, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		lifetime:   lifetime,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// IssueToken stamps registered claims onto the given claim set and signs it.
// The caller assembles identity specific claims (subject, email, fingerprint,
// passthrough set); issuer, audience, issuance and expiry come from here.
func (ts *TokenServiceImpl) IssueToken(claims *JWTClaims) (string, time.Time, error) {
	if claims == nil {
		return "", time.Time{}, errors.New("claims must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	expiresAt := now.Add(ts.lifetime)

	claims.RegisteredClaims.Issuer = ts.issuer
	claims.RegisteredClaims.Audience = ts.audienceCopy()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := ts.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses a token string and runs the local validation stages in
// order: signature, expiry, issuer, audience. The first failing stage maps to
// its rejection error; the token never reaches the fingerprint stage.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, mapParseError(err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}

// Lifetime returns the configured token lifetime.
func (ts *TokenServiceImpl) Lifetime() time.Duration {
	return ts.lifetime
}

func (ts *TokenServiceImpl) audienceCopy() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	default:
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
}
