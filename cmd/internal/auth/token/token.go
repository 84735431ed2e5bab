package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"commerce/cmd/security/secrets"
)

// TTL is the fixed validity window of every issued token.
const TTL = time.Hour

// ErrInvalidToken is the single error surfaced by Decode. Bad signature,
// malformed structure, and out-of-window timestamps are deliberately
// indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed token body: who the token is for (sub), who minted it
// (iss), the role carried for downstream access control, and the validity
// window.
type Claims struct {
	Sub  uuid.UUID `json:"sub"`
	Iss  uuid.UUID `json:"iss"`
	Role uuid.UUID `json:"role"`
	Iat  int64     `json:"iat"`
	Nbf  int64     `json:"nbf"`
	Exp  int64     `json:"exp"`
}

// NewClaims mints claims valid from now until now+TTL.
func NewClaims(subject, issuer, role uuid.UUID, now time.Time) Claims {
	iat := now.Unix()
	return Claims{
		Sub:  subject,
		Iss:  issuer,
		Role: role,
		Iat:  iat,
		Nbf:  iat,
		Exp:  iat + int64(TTL/time.Second),
	}
}

// jwt.Claims implementation. Registered-claim timestamp validation is done by
// hand in Decode so that nbf/exp failures collapse into ErrInvalidToken.

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Nbf, 0)), nil
}

func (c Claims) GetIssuer() (string, error)  { return c.Iss.String(), nil }
func (c Claims) GetSubject() (string, error) { return c.Sub.String(), nil }

func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Encode signs claims into a compact token using the base64-encoded secret.
func Encode(secret string, claims Claims) (string, error) {
	key, err := secrets.DecodeSigningKey(secret)
	if err != nil {
		return "", err
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(key)
}

// Decode verifies the signature with the same secret, then checks
// nbf <= now <= exp. Every failure mode yields ErrInvalidToken and no partial
// claims.
func Decode(secret, tokenString string) (Claims, error) {
	key, err := secrets.DecodeSigningKey(secret)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	now := time.Now().Unix()
	if now < claims.Nbf || now > claims.Exp {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
