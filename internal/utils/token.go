package utils // package utils provides helpers for session tokens and reset codes

import (
	"crypto/rand"  // secure random number generation for reset codes
	"errors"       // sentinel error values
	"fmt"          // formatting the numeric reset code
	"math/big"     // arbitrary-precision bound for crypto/rand
	"time"         // expiry calculations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseSessionToken for any token that
// cannot be trusted: bad signature, structural garbage, or past its
// embedded expiry. Callers get no finer detail on purpose.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the decoded payload of a session token. It carries
// just enough identity for role-scoped dispatch without a database
// round trip.
type SessionClaims struct {
	UserID uint64 // subject, the users.id of the authenticated account
	Email  string
	Role   string
}

// SessionToken bundles a signed session JWT with its expiry so the
// handler can align the cookie Max-Age with the token lifetime.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a user session.
// The JWT embeds subject (sub), email, role, expiration (exp) and
// issued at (iat). The ttl is added to the current UTC time.
func NewSessionToken(secret string, userID uint64, email, role string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry and extracts the
// session claims. There is no grace period: a token one second past
// exp is as invalid as a forged one.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return SessionClaims{UserID: uint64(sub), Email: email, Role: role}, nil
}

// NewResetCode returns a random six-digit numeric code for the
// password-reset flow. Codes are generated with crypto/rand, hashed
// before storage and valid for a short window only.
func NewResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
