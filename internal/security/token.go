package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shresth17/SahayAI/internal/models"
)

// DefaultSessionTTL is the fixed lifetime of a session token.
const DefaultSessionTTL = 2 * time.Hour

// UserClaim is the snapshot of the user record embedded in a session
// token at issuance. Profile changes made afterwards are not reflected
// until the token is reissued.
type UserClaim struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Role     string `json:"role"`
}

type SessionClaims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// VerifyFailure tags why a token did not verify. Callers collapse every
// failure into "unauthenticated"; the tag exists for logging.
type VerifyFailure int

const (
	VerifyOK VerifyFailure = iota
	VerifyMissing
	VerifyMalformed
	VerifyBadSignature
	VerifyExpired
)

func (f VerifyFailure) String() string {
	switch f {
	case VerifyOK:
		return "ok"
	case VerifyMissing:
		return "missing"
	case VerifyMalformed:
		return "malformed"
	case VerifyBadSignature:
		return "bad_signature"
	case VerifyExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func NewUserClaim(user models.User) UserClaim {
	return UserClaim{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Gender:   user.Gender,
		Phone:    user.Phone,
		Address:  user.Address,
		City:     user.City,
		State:    user.State,
		District: user.District,
		Pincode:  user.Pincode,
		Role:     string(user.Role),
	}
}

func IssueSessionToken(secret string, user models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now()
	claims := SessionClaims{
		User: NewUserClaim(user),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// VerifySessionToken validates signature and expiry and reconstructs the
// identity claim. On any failure the claims are nil and the tag says why.
// It never panics on malformed input.
func VerifySessionToken(tokenStr string, secret string) (*SessionClaims, VerifyFailure) {
	if tokenStr == "" {
		return nil, VerifyMissing
	}

	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, VerifyExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, VerifyBadSignature
		default:
			return nil, VerifyMalformed
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, VerifyMalformed
	}
	return claims, VerifyOK
}
