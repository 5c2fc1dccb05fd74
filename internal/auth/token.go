package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "trackstats"

// tokenTTL is how long a session token stays valid.
const tokenTTL = 24 * time.Hour

// AppClaims defines the custom claims we include in our JWT.
// We embed jwt.RegisteredClaims for the standard claims like 'ExpiresAt';
// UserID is our custom claim identifying the authenticated user.
type AppClaims struct {
	UserID int64 `json:"userID"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a new signed JWT string for a given user ID.
func GenerateJWT(userID int64, secret string) (string, error) {
	claims := &AppClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	// HS256 (HMAC using SHA-256) with our shared secret. The signature
	// ensures that the token cannot be tampered with by the client.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT parses and validates a JWT string: signature, expiry and
// issuer. If valid, it returns the custom claims.
func ValidateJWT(tokenString string, secret string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Security check: ensure the token's signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		// Covers malformed tokens, invalid signatures, jwt.ErrTokenExpired
		// and issuer mismatches.
		return nil, err
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
