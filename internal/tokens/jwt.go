// Package tokens issues and verifies the HS256 tokens used for local sessions
// and federated identity credentials.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the identity fields the client
// needs to build a user record.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// GenerateToken signs a token for userID valid for validityDuration.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return Sign(Claims{UserID: userID}, secretKey, validityDuration)
}

// Sign fills the time-based registered claims and signs c with HS256.
func Sign(c Claims, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	if c.Subject == "" {
		c.Subject = c.UserID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse verifies tokenString and returns its claims. Expired tokens yield
// common.ErrTokenExpired, every other failure common.ErrInvalidToken.
func Parse(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := Parse(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
