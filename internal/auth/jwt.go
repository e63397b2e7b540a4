package auth

import (
	"fmt"
	"time"

	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

func Init(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is not configured")
	}
	jwtSecret = []byte(secret)
	return nil
}

func GenerateJWT(userID uint, email string, role models.UserRole) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour * 168).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	return token, nil
}
