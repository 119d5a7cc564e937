// Command gentoken signs a JWT accepted by the API, for local testing.
// Usage: JWT_SECRET=... go run ./cmd/gentoken -id <uuid> -rol cobrador
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cobranzas/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	id := flag.String("id", "", "usuario id (uuid)")
	username := flag.String("username", "demo", "username claim")
	rol := flag.String("rol", "cobrador", "administrador | cobrador")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if _, err := uuid.Parse(*id); err != nil {
		log.Fatalf("invalid -id: %v", err)
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:   *id,
		Username: *username,
		Rol:      *rol,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(signed)
}
