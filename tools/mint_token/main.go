// Command mint_token signs a development bearer token for manual API
// testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	var (
		secret  = flag.String("secret", envDefault("AUTH_JWT_SECRET", os.Getenv("JWT_SECRET")), "signing secret")
		subject = flag.String("sub", "dev-user", "token subject (user id)")
		role    = flag.String("role", "customer", "role claim: customer, staff or admin")
		ttl     = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()
	if *secret == "" {
		log.Fatal("AUTH_JWT_SECRET or JWT_SECRET is required")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  *subject,
		"role": *role,
		"iat":  now.Unix(),
		"exp":  now.Add(*ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
