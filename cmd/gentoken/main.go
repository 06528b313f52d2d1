// cmd/gentoken prints an operator access token signed with JWT_SECRET, for
// local use against the API. Usage: go run ./cmd/gentoken -role chef
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	role := flag.String("role", middleware.RoleManager, "admin | manager | chef")
	name := flag.String("name", "demo", "operator name recorded on price changes")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	now := time.Now()
	claims := middleware.OperatorClaims{
		OperatorID: uuid.NewString(),
		Name:       *name,
		Role:       *role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(signed)
}
