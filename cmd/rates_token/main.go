// Command rates_token issues a bearer token for the protected rates API routes.
//
//	rates_token --subject ops@example.com --ttl 24h
//
// The signing secret comes from --secret or JWT_SECRET (environment or .env).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const issuer = "rates_token"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()

	subject := pflag.StringP("subject", "s", "", "token subject, usually the operator's email")
	ttl := pflag.DurationP("ttl", "t", 24*time.Hour, "token lifetime")
	secret := pflag.String("secret", "", "signing secret (defaults to JWT_SECRET)")
	pflag.Parse()

	if *secret == "" {
		*secret = v.GetString("JWT_SECRET")
	}

	token, err := utils.GenerateJWT(*subject, *secret, *ttl, issuer)
	if err != nil {
		logger.Error("Failed to issue token", slog.String("error", err.Error()))
		pflag.Usage()
		os.Exit(2)
	}

	fmt.Println(token)
}
