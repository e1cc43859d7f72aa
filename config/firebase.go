package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

var ErrFirebaseNotConfigured = errors.New("firebase credentials are not configured")

// InitFirebase initializes the Firebase Admin SDK and returns its auth client
func InitFirebase(ctx context.Context, s *Settings) (*auth.Client, error) {
	var opt option.ClientOption
	switch {
	case s.FirebaseCredsBase64 != "":
		log.Info().Msg("using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(s.FirebaseCredsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case s.FirebaseCredsFile != "":
		log.Info().Str("file", s.FirebaseCredsFile).Msg("using Firebase credentials file")
		opt = option.WithCredentialsFile(s.FirebaseCredsFile)
	default:
		return nil, ErrFirebaseNotConfigured
	}

	var cfg *firebase.Config
	if s.FirebaseProjectID != "" {
		cfg = &firebase.Config{ProjectID: s.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth: %w", err)
	}
	return client, nil
}
