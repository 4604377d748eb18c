package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/skincare-api/internal/auth"
	"github.com/phrazzld/skincare-api/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Client identifier stored in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for API clients",
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	authCfg, err := config.LoadAuth()
	if err != nil {
		return fmt.Errorf("failed to load auth configuration: %w", err)
	}
	if !authCfg.Enabled() {
		return errors.New("auth is disabled: set " + config.EnvPrefix + "_AUTH_JWT_SECRET")
	}

	tokens, err := auth.NewTokenService(authCfg.JWTSecret)
	if err != nil {
		return err
	}

	token, err := tokens.GenerateToken(cmd.Context(), tokenSubject, tokenTTL)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
