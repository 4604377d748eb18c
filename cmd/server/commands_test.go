package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/skincare-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears the variables the commands read and moves to an empty
// directory so no config.yaml is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SKINCARE_CONFIG_FILE",
		"SKINCARE_AUTH_JWT_SECRET",
		"SKINCARE_STORE_DRIVER",
		"SKINCARE_STORE_DATABASE_URL",
		"GEMINI_API_KEY",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mintToken(t *testing.T, subject string) string {
	t.Helper()
	svc, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	token, err := svc.GenerateToken(context.Background(), subject, time.Hour)
	require.NoError(t, err)
	return token
}

func TestTokenCommand(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SKINCARE_AUTH_JWT_SECRET", testSecret)

	out, err := execute(t, "token", "--subject", "mobile-app", "--ttl", "1h")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	svc, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "mobile-app", claims.Subject)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "token", "--subject", "mobile-app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth is disabled")
}

func TestMigrateCommandRequiresDatabaseURL(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestMigrateCommandRejectsUnknownAction(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "migrate", "sideways")
	assert.Error(t, err)
}

func TestServeFailsWithoutAPIKey(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
