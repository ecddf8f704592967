package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir is the standard Docker Secrets mount point.
var SecretsDir = "/run/secrets"

// ReadSecret reads a secret from the Docker Secrets directory.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// EnvOrSecret returns the value already loaded from the environment, or falls
// back to the Docker secret with the given name.
func EnvOrSecret(envValue, secretName string) (string, error) {
	if v := strings.TrimSpace(envValue); v != "" {
		return v, nil
	}
	return ReadSecret(secretName)
}
