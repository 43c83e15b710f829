package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fileTokens keeps the bearer credential in a file readable only by its owner.
type fileTokens struct {
	path string
}

func (f *fileTokens) Token(_ context.Context) (string, bool) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(b))
	return token, token != ""
}

func (f *fileTokens) Clear(_ context.Context) {
	_ = os.Remove(f.path)
}

func (f *fileTokens) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(f.path, []byte(token+"\n"), 0o600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledgerctl-token"
	}
	return filepath.Join(home, ".config", "ledgerctl", "token")
}

// printNavigator tells the user where to go instead of redirecting.
type printNavigator struct {
	out io.Writer
}

func (n printNavigator) GoTo(_ context.Context, path string) {
	fmt.Fprintf(n.out, "Session expired (%s). Run `ledgerctl login` to sign in again.\n", path)
}
