// Package auth stores the bearer token used by the remote transports.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/idilsaglam/tada/internal/config"
)

const credFileName = "credentials.json"

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

// Expired reports whether the token has a known expiry in the past.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && !now.Before(*ti.ExpiresAt)
}

func credFilePath() (string, error) {
	dir := config.ConfigDir()
	if dir == "" {
		return "", errors.New("cannot determine config directory")
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the token from TADA_TOKEN, else from the credentials
// file. It returns nil, nil when neither is set.
func GetToken() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv("TADA_TOKEN")); env != "" {
		ti := &TokenInfo{Token: stripBearer(env), Source: "env"}
		if c, err := Inspect(ti.Token); err == nil {
			ti.ExpiresAt = c.ExpiresAt
		}
		return ti, nil
	}

	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// SetToken saves token owner-only. A nil expires is taken from the token's
// exp claim when it is a JWT.
func SetToken(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if expires == nil {
		if c, err := Inspect(token); err == nil {
			expires = c.ExpiresAt
		}
	}
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// Claims is what can be read from a JWT without its signing key.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt *time.Time
	All       gojwt.MapClaims
}

// Keys returns the claim names in sorted order.
func (c Claims) Keys() []string {
	keys := make([]string, 0, len(c.All))
	for k := range c.All {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Inspect decodes a JWT without verifying it. Opaque tokens return an error.
func Inspect(token string) (Claims, error) {
	parser := gojwt.NewParser()
	claims := gojwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(stripBearer(token), claims); err != nil {
		return Claims{}, fmt.Errorf("not a jwt: %w", err)
	}
	c := Claims{All: claims}
	c.Subject, _ = claims.GetSubject()
	c.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
