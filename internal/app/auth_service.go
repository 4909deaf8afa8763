package app

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"communerag/internal/model"
	"communerag/internal/pkg/jwtutil"
)

// ClientStore persists API clients.
type ClientStore interface {
	Create(client *model.APIClient) error
	GetByName(name string) (*model.APIClient, error)
	Count() (int64, error)
}

// AuthService exchanges API client credentials for short-lived tokens.
type AuthService struct {
	clients       ClientStore
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(clients ClientStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		clients:       clients,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// IssueToken checks the client's key against its stored hash and returns a
// signed token. Unknown client and wrong key are not distinguished.
func (s *AuthService) IssueToken(name, key string) (string, error) {
	client, err := s.clients.GetByName(name)
	if err != nil {
		return "", fmt.Errorf("lookup client failed: %w", err)
	}
	if client == nil {
		return "", ErrInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(client.KeyHash), []byte(key)) != nil {
		return "", ErrInvalidCredential
	}
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, client.ID, client.Name)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return token, nil
}

// EnsureBootstrapClient seeds the first API client so a fresh deployment
// can authenticate. It does nothing once any client exists.
func (s *AuthService) EnsureBootstrapClient(name, key string) error {
	if name == "" || key == "" {
		return nil
	}
	count, err := s.clients.Count()
	if err != nil {
		return fmt.Errorf("count clients failed: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap key failed: %w", err)
	}
	if err := s.clients.Create(&model.APIClient{Name: name, KeyHash: string(hash)}); err != nil {
		return fmt.Errorf("create bootstrap client failed: %w", err)
	}
	log.Printf("INFO: bootstrap api client %q created", name)
	return nil
}
