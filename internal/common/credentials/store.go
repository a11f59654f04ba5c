// Package credentials resolves the QuickEnrich API key for a named credential.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "quickenrich-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// CredentialType is the name under which the API key credential is registered.
const CredentialType = "quickEnrichApi"

// ErrCredentialNotFound is returned when a credential has no usable apiKey.
var ErrCredentialNotFound = errors.New("credential not found")

// Store looks up the apiKey secret of a named credential.
type Store interface {
	APIKey(ctx context.Context, name string) (string, error)
}

// NotFoundError names the credential that could not be resolved.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credential %q: apiKey is missing", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrCredentialNotFound }

func (e *NotFoundError) StandardError() *apperrors.StandardError {
	return apperrors.NewCredentialsNotFoundError(e.Name)
}

// StaticStore serves a single key from configuration for every credential name.
type StaticStore struct {
	key string
}

func NewStaticStore(apiKey string) *StaticStore {
	return &StaticStore{key: strings.TrimSpace(apiKey)}
}

func (s *StaticStore) APIKey(_ context.Context, name string) (string, error) {
	if s.key == "" {
		return "", &NotFoundError{Name: name}
	}
	return s.key, nil
}

// RedisStore reads hash "credentials:<name>" field "apiKey".
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "credentials:"}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) APIKey(ctx context.Context, name string) (string, error) {
	val, err := s.client.HGet(ctx, s.key(name), "apiKey").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", &NotFoundError{Name: name}
		}
		return "", &StoreError{Name: name, Err: err}
	}
	if strings.TrimSpace(val) == "" {
		return "", &NotFoundError{Name: name}
	}
	return strings.TrimSpace(val), nil
}

// Put registers or replaces the apiKey for name.
func (s *RedisStore) Put(ctx context.Context, name, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("apiKey is required")
	}
	return s.client.HSet(ctx, s.key(name), "apiKey", apiKey).Err()
}

// StoreError wraps a backend failure while reading a credential.
type StoreError struct {
	Name string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("credential %q: %v", e.Name, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) StandardError() *apperrors.StandardError {
	return apperrors.NewCredentialStoreError(e)
}

// Chain asks each store in order and returns the first key found. Backend errors
// stop the lookup.
type Chain []Store

func (c Chain) APIKey(ctx context.Context, name string) (string, error) {
	for _, s := range c {
		key, err := s.APIKey(ctx, name)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrCredentialNotFound) {
			return "", err
		}
	}
	return "", &NotFoundError{Name: name}
}
