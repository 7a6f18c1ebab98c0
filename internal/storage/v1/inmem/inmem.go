// Package inmem implements in-memory storage for the reference gate API
// server. State lives for the lifetime of the process only.
package inmem

import (
	"context"
	"github.com/bwownie/go-browniegate/internal/models/modelstorage"
	storageErrors "github.com/bwownie/go-browniegate/internal/storage/v1/errors"
	"github.com/rs/zerolog"
	"sync"
)

type Storage struct {
	mu      sync.Mutex
	users   map[string]modelstorage.UserStorageEntry
	codes   map[string]modelstorage.CodeStorageEntry
	cookies map[string]string
	log     *zerolog.Logger
}

func InitStorage(log *zerolog.Logger) *Storage {
	st := Storage{
		users:   make(map[string]modelstorage.UserStorageEntry),
		codes:   make(map[string]modelstorage.CodeStorageEntry),
		cookies: make(map[string]string),
		log:     log,
	}
	log.Info().Msg("in-memory storage initialized")
	return &st
}

func (s *Storage) AddNewUser(_ context.Context, user modelstorage.UserStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; ok {
		return &storageErrors.AlreadyExistsError{ID: user.UserID}
	}
	s.users[user.UserID] = user
	return nil
}

func (s *Storage) GetUser(_ context.Context, userID string) (modelstorage.UserStorageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return modelstorage.UserStorageEntry{}, &storageErrors.NotFoundError{ID: userID}
	}
	return user, nil
}

func (s *Storage) AddCode(_ context.Context, code modelstorage.CodeStorageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.Code]; ok {
		return &storageErrors.AlreadyExistsError{ID: code.Code}
	}
	s.codes[code.Code] = code
	return nil
}

// ConsumeCode resolves a code to its user identifier and invalidates it;
// codes are single-use.
func (s *Storage) ConsumeCode(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[code]
	if !ok {
		return "", &storageErrors.NotFoundError{ID: code}
	}
	delete(s.codes, code)
	return entry.UserID, nil
}

func (s *Storage) AddCookieHash(_ context.Context, userID string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[userID] = hash
	return nil
}

func (s *Storage) CheckCookieHash(_ context.Context, userID string, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.cookies[userID]
	if !ok {
		return false, nil
	}
	return stored == hash, nil
}

func (s *Storage) RemoveCookieHash(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cookies[userID]; !ok {
		return &storageErrors.NotFoundError{ID: userID}
	}
	delete(s.cookies, userID)
	return nil
}
