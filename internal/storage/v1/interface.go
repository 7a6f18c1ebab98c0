package storage

import (
	"context"
	"github.com/bwownie/go-browniegate/internal/models/modelstorage"
)

type Register interface {
	AddNewUser(ctx context.Context, user modelstorage.UserStorageEntry) error
	GetUser(ctx context.Context, userID string) (modelstorage.UserStorageEntry, error)
}

type CodeIssuer interface {
	AddCode(ctx context.Context, code modelstorage.CodeStorageEntry) error
	ConsumeCode(ctx context.Context, code string) (string, error)
}

type CookieKeeper interface {
	AddCookieHash(ctx context.Context, userID string, hash string) error
	CheckCookieHash(ctx context.Context, userID string, hash string) (bool, error)
	RemoveCookieHash(ctx context.Context, userID string) error
}

type Storage interface {
	Register
	CodeIssuer
	CookieKeeper
}
