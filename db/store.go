package db

import "context"

// Store is the relational store behind the developer gateway.
// Lookups of unknown ids return ErrNotFound.
type Store interface {
	SaveDeveloper(ctx context.Context, developer Developer) error
	FindDevelopers(ctx context.Context) ([]Developer, error)
	GetDeveloperById(ctx context.Context, id string) (*Developer, error)
	UpdateDeveloper(ctx context.Context, developer Developer) error
	DeleteDeveloper(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
