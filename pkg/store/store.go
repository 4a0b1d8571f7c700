package store

import (
	"errors"

	"zerobuild/pkg/domain"
)

// ErrStaleProject is returned by stores with optimistic concurrency when a
// save carries a revision that no longer matches the stored record.
var ErrStaleProject = errors.New("project was modified by another writer")

// Store defines persistence operations for accounts and projects.
//
// Writes are upserts: SaveProject replaces the project with a matching ID or
// appends it, SaveAccount is a silent no-op when the email already exists.
// Reads against a missing or corrupt backing collection yield empty results,
// never an error to the caller.
type Store interface {
	// accounts
	SaveAccount(domain.Account) error
	GetAccountByEmail(email string) (domain.Account, bool, error)
	HasAccountEmail(email string) (bool, error)
	ListAccounts() ([]domain.Account, error)

	// projects
	SaveProject(domain.Project) error
	GetProject(id string) (domain.Project, bool, error)
	ListProjects() ([]domain.Project, error)
	ListProjectsByClient(clientID string) ([]domain.Project, error)
	DeleteProject(id string) error
	DeleteProjectsByClient(clientID string) error
	DeleteAllProjects() error
}

// SessionStore issues and revokes session tokens. A session is created at
// login and destroyed at logout; it never survives a restart of its backing
// revocation state.
type SessionStore interface {
	NewSession(email string, role domain.UserRole) (string, error)
	ResolveSession(token string) (email string, role domain.UserRole, ok bool, err error)
	DeleteSession(token string) error
}
