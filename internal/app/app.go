package app

import (
	"fmt"
	"strings"
	"time"

	"zerobuild/pkg/ai"
	"zerobuild/pkg/domain"
	"zerobuild/pkg/storage"
	"zerobuild/pkg/store"
)

// Built-in credential pairs. Demo-grade by design: passwords are compared in
// plaintext and the pairs below are published in the client UI.
const (
	DemoClientEmail    = "client@zerobuild.app"
	DemoClientPassword = "client123"

	AdminEmail    = "admin@zerobuild.app"
	AdminPassword = "admin123"
)

const defaultExportTTL = 15 * time.Minute

// Identity is the resolved session context: who is calling and with which
// role. It exists only between login and logout.
type Identity struct {
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// Config wires required dependencies for the core application.
type Config struct {
	Store    store.Store
	Sessions store.SessionStore
	Renderer ai.Renderer

	// Objects is optional; when nil, visual export reports
	// ErrExportUnavailable.
	Objects   storage.ObjectStore
	ExportTTL time.Duration
}

// App is the core application service wiring storage, sessions and the
// visualization engine together.
type App struct {
	store     store.Store
	sessions  store.SessionStore
	renderer  ai.Renderer
	objects   storage.ObjectStore
	exportTTL time.Duration
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	exportTTL := cfg.ExportTTL
	if exportTTL <= 0 {
		exportTTL = defaultExportTTL
	}
	return &App{
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		renderer:  cfg.Renderer,
		objects:   cfg.Objects,
		exportTTL: exportTTL,
	}, nil
}

// SignUp registers a client account and logs it in immediately. Registration
// is unconditional: an existing account with the same email is left untouched
// and the caller is still logged in.
func (a *App) SignUp(email, password, name string) (domain.Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Account{}, "", ErrEmailAndPasswordRequired
	}
	account := domain.Account{
		Email:    email,
		Password: password,
		Role:     domain.RoleClient,
		Name:     strings.TrimSpace(name),
	}
	if err := a.store.SaveAccount(account); err != nil {
		return domain.Account{}, "", fmt.Errorf("save account: %w", err)
	}
	token, err := a.sessions.NewSession(email, domain.RoleClient)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("create session: %w", err)
	}
	return account, token, nil
}

// Login authenticates a credential pair for the requested role.
//
// Clients match against the stored account list or the demo pair. Developers
// match only the admin pair; a valid client account is still rejected for the
// developer role.
func (a *App) Login(email, password string, role domain.UserRole) (domain.Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Account{}, "", ErrEmailAndPasswordRequired
	}

	var account domain.Account
	switch role {
	case domain.RoleDeveloper:
		if email != AdminEmail || password != AdminPassword {
			return domain.Account{}, "", ErrInvalidCredentials
		}
		account = domain.Account{Email: email, Role: domain.RoleDeveloper}
	case domain.RoleClient:
		stored, found, err := a.store.GetAccountByEmail(email)
		if err != nil {
			return domain.Account{}, "", fmt.Errorf("load account: %w", err)
		}
		switch {
		case found && stored.Password == password:
			account = stored
		case email == DemoClientEmail && password == DemoClientPassword:
			account = domain.Account{Email: email, Role: domain.RoleClient}
		default:
			return domain.Account{}, "", ErrInvalidCredentials
		}
	default:
		return domain.Account{}, "", ErrInvalidCredentials
	}

	token, err := a.sessions.NewSession(account.Email, account.Role)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("create session: %w", err)
	}
	return account, token, nil
}

// Logout revokes the session token. Unknown tokens are a no-op.
func (a *App) Logout(token string) error {
	if err := a.sessions.DeleteSession(token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Identify resolves a bearer token into the session identity.
func (a *App) Identify(token string) (Identity, error) {
	email, role, ok, err := a.sessions.ResolveSession(token)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return Identity{}, ErrInvalidSession
	}
	return Identity{Email: email, Role: role}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
