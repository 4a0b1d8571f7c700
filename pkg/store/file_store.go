package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"zerobuild/pkg/domain"
)

const (
	accountsFile = "accounts.json"
	projectsFile = "projects.json"
)

// FileStore persists each collection as a single JSON array on disk. Every
// write is a whole-collection read-modify-write followed by a full overwrite
// of the blob; the last writer wins. A missing or corrupt blob reads as an
// empty collection.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(baseDir string) (*FileStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("store base dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// SaveAccount appends the account unless the email is already present.
func (f *FileStore) SaveAccount(account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := readCollection[domain.Account](f.path(accountsFile))
	for _, existing := range accounts {
		if existing.Email == account.Email {
			return nil
		}
	}
	accounts = append(accounts, account)
	return writeCollection(f.path(accountsFile), accounts)
}

// GetAccountByEmail looks up an account.
func (f *FileStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range readCollection[domain.Account](f.path(accountsFile)) {
		if account.Email == email {
			return account, true, nil
		}
	}
	return domain.Account{}, false, nil
}

// HasAccountEmail reports whether an account exists for the email.
func (f *FileStore) HasAccountEmail(email string) (bool, error) {
	_, ok, err := f.GetAccountByEmail(email)
	return ok, err
}

// ListAccounts returns all stored accounts.
func (f *FileStore) ListAccounts() ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return readCollection[domain.Account](f.path(accountsFile)), nil
}

// SaveProject replaces the project with a matching ID or appends it.
func (f *FileStore) SaveProject(project domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := readCollection[domain.Project](f.path(projectsFile))
	replaced := false
	for i, existing := range projects {
		if existing.ID == project.ID {
			projects[i] = project
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, project)
	}
	return writeCollection(f.path(projectsFile), projects)
}

// GetProject retrieves a project by ID.
func (f *FileStore) GetProject(id string) (domain.Project, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, project := range readCollection[domain.Project](f.path(projectsFile)) {
		if project.ID == id {
			return project, true, nil
		}
	}
	return domain.Project{}, false, nil
}

// ListProjects returns all stored projects in stored order.
func (f *FileStore) ListProjects() ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return readCollection[domain.Project](f.path(projectsFile)), nil
}

// ListProjectsByClient returns the projects owned by a client.
func (f *FileStore) ListProjectsByClient(clientID string) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := readCollection[domain.Project](f.path(projectsFile))
	owned := make([]domain.Project, 0, len(all))
	for _, project := range all {
		if project.ClientID == clientID {
			owned = append(owned, project)
		}
	}
	return owned, nil
}

// DeleteProject removes the project with the given ID, if present.
func (f *FileStore) DeleteProject(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := readCollection[domain.Project](f.path(projectsFile))
	filtered := projects[:0]
	for _, project := range projects {
		if project.ID != id {
			filtered = append(filtered, project)
		}
	}
	return writeCollection(f.path(projectsFile), filtered)
}

// DeleteProjectsByClient removes every project owned by the client.
func (f *FileStore) DeleteProjectsByClient(clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := readCollection[domain.Project](f.path(projectsFile))
	kept := projects[:0]
	for _, project := range projects {
		if project.ClientID != clientID {
			kept = append(kept, project)
		}
	}
	return writeCollection(f.path(projectsFile), kept)
}

// DeleteAllProjects drops the whole projects collection.
func (f *FileStore) DeleteAllProjects() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(projectsFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove projects blob: %w", err)
	}
	return nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.baseDir, name)
}

// readCollection loads a JSON array blob. Any read or decode failure falls
// back to an empty collection.
func readCollection[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func writeCollection[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}
