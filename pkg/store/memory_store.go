package store

import (
	"sync"

	"zerobuild/pkg/domain"
)

// MemoryStore keeps accounts and projects in-process. Used by tests and for
// local development without a data directory.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account // key: email
	projects map[string]domain.Project // key: project ID
	order    []string                  // project insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		projects: make(map[string]domain.Project),
	}
}

// SaveAccount registers an account; duplicate emails are a silent no-op.
func (m *MemoryStore) SaveAccount(account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[account.Email]; exists {
		return nil
	}
	m.accounts[account.Email] = account
	return nil
}

// GetAccountByEmail looks up an account.
func (m *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[email]
	return account, ok, nil
}

// HasAccountEmail reports whether the email is registered.
func (m *MemoryStore) HasAccountEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[email]
	return ok, nil
}

// ListAccounts returns all accounts (order unspecified).
func (m *MemoryStore) ListAccounts() ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// SaveProject stores or replaces a project and tracks insertion order.
func (m *MemoryStore) SaveProject(project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[project.ID]; !exists {
		m.order = append(m.order, project.ID)
	}
	m.projects[project.ID] = project
	return nil
}

// GetProject retrieves a project by ID.
func (m *MemoryStore) GetProject(id string) (domain.Project, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	project, ok := m.projects[id]
	return project, ok, nil
}

// ListProjects returns projects in insertion order.
func (m *MemoryStore) ListProjects() ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	projects := make([]domain.Project, 0, len(m.order))
	for _, id := range m.order {
		if project, ok := m.projects[id]; ok {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

// ListProjectsByClient returns projects owned by the client, in insertion order.
func (m *MemoryStore) ListProjectsByClient(clientID string) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	projects := make([]domain.Project, 0, len(m.order))
	for _, id := range m.order {
		if project, ok := m.projects[id]; ok && project.ClientID == clientID {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

// DeleteProject removes a project.
func (m *MemoryStore) DeleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	m.order = removeID(m.order, id)
	return nil
}

// DeleteProjectsByClient removes every project owned by the client.
func (m *MemoryStore) DeleteProjectsByClient(clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, project := range m.projects {
		if project.ClientID == clientID {
			delete(m.projects, id)
			m.order = removeID(m.order, id)
		}
	}
	return nil
}

// DeleteAllProjects drops the whole projects collection.
func (m *MemoryStore) DeleteAllProjects() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = make(map[string]domain.Project)
	m.order = nil
	return nil
}

func removeID(order []string, id string) []string {
	filtered := order[:0]
	for _, item := range order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
