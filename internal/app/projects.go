package app

import (
	"fmt"
	"strings"

	"zerobuild/pkg/domain"
)

// ProjectInput carries the client-supplied fields for a new project. Zero
// values fall back to the domain defaults.
type ProjectInput struct {
	Title              string              `json:"title"`
	Length             float64             `json:"length"`
	Breadth            float64             `json:"breadth"`
	PlotArea           float64             `json:"plotArea"`
	LocationType       domain.LocationType `json:"locationType"`
	BuildingType       domain.BuildingType `json:"buildingType"`
	Floors             int                 `json:"floors"`
	BudgetLevel        domain.BudgetLevel  `json:"budgetLevel"`
	ManualBudget       float64             `json:"manualBudget"`
	BuildingColor      string              `json:"buildingColor"`
	ArchitecturalStyle string              `json:"architecturalStyle"`
}

// CreateProject creates a project owned by the calling client. When only a
// plot area is supplied, square dimensions are derived from it.
func (a *App) CreateProject(caller Identity, in ProjectInput) (domain.Project, error) {
	if caller.Role != domain.RoleClient {
		return domain.Project{}, ErrForbidden
	}
	p := domain.NewProject(caller.Email, strings.TrimSpace(in.Title), in.Length, in.Breadth)
	if in.PlotArea > 0 && in.Length == 0 && in.Breadth == 0 {
		p.SyncFromArea(in.PlotArea)
	}
	if in.LocationType != "" {
		p.LocationType = in.LocationType
	}
	if in.BuildingType != "" {
		p.BuildingType = in.BuildingType
	}
	if in.Floors > 0 {
		p.Floors = in.Floors
	}
	if in.BudgetLevel != "" {
		p.BudgetLevel = in.BudgetLevel
	}
	if in.BudgetLevel == domain.BudgetManual {
		p.ManualBudget = in.ManualBudget
	}
	p.BuildingColor = in.BuildingColor
	p.ArchitecturalStyle = in.ArchitecturalStyle
	if err := a.store.SaveProject(p); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

// ListProjects returns the caller's own projects for clients and every
// project for developers.
func (a *App) ListProjects(caller Identity) ([]domain.Project, error) {
	if caller.Role == domain.RoleDeveloper {
		return a.store.ListProjects()
	}
	return a.store.ListProjectsByClient(caller.Email)
}

// GetProject loads one project. Clients see only their own; developers may
// read any project.
func (a *App) GetProject(caller Identity, projectID string) (domain.Project, error) {
	p, found, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.Project{}, fmt.Errorf("load project: %w", err)
	}
	if !found {
		return domain.Project{}, ErrProjectNotFound
	}
	if caller.Role != domain.RoleDeveloper && p.ClientID != caller.Email {
		return domain.Project{}, ErrProjectNotFound
	}
	return p, nil
}

// UpdateProject overwrites a project the caller owns with the incoming state,
// last write wins. Identity fields (ID, owner, creation time) are preserved,
// and plot dimensions are re-synced when the update edits them.
func (a *App) UpdateProject(caller Identity, projectID string, incoming domain.Project) (domain.Project, error) {
	existing, err := a.ownedProject(caller, projectID)
	if err != nil {
		return domain.Project{}, err
	}

	updated := incoming
	updated.ID = existing.ID
	updated.ClientID = existing.ClientID
	updated.CreatedAt = existing.CreatedAt
	updated.Revision = existing.Revision
	if updated.Rooms == nil {
		updated.Rooms = existing.Rooms
	}

	if updated.Length != existing.Length || updated.Breadth != existing.Breadth {
		updated.SyncFromDimensions(updated.Length, updated.Breadth)
	} else if updated.PlotArea != existing.PlotArea {
		updated.SyncFromArea(updated.PlotArea)
	}

	if err := a.store.SaveProject(updated); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return updated, nil
}

// DeleteProject removes a project the caller owns.
func (a *App) DeleteProject(caller Identity, projectID string) error {
	if _, err := a.ownedProject(caller, projectID); err != nil {
		return err
	}
	if err := a.store.DeleteProject(projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// DeleteAllProjects removes every project the calling client owns.
func (a *App) DeleteAllProjects(caller Identity) error {
	if caller.Role != domain.RoleClient {
		return ErrForbidden
	}
	if err := a.store.DeleteProjectsByClient(caller.Email); err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	return nil
}

// ProjectBudget computes the derived budget figures for a project. The
// figures are always recomputed from current state, never cached.
func (a *App) ProjectBudget(caller Identity, projectID string) (domain.Budget, error) {
	p, err := a.GetProject(caller, projectID)
	if err != nil {
		return domain.Budget{}, err
	}
	return domain.CalculateBudget(p), nil
}

// AddRoom appends a room of the given type with its starter furniture.
func (a *App) AddRoom(caller Identity, projectID, name string, roomType domain.RoomType, color string) (domain.Room, error) {
	p, err := a.ownedProject(caller, projectID)
	if err != nil {
		return domain.Room{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = string(roomType)
	}
	room := domain.NewRoom(name, roomType, color)
	p.Rooms = append(p.Rooms, room)
	if err := a.store.SaveProject(p); err != nil {
		return domain.Room{}, fmt.Errorf("save project: %w", err)
	}
	return room, nil
}

// DeleteRoom removes an embedded room by ID.
func (a *App) DeleteRoom(caller Identity, projectID, roomID string) error {
	p, err := a.ownedProject(caller, projectID)
	if err != nil {
		return err
	}
	kept := p.Rooms[:0]
	found := false
	for _, room := range p.Rooms {
		if room.ID == roomID {
			found = true
			continue
		}
		kept = append(kept, room)
	}
	if !found {
		return ErrRoomNotFound
	}
	p.Rooms = kept
	if err := a.store.SaveProject(p); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// ownedProject loads a project and enforces client ownership for mutations.
// Developers get ErrForbidden: their access is read-only.
func (a *App) ownedProject(caller Identity, projectID string) (domain.Project, error) {
	if caller.Role != domain.RoleClient {
		return domain.Project{}, ErrForbidden
	}
	p, found, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.Project{}, fmt.Errorf("load project: %w", err)
	}
	if !found || p.ClientID != caller.Email {
		return domain.Project{}, ErrProjectNotFound
	}
	return p, nil
}
