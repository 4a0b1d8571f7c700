package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"zerobuild/pkg/domain"
)

// GormStore implements Store on Postgres, keeping one record per entity
// instead of a whole-collection blob. Project saves use an optimistic
// revision counter: a writer holding a stale revision gets ErrStaleProject
// instead of silently overwriting a concurrent save.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &ProjectModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveAccount inserts the account; an existing email is left untouched.
func (g *GormStore) SaveAccount(account domain.Account) error {
	model := AccountModel{
		Email:     account.Email,
		Password:  account.Password,
		Role:      string(account.Role),
		Name:      account.Name,
		CreatedAt: time.Now().UTC(),
	}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// GetAccountByEmail looks up an account.
func (g *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	err := g.db.First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("get account: %w", err)
	}
	return accountFromModel(model), true, nil
}

// HasAccountEmail reports whether the email is registered.
func (g *GormStore) HasAccountEmail(email string) (bool, error) {
	var count int64
	if err := g.db.Model(&AccountModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return count > 0, nil
}

// ListAccounts returns all accounts.
func (g *GormStore) ListAccounts() ([]domain.Account, error) {
	var models []AccountModel
	if err := g.db.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]domain.Account, 0, len(models))
	for _, model := range models {
		accounts = append(accounts, accountFromModel(model))
	}
	return accounts, nil
}

// SaveProject inserts or updates the project record. Updates require the
// revision carried on the project to match the stored one.
func (g *GormStore) SaveProject(project domain.Project) error {
	model, err := projectToModel(project)
	if err != nil {
		return err
	}
	if project.Revision == 0 {
		model.Revision = 1
		model.UpdatedAt = time.Now().UTC()
		if err := g.db.Create(&model).Error; err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return nil
	}
	model.Revision = project.Revision + 1
	model.UpdatedAt = time.Now().UTC()
	// Select("*") forces zero-value columns through, so a cleared visual
	// or floor plan actually persists as empty.
	res := g.db.Model(&ProjectModel{}).
		Where("id = ? AND revision = ?", project.ID, project.Revision).
		Select("*").Omit("id", "created_at").
		Updates(&model)
	if res.Error != nil {
		return fmt.Errorf("update project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleProject
	}
	return nil
}

// GetProject retrieves a project by ID.
func (g *GormStore) GetProject(id string) (domain.Project, bool, error) {
	var model ProjectModel
	err := g.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Project{}, false, nil
	}
	if err != nil {
		return domain.Project{}, false, fmt.Errorf("get project: %w", err)
	}
	project, err := projectFromModel(model)
	if err != nil {
		return domain.Project{}, false, err
	}
	return project, true, nil
}

// ListProjects returns all projects ordered by creation time.
func (g *GormStore) ListProjects() ([]domain.Project, error) {
	return g.listProjects(g.db)
}

// ListProjectsByClient returns the projects owned by a client.
func (g *GormStore) ListProjectsByClient(clientID string) ([]domain.Project, error) {
	return g.listProjects(g.db.Where("client_id = ?", clientID))
}

func (g *GormStore) listProjects(tx *gorm.DB) ([]domain.Project, error) {
	var models []ProjectModel
	if err := tx.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]domain.Project, 0, len(models))
	for _, model := range models {
		project, err := projectFromModel(model)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// DeleteProject removes a project record.
func (g *GormStore) DeleteProject(id string) error {
	if err := g.db.Delete(&ProjectModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// DeleteProjectsByClient removes every project owned by the client.
func (g *GormStore) DeleteProjectsByClient(clientID string) error {
	if err := g.db.Delete(&ProjectModel{}, "client_id = ?", clientID).Error; err != nil {
		return fmt.Errorf("delete client projects: %w", err)
	}
	return nil
}

// DeleteAllProjects truncates the projects collection.
func (g *GormStore) DeleteAllProjects() error {
	if err := g.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ProjectModel{}).Error; err != nil {
		return fmt.Errorf("delete all projects: %w", err)
	}
	return nil
}

func accountFromModel(model AccountModel) domain.Account {
	return domain.Account{
		Email:    model.Email,
		Password: model.Password,
		Role:     domain.UserRole(model.Role),
		Name:     model.Name,
	}
}

func projectToModel(project domain.Project) (ProjectModel, error) {
	rooms := project.Rooms
	if rooms == nil {
		rooms = []domain.Room{}
	}
	roomsJSON, err := json.Marshal(rooms)
	if err != nil {
		return ProjectModel{}, fmt.Errorf("encode rooms: %w", err)
	}
	return ProjectModel{
		ID:                 project.ID,
		ClientID:           project.ClientID,
		Title:              project.Title,
		PlotArea:           project.PlotArea,
		Length:             project.Length,
		Breadth:            project.Breadth,
		LocationType:       string(project.LocationType),
		BudgetLevel:        string(project.BudgetLevel),
		ManualBudget:       project.ManualBudget,
		BuildingColor:      project.BuildingColor,
		ArchitecturalStyle: project.ArchitecturalStyle,
		BuildingType:       string(project.BuildingType),
		Floors:             project.Floors,
		Rooms:              datatypes.JSON(roomsJSON),
		VisualImage:        project.VisualImage,
		FloorPlanSVG:       project.FloorPlanSVG,
		Satisfaction:       string(project.Satisfaction),
		CreatedAt:          project.CreatedAt,
	}, nil
}

func projectFromModel(model ProjectModel) (domain.Project, error) {
	rooms := []domain.Room{}
	if len(model.Rooms) > 0 {
		if err := json.Unmarshal(model.Rooms, &rooms); err != nil {
			return domain.Project{}, fmt.Errorf("decode rooms: %w", err)
		}
	}
	return domain.Project{
		ID:                 model.ID,
		ClientID:           model.ClientID,
		Title:              model.Title,
		PlotArea:           model.PlotArea,
		Length:             model.Length,
		Breadth:            model.Breadth,
		LocationType:       domain.LocationType(model.LocationType),
		BudgetLevel:        domain.BudgetLevel(model.BudgetLevel),
		ManualBudget:       model.ManualBudget,
		BuildingColor:      model.BuildingColor,
		ArchitecturalStyle: model.ArchitecturalStyle,
		BuildingType:       domain.BuildingType(model.BuildingType),
		Floors:             model.Floors,
		Rooms:              rooms,
		CreatedAt:          model.CreatedAt,
		VisualImage:        model.VisualImage,
		FloorPlanSVG:       model.FloorPlanSVG,
		Satisfaction:       domain.SatisfactionRating(model.Satisfaction),
		Revision:           model.Revision,
	}, nil
}
