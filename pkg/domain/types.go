package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleClient    UserRole = "CLIENT"
	RoleDeveloper UserRole = "DEVELOPER"
)

type LocationType string

const (
	LocationUrban   LocationType = "Urban"
	LocationRural   LocationType = "Rural"
	LocationCoastal LocationType = "Coastal"
)

type BuildingType string

const (
	BuildingHouse     BuildingType = "House"
	BuildingApartment BuildingType = "Apartment"
	BuildingVilla     BuildingType = "Villa"
	BuildingSchool    BuildingType = "School"
	BuildingHospital  BuildingType = "Hospital"
)

type RoomType string

const (
	RoomBedroom    RoomType = "Master Bedroom"
	RoomGuestRoom  RoomType = "Guest Room"
	RoomKitchen    RoomType = "Kitchen"
	RoomLivingRoom RoomType = "Living Room"
	RoomBathroom   RoomType = "Bathroom"
	RoomDining     RoomType = "Dining Room"
	RoomOffice     RoomType = "Home Office"
	RoomKidsRoom   RoomType = "Kids Room"
)

type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "Low"
	BudgetMedium BudgetLevel = "Medium"
	BudgetHigh   BudgetLevel = "High"
	BudgetManual BudgetLevel = "Manual"
)

type SatisfactionRating string

const (
	SatisfactionBad         SatisfactionRating = "Not Accurate"
	SatisfactionAverage     SatisfactionRating = "Somewhat Accurate"
	SatisfactionGood        SatisfactionRating = "Good Accuracy"
	SatisfactionExcellent   SatisfactionRating = "High Accuracy"
	SatisfactionOutstanding SatisfactionRating = "Perfect Visualization"
)

// SatisfactionRatings lists all ratings in ascending order. The developer
// metrics histogram is keyed in this order.
var SatisfactionRatings = []SatisfactionRating{
	SatisfactionBad,
	SatisfactionAverage,
	SatisfactionGood,
	SatisfactionExcellent,
	SatisfactionOutstanding,
}

// FurnitureSource identifies the external retailer a catalog item links to.
type FurnitureSource string

const (
	SourceAmazon   FurnitureSource = "Amazon"
	SourceFlipkart FurnitureSource = "Flipkart"
	SourceIKEA     FurnitureSource = "IKEA"
	SourceMyntra   FurnitureSource = "Myntra"
)

// Account is a stored credential pair with a role. Accounts are created on
// sign-up and never updated or deleted; email is the unique key.
type Account struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
	Name     string   `json:"name,omitempty"`
}

// FurnitureItem is a fixed-price catalog entry. Items are copied into a room
// from the static catalog at creation and never edited afterwards.
type FurnitureItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Price  float64         `json:"price"`
	Link   string          `json:"link"`
	Source FurnitureSource `json:"source"`
}

// Room is a named sub-space of a project. BeforeImage and AfterImage are
// independent data URIs filled in by the visualization engine; either, both,
// or neither may be present.
type Room struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        RoomType        `json:"type"`
	Color       string          `json:"color"`
	Furniture   []FurnitureItem `json:"furniture"`
	BeforeImage string          `json:"beforeImage,omitempty"`
	AfterImage  string          `json:"afterImage,omitempty"`
}

// Project is a single building-planning engagement owned by one client.
// Rooms are embedded and exclusively owned; navigation is top-down by ID.
type Project struct {
	ID                 string             `json:"id"`
	ClientID           string             `json:"clientId"`
	Title              string             `json:"title"`
	PlotArea           float64            `json:"plotArea"`
	Length             float64            `json:"length"`
	Breadth            float64            `json:"breadth"`
	LocationType       LocationType       `json:"locationType"`
	BudgetLevel        BudgetLevel        `json:"budgetLevel"`
	ManualBudget       float64            `json:"manualBudget,omitempty"`
	BuildingColor      string             `json:"buildingColor"`
	ArchitecturalStyle string             `json:"architecturalStyle"`
	BuildingType       BuildingType       `json:"buildingType"`
	Floors             int                `json:"floors"`
	Rooms              []Room             `json:"rooms"`
	CreatedAt          time.Time          `json:"createdAt"`
	VisualImage        string             `json:"visualImage,omitempty"`
	FloorPlanSVG       string             `json:"floorPlanSvg,omitempty"`
	Satisfaction       SatisfactionRating `json:"satisfaction,omitempty"`

	// Revision is a persistence-level counter used by stores that support
	// optimistic concurrency. Zero means "not yet persisted there".
	Revision int64 `json:"revision,omitempty"`
}

// NewID returns a random identifier for client-generated entities.
func NewID() string {
	return uuid.NewString()
}

// NewProject creates a project with an empty room list. PlotArea is derived
// from the dimensions; floors below 1 are clamped to 1.
func NewProject(clientID, title string, length, breadth float64) Project {
	if length < 0 {
		length = 0
	}
	if breadth < 0 {
		breadth = 0
	}
	return Project{
		ID:           NewID(),
		ClientID:     clientID,
		Title:        title,
		Length:       length,
		Breadth:      breadth,
		PlotArea:     length * breadth,
		LocationType: LocationUrban,
		BudgetLevel:  BudgetMedium,
		BuildingType: BuildingHouse,
		Floors:       1,
		Rooms:        []Room{},
		CreatedAt:    time.Now().UTC(),
	}
}

// SyncFromDimensions recomputes the plot area after a length or breadth edit.
func (p *Project) SyncFromDimensions(length, breadth float64) {
	p.Length = length
	p.Breadth = breadth
	p.PlotArea = length * breadth
}

// SyncFromArea sets the plot area and derives square dimensions from it,
// rounded to two decimals (length = breadth = sqrt(area)).
func (p *Project) SyncFromArea(area float64) {
	side := math.Round(math.Sqrt(area)*100) / 100
	p.PlotArea = area
	p.Length = side
	p.Breadth = side
}

// RoomByID looks up an embedded room.
func (p *Project) RoomByID(id string) (*Room, bool) {
	for i := range p.Rooms {
		if p.Rooms[i].ID == id {
			return &p.Rooms[i], true
		}
	}
	return nil, false
}

// NewRoom creates a room of the given type with its starter furniture copied
// from the static catalog. Unknown types start with no furniture.
func NewRoom(name string, roomType RoomType, color string) Room {
	return Room{
		ID:        NewID(),
		Name:      name,
		Type:      roomType,
		Color:     color,
		Furniture: StarterFurniture(roomType),
	}
}
