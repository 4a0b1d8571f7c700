package domain

// Fixed policy rates. Base construction is charged per square foot of plot
// area; interior labor is charged per room.
const (
	BaseRatePerSqFt  = 2150
	LaborCostPerRoom = 45000
)

// Budget is the derived four-part cost breakdown for a project.
type Budget struct {
	Base      float64 `json:"base"`
	Furniture float64 `json:"furniture"`
	Labor     float64 `json:"labor"`
	Total     float64 `json:"total"`
}

// CalculateBudget derives the cost breakdown from the project's current
// state. It is a pure function: nothing is cached, so callers re-invoke it
// after any mutation to rooms, furniture, or plot area.
func CalculateBudget(p Project) Budget {
	base := p.PlotArea * BaseRatePerSqFt
	var furniture float64
	for _, room := range p.Rooms {
		for _, item := range room.Furniture {
			furniture += item.Price
		}
	}
	labor := float64(len(p.Rooms)) * LaborCostPerRoom
	return Budget{
		Base:      base,
		Furniture: furniture,
		Labor:     labor,
		Total:     base + furniture + labor,
	}
}

// RoomFurnitureCost sums the catalog prices of a single room's furniture.
func RoomFurnitureCost(r Room) float64 {
	var sum float64
	for _, item := range r.Furniture {
		sum += item.Price
	}
	return sum
}

// PortfolioValuation sums per-project budget totals across all stored
// projects. Used by the developer dashboard's global valuation figure.
func PortfolioValuation(projects []Project) float64 {
	var total float64
	for _, p := range projects {
		total += CalculateBudget(p).Total
	}
	return total
}

// SatisfactionHistogram counts projects per rating. Projects without a
// rating are not counted.
func SatisfactionHistogram(projects []Project) map[SatisfactionRating]int {
	histogram := make(map[SatisfactionRating]int, len(SatisfactionRatings))
	for _, rating := range SatisfactionRatings {
		histogram[rating] = 0
	}
	for _, p := range projects {
		if p.Satisfaction == "" {
			continue
		}
		if _, ok := histogram[p.Satisfaction]; ok {
			histogram[p.Satisfaction]++
		}
	}
	return histogram
}
