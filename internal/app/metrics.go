package app

import (
	"fmt"

	"zerobuild/pkg/domain"
)

// Metrics is the developer dashboard aggregate over every project in the
// system. Figures are recomputed on each request.
type Metrics struct {
	TotalProjects  int                               `json:"totalProjects"`
	TotalClients   int                               `json:"totalClients"`
	PortfolioValue float64                           `json:"portfolioValue"`
	Satisfaction   map[domain.SatisfactionRating]int `json:"satisfaction"`
}

// DeveloperMetrics computes the portfolio valuation and satisfaction
// histogram. Developer role only.
func (a *App) DeveloperMetrics(caller Identity) (Metrics, error) {
	if caller.Role != domain.RoleDeveloper {
		return Metrics{}, ErrForbidden
	}
	projects, err := a.store.ListProjects()
	if err != nil {
		return Metrics{}, fmt.Errorf("list projects: %w", err)
	}
	accounts, err := a.store.ListAccounts()
	if err != nil {
		return Metrics{}, fmt.Errorf("list accounts: %w", err)
	}
	clients := 0
	for _, account := range accounts {
		if account.Role == domain.RoleClient {
			clients++
		}
	}
	return Metrics{
		TotalProjects:  len(projects),
		TotalClients:   clients,
		PortfolioValue: domain.PortfolioValuation(projects),
		Satisfaction:   domain.SatisfactionHistogram(projects),
	}, nil
}
