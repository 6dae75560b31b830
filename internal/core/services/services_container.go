package services

import (
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
)

// NewServiceContainer creates and wires up all application services.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo, repos.ProjectionRepo)
	periodSvc := NewPeriodService(repos.PeriodRepo)
	journalSvc := NewJournalService(repos.JournalRepo, accountSvc, periodSvc)
	projectionSvc := NewProjectionService(repos.ProjectionRepo)
	reportingSvc := NewReportingService(repos.ReportingRepo)

	return &portssvc.ServiceContainer{
		Account:    accountSvc,
		Period:     periodSvc,
		Journal:    journalSvc,
		Projection: projectionSvc,
		Reporting:  reportingSvc,
	}
}
