package pgsql

import (
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	projectionRepo := newPgxProjectionRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:    accountRepo,
		PeriodRepo:     periodRepo,
		JournalRepo:    journalRepo,
		ProjectionRepo: projectionRepo,
		ReportingRepo:  reportingRepo,
	}
}
