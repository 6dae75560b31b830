package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
	"github.com/zenbooks-app/ledger_backend/internal/middleware"
)

// ledgerHandler exposes the producer-facing recording surface and the
// balance projection operations.
type ledgerHandler struct {
	journalService    portssvc.JournalSvcFacade
	projectionService portssvc.ProjectionSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(js portssvc.JournalSvcFacade, ps portssvc.ProjectionSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		journalService:    js,
		projectionService: ps,
	}
}

// registerLedgerRoutes registers the recording and projection routes.
func registerLedgerRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, projectionService portssvc.ProjectionSvcFacade) {
	h := newLedgerHandler(journalService, projectionService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/transactions", h.recordTransaction)
		ledger.GET("/balances/:account_id", h.getBalance)
		ledger.POST("/rebuild", h.rebuildBalances)
		ledger.GET("/consistency", h.verifyConsistency)
	}
}

// recordTransaction godoc
// @Summary Record a balanced transaction
// @Description The single producer surface: drafts and posts an entry in one call, returning the posted entry or a named failure with nothing persisted
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Unbalanced lines or unknown account"
// @Failure 409 {object} map[string]string "The entry date's period is closed"
// @Failure 500 {object} map[string]string "Failed to record transaction"
// @Router /tenants/{tenant_id}/ledger/transactions [post]
func (h *ledgerHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("tenant_id", tenantID), slog.String("actor", actor))
	logger.Info("Received transaction to record", slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.RecordTransaction(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		writeJournalError(c, logger, err, "record transaction")
		return
	}

	logger.Info("Transaction recorded", slog.String("entry_id", entry.EntryID), slog.Int64("entry_number", *entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getBalance godoc
// @Summary Get an account balance as of a date
// @Description Returns the account's signed balance (normal-side convention) derived from the posted-entry log up to the cut-off date
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   account_id path string true "Account ID"
// @Param   asOf query string false "Cut-off date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Router /tenants/{tenant_id}/ledger/balances/{account_id} [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("account_id")

	asOf, ok := parseDateQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	balance, err := h.projectionService.BalanceAsOf(c.Request.Context(), tenantID, accountID, asOf)
	if err != nil {
		logger.Error("Failed to compute balance", slog.String("account_id", accountID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountID": accountID,
		"asOf":      asOf.Format("2006-01-02"),
		"balance":   balance,
	})
}

// rebuildBalances godoc
// @Summary Rebuild cached balances from the posted-entry log
// @Description Replays the append-only log into the cached balance table, replacing its contents
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Failed to rebuild balances"
// @Router /tenants/{tenant_id}/ledger/rebuild [post]
func (h *ledgerHandler) rebuildBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	logger = logger.With(slog.String("tenant_id", tenantID))

	if err := h.projectionService.Rebuild(c.Request.Context(), tenantID); err != nil {
		logger.Error("Failed to rebuild balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild balances"})
		return
	}

	logger.Info("Cached balances rebuilt")
	c.JSON(http.StatusOK, gin.H{"status": "rebuilt"})
}

// verifyConsistency godoc
// @Summary Verify cached balances against the posted-entry log
// @Description Compares the cached balance table to balances derived from the log; a mismatch indicates an engine bug and is reported as an internal error
// @Tags ledger
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Projection drift detected"
// @Router /tenants/{tenant_id}/ledger/consistency [get]
func (h *ledgerHandler) verifyConsistency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	logger = logger.With(slog.String("tenant_id", tenantID))

	if err := h.projectionService.VerifyConsistency(c.Request.Context(), tenantID); err != nil {
		var cerr *apperrors.ConsistencyError
		if errors.As(err, &cerr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": cerr.Error()})
			return
		}
		logger.Error("Failed to verify consistency", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify consistency"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "consistent"})
}
