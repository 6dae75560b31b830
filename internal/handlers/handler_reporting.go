package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
	"github.com/zenbooks-app/ledger_backend/internal/middleware"
)

// reportingHandler handles HTTP requests for the financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the report routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/general-journal", h.generalJournal)
		reports.GET("/general-ledger", h.generalLedger)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/cash-flow", h.cashFlow)
	}
}

// writeReportError maps report failures onto HTTP statuses. Consistency
// failures surface as 500s: they are engine bugs, not user conditions.
func writeReportError(c *gin.Context, logger *slog.Logger, err error, report string) {
	if apperrors.IsConsistencyError(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Error("Failed to generate report", slog.String("report", report), slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate " + report})
}

// parseRangeQuery reads the from/to query parameters, both required,
// responding with a 400 when either is missing or malformed.
func parseRangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" || toRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both from and to dates are required (YYYY-MM-DD)"})
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to date is before from date"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// trialBalance godoc
// @Summary Trial balance report
// @Description Lists every account's balance as of a date bucketed into debit and credit columns; the footer totals always match
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   asOf query string false "Cut-off date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.TrialBalanceReport
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Failure 500 {object} map[string]string "Failed to generate trial balance"
// @Router /tenants/{tenant_id}/reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	asOf, ok := parseDateQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), tenantID, asOf)
	if err != nil {
		writeReportError(c, logger, err, "trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// generalJournal godoc
// @Summary General journal report
// @Description Lists posted and voided entries in a date range in entry-number order with their lines
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.GeneralJournalResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 500 {object} map[string]string "Failed to generate general journal"
// @Router /tenants/{tenant_id}/reports/general-journal [get]
func (h *reportingHandler) generalJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.GeneralJournal(c.Request.Context(), tenantID, from, to)
	if err != nil {
		writeReportError(c, logger, err, "general journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToGeneralJournalResponse(report))
}

// generalLedger godoc
// @Summary General ledger report
// @Description Per-account activity in a date range with opening balance, running balances, and closing balance
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Param   accountID query string false "Restrict to one account"
// @Success 200 {object} domain.GeneralLedgerReport
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 500 {object} map[string]string "Failed to generate general ledger"
// @Router /tenants/{tenant_id}/reports/general-ledger [get]
func (h *reportingHandler) generalLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	var accountID *string
	if v := c.Query("accountID"); v != "" {
		accountID = &v
	}

	report, err := h.reportingService.GeneralLedger(c.Request.Context(), tenantID, from, to, accountID)
	if err != nil {
		writeReportError(c, logger, err, "general ledger")
		return
	}
	c.JSON(http.StatusOK, report)
}

// balanceSheet godoc
// @Summary Balance sheet report
// @Description Assets, liabilities, and equity as of a date; current earnings are folded into equity so the accounting equation holds exactly
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   asOf query string false "Cut-off date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid asOf date"
// @Failure 500 {object} map[string]string "Failed to generate balance sheet"
// @Router /tenants/{tenant_id}/reports/balance-sheet [get]
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	asOf, ok := parseDateQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), tenantID, asOf)
	if err != nil {
		writeReportError(c, logger, err, "balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// incomeStatement godoc
// @Summary Income statement report
// @Description Revenue and expense activity over a date range as period deltas, with the net result
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} domain.IncomeStatementReport
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 500 {object} map[string]string "Failed to generate income statement"
// @Router /tenants/{tenant_id}/reports/income-statement [get]
func (h *reportingHandler) incomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), tenantID, from, to)
	if err != nil {
		writeReportError(c, logger, err, "income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// cashFlow godoc
// @Summary Cash flow report (indirect method)
// @Description Net result adjusted by non-cash balance sheet deltas, bucketed into operating, investing, and financing; the net change reconciles to the literal cash delta
// @Tags reports
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   from query string true "Range start (YYYY-MM-DD)"
// @Param   to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} domain.CashFlowReport
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 500 {object} map[string]string "Failed to generate cash flow"
// @Router /tenants/{tenant_id}/reports/cash-flow [get]
func (h *reportingHandler) cashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.CashFlow(c.Request.Context(), tenantID, from, to)
	if err != nil {
		writeReportError(c, logger, err, "cash flow")
		return
	}
	c.JSON(http.StatusOK, report)
}
