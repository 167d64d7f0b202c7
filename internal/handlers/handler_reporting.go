package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/firmfin/treasury_ledger_app/internal/core/ports/services"
	"github.com/firmfin/treasury_ledger_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports")
	{
		reports.GET("/cashflow", h.getCashFlow)
		reports.GET("/balances", h.getBalances)
	}
}

// getCashFlow godoc
// @Summary Cash-flow report
// @Description Aggregates settled transactions for one accounting period and currency
// @Tags reports
// @Produce  json
// @Param   period query string true "Accounting period (YYYYMM)"
// @Param   currencyCode query string true "Currency code"
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build cash-flow report"
// @Security BearerAuth
// @Router /reports/cashflow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	logger, firmID, _, ok := requestScope(c)
	if !ok {
		return
	}

	var params dto.CashFlowParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetCashFlow", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	report, err := h.reportingService.GetCashFlow(c.Request.Context(), firmID, params.Period, params.CurrencyCode)
	if err != nil {
		respondError(c, logger, err, "Failed to build cash-flow report")
		return
	}

	c.JSON(http.StatusOK, dto.ToCashFlowResponse(report))
}

// getBalances godoc
// @Summary Balances report
// @Description Rolls up the firm's active account balances grouped by currency
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.BalancesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build balances report"
// @Security BearerAuth
// @Router /reports/balances [get]
func (h *reportingHandler) getBalances(c *gin.Context) {
	logger, firmID, _, ok := requestScope(c)
	if !ok {
		return
	}

	reports, err := h.reportingService.GetBalances(c.Request.Context(), firmID)
	if err != nil {
		respondError(c, logger, err, "Failed to build balances report")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalancesResponse(reports))
}
