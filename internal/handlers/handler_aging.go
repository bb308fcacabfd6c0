package handlers

import (
	"net/http"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

type agingHandler struct {
	kind         domain.InvoiceKind
	agingService portssvc.AgingSvcFacade
}

func registerAgingRoutes(rg *gin.RouterGroup, kind domain.InvoiceKind, agingService portssvc.AgingSvcFacade) {
	h := &agingHandler{kind: kind, agingService: agingService}
	rg.GET(kindPrefix(kind)+"/aging/", h.age)
}

// age godoc
// @Summary Aging report
// @Description Buckets open invoice balances by days past due
// @Tags aging
// @Produce  json
// @Param   as_of query string false "Report date (YYYY-MM-DD), defaults to today"
// @Param   counterparty_id query string false "Counterparty filter"
// @Param   boundaries query string false "Bucket upper bounds in days, e.g. 0,30,60,90"
// @Success 200 {object} domain.AgingReport
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /ar/aging/ [get]
// @Router /ap/aging/ [get]
func (h *agingHandler) age(c *gin.Context) {
	asOf, err := dateQuery(c, "as_of")
	if err != nil {
		respondError(c, err, "Failed to build aging report")
		return
	}
	boundaries, err := boundariesQuery(c, "boundaries")
	if err != nil {
		respondError(c, err, "Failed to build aging report")
		return
	}

	report, err := h.agingService.Age(c.Request.Context(), domain.AgingQuery{
		Kind:           h.kind,
		CounterpartyID: c.Query("counterparty_id"),
		AsOf:           asOf,
		Boundaries:     boundaries,
	})
	if err != nil {
		respondError(c, err, "Failed to build aging report")
		return
	}
	c.JSON(http.StatusOK, report)
}
