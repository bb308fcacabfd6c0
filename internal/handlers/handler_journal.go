package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type journalHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newJournalHandler(ls portssvc.LedgerSvcFacade) *journalHandler {
	return &journalHandler{ledgerService: ls}
}

// registerJournalRoutes registers the manual journal entry routes.
func registerJournalRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newJournalHandler(ledgerService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("/", h.createEntry)
		entries.GET("/", h.listEntries)
		entries.GET("/:id", h.getEntry)
		entries.POST("/:id/reverse/", h.reverseEntry)
	}
}

// postingStatus is 201 for a freshly written entry and 200 for a replay.
func postingStatus(r *domain.PostingResult) int {
	if r.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// createEntry godoc
// @Summary Post a manual journal entry
// @Description Posts balanced operator-supplied lines in the base currency
// @Tags journal entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Entry with at least two lines"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 422 {object} dto.ErrorResponse "Entry is not balanced"
// @Failure 424 {object} dto.ErrorResponse "Unknown or inactive account"
// @Security BearerAuth
// @Router /journal-entries/ [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreateJournalEntry", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	logger.Info("Received request to post manual entry", slog.Int("line_count", len(req.Lines)))

	result, err := h.ledgerService.PostManualEntry(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to post journal entry")
		return
	}

	logger.Info("Manual entry posted", slog.String("entry_id", result.Entry.EntryID))
	c.JSON(postingStatus(result), dto.ToPostingResponse(result))
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags journal entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Security BearerAuth
// @Router /journal-entries/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Newest first with token based pagination
// @Tags journal entries
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /journal-entries/ [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, "ListJournalEntries", err)
		return
	}

	resp, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Posts the offsetting entry and marks the original REVERSED
// @Tags journal entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 201 {object} dto.PostingResponse
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry already reversed"
// @Security BearerAuth
// @Router /journal-entries/{id}/reverse/ [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.ledgerService.ReverseEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}

	logger.Info("Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_entry_id", result.Entry.EntryID))
	c.JSON(postingStatus(result), dto.ToPostingResponse(result))
}
