package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// assetHandler serves the fixed asset register.
type assetHandler struct {
	assetService portssvc.AssetSvcFacade
}

func newAssetHandler(as portssvc.AssetSvcFacade) *assetHandler {
	return &assetHandler{assetService: as}
}

func registerAssetRoutes(rg *gin.RouterGroup, assetService portssvc.AssetSvcFacade) {
	h := newAssetHandler(assetService)

	assets := rg.Group("/fixed-assets/assets")
	{
		assets.POST("/", h.createAsset)
		assets.GET("/:id/", h.getAsset)
		assets.POST("/:id/capitalize/", h.capitalize)
		assets.POST("/:id/depreciate/", h.depreciate)
		assets.POST("/:id/dispose/", h.dispose)
	}
}

// createAsset godoc
// @Summary Register a fixed asset
// @Tags fixed assets
// @Accept  json
// @Produce  json
// @Param   asset body dto.CreateAssetRequest true "Asset details"
// @Success 201 {object} domain.FixedAsset
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Security BearerAuth
// @Router /fixed-assets/assets/ [post]
func (h *assetHandler) createAsset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreateAsset", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create asset")
		return
	}

	logger.Info("Asset registered", slog.String("asset_id", asset.AssetID))
	c.JSON(http.StatusCreated, asset)
}

// getAsset godoc
// @Summary Get a fixed asset
// @Tags fixed assets
// @Produce  json
// @Param   id path string true "Asset ID"
// @Success 200 {object} domain.FixedAsset
// @Failure 404 {object} dto.ErrorResponse "Asset not found"
// @Security BearerAuth
// @Router /fixed-assets/assets/{id}/ [get]
func (h *assetHandler) getAsset(c *gin.Context) {
	asset, err := h.assetService.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve asset")
		return
	}
	c.JSON(http.StatusOK, asset)
}

// capitalize godoc
// @Summary Capitalize an asset
// @Description Posts Dr FIXED_ASSET against BANK or AP once the asset is approved
// @Tags fixed assets
// @Accept  json
// @Produce  json
// @Param   id path string true "Asset ID"
// @Param   request body dto.CapitalizeAssetRequest false "Posting date and funding role"
// @Success 201 {object} domain.AssetPostingResult
// @Failure 409 {object} dto.ErrorResponse "Not approved or not a draft"
// @Failure 422 {object} dto.ErrorResponse "Below the capitalization threshold"
// @Security BearerAuth
// @Router /fixed-assets/assets/{id}/capitalize/ [post]
func (h *assetHandler) capitalize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	assetID := c.Param("id")
	var req dto.CapitalizeAssetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, "CapitalizeAsset", err)
			return
		}
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.assetService.Capitalize(c.Request.Context(), assetID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to capitalize asset")
		return
	}

	logger.Info("Asset capitalized", slog.String("asset_id", assetID), slog.String("entry_id", result.Entry.EntryID))
	c.JSON(postingStatus(&result.PostingResult), result)
}

// depreciate godoc
// @Summary Depreciate an asset for one month
// @Description Straight-line charge for the period. Repeating a period replays the original entry.
// @Tags fixed assets
// @Accept  json
// @Produce  json
// @Param   id path string true "Asset ID"
// @Param   request body dto.DepreciateAssetRequest true "Period (YYYY-MM)"
// @Success 201 {object} domain.AssetPostingResult
// @Success 200 {object} domain.AssetPostingResult "Replayed"
// @Failure 409 {object} dto.ErrorResponse "Asset is not active"
// @Security BearerAuth
// @Router /fixed-assets/assets/{id}/depreciate/ [post]
func (h *assetHandler) depreciate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	assetID := c.Param("id")
	var req dto.DepreciateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "DepreciateAsset", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.assetService.Depreciate(c.Request.Context(), assetID, req.Period, userID)
	if err != nil {
		respondError(c, err, "Failed to depreciate asset")
		return
	}

	logger.Info("Asset depreciated", slog.String("asset_id", assetID), slog.String("period", req.Period), slog.Bool("replayed", result.Replayed))
	c.JSON(postingStatus(&result.PostingResult), result)
}

// dispose godoc
// @Summary Dispose of an asset
// @Description Removes cost and accumulated depreciation and books the gain or loss against proceeds
// @Tags fixed assets
// @Accept  json
// @Produce  json
// @Param   id path string true "Asset ID"
// @Param   request body dto.DisposeAssetRequest true "Disposal date and proceeds in the base currency"
// @Success 201 {object} domain.AssetPostingResult
// @Failure 409 {object} dto.ErrorResponse "Not approved or not active"
// @Security BearerAuth
// @Router /fixed-assets/assets/{id}/dispose/ [post]
func (h *assetHandler) dispose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	assetID := c.Param("id")
	var req dto.DisposeAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "DisposeAsset", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.assetService.Dispose(c.Request.Context(), assetID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to dispose asset")
		return
	}

	logger.Info("Asset disposed", slog.String("asset_id", assetID), slog.String("entry_id", result.Entry.EntryID))
	c.JSON(postingStatus(&result.PostingResult), result)
}
