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

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	coaService portssvc.ChartOfAccountsSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(cs portssvc.ChartOfAccountsSvcFacade) *accountHandler {
	return &accountHandler{
		coaService: cs,
	}
}

// registerAccountRoutes registers the account and role mapping routes.
func registerAccountRoutes(rg *gin.RouterGroup, coaService portssvc.ChartOfAccountsSvcFacade) {
	h := newAccountHandler(coaService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/", h.createAccount)
		accounts.GET("/", h.listAccounts)
		accounts.GET("/:code", h.getAccount)
		accounts.PATCH("/:code", h.updateAccount)
	}

	roles := rg.Group("/chart-of-accounts/roles")
	{
		roles.GET("/", h.listRoles)
		roles.PUT("/:role", h.assignRole)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an active account to the chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Account code already exists"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts/ [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreateAccount", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("account_code", req.Code), slog.String("account_type", string(req.AccountType)))

	account, err := h.coaService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_code", account.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	code := c.Param("code")
	account, err := h.coaService.GetAccount(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a page of the chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts/ [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, "ListAccounts", err)
		return
	}

	accounts, err := h.coaService.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToAccountResponses(accounts)})
}

// updateAccount godoc
// @Summary Update an account
// @Description Edits the name, description or active flag. Accounts mapped to a role cannot be deactivated.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   code path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Account details to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Account is mapped to a role"
// @Security BearerAuth
// @Router /accounts/{code} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "UpdateAccount", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	account, err := h.coaService.UpdateAccount(c.Request.Context(), code, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully", slog.String("account_code", code))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listRoles godoc
// @Summary List account role mappings
// @Tags chart of accounts
// @Produce  json
// @Success 200 {array} domain.RoleMapping
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /chart-of-accounts/roles/ [get]
func (h *accountHandler) listRoles(c *gin.Context) {
	mappings, err := h.coaService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list role mappings")
		return
	}
	c.JSON(http.StatusOK, mappings)
}

// assignRole godoc
// @Summary Map a role to an account
// @Description Points a posting role such as AR or VAT_OUT at an active account
// @Tags chart of accounts
// @Accept  json
// @Produce  json
// @Param   role path string true "Account role"
// @Param   mapping body dto.AssignRoleRequest true "Target account"
// @Success 200 {object} domain.RoleMapping
// @Failure 400 {object} dto.ErrorResponse "Unknown role or unusable account"
// @Security BearerAuth
// @Router /chart-of-accounts/roles/{role} [put]
func (h *accountHandler) assignRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	role := domain.AccountRole(c.Param("role"))
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "AssignRole", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	mapping, err := h.coaService.AssignRole(c.Request.Context(), role, req.AccountCode, userID)
	if err != nil {
		respondError(c, err, "Failed to assign role")
		return
	}

	logger.Info("Role mapped", slog.String("role", string(role)), slog.String("account_code", req.AccountCode))
	c.JSON(http.StatusOK, mapping)
}
