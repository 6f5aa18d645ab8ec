package handler

import (
	"net/http"
	"strconv"

	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *service.AdminService
	userService  *service.UserService
	logger       *zap.Logger
}

func NewAdminHandler(adminService *service.AdminService, userService *service.UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		userService:  userService,
		logger:       logger,
	}
}

// Stats godoc
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} domain.AdminStats
// @Failure 401 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to collect admin stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ListUsers godoc
// @Summary List all users
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.userService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
