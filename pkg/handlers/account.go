package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/middleware"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

type AccountHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewAccountHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{config: cfg, store: st, logger: logger}
}

// GET /admin/account 获取当前账户信息
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	appCfg, err := h.store.ReadConfig()
	if err != nil {
		h.logger.Error("read config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]string{"username": appCfg.Admin.Username})
}

// PUT /admin/account 更新用户名和/或密码
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.RequireAdmin(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.AccountUpdateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	if req.Username == "" && req.Password == "" {
		utils.WriteBadRequestResponse(w, "No updates provided")
		return
	}

	appCfg, err := h.store.ReadConfig()
	if err != nil {
		h.logger.Error("read config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 令牌中的身份必须与当前管理员一致（改名后旧令牌即失效）
	if admin.Username != appCfg.Admin.Username {
		utils.WriteUnauthorizedResponse(w, "Invalid token")
		return
	}

	if req.Username != "" {
		username := strings.TrimSpace(req.Username)
		if len(username) < 3 {
			utils.WriteBadRequestResponse(w, "Username must be at least 3 characters")
			return
		}
		appCfg.Admin.Username = username
	}

	if req.Password != "" {
		if len(req.Password) < 6 {
			utils.WriteBadRequestResponse(w, "Password must be at least 6 characters")
			return
		}
		passwordHash, err := utils.HashPassword(req.Password)
		if err != nil {
			h.logger.Error("hash password failed", zap.Error(err))
			utils.WriteInternalServerErrorResponse(w, "Internal server error")
			return
		}
		appCfg.Admin.PasswordHash = passwordHash
	}

	if err := h.store.WriteConfig(appCfg); err != nil {
		h.logger.Error("write config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteOKResponse(w)
}
