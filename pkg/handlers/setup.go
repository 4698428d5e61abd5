package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

type SetupHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewSetupHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{config: cfg, store: st, logger: logger}
}

// GET /setup/status 查询是否已完成初始化
func (h *SetupHandler) Status(w http.ResponseWriter, r *http.Request) {
	appCfg, err := h.store.ReadConfig()
	if err != nil {
		h.logger.Error("read config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]bool{"initialized": appCfg.Initialized})
}

// POST /setup/init 一次性创建管理员账户，之后不可再创建（单管理员模型）
func (h *SetupHandler) Init(w http.ResponseWriter, r *http.Request) {
	appCfg, err := h.store.ReadConfig()
	if err != nil {
		h.logger.Error("read config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 检查是否已初始化
	if appCfg.Initialized {
		utils.WriteBadRequestResponse(w, "Already initialized")
		return
	}

	var req models.InitRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if len(username) < 3 {
		utils.WriteBadRequestResponse(w, "Username must be at least 3 characters")
		return
	}
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

	appCfg.Initialized = true
	appCfg.Admin = models.AdminAccount{
		Username:     username,
		PasswordHash: passwordHash,
	}
	appCfg.CreatedAt = utils.CurrentTimestamp()

	if err := h.store.WriteConfig(appCfg); err != nil {
		h.logger.Error("write config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	h.logger.Info("admin initialized", zap.String("username", username))
	utils.WriteOKResponse(w)
}
