package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

type AuthHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{config: cfg, store: st, logger: logger}
}

// POST /auth/login 校验管理员凭据并签发令牌
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	appCfg, err := h.store.ReadConfig()
	if err != nil {
		h.logger.Error("read config failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	if !appCfg.Initialized {
		utils.WriteBadRequestResponse(w, "Not initialized")
		return
	}

	var req models.LoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	// 用户名与密码任一不匹配均返回同样的提示，不泄露具体哪项错误
	if req.Username != appCfg.Admin.Username ||
		!utils.VerifyPassword(req.Password, appCfg.Admin.PasswordHash) {
		utils.WriteUnauthorizedResponse(w, "Invalid credentials")
		return
	}

	token, err := utils.NewJWTService(appCfg.JWTSecret).CreateToken(req.Username)
	if err != nil {
		h.logger.Error("create token failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, models.LoginResponse{Token: token})
}
