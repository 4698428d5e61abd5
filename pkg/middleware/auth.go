package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

// ContextKey 用于在context中存储管理员身份的键
type ContextKey string

const (
	AdminContextKey ContextKey = "admin"
)

// AuthMiddleware 管理端认证中间件。
// 从 Authorization 头提取 Bearer token；头缺失或格式错误时直接失败，
// 不读取存储。完成初始化之前任何 token 均无效。
func AuthMiddleware(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 从Authorization头获取token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}

			// 检查Bearer前缀
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			// 每个请求重新读取配置，密钥随安装实例而不同
			appCfg, err := st.ReadConfig()
			if err != nil {
				utils.WriteInternalServerErrorResponse(w, "Internal server error")
				return
			}

			// 初始化之前不存在有效token
			if !appCfg.Initialized {
				utils.WriteUnauthorizedResponse(w, "Not initialized")
				return
			}

			admin := utils.NewJWTService(appCfg.JWTSecret).VerifyToken(tokenString)
			if admin == nil {
				utils.WriteUnauthorizedResponse(w, "Invalid token")
				return
			}

			// 将管理员身份添加到请求context中
			ctx := context.WithValue(r.Context(), AdminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminFromContext 从context中获取管理员身份
func GetAdminFromContext(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(AdminContextKey).(*models.Admin)
	return admin, ok
}

// RequireAdmin 要求请求必须已认证的辅助函数
func RequireAdmin(ctx context.Context) (*models.Admin, error) {
	admin, ok := GetAdminFromContext(ctx)
	if !ok || admin == nil {
		return nil, fmt.Errorf("admin not authenticated")
	}
	return admin, nil
}
