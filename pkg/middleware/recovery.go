package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/utils"
)

// Recovery 恢复中间件，处理panic并返回统一的内部错误。
// 详细信息只进服务端日志，不跨越响应边界。
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						zap.Any("error", err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)

					utils.WriteInternalServerErrorResponse(w, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
