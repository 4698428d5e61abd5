package middleware

import (
	"net/http"
	"strings"
)

// Normalize 请求路径规范化：去掉路径两端的空白与多余的尾部斜杠，
// 让 "/sites/" 与 "/sites" 命中同一路由。根路径 "/" 不处理。
func Normalize() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := strings.TrimSpace(r.URL.Path)
			for len(p) > 1 && strings.HasSuffix(p, "/") {
				p = strings.TrimSuffix(p, "/")
			}
			if p != "" && p != r.URL.Path {
				r.URL.Path = p
				// 路由按规范化后的路径匹配
				r.URL.RawPath = ""
			}
			next.ServeHTTP(w, r)
		})
	}
}
