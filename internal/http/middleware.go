package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"
)

type actorCtxKey struct{}

// requireAuth 后台路由的 bearer 鉴权：无效/过期 token 统一回
// code=60401 + HTTP 401（前端拦截器据此跳转登录页）
func requireAuth(auth *service.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			writeJSON(w, http.StatusUnauthorized, FailCode(ResultTokenExpired, "missing bearer token"))
			return
		}

		actor, err := auth.VerifyToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, FailCode(ResultTokenExpired, "invalid or expired token"))
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), actorCtxKey{}, actor)))
	}
}

// actorFrom 取出鉴权中间件放进去的操作者上下文
func actorFrom(r *http.Request) domain.Actor {
	if a, ok := r.Context().Value(actorCtxKey{}).(domain.Actor); ok {
		return a
	}
	return domain.Actor{}
}
