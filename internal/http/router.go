package httpapi

import (
	"net/http"
	"strings"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterDownloadRoutes 注册游戏服务器下载面路由（服务器密钥鉴权，无 JWT）
func (r *Router) RegisterDownloadRoutes(d *DownloadHandler) {
	r.Handle("/download/api/v1/configs/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		configType := strings.TrimPrefix(req.URL.Path, "/download/api/v1/configs/")
		if configType == "" || strings.Contains(configType, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		d.GetConfig(w, req, configType)
	})
}

// RegisterAuthRoutes 注册登录路由
func (r *Router) RegisterAuthRoutes(a *AuthHandler) {
	r.Handle("/auth/api/v1/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.Login(w, req)
	})
}

// RegisterAdminRoutes 注册后台管理面路由（全部走 bearer 鉴权）
func (r *Router) RegisterAdminRoutes(
	auth *service.AuthService,
	configs *ConfigHandler,
	mappings *MappingHandler,
	servers *ServerHandler,
) {
	// configs
	r.Handle("/admin/api/v1/configs", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			configs.List(w, req)
		case http.MethodPost:
			configs.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// configs/{id} 及其子资源
	r.Handle("/admin/api/v1/configs/", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/configs/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch {
		case sub == "" && req.Method == http.MethodGet:
			configs.Get(w, req, id)
		case sub == "" && req.Method == http.MethodPut:
			configs.Edit(w, req, id)
		case sub == "" && req.Method == http.MethodDelete:
			configs.Delete(w, req, id)
		case sub == "versions" && req.Method == http.MethodGet:
			configs.Versions(w, req, id)
		case sub == "publish" && req.Method == http.MethodPost:
			configs.Publish(w, req, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	// mappings
	r.Handle("/admin/api/v1/mappings", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			mappings.List(w, req)
		case http.MethodPost:
			mappings.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	r.Handle("/admin/api/v1/mappings/", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/mappings/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if id == "export" {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			mappings.Export(w, req)
			return
		}

		switch req.Method {
		case http.MethodPut:
			mappings.Update(w, req, id)
		case http.MethodDelete:
			mappings.Delete(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// servers
	r.Handle("/admin/api/v1/servers", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			servers.ListServers(w, req)
		case http.MethodPost:
			servers.CreateServer(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	// servers/{id}/wipes | wipes/current | next-wipe | schedules
	r.Handle("/admin/api/v1/servers/", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/servers/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch {
		case sub == "wipes" && req.Method == http.MethodPost:
			servers.RegisterWipe(w, req, id)
		case sub == "wipes" && req.Method == http.MethodGet:
			servers.ListWipes(w, req, id)
		case sub == "wipes/current" && req.Method == http.MethodGet:
			servers.CurrentWipe(w, req, id)
		case sub == "next-wipe" && req.Method == http.MethodGet:
			servers.NextWipe(w, req, id)
		case sub == "schedules" && req.Method == http.MethodGet:
			servers.ListSchedules(w, req, id)
		case sub == "schedules" && req.Method == http.MethodPost:
			servers.CreateSchedule(w, req, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	// schedules/{id}
	r.Handle("/admin/api/v1/schedules/", requireAuth(auth, func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/admin/api/v1/schedules/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		servers.DeleteSchedule(w, req, id)
	}))
}
