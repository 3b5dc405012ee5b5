package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// DownloadHandler 游戏服务器拉取配置的下载面
// 不走后台 JWT，鉴权靠服务器身份密钥（X-Server-Key）
type DownloadHandler struct {
	resolver *service.ResolverService
	logger   *zap.Logger
}

func NewDownloadHandler(resolver *service.ResolverService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{resolver: resolver, logger: logger}
}

// GetConfig GET /download/api/v1/configs/{type}
// - X-Server-Key 头或 ?server_key= 提供服务器身份密钥
// - ?wiped_at=<unix秒> 显式覆盖 wipe 起点（插件重启后自报）
func (h *DownloadHandler) GetConfig(w http.ResponseWriter, r *http.Request, configType string) {
	ct := domain.ConfigType(configType)
	if !ct.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail("unknown config type: "+configType))
		return
	}

	serverKey := r.Header.Get("X-Server-Key")
	if serverKey == "" {
		serverKey = r.URL.Query().Get("server_key")
	}
	if serverKey == "" {
		writeJSON(w, http.StatusBadRequest, Fail("server key is required"))
		return
	}

	var explicitWipedAt *time.Time
	if raw := r.URL.Query().Get("wiped_at"); raw != "" {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("wiped_at must be a unix timestamp"))
			return
		}
		t := time.Unix(sec, 0).UTC()
		explicitWipedAt = &t
	}

	resolved, err := h.resolver.Resolve(r.Context(), ct, serverKey, time.Now(), explicitWipedAt)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resolved))
}

// writeResolveError 解析失败必须是类型化错误码，插件侧据此决定
// 重试还是按兜底配置启动
func (h *DownloadHandler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrServerNotFound):
		writeJSON(w, http.StatusNotFound, FailCode(ResultServerNotFound, "server not registered"))
	case errors.Is(err, domain.ErrNoLiveConfig):
		writeJSON(w, http.StatusNotFound, FailCode(ResultNoLiveConfig, "no live published config for this type"))
	case errors.Is(err, domain.ErrNoApplicableMapping):
		writeJSON(w, http.StatusNotFound, FailCode(ResultNoApplicableMapping, "no applicable mapping at this time"))
	case errors.Is(err, domain.ErrPublishedVersionMissing):
		writeJSON(w, http.StatusInternalServerError, FailCode(ResultPublishedVersionMissing, "published version snapshot missing"))
	default:
		h.logger.Error("resolve failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
