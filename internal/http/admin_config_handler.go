package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// ConfigHandler 配置文档 + 版本历史的后台管理面
type ConfigHandler struct {
	versions *service.VersionService
	logger   *zap.Logger
}

func NewConfigHandler(versions *service.VersionService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{versions: versions, logger: logger}
}

// configView 后台响应里的配置投影（不回 password 之类敏感列，这里主要是
// 统一时间格式）
type configView struct {
	ConfigID         string            `json:"config_id"`
	ConfigType       domain.ConfigType `json:"config_type"`
	ConfigName       string            `json:"config_name"`
	Description      string            `json:"description"`
	Content          json.RawMessage   `json:"content,omitempty"`
	CurrentVersion   int               `json:"current_version"`
	PublishedVersion *int              `json:"published_version"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

func toConfigView(c *domain.ConfigDocument, withContent bool) configView {
	v := configView{
		ConfigID:         c.ConfigID,
		ConfigType:       c.ConfigType,
		ConfigName:       c.ConfigName,
		Description:      c.Description,
		CurrentVersion:   c.CurrentVersion,
		PublishedVersion: c.PublishedVersion,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
	if withContent {
		v.Content = c.Content
	}
	return v
}

// List GET /admin/api/v1/configs?config_type=&page=&size=
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	configType := domain.ConfigType(q.Get("config_type"))
	if configType != "" && !configType.Valid() {
		writeJSON(w, http.StatusBadRequest, Fail("unknown config type"))
		return
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.versions.ListConfigs(r.Context(), configType, page, size)
	if err != nil {
		h.logger.Error("list configs failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	views := make([]configView, 0, len(items))
	for _, c := range items {
		views = append(views, toConfigView(c, false))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	}))
}

// Create POST /admin/api/v1/configs
func (h *ConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigType  string          `json:"config_type"`
		ConfigName  string          `json:"config_name"`
		Description string          `json:"description"`
		Content     json.RawMessage `json:"content"`
	}
	if err := readBodyJSON(r, 4<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	cfg, err := h.versions.CreateConfig(r.Context(), actorFrom(r), domain.ConfigType(req.ConfigType), req.ConfigName, req.Description, req.Content)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(toConfigView(cfg, true)))
}

// Get GET /admin/api/v1/configs/{id}
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request, configID string) {
	cfg, err := h.versions.GetConfig(r.Context(), configID)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toConfigView(cfg, true)))
}

// Edit PUT /admin/api/v1/configs/{id}
// 每次编辑产生一个新的不可变版本快照
func (h *ConfigHandler) Edit(w http.ResponseWriter, r *http.Request, configID string) {
	var req struct {
		Content json.RawMessage `json:"content"`
	}
	if err := readBodyJSON(r, 4<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	version, err := h.versions.EditConfig(r.Context(), actorFrom(r), configID, req.Content)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"config_id": configID, "version": version}))
}

// Delete DELETE /admin/api/v1/configs/{id}
func (h *ConfigHandler) Delete(w http.ResponseWriter, r *http.Request, configID string) {
	if err := h.versions.DeleteConfig(r.Context(), actorFrom(r), configID); err != nil {
		h.writeConfigError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"config_id": configID}))
}

// Versions GET /admin/api/v1/configs/{id}/versions?page=&size=
func (h *ConfigHandler) Versions(w http.ResponseWriter, r *http.Request, configID string) {
	q := r.URL.Query()
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.versions.ListVersions(r.Context(), configID, page, size)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}

	type versionView struct {
		Version   int    `json:"version"`
		CreatedAt string `json:"created_at"`
	}
	views := make([]versionView, 0, len(items))
	for _, v := range items {
		views = append(views, versionView{
			Version:   v.Version,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	}))
}

// Publish POST /admin/api/v1/configs/{id}/publish
// body: {"version": N}；发布与回滚共用一个动作（回滚=发布更早的版本号）
func (h *ConfigHandler) Publish(w http.ResponseWriter, r *http.Request, configID string) {
	var req struct {
		Version int `json:"version"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Version < 1 {
		writeJSON(w, http.StatusBadRequest, Fail("version must be >= 1"))
		return
	}

	if err := h.versions.Publish(r.Context(), actorFrom(r), configID, req.Version); err != nil {
		h.writeConfigError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"config_id": configID, "published_version": req.Version}))
}

func (h *ConfigHandler) writeConfigError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		writeJSON(w, http.StatusNotFound, Fail("config not found"))
	case errors.Is(err, domain.ErrVersionNotFound):
		writeJSON(w, http.StatusNotFound, Fail("version not found"))
	default:
		h.logger.Error("config operation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
