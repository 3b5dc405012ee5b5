package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// MappingHandler 服务器-配置映射的后台管理面
type MappingHandler struct {
	mappings *service.MappingService
	logger   *zap.Logger
}

func NewMappingHandler(mappings *service.MappingService, logger *zap.Logger) *MappingHandler {
	return &MappingHandler{mappings: mappings, logger: logger}
}

type mappingView struct {
	MappingID     string            `json:"mapping_id"`
	ServerID      string            `json:"server_id"`
	ConfigID      string            `json:"config_id"`
	ConfigType    domain.ConfigType `json:"config_type"`
	IsLive        bool              `json:"is_live"`
	OffsetMinutes *int              `json:"offset_minutes"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

func toMappingView(m *domain.ServerMapping) mappingView {
	return mappingView{
		MappingID:     m.MappingID,
		ServerID:      m.ServerID,
		ConfigID:      m.ConfigID,
		ConfigType:    m.ConfigType,
		IsLive:        m.IsLive,
		OffsetMinutes: m.OffsetMinutes,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.Format(time.RFC3339),
	}
}

// List GET /admin/api/v1/mappings?server_id=&config_id=&config_type=&live_only=&page=&size=
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.MappingFilters{
		ServerID:   q.Get("server_id"),
		ConfigID:   q.Get("config_id"),
		ConfigType: domain.ConfigType(q.Get("config_type")),
		LiveOnly:   q.Get("live_only") == "true",
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.mappings.ListMappings(r.Context(), filters, page, size)
	if err != nil {
		h.logger.Error("list mappings failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	views := make([]mappingView, 0, len(items))
	for _, m := range items {
		views = append(views, toMappingView(m))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	}))
}

type mappingRequest struct {
	ServerID      string `json:"server_id"`
	ConfigID      string `json:"config_id"`
	IsLive        bool   `json:"is_live"`
	OffsetMinutes *int   `json:"offset_minutes"`
}

// Create POST /admin/api/v1/mappings
func (h *MappingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ServerID == "" || req.ConfigID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("server_id and config_id are required"))
		return
	}
	if req.OffsetMinutes != nil && *req.OffsetMinutes < 0 {
		writeJSON(w, http.StatusBadRequest, Fail("offset_minutes must be >= 0"))
		return
	}

	m, err := h.mappings.CreateMapping(r.Context(), actorFrom(r), &domain.ServerMapping{
		ServerID:      req.ServerID,
		ConfigID:      req.ConfigID,
		IsLive:        req.IsLive,
		OffsetMinutes: req.OffsetMinutes,
	})
	if err != nil {
		h.writeMappingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toMappingView(m)))
}

// Update PUT /admin/api/v1/mappings/{id}
func (h *MappingHandler) Update(w http.ResponseWriter, r *http.Request, mappingID string) {
	var req mappingRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	m, err := h.mappings.UpdateMapping(r.Context(), actorFrom(r), mappingID, &domain.ServerMapping{
		ConfigID:      req.ConfigID,
		IsLive:        req.IsLive,
		OffsetMinutes: req.OffsetMinutes,
	})
	if err != nil {
		h.writeMappingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toMappingView(m)))
}

// Delete DELETE /admin/api/v1/mappings/{id}
func (h *MappingHandler) Delete(w http.ResponseWriter, r *http.Request, mappingID string) {
	if err := h.mappings.DeleteMapping(r.Context(), actorFrom(r), mappingID); err != nil {
		h.writeMappingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"mapping_id": mappingID}))
}

// Export GET /admin/api/v1/mappings/export
// 导出全量映射排期 xlsx（运维对账用）
func (h *MappingHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.mappings.FleetSchedule(r.Context())
	if err != nil {
		h.logger.Error("fleet schedule export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	data, err := buildFleetScheduleXLSX(rows)
	if err != nil {
		h.logger.Error("build xlsx failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	filename := "mapping-schedule-" + time.Now().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *MappingHandler) writeMappingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMappingNotFound):
		writeJSON(w, http.StatusNotFound, Fail("mapping not found"))
	case errors.Is(err, domain.ErrServerNotFound):
		writeJSON(w, http.StatusNotFound, Fail("server not found"))
	case errors.Is(err, domain.ErrConfigNotFound):
		writeJSON(w, http.StatusNotFound, Fail("config not found"))
	case errors.Is(err, domain.ErrDuplicateBaseMapping):
		writeJSON(w, http.StatusConflict, Fail("a live base mapping already exists for this server and type"))
	default:
		h.logger.Error("mapping operation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
