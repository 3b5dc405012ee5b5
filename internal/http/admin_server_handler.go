package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// ServerHandler 服务器登记、wipe 记录与 wipe 排期的后台管理面
type ServerHandler struct {
	servers   *service.ServerService
	wipes     *service.WipeService
	scheduler *service.WipeScheduler
	logger    *zap.Logger
}

func NewServerHandler(
	servers *service.ServerService,
	wipes *service.WipeService,
	scheduler *service.WipeScheduler,
	logger *zap.Logger,
) *ServerHandler {
	return &ServerHandler{servers: servers, wipes: wipes, scheduler: scheduler, logger: logger}
}

type serverView struct {
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	Region     string `json:"region"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`

	// 只在创建响应里回显
	IdentityKey string `json:"identity_key,omitempty"`
}

func toServerView(s *domain.Server, withKey bool) serverView {
	v := serverView{
		ServerID:   s.ServerID,
		ServerName: s.ServerName,
		Region:     s.Region,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if withKey {
		v.IdentityKey = s.IdentityKey
	}
	return v
}

type wipeView struct {
	WipeID     string          `json:"wipe_id"`
	ServerID   string          `json:"server_id"`
	WipeNumber int             `json:"wipe_number"`
	WipedAt    string          `json:"wiped_at"`
	EndedAt    *string         `json:"ended_at"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

func toWipeView(w *domain.ServerWipe) wipeView {
	v := wipeView{
		WipeID:     w.WipeID,
		ServerID:   w.ServerID,
		WipeNumber: w.WipeNumber,
		WipedAt:    w.WipedAt.Format(time.RFC3339),
		Metadata:   w.Metadata,
	}
	if w.EndedAt != nil {
		s := w.EndedAt.Format(time.RFC3339)
		v.EndedAt = &s
	}
	return v
}

// ListServers GET /admin/api/v1/servers?region=&active_only=&page=&size=
func (h *ServerHandler) ListServers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.ServerFilters{
		Region:     q.Get("region"),
		ActiveOnly: q.Get("active_only") == "true",
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.servers.ListServers(r.Context(), filters, page, size)
	if err != nil {
		h.logger.Error("list servers failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	views := make([]serverView, 0, len(items))
	for _, s := range items {
		views = append(views, toServerView(s, false))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	}))
}

// CreateServer POST /admin/api/v1/servers
func (h *ServerHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServerName string `json:"server_name"`
		Region     string `json:"region"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	srv, err := h.servers.CreateServer(r.Context(), actorFrom(r), req.ServerName, req.Region)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(toServerView(srv, true)))
}

// RegisterWipe POST /admin/api/v1/servers/{id}/wipes
// wiped_at 缺省取当前时间（unix 秒）
func (h *ServerHandler) RegisterWipe(w http.ResponseWriter, r *http.Request, serverID string) {
	var req struct {
		WipeNumber int             `json:"wipe_number"`
		WipedAt    *int64          `json:"wiped_at"`
		Metadata   json.RawMessage `json:"metadata"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.WipeNumber < 1 {
		writeJSON(w, http.StatusBadRequest, Fail("wipe_number must be >= 1"))
		return
	}

	wipedAt := time.Now().UTC()
	if req.WipedAt != nil {
		wipedAt = time.Unix(*req.WipedAt, 0).UTC()
	}

	wipe, err := h.wipes.RegisterWipe(r.Context(), actorFrom(r), serverID, req.WipeNumber, wipedAt, req.Metadata)
	if err != nil {
		h.writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toWipeView(wipe)))
}

// ListWipes GET /admin/api/v1/servers/{id}/wipes?page=&size=
func (h *ServerHandler) ListWipes(w http.ResponseWriter, r *http.Request, serverID string) {
	q := r.URL.Query()
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.wipes.ListWipes(r.Context(), serverID, page, size)
	if err != nil {
		h.writeServerError(w, err)
		return
	}

	views := make([]wipeView, 0, len(items))
	for _, wp := range items {
		views = append(views, toWipeView(wp))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": views,
		"total": total,
		"page":  page,
		"size":  size,
	}))
}

// CurrentWipe GET /admin/api/v1/servers/{id}/wipes/current
func (h *ServerHandler) CurrentWipe(w http.ResponseWriter, r *http.Request, serverID string) {
	wipe, err := h.wipes.CurrentWipe(r.Context(), serverID)
	if err != nil {
		h.writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toWipeView(wipe)))
}

// NextWipe GET /admin/api/v1/servers/{id}/next-wipe
func (h *ServerHandler) NextWipe(w http.ResponseWriter, r *http.Request, serverID string) {
	next, err := h.scheduler.NextServerWipe(r.Context(), serverID, time.Now())
	if err != nil {
		h.writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"schedule_id": next.ScheduleID,
		"wipe_type":   next.Type,
		"at":          next.When.Format(time.RFC3339),
		"at_unix":     next.When.Unix(),
	}))
}

// ListSchedules GET /admin/api/v1/servers/{id}/schedules?active_only=
func (h *ServerHandler) ListSchedules(w http.ResponseWriter, r *http.Request, serverID string) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	items, err := h.scheduler.ListSchedules(r.Context(), serverID, activeOnly)
	if err != nil {
		h.writeServerError(w, err)
		return
	}

	type scheduleView struct {
		ScheduleID string          `json:"schedule_id"`
		ServerID   string          `json:"server_id"`
		DayOfWeek  int             `json:"day_of_week"`
		Hour       int             `json:"hour"`
		Minute     int             `json:"minute"`
		WipeType   domain.WipeType `json:"wipe_type"`
		IsActive   bool            `json:"is_active"`
	}
	views := make([]scheduleView, 0, len(items))
	for _, s := range items {
		views = append(views, scheduleView{
			ScheduleID: s.ScheduleID,
			ServerID:   s.ServerID,
			DayOfWeek:  s.DayOfWeek,
			Hour:       s.Hour,
			Minute:     s.Minute,
			WipeType:   s.WipeType,
			IsActive:   s.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// CreateSchedule POST /admin/api/v1/servers/{id}/schedules
func (h *ServerHandler) CreateSchedule(w http.ResponseWriter, r *http.Request, serverID string) {
	var req struct {
		DayOfWeek int    `json:"day_of_week"`
		Hour      int    `json:"hour"`
		Minute    int    `json:"minute"`
		WipeType  string `json:"wipe_type"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 || req.Hour < 0 || req.Hour > 23 || req.Minute < 0 || req.Minute > 59 {
		writeJSON(w, http.StatusBadRequest, Fail("schedule slot out of range"))
		return
	}
	if !domain.WipeType(req.WipeType).Valid() {
		writeJSON(w, http.StatusBadRequest, Fail("unknown wipe type: "+req.WipeType))
		return
	}

	sched := &domain.WipeSchedule{
		ServerID:  serverID,
		DayOfWeek: req.DayOfWeek,
		Hour:      req.Hour,
		Minute:    req.Minute,
		WipeType:  domain.WipeType(req.WipeType),
		IsActive:  true,
	}
	scheduleID, err := h.scheduler.CreateSchedule(r.Context(), actorFrom(r), sched)
	if err != nil {
		h.writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"schedule_id": scheduleID}))
}

// DeleteSchedule DELETE /admin/api/v1/schedules/{id}
func (h *ServerHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request, scheduleID string) {
	if err := h.scheduler.DeleteSchedule(r.Context(), actorFrom(r), scheduleID); err != nil {
		h.writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"schedule_id": scheduleID}))
}

func (h *ServerHandler) writeServerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrServerNotFound):
		writeJSON(w, http.StatusNotFound, Fail("server not found"))
	case errors.Is(err, domain.ErrWipeNotFound):
		writeJSON(w, http.StatusNotFound, Fail("no current wipe"))
	case errors.Is(err, domain.ErrScheduleNotFound):
		writeJSON(w, http.StatusNotFound, Fail("schedule not found"))
	case errors.Is(err, domain.ErrNoSchedule):
		writeJSON(w, http.StatusNotFound, Fail("no active schedules"))
	case errors.Is(err, domain.ErrDuplicateWipeNumber):
		writeJSON(w, http.StatusConflict, Fail("wipe_number already registered"))
	case errors.Is(err, domain.ErrDuplicateScheduleSlot):
		writeJSON(w, http.StatusConflict, Fail("an active schedule already uses this slot"))
	default:
		h.logger.Error("server operation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
