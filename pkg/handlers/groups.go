package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

type GroupsHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewGroupsHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *GroupsHandler {
	return &GroupsHandler{config: cfg, store: st, logger: logger}
}

// GET /admin/groups 获取所有分组（按 order 升序，相同 order 保持插入顺序）
func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	groups := data.Groups
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Order < groups[j].Order
	})

	utils.WriteSuccessResponse(w, groups)
}

// POST /admin/groups 创建分组，order 取现有最大值+1
func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.GroupCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.WriteBadRequestResponse(w, "Name is required")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	now := utils.CurrentTimestamp()
	group := models.Group{
		ID:        utils.GenerateID(),
		Name:      name,
		Order:     maxGroupOrder(data.Groups) + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data.Groups = append(data.Groups, group)
	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, group)
}

// PUT /admin/groups/{id} 更新分组名称
func (h *GroupsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.GroupUpdateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.WriteBadRequestResponse(w, "Name is required")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	idx := findGroup(data.Groups, id)
	if idx == -1 {
		utils.WriteNotFoundResponse(w, "Group not found")
		return
	}

	data.Groups[idx].Name = name
	data.Groups[idx].UpdatedAt = utils.CurrentTimestamp()

	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, data.Groups[idx])
}

// DELETE /admin/groups/{id} 删除分组及其下所有网站（级联删除）
func (h *GroupsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	idx := findGroup(data.Groups, id)
	if idx == -1 {
		utils.WriteNotFoundResponse(w, "Group not found")
		return
	}

	data.Groups = append(data.Groups[:idx], data.Groups[idx+1:]...)

	remaining := data.Sites[:0]
	for _, site := range data.Sites {
		if site.GroupID != id {
			remaining = append(remaining, site)
		}
	}
	data.Sites = remaining

	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteOKResponse(w)
}

// PUT /admin/groups/reorder 批量更新分组排序；未匹配的 id 静默忽略
func (h *GroupsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req models.GroupReorderRequest
	if err := utils.ParseJSONBody(r, &req); err != nil || req.GroupOrders == nil {
		utils.WriteBadRequestResponse(w, "Invalid data")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	for _, item := range req.GroupOrders {
		if idx := findGroup(data.Groups, item.ID); idx != -1 {
			data.Groups[idx].Order = item.Order
		}
	}

	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteOKResponse(w)
}

// findGroup 返回指定 id 分组的下标，不存在时返回 -1
func findGroup(groups []models.Group, id string) int {
	for i := range groups {
		if groups[i].ID == id {
			return i
		}
	}
	return -1
}

// maxGroupOrder 返回现有分组的最大 order，空集合返回 0
func maxGroupOrder(groups []models.Group) int {
	max := 0
	for _, g := range groups {
		if g.Order > max {
			max = g.Order
		}
	}
	return max
}
