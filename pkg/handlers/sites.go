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

type SitesHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewSitesHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *SitesHandler {
	return &SitesHandler{config: cfg, store: st, logger: logger}
}

// GET /sites 公开读取完整数据集（无需认证）
func (h *SitesHandler) PublicData(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, data)
}

// GET /admin/sites 获取所有网站（先按 groupId 再按 order 排序）
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	sites := data.Sites
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].GroupID != sites[j].GroupID {
			return sites[i].GroupID < sites[j].GroupID
		}
		return sites[i].Order < sites[j].Order
	})

	utils.WriteSuccessResponse(w, sites)
}

// POST /admin/sites 创建网站，order 取所属分组内最大值+1
func (h *SitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SiteCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	title := strings.TrimSpace(req.Title)
	publicURL := strings.TrimSpace(req.PublicURL)
	if req.GroupID == "" || title == "" || req.Icon.Value == "" || publicURL == "" || req.OpenMode == "" {
		utils.WriteBadRequestResponse(w, "Missing required fields")
		return
	}
	if !req.Icon.Type.Valid() {
		utils.WriteBadRequestResponse(w, "Invalid icon type")
		return
	}
	if !req.OpenMode.Valid() {
		utils.WriteBadRequestResponse(w, "Invalid open mode")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 检查分组是否存在；校验失败时不修改存储
	if findGroup(data.Groups, req.GroupID) == -1 {
		utils.WriteBadRequestResponse(w, "Group not found")
		return
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	now := utils.CurrentTimestamp()
	site := models.Site{
		ID:          utils.GenerateID(),
		GroupID:     req.GroupID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
		PublicURL:   publicURL,
		PrivateURL:  strings.TrimSpace(req.PrivateURL),
		OpenMode:    req.OpenMode,
		Tags:        tags,
		Enabled:     req.Enabled == nil || *req.Enabled,
		Order:       maxSiteOrder(data.Sites, req.GroupID) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data.Sites = append(data.Sites, site)
	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, site)
}

// PUT /admin/sites/{id} 部分更新网站。
// 更换分组时 order 相对新分组重新计算；其余情况 order 保持不变。
func (h *SitesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SiteUpdateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if req.Icon != nil && !req.Icon.Type.Valid() {
		utils.WriteBadRequestResponse(w, "Invalid icon type")
		return
	}
	if req.OpenMode != nil && !req.OpenMode.Valid() {
		utils.WriteBadRequestResponse(w, "Invalid open mode")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	idx := findSite(data.Sites, id)
	if idx == -1 {
		utils.WriteNotFoundResponse(w, "Site not found")
		return
	}

	site := &data.Sites[idx]

	// 如果更换分组，相对新分组重新计算 order（旧 order 作废）
	if req.GroupID != nil && *req.GroupID != site.GroupID {
		if findGroup(data.Groups, *req.GroupID) == -1 {
			utils.WriteBadRequestResponse(w, "Group not found")
			return
		}
		site.Order = maxSiteOrder(data.Sites, *req.GroupID) + 1
		site.GroupID = *req.GroupID
	}

	if req.Title != nil {
		site.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		site.Description = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil {
		site.Icon = *req.Icon
	}
	if req.PublicURL != nil {
		site.PublicURL = strings.TrimSpace(*req.PublicURL)
	}
	if req.PrivateURL != nil {
		site.PrivateURL = strings.TrimSpace(*req.PrivateURL)
	}
	if req.OpenMode != nil {
		site.OpenMode = *req.OpenMode
	}
	if req.Tags != nil {
		site.Tags = *req.Tags
	}
	if req.Enabled != nil {
		site.Enabled = *req.Enabled
	}
	site.UpdatedAt = utils.CurrentTimestamp()

	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, *site)
}

// DELETE /admin/sites/{id} 删除网站（不级联）
func (h *SitesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	idx := findSite(data.Sites, id)
	if idx == -1 {
		utils.WriteNotFoundResponse(w, "Site not found")
		return
	}

	data.Sites = append(data.Sites[:idx], data.Sites[idx+1:]...)
	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteOKResponse(w)
}

// PUT /admin/sites/reorder 批量更新网站排序，可同时变更所属分组；
// 未匹配的 id 静默忽略，不影响整批操作
func (h *SitesHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req models.SiteReorderRequest
	if err := utils.ParseJSONBody(r, &req); err != nil || req.SiteOrders == nil {
		utils.WriteBadRequestResponse(w, "Invalid data")
		return
	}

	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	now := utils.CurrentTimestamp()
	for _, item := range req.SiteOrders {
		idx := findSite(data.Sites, item.ID)
		if idx == -1 {
			continue
		}
		data.Sites[idx].Order = item.Order
		if item.GroupID != nil {
			data.Sites[idx].GroupID = *item.GroupID
		}
		data.Sites[idx].UpdatedAt = now
	}

	if err := h.store.WriteSites(data); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteOKResponse(w)
}

// findSite 返回指定 id 网站的下标，不存在时返回 -1
func findSite(sites []models.Site, id string) int {
	for i := range sites {
		if sites[i].ID == id {
			return i
		}
	}
	return -1
}

// maxSiteOrder 返回指定分组内网站的最大 order，空集合返回 0
func maxSiteOrder(sites []models.Site, groupID string) int {
	max := 0
	for _, s := range sites {
		if s.GroupID == groupID && s.Order > max {
			max = s.Order
		}
	}
	return max
}
