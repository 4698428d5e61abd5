package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

// faviconProbePaths 按惯例尝试的 favicon 路径（按顺序）
var faviconProbePaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/favicon.svg",
	"/apple-touch-icon.png",
}

// faviconLinkPattern 从HTML中提取 <link rel="icon|shortcut icon|apple-touch-icon"> 的 href
var faviconLinkPattern = regexp.MustCompile(`(?i)<link[^>]*(?:rel=["'](?:icon|shortcut icon|apple-touch-icon)["'][^>]*href=["']([^"']+)["']|href=["']([^"']+)["'][^>]*rel=["'](?:icon|shortcut icon|apple-touch-icon)["'])[^>]*>`)

const (
	faviconUserAgent = "Mozilla/5.0 (compatible; NavPanelBot/1.0)"
	maxHTMLBytes     = 512 * 1024
)

type IconsHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger

	// 出站请求都有限定超时，外部站点不响应不能拖垮本请求
	probeClient *http.Client
	fetchClient *http.Client
}

func NewIconsHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *IconsHandler {
	return &IconsHandler{
		config:      cfg,
		store:       st,
		logger:      logger,
		probeClient: &http.Client{Timeout: 5 * time.Second},
		fetchClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GET /admin/favicon?url= 发现目标网站的 favicon 地址。
// 先逐个探测惯例路径，失败后抓取页面HTML解析 <link> 标签；
// 每一步失败都吞掉错误继续下一策略，全部失败返回404。
func (h *IconsHandler) Favicon(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		utils.WriteBadRequestResponse(w, "URL is required")
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		utils.WriteBadRequestResponse(w, "Invalid URL or fetch failed")
		return
	}
	origin := target.Scheme + "://" + target.Host

	// 尝试多种 favicon 路径
	for _, path := range faviconProbePaths {
		faviconURL := origin + path
		if h.probeExists(faviconURL) {
			utils.WriteSuccessResponse(w, map[string]string{"url": faviconURL})
			return
		}
	}

	// 尝试解析 HTML 获取 favicon
	if iconURL := h.faviconFromHTML(target, origin); iconURL != "" {
		utils.WriteSuccessResponse(w, map[string]string{"url": iconURL})
		return
	}

	utils.WriteNotFoundResponse(w, "Favicon not found")
}

// probeExists 用HEAD请求做轻量存在性检查，任何失败都视为不存在
func (h *IconsHandler) probeExists(faviconURL string) bool {
	req, err := http.NewRequest(http.MethodHead, faviconURL, nil)
	if err != nil {
		return false
	}

	resp, err := h.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// faviconFromHTML 抓取页面并用正则提取图标链接，返回解析后的绝对URL
func (h *IconsHandler) faviconFromHTML(target *url.URL, origin string) string {
	req, err := http.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", faviconUserAgent)

	resp, err := h.fetchClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return ""
	}

	match := faviconLinkPattern.FindSubmatch(html)
	if match == nil {
		return ""
	}

	iconPath := string(match[1])
	if iconPath == "" {
		iconPath = string(match[2])
	}
	if iconPath == "" {
		return ""
	}

	// 相对路径相对站点源解析
	ref, err := url.Parse(iconPath)
	if err != nil {
		return ""
	}
	base, err := url.Parse(origin + "/")
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// iconifySearchResponse 图标搜索服务的响应（只取需要的字段）
type iconifySearchResponse struct {
	Icons []string `json:"icons"`
}

// GET /admin/iconify/search?q= 代理图标搜索。
// 上游失败或超时一律返回空结果，不向调用方传播错误。
func (h *IconsHandler) IconifySearch(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "q", "")
	if len(query) < 2 {
		utils.WriteSuccessResponse(w, map[string][]string{"icons": {}})
		return
	}

	searchURL := fmt.Sprintf("%s/search?query=%s&limit=50", h.config.IconifyAPI, url.QueryEscape(query))
	resp, err := h.fetchClient.Get(searchURL)
	if err != nil {
		h.logger.Warn("iconify search failed", zap.Error(err))
		utils.WriteSuccessResponse(w, map[string][]string{"icons": {}})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		utils.WriteSuccessResponse(w, map[string][]string{"icons": {}})
		return
	}

	var result iconifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		utils.WriteSuccessResponse(w, map[string][]string{"icons": {}})
		return
	}

	if result.Icons == nil {
		result.Icons = []string{}
	}
	utils.WriteSuccessResponse(w, map[string][]string{"icons": result.Icons})
}
