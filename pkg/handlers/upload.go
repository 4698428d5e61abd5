package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

// maxUploadSize 上传文件大小上限（2 MiB）
const maxUploadSize = 2 * 1024 * 1024

// allowedUploadTypes 上传MIME类型白名单
var allowedUploadTypes = map[string]bool{
	"image/png":                true,
	"image/jpeg":               true,
	"image/gif":                true,
	"image/svg+xml":            true,
	"image/x-icon":             true,
	"image/vnd.microsoft.icon": true,
}

// mimeTypesByExt 按扩展名推断响应的Content-Type
var mimeTypesByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".webp": "image/webp",
}

type UploadHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewUploadHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{config: cfg, store: st, logger: logger}
}

// POST /admin/upload 上传图标文件，校验通过后返回公开路径
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// 预留表单开销，略大于文件上限
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+64*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		// 超出体积上限与缺少文件字段给出不同的提示
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteBadRequestResponse(w, "File too large (max 2MB)")
			return
		}
		utils.WriteBadRequestResponse(w, "No file provided")
		return
	}
	defer file.Close()

	// 检查文件类型
	if !allowedUploadTypes[header.Header.Get("Content-Type")] {
		utils.WriteBadRequestResponse(w, "Invalid file type")
		return
	}

	// 检查文件大小，拒绝发生在任何写入之前
	if header.Size > maxUploadSize {
		utils.WriteBadRequestResponse(w, "File too large (max 2MB)")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read upload failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	url, err := h.store.SaveUploadFile(header.Filename, content)
	if err != nil {
		h.logger.Error("save upload failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]string{"url": url})
}

// GET /uploads/* 提供上传文件的静态访问。
// 请求路径解析为绝对路径后必须仍落在 uploads 目录内，否则拒绝（防目录穿越）。
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "*")
	uploadsDir := h.store.UploadsDir()

	resolved, err := filepath.Abs(filepath.Join(uploadsDir, requested))
	if err != nil || !strings.HasPrefix(resolved, uploadsDir+string(os.PathSeparator)) {
		utils.WriteForbiddenResponse(w, "Forbidden")
		return
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		utils.WriteNotFoundResponse(w, "File not found")
		return
	}

	contentType := mimeTypesByExt[strings.ToLower(filepath.Ext(resolved))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
