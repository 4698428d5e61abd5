package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/store"
	"nav-panel-backend/pkg/utils"
)

type TransferHandler struct {
	config *config.Config
	store  *store.Store
	logger *zap.Logger
}

func NewTransferHandler(cfg *config.Config, st *store.Store, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{config: cfg, store: st, logger: logger}
}

// GET /admin/export 导出 sites.json（带日期的下载文件名）
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		h.logger.Error("marshal sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	filename := fmt.Sprintf("sites-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// GET /admin/export-all 导出 zip 备份：sites.json 加 uploads 目录下的全部文件
// （不按引用过滤，孤立的上传文件也一并打包）。压缩包整体在内存中构建。
func (h *TransferHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadSites()
	if err != nil {
		h.logger.Error("read sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		h.logger.Error("marshal sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entry, err := zw.Create("sites.json")
	if err == nil {
		_, err = entry.Write(payload)
	}
	if err != nil {
		h.logger.Error("build zip failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// uploads 目录不存在或为空时跳过
	if files, dirErr := os.ReadDir(h.store.UploadsDir()); dirErr == nil {
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			content, readErr := os.ReadFile(filepath.Join(h.store.UploadsDir(), file.Name()))
			if readErr != nil {
				continue
			}
			entry, err := zw.Create("uploads/" + file.Name())
			if err == nil {
				_, err = entry.Write(content)
			}
			if err != nil {
				h.logger.Error("build zip failed", zap.Error(err))
				utils.WriteInternalServerErrorResponse(w, "Internal server error")
				return
			}
		}
	}

	if err := zw.Close(); err != nil {
		h.logger.Error("finalize zip failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	filename := fmt.Sprintf("nav-panel-backup-%s.zip", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// POST /admin/import 导入完整数据集并无条件覆盖现有数据。
// 只做结构校验（groups 与 sites 必须是数组），不合并、不备份，按设计即为破坏性操作。
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	var body models.SitesData
	if err := utils.ParseJSONBody(r, &body); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	if body.Groups == nil {
		utils.WriteBadRequestResponse(w, "Invalid data: groups array required")
		return
	}
	if body.Sites == nil {
		utils.WriteBadRequestResponse(w, "Invalid data: sites array required")
		return
	}

	// 直接覆盖
	if err := h.store.WriteSites(&body); err != nil {
		h.logger.Error("write sites failed", zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	h.logger.Info("dataset imported",
		zap.Int("groups", len(body.Groups)),
		zap.Int("sites", len(body.Sites)),
	)
	utils.WriteOKResponse(w)
}
