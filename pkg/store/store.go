package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/utils"
)

const (
	configFile = "config.json"
	sitesFile  = "sites.json"
	uploadsDir = "uploads"

	jwtSecretLength = 64
)

// Store 文件存储：data 目录下的 config.json、sites.json 与 uploads/ 子目录
// 即系统的全部持久化状态。每次操作都完整读写整个JSON文档，没有缓存，
// 也没有加锁：单管理员场景下并发写采取后写覆盖（last-writer-wins）。
type Store struct {
	dataDir    string
	uploadsAbs string // uploads 目录的绝对路径，用于路径包含检查
	logger     *zap.Logger
}

// New 创建文件存储，并确保数据目录存在
func New(dataDir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, uploadsDir), 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}

	uploadsAbs, err := filepath.Abs(filepath.Join(dataDir, uploadsDir))
	if err != nil {
		return nil, fmt.Errorf("resolve uploads directory: %w", err)
	}

	return &Store{
		dataDir:    dataDir,
		uploadsAbs: uploadsAbs,
		logger:     logger,
	}, nil
}

// UploadsDir 返回 uploads 目录的绝对路径
func (s *Store) UploadsDir() string {
	return s.uploadsAbs
}

// ReadConfig 读取配置。文件缺失或损坏时合成默认配置并立即落盘，
// 保证存储自初始化；jwtSecret 在首次生成后保持不变。
func (s *Store) ReadConfig() (*models.AppConfig, error) {
	path := filepath.Join(s.dataDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		return s.resetConfig(path)
	}

	var cfg models.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		// 损坏的文件与缺失走同一条重建路径（有意为之，见 DESIGN.md）
		s.logger.Warn("config.json is corrupt, recreating defaults", zap.Error(err))
		return s.resetConfig(path)
	}

	return &cfg, nil
}

// WriteConfig 序列化并覆盖整个配置文件
func (s *Store) WriteConfig(cfg *models.AppConfig) error {
	return s.writeJSON(filepath.Join(s.dataDir, configFile), cfg)
}

// ReadSites 读取站点数据。文件缺失或损坏时合成空数据集并立即落盘。
func (s *Store) ReadSites() (*models.SitesData, error) {
	path := filepath.Join(s.dataDir, sitesFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		return s.resetSites(path)
	}

	var sites models.SitesData
	if err := json.Unmarshal(data, &sites); err != nil {
		s.logger.Warn("sites.json is corrupt, recreating defaults", zap.Error(err))
		return s.resetSites(path)
	}

	return &sites, nil
}

// WriteSites 序列化并覆盖整个站点数据文件
func (s *Store) WriteSites(data *models.SitesData) error {
	return s.writeJSON(filepath.Join(s.dataDir, sitesFile), data)
}

// SaveUploadFile 保存上传文件，返回公开相对路径 /uploads/<生成文件名>。
// 文件名使用时间戳+随机后缀+原始扩展名，避免冲突。
func (s *Store) SaveUploadFile(originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}

	filename := fmt.Sprintf("%d-%s%s", utils.CurrentTimestamp(), utils.RandomSuffix(8), ext)
	if err := os.WriteFile(filepath.Join(s.uploadsAbs, filename), content, 0644); err != nil {
		return "", err
	}

	return "/uploads/" + filename, nil
}

func (s *Store) resetConfig(path string) (*models.AppConfig, error) {
	cfg := &models.AppConfig{
		Initialized: false,
		Admin:       models.AdminAccount{},
		JWTSecret:   utils.GenerateSecret(jwtSecretLength),
		CreatedAt:   utils.CurrentTimestamp(),
	}
	if err := s.writeJSON(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Store) resetSites(path string) (*models.SitesData, error) {
	sites := &models.SitesData{
		Groups: []models.Group{},
		Sites:  []models.Site{},
	}
	if err := s.writeJSON(path, sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
