package handlers_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nav-panel-backend/pkg/config"
	"nav-panel-backend/pkg/models"
	"nav-panel-backend/pkg/router"
	"nav-panel-backend/pkg/store"
)

// testServer 搭建带临时数据目录的完整路由
type testServer struct {
	handler http.Handler
	store   *store.Store
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		DataDir:        t.TempDir(),
		AllowedOrigins: []string{"*"},
		IconifyAPI:     "http://127.0.0.1:1", // 不可达，按需在测试里覆盖
	}

	logger := zap.NewNop()
	st, err := store.New(cfg.DataDir, logger)
	require.NoError(t, err)

	return &testServer{
		handler: router.New(cfg, st, logger),
		store:   st,
		cfg:     cfg,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// initAndLogin 完成一次性初始化并返回有效令牌
func (ts *testServer) initAndLogin(t *testing.T) string {
	t.Helper()

	rr := ts.request(t, "POST", "/setup/init", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (ts *testServer) createGroup(t *testing.T, token, name string) models.Group {
	t.Helper()

	rr := ts.request(t, "POST", "/admin/groups", map[string]string{"name": name}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var group models.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &group))
	return group
}

func (ts *testServer) createSite(t *testing.T, token, groupID, title string) models.Site {
	t.Helper()

	rr := ts.request(t, "POST", "/admin/sites", map[string]any{
		"groupId":   groupID,
		"title":     title,
		"icon":      map[string]string{"type": "iconify", "value": "mdi:link"},
		"publicUrl": "https://example.com",
		"openMode":  "blank",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var site models.Site
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &site))
	return site
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestSetupInitOnce(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, "GET", "/setup/status", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"initialized":false}`, rr.Body.String())

	rr = ts.request(t, "POST", "/setup/init", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true}`, rr.Body.String())

	// 第二次初始化必须失败（单管理员模型）
	rr = ts.request(t, "POST", "/setup/init", map[string]string{"username": "other", "password": "secret2"}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Already initialized", errorOf(t, rr))

	rr = ts.request(t, "GET", "/setup/status", nil, "")
	require.JSONEq(t, `{"initialized":true}`, rr.Body.String())
}

func TestSetupInitValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, "POST", "/setup/init", map[string]string{"username": "ab", "password": "secret1"}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(t, "POST", "/setup/init", map[string]string{"username": "admin", "password": "short"}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	// 初始化前不能登录
	rr := ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Not initialized", errorOf(t, rr))

	ts.request(t, "POST", "/setup/init", map[string]string{"username": "admin", "password": "secret1"}, "")

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid credentials", errorOf(t, rr))

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "nobody", "password": "secret1"}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.initAndLogin(t)

	for _, path := range []string{"/admin/groups", "/admin/sites", "/admin/account", "/admin/export"} {
		rr := ts.request(t, "GET", path, nil, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = ts.request(t, "GET", path, nil, "garbage-token")
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	// Bearer 前缀缺失
	req := httptest.NewRequest("GET", "/admin/groups", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGroupCreateAssignsOrder(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	// 空数据集里第一个分组 order 为 1
	first := ts.createGroup(t, token, "First")
	require.Equal(t, 1, first.Order)
	require.NotEmpty(t, first.ID)
	require.NotZero(t, first.CreatedAt)

	second := ts.createGroup(t, token, "Second")
	require.Equal(t, 2, second.Order)

	rr := ts.request(t, "POST", "/admin/groups", map[string]string{"name": "   "}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Name is required", errorOf(t, rr))
}

func TestGroupUpdate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)
	group := ts.createGroup(t, token, "Old")

	rr := ts.request(t, "PUT", "/admin/groups/"+group.ID, map[string]string{"name": "  New  "}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated models.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Equal(t, "New", updated.Name)
	require.Equal(t, group.ID, updated.ID)

	rr = ts.request(t, "PUT", "/admin/groups/missing", map[string]string{"name": "X"}, token)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGroupDeleteCascades(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	keep := ts.createGroup(t, token, "Keep")
	doomed := ts.createGroup(t, token, "Doomed")
	keptSite := ts.createSite(t, token, keep.ID, "Kept site")
	ts.createSite(t, token, doomed.ID, "Doomed site 1")
	ts.createSite(t, token, doomed.ID, "Doomed site 2")

	rr := ts.request(t, "DELETE", "/admin/groups/"+doomed.ID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	data, err := ts.store.ReadSites()
	require.NoError(t, err)
	require.Len(t, data.Groups, 1)
	require.Len(t, data.Sites, 1)
	require.Equal(t, keptSite.ID, data.Sites[0].ID)

	rr = ts.request(t, "DELETE", "/admin/groups/"+doomed.ID, nil, token)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGroupReorder(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	a := ts.createGroup(t, token, "A")
	b := ts.createGroup(t, token, "B")

	// 未知 id 静默忽略，不影响整批操作
	rr := ts.request(t, "PUT", "/admin/groups/reorder", map[string]any{
		"groupOrders": []map[string]any{
			{"id": a.ID, "order": 20},
			{"id": "missing", "order": 99},
			{"id": b.ID, "order": 10},
		},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, "GET", "/admin/groups", nil, token)
	var groups []models.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Equal(t, []string{"B", "A"}, []string{groups[0].Name, groups[1].Name})

	rr = ts.request(t, "PUT", "/admin/groups/reorder", map[string]any{"groupOrders": "nope"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSiteCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)
	group := ts.createGroup(t, token, "G")

	// 分组不存在：校验失败且不写存储
	rr := ts.request(t, "POST", "/admin/sites", map[string]any{
		"groupId":   "missing",
		"title":     "X",
		"icon":      map[string]string{"type": "iconify", "value": "mdi:link"},
		"publicUrl": "https://x.com",
		"openMode":  "blank",
	}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Group not found", errorOf(t, rr))

	data, err := ts.store.ReadSites()
	require.NoError(t, err)
	require.Empty(t, data.Sites)

	// 缺少必填字段
	rr = ts.request(t, "POST", "/admin/sites", map[string]any{"groupId": group.ID, "title": "X"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Missing required fields", errorOf(t, rr))

	rr = ts.request(t, "POST", "/admin/sites", map[string]any{
		"groupId":   group.ID,
		"title":     "X",
		"icon":      map[string]string{"type": "sprite", "value": "x"},
		"publicUrl": "https://x.com",
		"openMode":  "blank",
	}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid icon type", errorOf(t, rr))

	rr = ts.request(t, "POST", "/admin/sites", map[string]any{
		"groupId":   group.ID,
		"title":     "X",
		"icon":      map[string]string{"type": "iconify", "value": "x"},
		"publicUrl": "https://x.com",
		"openMode":  "popup",
	}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid open mode", errorOf(t, rr))
}

func TestSiteCreateAssignsOrderPerGroup(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	g1 := ts.createGroup(t, token, "G1")
	g2 := ts.createGroup(t, token, "G2")

	s1 := ts.createSite(t, token, g1.ID, "Blog")
	require.Equal(t, 1, s1.Order)
	require.True(t, s1.Enabled)
	require.NotNil(t, s1.Tags)

	s2 := ts.createSite(t, token, g1.ID, "Wiki")
	require.Equal(t, 2, s2.Order)

	// order 以分组为作用域
	other := ts.createSite(t, token, g2.ID, "Other")
	require.Equal(t, 1, other.Order)
}

func TestSiteUpdateGroupChangeRecomputesOrder(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	g1 := ts.createGroup(t, token, "G1")
	g2 := ts.createGroup(t, token, "G2")

	moving := ts.createSite(t, token, g1.ID, "Moving")
	ts.createSite(t, token, g2.ID, "A")
	ts.createSite(t, token, g2.ID, "B")

	rr := ts.request(t, "PUT", "/admin/sites/"+moving.ID, map[string]any{"groupId": g2.ID}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated models.Site
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Equal(t, g2.ID, updated.GroupID)
	// 相对新分组重新计算：max(1,2)+1，旧 order 作废
	require.Equal(t, 3, updated.Order)

	// 更换到不存在的分组
	rr = ts.request(t, "PUT", "/admin/sites/"+moving.ID, map[string]any{"groupId": "missing"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSitePartialUpdate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	group := ts.createGroup(t, token, "G")
	site := ts.createSite(t, token, group.ID, "Title")

	rr := ts.request(t, "PUT", "/admin/sites/"+site.ID, map[string]any{
		"description": "  desc  ",
		"enabled":     false,
		"tags":        []string{"dev", "home"},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated models.Site
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Equal(t, "desc", updated.Description)
	require.False(t, updated.Enabled)
	require.Equal(t, []string{"dev", "home"}, updated.Tags)
	// 未提交的字段保持不变
	require.Equal(t, "Title", updated.Title)
	require.Equal(t, site.Order, updated.Order)

	rr = ts.request(t, "PUT", "/admin/sites/missing", map[string]any{"title": "X"}, token)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSiteReorder(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	g1 := ts.createGroup(t, token, "G1")
	g2 := ts.createGroup(t, token, "G2")
	s1 := ts.createSite(t, token, g1.ID, "S1")
	s2 := ts.createSite(t, token, g1.ID, "S2")

	rr := ts.request(t, "PUT", "/admin/sites/reorder", map[string]any{
		"siteOrders": []map[string]any{
			{"id": s1.ID, "order": 5, "groupId": g2.ID},
			{"id": s2.ID, "order": 1},
			{"id": "missing", "order": 42},
		},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	data, err := ts.store.ReadSites()
	require.NoError(t, err)
	byID := map[string]models.Site{}
	for _, s := range data.Sites {
		byID[s.ID] = s
	}
	require.Equal(t, 5, byID[s1.ID].Order)
	require.Equal(t, g2.ID, byID[s1.ID].GroupID)
	require.Equal(t, 1, byID[s2.ID].Order)
	require.Equal(t, g1.ID, byID[s2.ID].GroupID)
}

func TestSiteDelete(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	group := ts.createGroup(t, token, "G")
	site := ts.createSite(t, token, group.ID, "S")

	rr := ts.request(t, "DELETE", "/admin/sites/"+site.ID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, "DELETE", "/admin/sites/"+site.ID, nil, token)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// 删除网站不影响分组
	data, err := ts.store.ReadSites()
	require.NoError(t, err)
	require.Len(t, data.Groups, 1)
}

func TestPublicSitesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	group := ts.createGroup(t, token, "G")
	ts.createSite(t, token, group.ID, "S")

	// 无需认证
	rr := ts.request(t, "GET", "/sites", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var data models.SitesData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	require.Len(t, data.Groups, 1)
	require.Len(t, data.Sites, 1)
}

func TestImportOverwritesDataset(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	group := ts.createGroup(t, token, "G")
	ts.createSite(t, token, group.ID, "S")

	// 导入空数据集后读取必须为空，而不是与旧数据合并
	rr := ts.request(t, "POST", "/admin/import", map[string]any{"groups": []any{}, "sites": []any{}}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	data, err := ts.store.ReadSites()
	require.NoError(t, err)
	require.Empty(t, data.Groups)
	require.Empty(t, data.Sites)

	// 结构校验
	rr = ts.request(t, "POST", "/admin/import", map[string]any{"sites": []any{}}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid data: groups array required", errorOf(t, rr))

	rr = ts.request(t, "POST", "/admin/import", map[string]any{"groups": []any{}}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid data: sites array required", errorOf(t, rr))
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestServer(t)
	token := src.initAndLogin(t)

	group := src.createGroup(t, token, "G")
	src.createSite(t, token, group.ID, "S1")
	src.createSite(t, token, group.ID, "S2")

	rr := src.request(t, "GET", "/admin/export", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")

	var exported models.SitesData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &exported))

	// 导入到全新实例后数据集一致
	dst := newTestServer(t)
	dstToken := dst.initAndLogin(t)
	rr = dst.request(t, "POST", "/admin/import", exported, dstToken)
	require.Equal(t, http.StatusOK, rr.Code)

	restored, err := dst.store.ReadSites()
	require.NoError(t, err)
	require.Equal(t, exported, *restored)
}

func TestExportAllArchive(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	group := ts.createGroup(t, token, "G")
	ts.createSite(t, token, group.ID, "S")

	// 一个经由上传接口的文件，一个数据集没有引用的孤立文件，都要进备份
	uploaded := []byte("\x89PNG\r\n\x1a\nuploaded")
	body, contentType := uploadRequest(t, "icon.png", "image/png", uploaded)
	req := httptest.NewRequest("POST", "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var uploadResp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploadResp))
	uploadedName := strings.TrimPrefix(uploadResp.URL, "/uploads/")

	orphan := []byte("orphan-bytes")
	require.NoError(t, os.WriteFile(filepath.Join(ts.store.UploadsDir(), "orphan.png"), orphan, 0644))

	rr = ts.request(t, "GET", "/admin/export-all", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	wantName := "nav-panel-backup-" + time.Now().Format("2006-01-02") + ".zip"
	require.Contains(t, rr.Header().Get("Content-Disposition"), wantName)

	zr, err := zip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	require.NoError(t, err)

	entries := map[string][]byte{}
	for _, f := range zr.File {
		fr, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(fr)
		require.NoError(t, err)
		require.NoError(t, fr.Close())
		entries[f.Name] = content
	}

	var archived models.SitesData
	require.NoError(t, json.Unmarshal(entries["sites.json"], &archived))
	require.Len(t, archived.Groups, 1)
	require.Len(t, archived.Sites, 1)

	require.Equal(t, uploaded, entries["uploads/"+uploadedName])
	require.Equal(t, orphan, entries["uploads/orphan.png"])
	require.Len(t, entries, 3)
}

func TestJSONRoutesRequireJSONContentType(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	send := func(method, path, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)
		return rr
	}

	rr := send("POST", "/auth/login", "text/plain")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Content-Type must be application/json", errorOf(t, rr))

	rr = send("POST", "/admin/groups", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Content-Type header is required", errorOf(t, rr))

	rr = send("PUT", "/admin/account", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// 带charset参数的JSON可以通过（进入正常的请求校验）
	rr = send("POST", "/admin/import", "application/json; charset=utf-8")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid data: groups array required", errorOf(t, rr))

	// GET请求不校验Content-Type
	rr = send("GET", "/admin/groups", "text/plain")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestTrailingSlashNormalized(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)
	ts.createGroup(t, token, "G")

	rr := ts.request(t, "GET", "/sites/", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, "GET", "/admin/groups/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var groups []models.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Len(t, groups, 1)
}

func TestAccount(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	rr := ts.request(t, "GET", "/admin/account", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"username":"admin"}`, rr.Body.String())

	// 空更新
	rr = ts.request(t, "PUT", "/admin/account", map[string]string{}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "No updates provided", errorOf(t, rr))

	// 密码太短
	rr = ts.request(t, "PUT", "/admin/account", map[string]string{"password": "123"}, token)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// 改密码后新密码生效
	rr = ts.request(t, "PUT", "/admin/account", map[string]string{"password": "newsecret"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "secret1"}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "newsecret"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func uploadRequest(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestUploadAndServe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	content := []byte("\x89PNG\r\n\x1a\nfake")
	body, contentType := uploadRequest(t, "icon.png", "image/png", content)

	req := httptest.NewRequest("POST", "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Regexp(t, `^/uploads/\d+-[A-Za-z0-9_-]+\.png$`, resp.URL)

	// 上传后的文件可以公开访问，带长效缓存头
	rr = ts.request(t, "GET", resp.URL, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=31536000, immutable", rr.Header().Get("Cache-Control"))
	require.Equal(t, content, rr.Body.Bytes())
}

func TestUploadRejectsBadTypeAndSize(t *testing.T) {
	ts := newTestServer(t)
	token := ts.initAndLogin(t)

	body, contentType := uploadRequest(t, "evil.html", "text/html", []byte("<html>"))
	req := httptest.NewRequest("POST", "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Invalid file type", errorOf(t, rr))

	// 刚超过 2MiB：表单能解析，大小检查拒绝
	big := bytes.Repeat([]byte("a"), 2*1024*1024+1)
	body, contentType = uploadRequest(t, "big.png", "image/png", big)
	req = httptest.NewRequest("POST", "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "File too large (max 2MB)", errorOf(t, rr))

	// 大幅超限：请求体读取中途被截断，同样要报体积错误而不是"没有文件"
	huge := bytes.Repeat([]byte("a"), 3*1024*1024)
	body, contentType = uploadRequest(t, "huge.png", "image/png", huge)
	req = httptest.NewRequest("POST", "/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "File too large (max 2MB)", errorOf(t, rr))

	// 拒绝发生在任何写入之前
	entries, err := os.ReadDir(ts.store.UploadsDir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUploadsPathTraversalForbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.initAndLogin(t)

	// data 目录下的 config.json 决不能通过 uploads 路由泄露
	rr := ts.request(t, "GET", "/uploads/../config.json", nil, "")
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(t, "GET", "/uploads/..%2f..%2fetc%2fpasswd", nil, "")
	require.NotEqual(t, http.StatusOK, rr.Code)

	rr = ts.request(t, "GET", "/uploads/missing.png", nil, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
