package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const secretChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID 生成实体ID
func GenerateID() string {
	return uuid.New().String()
}

// CurrentTimestamp 当前毫秒时间戳
func CurrentTimestamp() int64 {
	return time.Now().UnixMilli()
}

// GenerateSecret 生成 n 位随机密钥（字母数字），用于每个安装实例唯一的JWT密钥
func GenerateSecret(n int) string {
	result := make([]byte, n)
	max := big.NewInt(int64(len(secretChars)))
	for i := range result {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 不可用时退化为 uuid 拼接
			return uuid.New().String() + uuid.New().String()
		}
		result[i] = secretChars[idx.Int64()]
	}
	return string(result)
}

// RandomSuffix 生成 URL-safe 的短随机后缀，用于上传文件命名防冲突
func RandomSuffix(n int) string {
	if n <= 0 {
		n = 8
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()[:8]
	}
	// 使用 RawURLEncoding，避免出现 '=' 填充与 '+' '/' 字符
	return base64.RawURLEncoding.EncodeToString(b)[:n]
}
