package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nav-panel-backend/pkg/models"
)

// TokenTTL 令牌有效期（7天）
const TokenTTL = 7 * 24 * time.Hour

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
	}
}

// CreateToken 签发管理员令牌（HS256，7天有效期）
func (j *JWTService) CreateToken(username string) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		Username: username,
		Iat:      now.Unix(),
		Exp:      now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// VerifyToken 验证令牌并返回管理员身份。
// 任何失败（过期、格式错误、签名不符）均返回 nil，调用方统一视为未认证。
func (j *JWTService) VerifyToken(tokenString string) *models.Admin {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil
	}

	// 检查是否过期
	if time.Now().Unix() > claims.Exp {
		return nil
	}

	return &models.Admin{Username: claims.Username}
}
