package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nav-panel-backend/pkg/models"
)

func TestCreateAndVerifyToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.CreateToken("admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	admin := svc.VerifyToken(token)
	if admin == nil {
		t.Fatal("VerifyToken returned nil for a fresh token")
	}
	if admin.Username != "admin" {
		t.Errorf("username = %q, want admin", admin.Username)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").CreateToken("admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if admin := NewJWTService("secret-b").VerifyToken(token); admin != nil {
		t.Error("token signed with another secret must not verify")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if admin := svc.VerifyToken(token); admin != nil {
			t.Errorf("VerifyToken(%q) should return nil", token)
		}
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	secret := "test-secret"

	// 直接构造已过期的令牌
	now := time.Now()
	claims := &models.TokenClaims{
		Username: "admin",
		Iat:      now.Add(-2 * TokenTTL).Unix(),
		Exp:      now.Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if admin := NewJWTService(secret).VerifyToken(token); admin != nil {
		t.Error("expired token must not verify")
	}
}

func TestVerifyTokenWrongAlgorithm(t *testing.T) {
	// alg=none 的令牌必须被拒绝
	claims := &models.TokenClaims{
		Username: "admin",
		Iat:      time.Now().Unix(),
		Exp:      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if admin := NewJWTService("test-secret").VerifyToken(token); admin != nil {
		t.Error("unsigned token must not verify")
	}
}
