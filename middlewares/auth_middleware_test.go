package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const secret = "middleware-secret"

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), AuthMiddleware(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(CtxUserID), "email": c.GetString(CtxEmail)})
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) (int, map[string]any) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestAuthMiddlewareBearer(t *testing.T) {
	r := newEngine()
	tok, err := utils.GenerateJWT("u-42", "hanako@example.com", secret)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	code, body := serve(r, req)
	if code != http.StatusOK || body["id"] != "u-42" || body["email"] != "hanako@example.com" {
		t.Fatalf("code=%d body=%v", code, body)
	}
}

func TestAuthMiddlewareQueryTokenOnlyForUpgrade(t *testing.T) {
	r := newEngine()
	tok, _ := utils.GenerateJWT("u-42", "", secret)

	plain := httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil)
	if code, _ := serve(r, plain); code != http.StatusUnauthorized {
		t.Fatalf("query token without upgrade: code = %d", code)
	}

	ws := httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil)
	ws.Header.Set("Upgrade", "websocket")
	if code, body := serve(r, ws); code != http.StatusOK || body["id"] != "u-42" {
		t.Fatalf("websocket query token: code=%d body=%v", code, body)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r := newEngine()

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u-42",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(secret))
	foreign, _ := utils.GenerateJWT("u-42", "", "other-secret")

	cases := map[string]struct {
		header string
		code   utils.ErrorCode
	}{
		"missing":      {"", utils.ErrAuthRequired},
		"wrong scheme": {"Basic dXNlcjpwYXNz", utils.ErrAuthRequired},
		"bad sig":      {"Bearer " + foreign, utils.ErrAuthRequired},
		"expired":      {"Bearer " + expired, utils.ErrAuthSessionExpired},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		code, body := serve(r, req)
		if code != http.StatusUnauthorized || body["errorCode"] != string(tc.code) {
			t.Fatalf("%s: code=%d body=%v", name, code, body)
		}
	}
}
