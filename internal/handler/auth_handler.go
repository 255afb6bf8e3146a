package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName = "admin_session"
	authContextKey    = "__authenticated"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 校验管理员凭据并写入会话 Cookie。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAdminNotConfigured) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		a.respondInternal(c, "Internal server error", err)
		return
	}

	maxAge := int(a.auth.TTL().Seconds())
	c.Header("Set-Cookie", sessionCookie(token, maxAge, a.secureCookie))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout 删除会话并清除 Cookie。
func (a *API) Logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if err := a.auth.Logout(token); err != nil {
			a.respondInternal(c, "Internal server error", err)
			return
		}
	}
	c.Header("Set-Cookie", sessionCookieName+"=; HttpOnly; SameSite=Strict; Path=/; Max-Age=0")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckAuth 返回当前请求是否已登录。
func (a *API) CheckAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": a.isAuthenticated(c)})
}

// AuthRequired 拦截未登录的后台请求。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.isAuthenticated(c) {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// isAuthenticated 同一请求内只查询一次会话表。
func (a *API) isAuthenticated(c *gin.Context) bool {
	if cached, ok := c.Get(authContextKey); ok {
		if v, ok := cached.(bool); ok {
			return v
		}
	}
	token := sessionToken(c)
	ok := token != "" && a.auth.Authenticated(token)
	c.Set(authContextKey, ok)
	return ok
}

func sessionToken(c *gin.Context) string {
	token, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(token)
}

func sessionCookie(token string, maxAge int, secure bool) string {
	cookie := fmt.Sprintf("%s=%s; HttpOnly; SameSite=Strict; Path=/; Max-Age=%d", sessionCookieName, token, maxAge)
	if secure {
		cookie += "; Secure"
	}
	return cookie
}
