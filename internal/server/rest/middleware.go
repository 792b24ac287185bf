package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/dmitrijs2005/usuarios/internal/server/auth"
	"github.com/dmitrijs2005/usuarios/internal/server/models"
	"github.com/gin-gonic/gin"
)

const ctxAccountKey = "usuario"

// requestLogger logs method, path, status and latency.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// cors allows the configured frontend origin. An empty origin allows any.
func cors(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if origin != "*" {
			header.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authRequired validates the Bearer session token and loads the account
// summary into the gin context.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, common.BearerScheme) || strings.TrimSpace(token) == "" {
			abortMsg(c, http.StatusUnauthorized, "Token no válido")
			return
		}

		id, err := auth.GetAccountIDFromToken(strings.TrimSpace(token), h.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				abortMsg(c, http.StatusUnauthorized, "Token expirado")
				return
			}
			abortMsg(c, http.StatusUnauthorized, "Token no válido")
			return
		}

		account, err := h.accounts.GetProfile(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				abortMsg(c, http.StatusUnauthorized, "Token no válido")
				return
			}
			abortMsg(c, http.StatusInternalServerError, "Error en el servidor")
			return
		}

		c.Set(ctxAccountKey, *account)
		c.Next()
	}
}

// currentAccount returns the account loaded by authRequired.
func currentAccount(c *gin.Context) (models.AccountSummary, bool) {
	v, ok := c.Get(ctxAccountKey)
	if !ok {
		return models.AccountSummary{}, false
	}
	a, ok := v.(models.AccountSummary)
	return a, ok
}
