package rest

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route of the account API. allowedOrigin is the
// frontend origin permitted by CORS.
func NewRouter(h *Handler, allowedOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(allowedOrigin))
	r.Use(requestLogger(h.logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api/usuarios")

	api.POST("", h.Register)
	api.POST("/", h.Register)
	api.POST("/login", h.Login)
	api.GET("/confirmar/:token", h.Confirm)
	api.POST("/olvide-password", h.ForgotPassword)
	api.GET("/olvide-password/:token", h.CheckToken)
	api.POST("/olvide-password/:token", h.NewPassword)

	api.GET("/usuarios", h.ListAccounts)

	authed := api.Group("")
	authed.Use(h.authRequired())
	authed.GET("/perfil", h.Profile)
	authed.PUT("/usuarios/:id", h.UpdateAccount)

	return r
}
