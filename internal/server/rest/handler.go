package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/dmitrijs2005/usuarios/internal/server/models"
	"github.com/dmitrijs2005/usuarios/internal/server/passwords"
	"github.com/dmitrijs2005/usuarios/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AccountService is the lifecycle engine as seen by the HTTP layer.
type AccountService interface {
	Register(ctx context.Context, nombre, email, password string) (*models.AccountSummary, error)
	Authenticate(ctx context.Context, email, password string) (*services.Session, error)
	ConfirmAccount(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) (bool, error)
	ResetPassword(ctx context.Context, token, password string) error
	UpdateAccount(ctx context.Context, id string, upd services.AccountUpdate) error
	GetProfile(ctx context.Context, id string) (*models.AccountSummary, error)
	ListAccounts(ctx context.Context) ([]models.AccountSummary, error)
	Ping(ctx context.Context) error
}

const msgPasswordTooLong = "El password es demasiado largo"

type Handler struct {
	accounts  AccountService
	logger    logging.Logger
	jwtSecret []byte
}

func NewHandler(accounts AccountService, l logging.Logger, secretKey string) *Handler {
	return &Handler{
		accounts:  accounts,
		logger:    l.With("module", "rest"),
		jwtSecret: []byte(secretKey),
	}
}

type registerRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Usuario loginUser `json:"usuario"`
	Token   string    `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type newPasswordRequest struct {
	Password string `json:"password"`
}

type updateRequest struct {
	Nombre   *string `json:"nombre"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMsg(c, http.StatusBadRequest, "Datos no válidos")
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), req.Nombre, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorConflict):
			respondMsg(c, http.StatusBadRequest, "Usuario ya registrado")
		case errors.Is(err, passwords.ErrTooLong):
			respondMsg(c, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, common.ErrorValidation):
			respondMsg(c, http.StatusBadRequest, "Todos los campos son obligatorios")
		default:
			h.logger.Error(c.Request.Context(), "register", "error", err)
			respondMsg(c, http.StatusInternalServerError, "Error al registrar el usuario")
		}
		return
	}

	respondMsg(c, http.StatusOK, "Usuario registrado correctamente. Revisa tu email para confirmar tu cuenta.")
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Datos no válidos")
		return
	}

	session, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondMessage(c, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, common.ErrorUnauthorized):
			respondMessage(c, http.StatusUnauthorized, "Contraseña incorrecta")
		default:
			h.logger.Error(c.Request.Context(), "login", "error", err)
			respondMessage(c, http.StatusInternalServerError, "Error en el servidor")
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Message: "Usuario autenticado",
		Usuario: loginUser{
			ID:     session.Account.ID,
			Nombre: session.Account.Nombre,
			Email:  session.Account.Email,
		},
		Token: session.Token,
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	err := h.accounts.ConfirmAccount(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondMsg(c, http.StatusNotFound, "Token no válido")
			return
		}
		h.logger.Error(c.Request.Context(), "confirm", "error", err)
		respondMsg(c, http.StatusInternalServerError, "Error al confirmar la cuenta")
		return
	}

	respondMsg(c, http.StatusOK, "Cuenta confirmada correctamente")
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMsg(c, http.StatusBadRequest, "Datos no válidos")
		return
	}

	err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondMsg(c, http.StatusNotFound, "El usuario no existe")
			return
		}
		h.logger.Error(c.Request.Context(), "forgot password", "error", err)
		respondMsg(c, http.StatusInternalServerError, "Error al generar el token para el cambio de contraseña")
		return
	}

	respondMsg(c, http.StatusOK, "Hemos enviado un email con las instrucciones")
}

func (h *Handler) CheckToken(c *gin.Context) {
	ok, err := h.accounts.CheckResetToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.logger.Error(c.Request.Context(), "check token", "error", err)
		respondMsg(c, http.StatusInternalServerError, "Error en el servidor")
		return
	}
	if !ok {
		respondMsg(c, http.StatusNotFound, "Token no válido")
		return
	}

	respondMsg(c, http.StatusOK, "Token válido")
}

func (h *Handler) NewPassword(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMsg(c, http.StatusBadRequest, "Datos no válidos")
		return
	}

	err := h.accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondMsg(c, http.StatusNotFound, "Token no válido")
		case errors.Is(err, passwords.ErrTooLong):
			respondMsg(c, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, common.ErrorValidation):
			respondMsg(c, http.StatusBadRequest, "El password es obligatorio")
		default:
			h.logger.Error(c.Request.Context(), "new password", "error", err)
			respondMsg(c, http.StatusInternalServerError, "Error al cambiar la contraseña")
		}
		return
	}

	respondMsg(c, http.StatusOK, "Contraseña actualizada correctamente")
}

func (h *Handler) Profile(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		respondMsg(c, http.StatusUnauthorized, "Token no válido")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) ListAccounts(c *gin.Context) {
	list, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "list accounts", "error", err)
		respondMsg(c, http.StatusInternalServerError, "Error al obtener los usuarios")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMsg(c, http.StatusBadRequest, "Datos no válidos")
		return
	}

	err := h.accounts.UpdateAccount(c.Request.Context(), c.Param("id"), services.AccountUpdate{
		Nombre:   req.Nombre,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondMsg(c, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, common.ErrorConflict):
			respondMsg(c, http.StatusBadRequest, "El email ya está en uso")
		case errors.Is(err, passwords.ErrTooLong):
			respondMsg(c, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, common.ErrorValidation):
			respondMsg(c, http.StatusBadRequest, "Datos no válidos")
		default:
			h.logger.Error(c.Request.Context(), "update account", "error", err)
			respondMsg(c, http.StatusInternalServerError, "Error al actualizar el usuario")
		}
		return
	}

	respondMsg(c, http.StatusOK, "Usuario actualizado correctamente")
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.accounts.Ping(c.Request.Context()); err != nil {
		h.logger.Warn(c.Request.Context(), "health check", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
