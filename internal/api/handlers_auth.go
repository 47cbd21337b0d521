package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/davidrmz/cotejo/internal/models"
)

// Login authenticates an email/password form submission and returns a
// signed bearer token plus the profile. Bad credentials never say which
// half was wrong.
func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Correo y contraseña son obligatorios",
		})
		return
	}

	user, err := h.usersRepo.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "INVALID_CREDENTIALS",
			Mensaje: "Credenciales inválidas",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "INVALID_CREDENTIALS",
			Mensaje: "Credenciales inválidas",
		})
		return
	}

	token, err := h.issueToken(user.ID, string(user.Rol))
	if err != nil {
		log.Error().Err(err).Str("usuarioID", user.ID).Msg("Failed to sign token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Mensaje: "No se pudo iniciar la sesión",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"usuario": user.Profile(),
	})
}

// Perfil returns the authenticated user's profile
func (h *Handler) Perfil(c *gin.Context) {
	user, err := h.usersRepo.GetUserByID(c.Request.Context(), c.GetString("usuario_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "UNAUTHORIZED",
			Mensaje: "La sesión ya no es válida",
		})
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// CreateUser is the admin path for provisioning teacher and admin
// accounts; there is no self-service signup.
func (h *Handler) CreateUser(c *gin.Context) {
	nombre := strings.TrimSpace(c.PostForm("nombre"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	rol := models.Role(c.PostForm("rol"))

	if nombre == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Nombre, correo y contraseña son obligatorios",
		})
		return
	}
	if rol != models.RolAdmin && rol != models.RolDocente {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Rol desconocido",
		})
		return
	}

	ctx := c.Request.Context()

	existing, err := h.usersRepo.GetUserByEmail(ctx, email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "DUPLICATE_EMAIL",
			Mensaje: "El correo ya está registrado",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Mensaje: "No se pudo crear el usuario",
		})
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Nombre:       nombre,
		Apellido:     strings.TrimSpace(c.PostForm("apellido")),
		Rol:          rol,
		Email:        email,
		Institucion:  strings.TrimSpace(c.PostForm("institucion")),
		FacultadArea: strings.TrimSpace(c.PostForm("facultad_area")),
		PasswordHash: string(hash),
	}

	if err := h.usersRepo.InsertUser(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Profile())
}

func (h *Handler) issueToken(usuarioID, rol string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"usuario_id": usuarioID,
		"rol":        rol,
		"iss":        h.cfg.JWTIssuer,
		"iat":        now.Unix(),
		"exp":        now.Add(h.cfg.JWTTTL).Unix(),
	})

	return token.SignedString([]byte(h.cfg.JWTSecret))
}
