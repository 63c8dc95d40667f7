package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/webserver"
	"github.com/billzio/billzio/pkg/common"
)

const tokenLifetime = 7 * 24 * time.Hour

type registerPayload struct {
	Phone    string `json:"phone" validate:"required,min=6,max=15"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

type loginPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/api/v1/auth/register", registerOwner)
	webserver.PubPOST("/api/v1/auth/login", loginOwner)
}

func registerOwner(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}

	payload.Phone = strings.TrimSpace(payload.Phone)
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Phone == "" || payload.Name == "" || len(payload.Password) < 6 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone, name and a password of at least 6 characters are required", nil)
	}

	appCtx := GetAppContext(c)
	if existing, err := appCtx.Owners().GetByPhone(c.Request().Context(), payload.Phone); err == nil && existing != nil {
		return fail(c, http.StatusConflict, "PHONE_TAKEN", "An account with this phone already exists", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to process password", nil)
	}

	owner := domain.Owner{
		ID:       common.UUIDint64(),
		Phone:    payload.Phone,
		Name:     payload.Name,
		Password: string(hashed),
		Status:   common.ENABLED,
	}
	if err := appCtx.Owners().Create(c.Request().Context(), &owner); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}

	oprLog(c, owner.Phone, "register", "owner account created")

	token, err := signToken(c, owner.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	return ok(c, map[string]interface{}{"token": token, "owner": owner})
}

func loginOwner(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}

	appCtx := GetAppContext(c)
	owner, err := appCtx.Owners().GetByPhone(c.Request().Context(), strings.TrimSpace(payload.Phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid phone or password", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query account", err.Error())
	}
	if owner.Status != common.ENABLED {
		return fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "This account is disabled", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid phone or password", nil)
	}

	_ = appCtx.Owners().UpdateLastLogin(c.Request().Context(), owner.ID, time.Now())
	oprLog(c, owner.Phone, "login", "owner logged in")

	token, err := signToken(c, owner.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	return ok(c, map[string]interface{}{"token": token, "owner": owner})
}

func signToken(c echo.Context, ownerID int64) (string, error) {
	secret := GetAppContext(c).Config().Web.JwtSecret
	claims := jwtv4.MapClaims{
		"oid": ownerID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
