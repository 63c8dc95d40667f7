package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/app"
	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/pkg/common"
)

// GetAppContext extracts the application context injected by the web server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get("appCtx").(app.AppContext)
}

// GetDB returns the gorm handle for handlers that query directly
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// currentOwnerID reads the owner id from the verified JWT claims
func currentOwnerID(c echo.Context) int64 {
	token, okk := c.Get("user").(*jwt.Token)
	if !okk {
		return 0
	}
	claims, okk := token.Claims.(jwt.MapClaims)
	if !okk {
		return 0
	}
	return cast.ToInt64(claims["oid"])
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{"error": errorBody{
		Code:    code,
		Message: message,
		Detail:  detail,
	}})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// oprLog records an audit trail row; the nightly job prunes old rows
func oprLog(c echo.Context, oprName, action, desc string) {
	GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   oprName,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}
