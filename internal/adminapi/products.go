package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/webserver"
	"github.com/billzio/billzio/pkg/common"
)

type productPayload struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Price string `json:"price" validate:"required"`
	Stock *int   `json:"stock"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	page, pageSize := parsePagination(c)
	q := strings.TrimSpace(c.QueryParam("q"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okk := allowed[sortField]
	if !okk {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{}).Where("shop_id = ?", shop.ID)
	if q != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ? AND shop_id = ?", id, shop.ID).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Product name is required", nil)
	}
	price, err := decimal.NewFromString(payload.Price)
	if err != nil || price.IsNegative() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Price must be a non-negative number", nil)
	}
	stock := 0
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Stock cannot be negative", nil)
		}
		stock = *payload.Stock
	}

	product := domain.Product{
		ID:      common.UUIDint64(),
		ShopID:  shop.ID,
		OwnerID: shop.OwnerID,
		Name:    payload.Name,
		Price:   price,
		Stock:   stock,
	}
	if err := GetAppContext(c).Products().Create(c.Request().Context(), &product); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, product)
}

func updateProduct(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var product domain.Product
	if err := GetDB(c).Where("id = ? AND shop_id = ?", id, shop.ID).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		product.Name = name
	}
	if payload.Price != "" {
		price, err := decimal.NewFromString(payload.Price)
		if err != nil || price.IsNegative() {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Price must be a non-negative number", nil)
		}
		// price edits never touch historical bills; totals are snapshots
		product.Price = price
	}
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Stock cannot be negative", nil)
		}
		product.Stock = *payload.Stock
	}

	if err := GetAppContext(c).Products().Update(c.Request().Context(), &product); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetAppContext(c).Products().Delete(c.Request().Context(), shop.ID, id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
