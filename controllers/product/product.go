package productControllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storelane/storefront-api/cache"
	"github.com/storelane/storefront-api/models"
)

const listCacheTTL = 60 * time.Second

// GET /products
//
// Published-product listing with search, price-range filtering and
// pagination. Unfiltered pages are served through the Redis read-through
// cache when one is configured.
func GetProducts(db *gorm.DB, store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("search")
		minPriceStr := c.Query("min_price")
		maxPriceStr := c.Query("max_price")
		featured := c.Query("featured")
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		perPage := 10

		// Only plain pages are cached; filtered queries go to the database.
		cacheable := search == "" && minPriceStr == "" && maxPriceStr == "" && featured == ""
		cacheKey := fmt.Sprintf("products:page:%d", page)
		if cacheable {
			var cached []models.Product
			if err := store.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil {
				c.JSON(http.StatusOK, gin.H{"products": cached, "page": page})
				return
			}
		}

		query := db.Model(&models.Product{}).Preload("Inventory").Where("published = ?", true)

		if search != "" {
			likePattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", likePattern, likePattern)
		}
		if minPriceStr != "" {
			if mp, err := strconv.ParseFloat(minPriceStr, 64); err == nil {
				query = query.Where("price >= ?", mp)
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
				return
			}
		}
		if maxPriceStr != "" {
			if mp, err := strconv.ParseFloat(maxPriceStr, 64); err == nil {
				query = query.Where("price <= ?", mp)
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
				return
			}
		}
		if featured == "true" {
			query = query.Where("featured = ?", true)
		}

		var products []models.Product
		if err := query.
			Order("created_at DESC").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		if cacheable {
			store.SetJSON(c.Request.Context(), cacheKey, products, listCacheTTL)
		}

		c.JSON(http.StatusOK, gin.H{"products": products, "page": page})
	}
}

// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		idParam := c.Param("id")
		id, err := strconv.Atoi(idParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Preload("Inventory").
			First(&product, "id = ? AND published = ?", id, true).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
