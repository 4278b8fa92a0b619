package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

const categoryCacheKey = "cache:categories"

// CategoryController manages the category vocabulary. Listing is public,
// writes are admin only.
type CategoryController struct {
	store *services.CategoryStore
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{store: services.NewCategoryStore(db)}
}

// List returns all categories ordered by name.
func (c *CategoryController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(categoryCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	cats, err := c.store.ListAll()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to retrieve categories")
		return
	}
	payload := gin.H{"items": cats, "total": len(cats)}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(categoryCacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// Create adds a category; the slug is derived from the name.
func (c *CategoryController) Create(ctx *gin.Context) {
	type request struct {
		Name        string `json:"name" binding:"required,min=1,max=64"`
		Description string `json:"description"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	cat, err := c.store.Create(req.Name, req.Description)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(categoryCacheKey)
	utils.Respond(ctx, http.StatusCreated, 0, "success", cat)
}

// Delete removes a category. Messages referencing it become uncategorized.
func (c *CategoryController) Delete(ctx *gin.Context) {
	id, ok := paramUint(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid category id")
		return
	}
	if err := c.store.Delete(id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(categoryCacheKey)
	utils.InvalidateByPrefix(questionCachePrefix)
	utils.Success(ctx, gin.H{"id": id, "deleted": true})
}
