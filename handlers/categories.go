package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"primestore/internal/products"
	"primestore/pkg/ctxmanage"
	"primestore/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	categories, err := h.p.ListCategories(c.Request.Context())
	if err != nil {
		slog.Error("error fetching categories", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategoryBySlug(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	slug := c.Param("slug")

	category, err := h.p.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, products.ErrCategoryNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		slog.Error("error fetching category", slog.String(logkey.TraceID, traceId),
			slog.String("Slug", slug), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newCategory products.NewCategory
	if err := c.ShouldBindJSON(&newCategory); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.validate.Struct(newCategory); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Failed to create category"})
		return
	}

	category, err := h.p.InsertCategory(c.Request.Context(), newCategory)
	if err != nil {
		if errors.Is(err, products.ErrSlugTaken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Category slug already in use"})
			return
		}
		slog.Error("error inserting category", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to create category"})
		return
	}

	slog.Info("category created", slog.String(logkey.TraceID, traceId), slog.String("CategoryID", category.ID))
	c.JSON(http.StatusCreated, category)
}
