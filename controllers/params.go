package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// pagination reads page/per_page query params with sane bounds.
func pagination(ctx *gin.Context, defaultPerPage, maxPerPage int) (page, perPage int) {
	page, perPage = 1, defaultPerPage
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("per_page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPerPage {
			perPage = n
		}
	}
	return page, perPage
}

// queryUint parses an optional unsigned query parameter.
func queryUint(ctx *gin.Context, name string) (uint, bool) {
	v := strings.TrimSpace(ctx.Query(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// paramUint parses a required unsigned path parameter.
func paramUint(ctx *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
