package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/middleware"
	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// ExportController streams filtered message exports as CSV or JSON
// attachments.
type ExportController struct {
	exporter *services.Exporter
}

func NewExportController(db *gorm.DB) *ExportController {
	store := services.NewMessageStore(db)
	return &ExportController{exporter: services.NewExporter(store, config.Get().BaseURL)}
}

// Export writes the download. format defaults to csv; reviewers without the
// admin flag only ever export their own assignments.
func (e *ExportController) Export(ctx *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(ctx.Query("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "format must be csv or json")
		return
	}

	var f services.ListFilter
	if v := strings.TrimSpace(ctx.Query("status")); v != "" {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if models.ValidStatus(s) {
				f.Statuses = append(f.Statuses, s)
			}
		}
	}
	if id, ok := queryUint(ctx, "category_id"); ok {
		f.CategoryID = &id
	}
	if id, ok := queryUint(ctx, "assigned_user_id"); ok {
		f.AssignedUserID = &id
	}
	f.Search = strings.TrimSpace(ctx.Query("search"))
	if !ctx.GetBool(middleware.ContextIsAdminKey) {
		own := ctx.GetUint(middleware.ContextUserIDKey)
		f.AssignedUserID = &own
	}

	msgs, err := e.exporter.Collect(f)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	filename := fmt.Sprintf("messages-export-%s.%s", time.Now().Format("20060102"), format)
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "csv" {
		ctx.Header("Content-Type", "text/csv; charset=utf-8")
		ctx.Status(http.StatusOK)
		if err := e.exporter.WriteCSV(ctx.Writer, msgs); err != nil {
			_ = ctx.Error(err)
		}
		return
	}

	ctx.Header("Content-Type", "application/json; charset=utf-8")
	ctx.Status(http.StatusOK)
	if err := e.exporter.WriteJSON(ctx.Writer, msgs); err != nil {
		_ = ctx.Error(err)
	}
}
