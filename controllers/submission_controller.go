package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadealahmad/anonymous-messages/config"
	"github.com/hadealahmad/anonymous-messages/middleware"
	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// SubmissionController exposes the public intake endpoints.
type SubmissionController struct {
	svc *services.SubmissionService
}

func NewSubmissionController(svc *services.SubmissionService) *SubmissionController {
	return &SubmissionController{svc: svc}
}

// FormToken issues the anti-forgery token the submission form must echo back.
func (s *SubmissionController) FormToken(ctx *gin.Context) {
	ttl := time.Duration(config.Get().FormTokenTTLHours) * time.Hour
	token, err := utils.GenerateFormToken(ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to generate form token")
		return
	}
	utils.Success(ctx, gin.H{
		"form_token": token,
		"expires_in": int(ttl.Seconds()),
	})
}

// Submit accepts a visitor message. The body is multipart form data so image
// attachments can ride along with the text fields.
func (s *SubmissionController) Submit(ctx *gin.Context) {
	in := services.SubmitInput{
		Body:           ctx.PostForm("message"),
		FormToken:      ctx.PostForm("form_token"),
		RecaptchaToken: ctx.PostForm("recaptcha_token"),
		RemoteIP:       ctx.ClientIP(),
		ClientKey:      ctx.ClientIP(),
		Authenticated:  ctx.GetUint(middleware.ContextUserIDKey) != 0,
		Images:         formImages(ctx),
	}
	if v := ctx.PostForm("notify"); v == "false" || v == "0" {
		in.SkipNotify = true
	}

	if v := strings.TrimSpace(ctx.PostForm("assigned_user_id")); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40012, "invalid assigned user id")
			return
		}
		uid := uint(id)
		in.AssignedUserID = &uid
	}

	result, err := s.svc.Submit(ctx.Request.Context(), in)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	data := gin.H{
		"id":          result.MessageID,
		"sender_name": result.SenderName,
	}
	if len(result.UploadErrors) > 0 {
		data["upload_errors"] = result.UploadErrors
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", data)
}

func formImages(ctx *gin.Context) []*multipart.FileHeader {
	form, err := ctx.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}
