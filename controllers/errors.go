package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hadealahmad/anonymous-messages/services"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// respondServiceError maps service-layer errors onto the JSON envelope.
// External-service and unrecognized errors keep their root cause in the
// server log; the client only sees a generic message.
func respondServiceError(ctx *gin.Context, err error) {
	var (
		vErr *services.ValidationError
		sErr *services.SpamRejection
		xErr *services.ExternalServiceError
	)
	switch {
	case errors.As(err, &vErr):
		utils.Error(ctx, http.StatusBadRequest, 40010, vErr.Reason)
	case errors.As(err, &sErr):
		utils.Error(ctx, http.StatusBadRequest, 40011, sErr.Error())
	case errors.Is(err, services.ErrRateLimited):
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "please wait before submitting again")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, services.ErrUnauthorized):
		utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
	case errors.As(err, &xErr):
		zap.L().Error("external service failure",
			zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.Error(ctx, http.StatusBadGateway, 50210, "verification service unavailable")
	default:
		zap.L().Error("unhandled service error",
			zap.String("path", ctx.FullPath()), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
