package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/models/dto"
	"github.com/yigit/schoolcore/internal/middleware"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

// actorOrAbort returns the authenticated actor or writes a 401.
func actorOrAbort(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return actor, true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewAPIResponse(data))
}

func ok(ctx *gin.Context, data interface{}) {
	respond(ctx, http.StatusOK, data)
}

// dateQuery is an optional ?date parameter with the day it defaults to.
type dateQuery struct {
	date  *time.Time
	today time.Time
}

func (q *dateQuery) orToday() time.Time {
	if q.date != nil {
		return *q.date
	}
	return q.today
}
