package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimbusapi/nimbus/internal/domain/news"
)

type NewsProvider interface {
	Headlines(ctx context.Context) (news.Response, error)
	Search(ctx context.Context, query string) (news.Response, error)
}

type NewsHandler struct {
	svc NewsProvider
}

func NewNewsHandler(svc NewsProvider) *NewsHandler {
	return &NewsHandler{svc: svc}
}

// GetNews returns top headlines, or search results when ?search= is set.

func (h *NewsHandler) GetNews(ctx *gin.Context) {
	search := ctx.Query("search")

	var (
		resp news.Response
		err  error
	)

	if search != "" {
		resp, err = h.svc.Search(ctx.Request.Context(), search)
	} else {
		resp, err = h.svc.Headlines(ctx.Request.Context())
	}

	if err != nil {
		respondUpstreamError(ctx, err, "Could not fetch news")
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
