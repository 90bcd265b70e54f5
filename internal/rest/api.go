package rest

import (
	"github.com/dfryer1193/pagebot/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewApi registers the page editing endpoints. A non-empty apiToken is required as a bearer token on every route.
func NewApi(router *gin.Engine, pages *PagesHandler, apiToken string) {
	pagesV1 := router.Group("pages/v1", middleware.RequireToken(apiToken))
	{
		pagesV1.GET("/", pages.ListPages)
		pagesV1.POST("/:page/elements/:element", pages.UpdateElement)
		pagesV1.POST("/:page/elements/:element/preview", pages.PreviewElement)
		pagesV1.POST("/:page/rollback", pages.Rollback)
		pagesV1.GET("/:page/history", pages.GetHistory)
		pagesV1.GET("/:page/markers", pages.GetMarkers)
	}
}
