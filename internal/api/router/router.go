package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/photoshare/internal/api/handlers/album"
	"github.com/aliskhannn/photoshare/internal/api/handlers/photo"
	"github.com/aliskhannn/photoshare/internal/api/middleware"
)

// Setup wires all HTTP routes. Everything under /api requires a valid
// bearer token.
func Setup(ph *photo.Handler, ah *album.Handler, jwtSecret string) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORS())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")
	api.Use(middleware.Auth(jwtSecret))

	api.POST("/photos", ph.Upload)
	api.GET("/photos", ph.List)
	api.GET("/photos/mine", ph.ListMine)
	api.GET("/photos/:id", ph.Get)
	api.GET("/photos/:id/file", ph.File)
	api.GET("/photos/:id/url", ph.FileURL)
	api.POST("/photos/:id/reprocess", ph.Reprocess)
	api.DELETE("/photos/:id", ph.Delete)

	api.POST("/albums", ah.Create)
	api.GET("/albums", ah.List)
	api.GET("/albums/:id", ah.Get)
	api.POST("/albums/:id/photos", ah.AddPhotos)
	api.DELETE("/albums/:id/photos", ah.RemovePhotos)
	api.DELETE("/albums/:id", ah.Delete)

	return r
}
