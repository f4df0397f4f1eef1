package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

//go:embed static
var staticFS embed.FS

// RegisterAssets serves the built-in stylesheets under /css. Hosts with a
// STATIC_DIR serve that directory instead.
func RegisterAssets(router fiber.Router) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	router.Use("/css", filesystem.New(filesystem.Config{
		Root:       http.FS(sub),
		PathPrefix: "css",
		MaxAge:     3600,
	}))
}
