package web

import (
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type page struct {
	Title         string
	Error         string
	ReturnURL     string
	Principal     string
	RequestID     string
	SignInEnabled bool
}

func render(c *fiber.Ctx, status int, name string, data page) error {
	c.Status(status).Type("html", "utf-8")

	return views.ExecuteTemplate(c, name, data)
}
