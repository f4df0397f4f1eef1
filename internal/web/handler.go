package web

import (
	"context"
	"errors"

	"github.com/ManojKamatam/LoginApp/platform"
	"github.com/ManojKamatam/LoginApp/platform/log"
	libHTTP "github.com/ManojKamatam/LoginApp/platform/net/http"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	// PathLogin is the login page and the cookie challenge target.
	PathLogin = "/Account/Login"
	// PathLogout signs the current user out.
	PathLogout = "/Account/Logout"
	// PathHome is the landing page for signed-in users.
	PathHome = "/Home/Index"
	// PathError is the browser error page.
	PathError = "/Home/Error"
)

// ErrInvalidCredentials is returned by an Authenticator that rejects a sign in.
var ErrInvalidCredentials = errors.New("invalid user name or password")

// ErrNilSessionStore is returned when NewHandler receives no session store.
var ErrNilSessionStore = errors.New("session store is nil")

// Authenticator verifies credentials and returns the principal to sign in.
type Authenticator interface {
	Authenticate(ctx context.Context, userName, password string) (string, error)
}

// Handler serves the account and home pages.
type Handler struct {
	store         *session.Store
	cookie        libHTTP.CookieOptions
	authenticator Authenticator
}

// NewHandler builds the page handler. A nil authenticator leaves the login
// page up but disables credential sign in.
func NewHandler(store *session.Store, cookie libHTTP.CookieOptions, authenticator Authenticator) (*Handler, error) {
	if store == nil {
		return nil, ErrNilSessionStore
	}

	return &Handler{store: store, cookie: cookie, authenticator: authenticator}, nil
}

type loginForm struct {
	UserName  string `form:"username" validate:"required,max=256"`
	Password  string `form:"password" validate:"required,max=1024"`
	ReturnURL string `form:"returnUrl" validate:"omitempty,max=2048,local_url"`
}

// Register mounts the page routes on router. The default route sends
// visitors to the login page.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(PathLogin, fiber.StatusFound)
	})

	router.Get(PathLogin, h.LoginPage)
	router.Post(PathLogin, h.Login)
	router.Post(PathLogout, h.Logout)
	router.Get(PathError, h.ErrorPage)
	router.Get(PathHome, libHTTP.RequireAuthentication(h.store, h.cookie), h.Home)
}

// LoginPage renders the sign in form.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	returnURL := c.Query(libHTTP.ReturnURLParam)
	if !libHTTP.IsLocalURL(returnURL) {
		returnURL = ""
	}

	return render(c, fiber.StatusOK, "login", page{
		Title:         "Sign in",
		ReturnURL:     returnURL,
		SignInEnabled: h.authenticator != nil,
	})
}

// Login checks the posted credentials and issues the authentication cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	if h.authenticator == nil {
		return fiber.ErrNotFound
	}

	var form loginForm
	if err := libHTTP.ParseBodyAndValidate(c, &form); err != nil {
		returnURL := c.FormValue("returnUrl")
		if !libHTTP.IsLocalURL(returnURL) {
			returnURL = ""
		}

		return render(c, fiber.StatusBadRequest, "login", page{
			Title:         "Sign in",
			Error:         "Enter your user name and password.",
			ReturnURL:     returnURL,
			SignInEnabled: true,
		})
	}

	ctx := c.UserContext()
	logger := platform.NewLoggerFromContext(ctx)

	principal, err := h.authenticator.Authenticate(ctx, form.UserName, form.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return err
		}

		logger.Log(ctx, log.LevelInfo, "sign in rejected")

		return render(c, fiber.StatusUnauthorized, "login", page{
			Title:         "Sign in",
			Error:         "Invalid user name or password.",
			ReturnURL:     form.ReturnURL,
			SignInEnabled: true,
		})
	}

	if err := libHTTP.SignIn(c, h.store, h.cookie, principal); err != nil {
		return err
	}

	logger.Log(ctx, log.LevelInfo, "user signed in")

	target := PathHome
	if form.ReturnURL != "" {
		target = form.ReturnURL
	}

	return c.Redirect(target, fiber.StatusFound)
}

// Logout ends the session and returns to the login page.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := libHTTP.SignOut(c, h.store); err != nil {
		return err
	}

	return c.Redirect(PathLogin, fiber.StatusFound)
}

// Home greets the signed-in principal.
func (h *Handler) Home(c *fiber.Ctx) error {
	principal, ok := libHTTP.Principal(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	return render(c, fiber.StatusOK, "home", page{Title: "Home", Principal: principal})
}

// ErrorPage is the target of browser 5xx redirects.
func (h *Handler) ErrorPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "error", page{
		Title:     "Error",
		RequestID: c.Get(libHTTP.HeaderID),
	})
}
