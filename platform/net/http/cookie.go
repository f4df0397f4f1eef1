package http

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	principalKey = "principal"
	expiresKey   = "expires_at"

	// ReturnURLParam carries the originally requested path to the login page.
	ReturnURLParam = "ReturnUrl"
)

// SameSite values accepted by CookieOptions.
const (
	SameSiteLax    = "Lax"
	SameSiteStrict = "Strict"
	SameSiteNone   = "None"
)

// ErrInvalidCookieOptions is returned when CookieOptions cannot be honored.
var ErrInvalidCookieOptions = errors.New("invalid authentication cookie options")

// CookieOptions configures the authentication cookie.
type CookieOptions struct {
	Name              string
	LoginPath         string
	ExpireTimeSpan    time.Duration
	SlidingExpiration bool
	HTTPOnly          bool
	// Secure marks the cookie Secure regardless of the request scheme.
	Secure   bool
	SameSite string
	// Storage holds session state. Nil keeps it in process memory, so
	// sessions end with the process and are not shared between hosts.
	Storage fiber.Storage
}

// DefaultCookieOptions returns the host's cookie settings.
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Name:              "LoginApp.Auth",
		LoginPath:         "/Account/Login",
		ExpireTimeSpan:    30 * time.Minute,
		SlidingExpiration: true,
		HTTPOnly:          true,
		Secure:            true,
		SameSite:          SameSiteLax,
	}
}

// Validate checks the options for values the framework would reject.
func (o CookieOptions) Validate() error {
	if o.Name == "" {
		return errors.Join(ErrInvalidCookieOptions, errors.New("cookie name is empty"))
	}

	if o.LoginPath == "" || o.LoginPath[0] != '/' {
		return errors.Join(ErrInvalidCookieOptions, errors.New("login path must be absolute"))
	}

	if o.ExpireTimeSpan <= 0 {
		return errors.Join(ErrInvalidCookieOptions, errors.New("expire time span must be positive"))
	}

	switch o.SameSite {
	case SameSiteLax, SameSiteStrict:
	case SameSiteNone:
		if !o.Secure {
			return errors.Join(ErrInvalidCookieOptions, errors.New("SameSite=None requires a secure cookie"))
		}
	default:
		return errors.Join(ErrInvalidCookieOptions, errors.New("unknown SameSite mode "+o.SameSite))
	}

	return nil
}

// NewSessionStore builds the fiber session store backing the cookie.
func NewSessionStore(opts CookieOptions) (*session.Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return session.New(session.Config{
		Expiration:     opts.ExpireTimeSpan,
		KeyLookup:      "cookie:" + opts.Name,
		CookiePath:     "/",
		CookieSecure:   opts.Secure,
		CookieHTTPOnly: opts.HTTPOnly,
		CookieSameSite: opts.SameSite,
		Storage:        opts.Storage,
	}), nil
}

// SignIn stores principal in a fresh session.
func SignIn(c *fiber.Ctx, store *session.Store, opts CookieOptions, principal string) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}

	if err := sess.Regenerate(); err != nil {
		return err
	}

	sess.Set(principalKey, principal)
	sess.Set(expiresKey, time.Now().Add(opts.ExpireTimeSpan).Unix())

	return sess.Save()
}

// SignOut destroys the current session.
func SignOut(c *fiber.Ctx, store *session.Store) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}

	return sess.Destroy()
}

// Principal returns the signed-in principal stored by RequireAuthentication.
func Principal(c *fiber.Ctx) (string, bool) {
	p, ok := c.Locals(principalKey).(string)

	return p, ok && p != ""
}

// RequireAuthentication redirects requests without a valid session to the
// login path. With sliding expiration every authenticated request renews the
// session; without it the session expires ExpireTimeSpan after sign in.
func RequireAuthentication(store *session.Store, opts CookieOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}

		principal, _ := sess.Get(principalKey).(string)
		if principal == "" {
			return challenge(c, opts)
		}

		now := time.Now()

		if !opts.SlidingExpiration {
			if expires, ok := sess.Get(expiresKey).(int64); ok && now.Unix() >= expires {
				if err := sess.Destroy(); err != nil {
					return err
				}

				return challenge(c, opts)
			}
		} else {
			sess.Set(expiresKey, now.Add(opts.ExpireTimeSpan).Unix())

			if err := sess.Save(); err != nil {
				return err
			}
		}

		c.Locals(principalKey, principal)

		return c.Next()
	}
}

func challenge(c *fiber.Ctx, opts CookieOptions) error {
	target := opts.LoginPath + "?" + ReturnURLParam + "=" + url.QueryEscape(c.OriginalURL())

	return c.Redirect(target, fiber.StatusFound)
}
