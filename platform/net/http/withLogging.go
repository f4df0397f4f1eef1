package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/ManojKamatam/LoginApp/platform"
	"github.com/ManojKamatam/LoginApp/platform/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestInfo stores http access log data.
type RequestInfo struct {
	Method        string
	URI           string
	Referer       string
	RemoteAddress string
	Status        int
	Date          time.Time
	Duration      time.Duration
	UserAgent     string
	TraceID       string
	Protocol      string
	Size          int
}

// NewRequestInfo creates an instance of RequestInfo.
func NewRequestInfo(c *fiber.Ctx) *RequestInfo {
	referer := "-"
	if c.Get(fiber.HeaderReferer) != "" {
		referer = c.Get(fiber.HeaderReferer)
	}

	return &RequestInfo{
		TraceID:       c.Get(HeaderID),
		Method:        c.Method(),
		URI:           c.OriginalURL(),
		Referer:       referer,
		UserAgent:     c.Get(HeaderUserAgent),
		RemoteAddress: c.IP(),
		Protocol:      c.Protocol(),
		Date:          time.Now().UTC(),
	}
}

// CLFString produces a log entry format similar to Common Log Format (CLF)
// Ref: https://httpd.apache.org/docs/trunk/logs.html#common
func (r *RequestInfo) CLFString() string {
	return strings.Join([]string{
		r.RemoteAddress,
		"-",
		"-",
		r.Protocol,
		r.Date.Format("[02/Jan/2006:15:04:05 -0700]"),
		`"` + r.Method + " " + r.URI + `"`,
		strconv.Itoa(r.Status),
		strconv.Itoa(r.Size),
		r.Referer,
		r.UserAgent,
	}, " ")
}

// String implements fmt.Stringer.
func (r *RequestInfo) String() string {
	return r.CLFString()
}

// finish computes the duration and copies response data.
func (r *RequestInfo) finish(c *fiber.Ctx) {
	r.Duration = time.Now().UTC().Sub(r.Date)
	r.Status = c.Response().StatusCode()
	r.Size = len(c.Response().Body())
}

type logMiddleware struct {
	Logger    log.Logger
	SkipPaths map[string]struct{}
}

// LogMiddlewareOption configures WithHTTPLogging.
type LogMiddlewareOption func(l *logMiddleware)

// WithCustomLogger sets the access logger.
func WithCustomLogger(logger log.Logger) LogMiddlewareOption {
	return func(l *logMiddleware) {
		if logger != nil {
			l.Logger = logger
		}
	}
}

// WithSkipPaths excludes exact paths from access logging.
func WithSkipPaths(paths ...string) LogMiddlewareOption {
	return func(l *logMiddleware) {
		for _, p := range paths {
			l.SkipPaths[p] = struct{}{}
		}
	}
}

func buildOpts(opts ...LogMiddlewareOption) *logMiddleware {
	mid := &logMiddleware{
		Logger:    log.NewNop(),
		SkipPaths: map[string]struct{}{PathHealth: {}, PathReady: {}},
	}

	for _, opt := range opts {
		opt(mid)
	}

	return mid
}

// WithHTTPLogging logs one CLF line per request and attaches a request
// scoped logger to the user context. Probe routes are skipped.
func WithHTTPLogging(opts ...LogMiddlewareOption) fiber.Handler {
	mid := buildOpts(opts...)

	return func(c *fiber.Ctx) error {
		if _, skip := mid.SkipPaths[c.Path()]; skip {
			return c.Next()
		}

		setRequestHeaderID(c)

		info := NewRequestInfo(c)
		logger := mid.Logger.With(log.String(HeaderID, info.TraceID))

		c.SetUserContext(platform.ContextWithLogger(c.UserContext(), logger))

		err := c.Next()
		if err != nil {
			// Run the error handler now so the logged status is the one sent.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}

			err = nil
		}

		info.finish(c)

		logger.Log(c.UserContext(), log.LevelInfo, info.CLFString(),
			log.Int("status", info.Status),
			log.Duration("duration", info.Duration),
		)

		return err
	}
}

func setRequestHeaderID(c *fiber.Ctx) {
	headerID := strings.TrimSpace(c.Get(HeaderID))

	if headerID == "" {
		headerID = uuid.New().String()
		c.Request().Header.Set(HeaderID, headerID)
	}

	c.Set(HeaderID, headerID)
}
