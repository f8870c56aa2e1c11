// Package site serves the public catalog: categories, paginated products per
// category and product detail pages, rendered server-side from the embedded
// templates. It reads through the same list managers as the dashboard, so
// pages share the 30s list cache.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	storefront "github.com/smileynet/storefront"
	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/health"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/logger"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 12

// RelatedLimit caps the "more from this category" strip on product pages.
const RelatedLimit = 4

const healthTimeout = 2 * time.Second

// Options configure a Server.
type Options struct {
	Categories    *lists.Categories
	Subcategories *lists.Subcategories
	Products      *lists.Products
	Health        health.Checker // optional; reported by /healthz
	PageSize      int
	Templates     fs.FS // defaults to the embedded templates
	Logger        logrus.FieldLogger
}

// Server is the catalog site.
type Server struct {
	app      *fiber.App
	cats     *lists.Categories
	subs     *lists.Subcategories
	products *lists.Products
	health   health.Checker
	pageSize int
	log      logrus.FieldLogger
}

// New builds the Fiber app and registers routes.
func New(opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Templates == nil {
		opts.Templates = storefront.Templates
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	s := &Server{
		cats:     opts.Categories,
		subs:     opts.Subcategories,
		products: opts.Products,
		health:   opts.Health,
		pageSize: opts.PageSize,
		log:      opts.Logger.WithField("component", "site"),
	}

	s.app = fiber.New(fiber.Config{
		Views:                 newEngine(opts.Templates),
		ViewsLayout:           "layout",
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(helmet.New())
	s.app.Use(s.accessLog)

	s.app.Get("/", s.home)
	s.app.Get("/categorias/:id", s.category)
	s.app.Get("/produtos/:id", s.product)
	s.app.Get("/healthz", s.healthz)
	return s
}

// App exposes the Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()
	s.log.WithField("address", addr).Info("catalog site listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func newEngine(templates fs.FS) *html.Engine {
	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.AddFunc("brl", func(d decimal.Decimal) string { return catalog.FormatBRL(d) })
	engine.AddFunc("image", func(raw, t string) string { return api.ImageURL(raw, api.ImageType(t)) })
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("join", strings.Join)
	return engine
}

// requestContext carries the Fiber request id into the context handed to the
// managers so backend calls log under the same id.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
		ctx = logger.ContextWithRequestID(ctx, id)
	}
	return ctx
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	entry := logger.WithContext(requestContext(c), s.log).WithFields(logrus.Fields{
		"method":      c.Method(),
		"path":        c.Path(),
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if status >= fiber.StatusInternalServerError {
		entry.Warn("request failed")
	} else {
		entry.Debug("request")
	}
	return err
}

// render adds the values every page uses.
func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		data["RequestID"] = id
	}
	return c.Render(tmpl, data)
}

// handleError renders the error page. Internal details never reach the page.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	heading := "Something went wrong"
	message := "Something went wrong. Please try again."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		switch {
		case code == fiber.StatusNotFound:
			heading = "Not found"
			message = fe.Message
			if message == "" || message == fiber.ErrNotFound.Message || strings.HasPrefix(message, "Cannot ") {
				message = "This page does not exist."
			}
		case code == fiber.StatusBadGateway:
			heading = "Catalog unavailable"
			message = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		logger.WithContext(requestContext(c), s.log).WithError(err).Error("site error")
	}

	c.Status(code)
	if rerr := render(c, "error", fiber.Map{"Title": heading, "Heading": heading, "Message": message}); rerr != nil {
		return c.Status(code).SendString(message)
	}
	return nil
}
