// Package remote serves a REST API for controlling a running session.
package remote

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/canvas"
	"github.com/gogpu/vmap/session"
	"github.com/gogpu/vmap/store"
)

// DefaultTimeout bounds how long a request waits for the session.
const DefaultTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithStore enables the /library routes.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithAccessLog enables the fiber request logger.
func WithAccessLog() Option {
	return func(s *Server) { s.accessLog = true }
}

// WithTimeout sets how long a request waits for the session.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// Server exposes a session over HTTP.
type Server struct {
	app       *fiber.App
	sess      *session.Session
	store     *store.Store
	accessLog bool
	timeout   time.Duration

	// frameMu guards raster, which keeps its texture cache between frames.
	frameMu sync.Mutex
	raster  *canvas.Raster
}

// New builds the fiber app for sess.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:    sess,
		timeout: DefaultTimeout,
		raster:  canvas.NewRaster(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "vmap remote",
		ErrorHandler: errorHandler,
	})
	s.app.Use(recover.New())
	if s.accessLog {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	s.app.Get("/surfaces", s.listSurfaces)
	s.app.Post("/surfaces", s.createSurface)
	s.app.Get("/surfaces/:id", s.getSurface)
	s.app.Patch("/surfaces/:id", s.updateSurface)
	s.app.Delete("/surfaces/:id", s.deleteSurface)
	s.app.Post("/surfaces/:id/front", s.bringToFront)

	s.app.Get("/mode", s.getMode)
	s.app.Put("/mode", s.setMode)
	s.app.Post("/shake", s.shake)

	s.app.Post("/layout/save", s.saveLayout)
	s.app.Post("/layout/load", s.loadLayout)

	s.app.Get("/frame.png", s.frame)

	if s.store != nil {
		s.app.Get("/library", s.listLibrary)
		s.app.Post("/library", s.saveLibrary)
		s.app.Post("/library/:id/restore", s.restoreLibrary)
		s.app.Delete("/library/:id", s.deleteLibrary)
	}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server and releases the frame canvas.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.frameMu.Lock()
	_ = s.raster.Close()
	s.frameMu.Unlock()
	return err
}

// do runs fn on the session goroutine with the request timeout.
func (s *Server) do(fn func(*vmap.Mapper) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.sess.Do(ctx, fn)
}
