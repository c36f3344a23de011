// Package httpapi exposes the sync, auth and catalog operations over HTTP
// with gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/gin-gonic/gin"
)

// Users authenticates credentials and resolves bearer tokens.
type Users interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

// Syncer reads and writes the per-user packages.
type Syncer interface {
	SyncFavourites(ctx context.Context, userID int64, pkg *dto.FavouritesPackage) (*dto.FavouritesPackage, bool, error)
	SyncHistory(ctx context.Context, userID int64, pkg *dto.HistoryPackage) (*dto.HistoryPackage, bool, error)
	Favourites(ctx context.Context, userID int64) (*dto.FavouritesPackage, error)
	History(ctx context.Context, userID int64) (*dto.HistoryPackage, error)
}

// Catalog serves the shared manga catalog.
type Catalog interface {
	GetManga(ctx context.Context, id int64) (*dto.Manga, error)
	ListManga(ctx context.Context, offset, limit int) ([]dto.Manga, error)
	Stats(ctx context.Context) (*dto.Stats, error)
}

// Options tunes the router.
type Options struct {
	Version string
	// AuthRate and AuthBurst bound POST /auth per client IP. A zero rate
	// disables the limit.
	AuthRate  float64
	AuthBurst int

	// TrustedProxies lists the proxies whose forwarding headers name the
	// client IP. With none, the peer address of the connection is used.
	TrustedProxies []string
}

type Server struct {
	address string
	users   Users
	sync    Syncer
	catalog Catalog
	opts    Options
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, users Users, sync Syncer, catalog Catalog, opts Options) *Server {
	return &Server{
		address: address,
		users:   users,
		sync:    sync,
		catalog: catalog,
		opts:    opts,
		logger:  l.With("module", "http_server"),
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		s.logger.Error(context.Background(), "invalid trusted proxies, forwarding headers ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	r.GET("/", s.alive)

	authLimit := NewIPRateLimiter(s.opts.AuthRate, s.opts.AuthBurst)
	r.POST("/auth", RateLimit(authLimit), s.authenticate)

	authed := r.Group("/", AuthMiddleware(s.users, s.logger))
	authed.GET("/me", s.me)

	resource := authed.Group("/resource")
	resource.GET("/favourites", s.getFavourites)
	resource.POST("/favourites", s.postFavourites)
	resource.GET("/history", s.getHistory)
	resource.POST("/history", s.postHistory)

	r.GET("/manga", s.listManga)
	r.GET("/manga/:id", s.getManga)

	admin := r.Group("/admin")
	admin.GET("/stats", s.stats)
	admin.GET("/info", s.info)

	return r
}
