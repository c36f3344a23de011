package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mangasync/internal/client/api"
	"github.com/dmitrijs2005/mangasync/internal/client/config"
	"github.com/dmitrijs2005/mangasync/internal/client/repositories"
	"github.com/dmitrijs2005/mangasync/internal/client/repositories/state"
	"github.com/dmitrijs2005/mangasync/internal/filex"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
)

// Remote is the part of the sync API the CLI talks to.
type Remote interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*dto.Me, error)
	Info(ctx context.Context) (*dto.Info, error)
	Favourites(ctx context.Context, token string) (*dto.FavouritesPackage, error)
	PushFavourites(ctx context.Context, token string, pkg *dto.FavouritesPackage) (*dto.FavouritesPackage, bool, error)
	History(ctx context.Context, token string) (*dto.HistoryPackage, error)
	PushHistory(ctx context.Context, token string, pkg *dto.HistoryPackage) (*dto.HistoryPackage, bool, error)
}

type App struct {
	config  *config.Config
	remote  Remote
	session state.Repository
	closer  io.Closer
	reader  *bufio.Reader
	out     io.Writer

	email string
	token string
}

// NewApp prepares the data directory, opens the local database and restores
// a previous session if one was saved.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	repos, err := repositories.Open(ctx, filepath.Join(dir, "client.db"))
	if err != nil {
		return nil, err
	}

	a := newApp(c, api.NewClient(c.ServerURL, c.RequestTimeout), repos.State, os.Stdin, os.Stdout)
	a.closer = repos

	if err := a.restoreSession(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}
	return a, nil
}

func newApp(c *config.Config, remote Remote, session state.Repository, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		remote:  remote,
		session: session,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) restoreSession(ctx context.Context) error {
	token, _, err := a.session.Get(ctx, state.KeyToken)
	if err != nil {
		return err
	}
	email, _, err := a.session.Get(ctx, state.KeyEmail)
	if err != nil {
		return err
	}
	a.token, a.email = token, email
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}

// Run reads commands until EOF, "exit" or ctx is done.
func (a *App) Run(ctx context.Context) {
	if a.closer != nil {
		defer a.closer.Close()
	}

	printlnFn("Welcome to mangasync (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}
