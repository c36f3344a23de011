package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/mangasync/internal/client/repositories/state"
	"github.com/dmitrijs2005/mangasync/internal/filex"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
)

const (
	kindFavourites = "favourites"
	kindHistory    = "history"
)

var errUsage = errors.New("usage: pull|push <favourites|history> <file>")

func parseSyncArgs(args []string) (kind, file string, err error) {
	if len(args) != 2 {
		return "", "", errUsage
	}
	switch args[0] {
	case kindFavourites, kindHistory:
		return args[0], args[1], nil
	default:
		return "", "", errUsage
	}
}

// Pull downloads a package from the server into file.
func (a *App) Pull(ctx context.Context, args []string) error {
	kind, file, err := parseSyncArgs(args)
	if err != nil {
		return err
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var (
		pkg       any
		watermark *int64
		count     int
	)
	switch kind {
	case kindFavourites:
		p, err := a.remote.Favourites(ctx, a.token)
		if err != nil {
			return a.checkSession(ctx, err)
		}
		pkg, watermark, count = p, p.Timestamp, len(p.Favourites)
	case kindHistory:
		p, err := a.remote.History(ctx, a.token)
		if err != nil {
			return a.checkSession(ctx, err)
		}
		pkg, watermark, count = p, p.Timestamp, len(p.History)
	}

	if err := filex.WriteJSON(file, pkg); err != nil {
		return err
	}
	if err := a.saveWatermark(ctx, kind, watermark); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "pulled %d %s entries into %s\n", count, kind, file)
	return nil
}

// Push uploads the package in file. When the server merged anything the
// file is replaced with the merged package.
func (a *App) Push(ctx context.Context, args []string) error {
	kind, file, err := parseSyncArgs(args)
	if err != nil {
		return err
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var (
		merged    any
		watermark *int64
		changed   bool
	)
	switch kind {
	case kindFavourites:
		var pkg dto.FavouritesPackage
		if err := filex.ReadJSON(file, &pkg); err != nil {
			return err
		}
		m, ch, err := a.remote.PushFavourites(ctx, a.token, &pkg)
		if err != nil {
			return a.checkSession(ctx, err)
		}
		if ch {
			merged, watermark = m, m.Timestamp
		}
		changed = ch
	case kindHistory:
		var pkg dto.HistoryPackage
		if err := filex.ReadJSON(file, &pkg); err != nil {
			return err
		}
		m, ch, err := a.remote.PushHistory(ctx, a.token, &pkg)
		if err != nil {
			return a.checkSession(ctx, err)
		}
		if ch {
			merged, watermark = m, m.Timestamp
		}
		changed = ch
	}

	if !changed {
		fmt.Fprintf(a.out, "%s already up to date\n", kind)
		return nil
	}
	if err := filex.WriteJSON(file, merged); err != nil {
		return err
	}
	if err := a.saveWatermark(ctx, kind, watermark); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "pushed %s, merged package written to %s\n", kind, file)
	return nil
}

func (a *App) saveWatermark(ctx context.Context, kind string, ts *int64) error {
	if ts == nil {
		return nil
	}
	key := state.KeyFavouritesWatermark
	if kind == kindHistory {
		key = state.KeyHistoryWatermark
	}
	return a.session.Set(ctx, key, strconv.FormatInt(*ts, 10))
}
