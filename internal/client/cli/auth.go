package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/client/repositories/state"
	"github.com/dmitrijs2005/mangasync/internal/common"
)

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

// Login prompts for credentials and saves the issued token. An unknown
// email is registered by the server when registration is open.
func (a *App) Login(ctx context.Context) error {
	p := prompter{in: a.reader, out: a.out}

	email, err := p.line("Email")
	if err != nil {
		return err
	}

	password, err := p.password("Password")
	if err != nil {
		return err
	}

	token, err := a.remote.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.session.Set(ctx, state.KeyToken, token); err != nil {
		return err
	}
	if err := a.session.Set(ctx, state.KeyEmail, email); err != nil {
		return err
	}
	a.token, a.email = token, email

	fmt.Fprintln(a.out, "Logged in as", email)
	return nil
}

// Logout forgets the saved session and watermarks.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return err
	}
	a.token, a.email = "", ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	me, err := a.remote.Me(ctx, a.token)
	if err != nil {
		return a.checkSession(ctx, err)
	}
	nick := ""
	if me.Nickname != nil {
		nick = " (" + *me.Nickname + ")"
	}
	fmt.Fprintf(a.out, "%d %s%s\n", me.ID, me.Email, nick)

	for _, w := range []struct{ kind, key string }{
		{kindFavourites, state.KeyFavouritesWatermark},
		{kindHistory, state.KeyHistoryWatermark},
	} {
		v, ok, err := a.session.Get(ctx, w.key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			fmt.Fprintf(a.out, "%s last synced %s\n", w.kind, time.UnixMilli(ms).UTC().Format(time.RFC3339))
		}
	}
	return nil
}

func (a *App) Info(ctx context.Context) error {
	info, err := a.remote.Info(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "server %s at %s\n", info.ServerVersion, a.config.ServerURL)
	return nil
}

// checkSession drops a token the server no longer accepts.
func (a *App) checkSession(ctx context.Context, err error) error {
	if !errors.Is(err, common.ErrInvalidToken) {
		return err
	}
	if cerr := a.session.Delete(ctx, state.KeyToken); cerr != nil {
		return errors.Join(err, cerr)
	}
	a.token = ""
	return fmt.Errorf("session expired, use 'login' again: %w", err)
}
