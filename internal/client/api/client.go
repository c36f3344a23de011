// Package api is the HTTP client of the sync server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/netx"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends the request and decodes a 200 body into out. It reports false
// with a nil error for 204 No Content.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) (bool, error) {
	req, err := netx.NewJSONRequest(ctx, method, c.baseURL+path, in)
	if err != nil {
		return false, err
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return true, nil
		}
		return true, netx.DecodeJSON(resp, out)
	default:
		return false, mapError(netx.ReadStatusError(resp))
	}
}

// mapError turns the server's error responses back into the shared
// sentinels so callers can use errors.Is.
func mapError(se *netx.StatusError) error {
	switch se.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrInvalidToken
	case http.StatusForbidden:
		return common.ErrRegistrationDisabled
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadRequest:
		if se.Message == common.ErrWrongPassword.Error() {
			return common.ErrWrongPassword
		}
		return fmt.Errorf("%w: %s", common.ErrorValidation, se.Message)
	default:
		return se
	}
}

// Login exchanges credentials for a bearer token. Unknown emails are
// registered when the server allows it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp dto.AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth", "", dto.AuthRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Me(ctx context.Context, token string) (*dto.Me, error) {
	var me dto.Me
	if _, err := c.do(ctx, http.MethodGet, "/me", token, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (c *Client) Info(ctx context.Context) (*dto.Info, error) {
	var info dto.Info
	if _, err := c.do(ctx, http.MethodGet, "/admin/info", "", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Favourites(ctx context.Context, token string) (*dto.FavouritesPackage, error) {
	var pkg dto.FavouritesPackage
	if _, err := c.do(ctx, http.MethodGet, "/resource/favourites", token, nil, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// PushFavourites submits pkg. When the server had nothing to change it
// returns nil and false; otherwise the merged package and true.
func (c *Client) PushFavourites(ctx context.Context, token string, pkg *dto.FavouritesPackage) (*dto.FavouritesPackage, bool, error) {
	var merged dto.FavouritesPackage
	changed, err := c.do(ctx, http.MethodPost, "/resource/favourites", token, pkg, &merged)
	if err != nil || !changed {
		return nil, false, err
	}
	return &merged, true, nil
}

func (c *Client) History(ctx context.Context, token string) (*dto.HistoryPackage, error) {
	var pkg dto.HistoryPackage
	if _, err := c.do(ctx, http.MethodGet, "/resource/history", token, nil, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (c *Client) PushHistory(ctx context.Context, token string, pkg *dto.HistoryPackage) (*dto.HistoryPackage, bool, error) {
	var merged dto.HistoryPackage
	changed, err := c.do(ctx, http.MethodPost, "/resource/history", token, pkg, &merged)
	if err != nil || !changed {
		return nil, false, err
	}
	return &merged, true, nil
}
