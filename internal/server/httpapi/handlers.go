package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/server/dto"
	"github.com/gin-gonic/gin"
)

func errorBody(msg string) dto.ErrorResponse {
	return dto.ErrorResponse{Error: msg}
}

// writeError maps service errors onto status codes. Storage and other
// unexpected failures are logged and reported without details.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		c.JSON(http.StatusBadRequest, errorBody(msg))
	case errors.Is(err, common.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, errorBody("wrong password"))
	case errors.Is(err, common.ErrRegistrationDisabled):
		c.JSON(http.StatusForbidden, errorBody(common.ErrRegistrationDisabled.Error()))
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, errorBody("invalid token"))
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorBody("not found"))
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (s *Server) alive(c *gin.Context) {
	c.String(http.StatusOK, "Alive")
}

func (s *Server) authenticate(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	token, err := s.users.Authenticate(context.WithoutCancel(c.Request.Context()), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token})
}

func (s *Server) me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, dto.Me{ID: u.ID, Email: u.Email, Nickname: u.Nickname})
}

func (s *Server) getFavourites(c *gin.Context) {
	pkg, err := s.sync.Favourites(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) postFavourites(c *gin.Context) {
	var pkg dto.FavouritesPackage
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid favourites package: "+err.Error()))
		return
	}

	// The write must complete even if the client goes away mid-request.
	merged, changed, err := s.sync.SyncFavourites(context.WithoutCancel(c.Request.Context()), currentUser(c).ID, &pkg)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !changed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, merged)
}

func (s *Server) getHistory(c *gin.Context) {
	pkg, err := s.sync.History(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) postHistory(c *gin.Context) {
	var pkg dto.HistoryPackage
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid history package: "+err.Error()))
		return
	}

	merged, changed, err := s.sync.SyncHistory(context.WithoutCancel(c.Request.Context()), currentUser(c).ID, &pkg)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !changed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, merged)
}

func (s *Server) getManga(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid manga id"))
		return
	}

	m, err := s.catalog.GetManga(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) listManga(c *gin.Context) {
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("offset is required"))
		return
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("limit is required"))
		return
	}

	list, err := s.catalog.ListManga(c.Request.Context(), offset, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.catalog.Stats(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Info{ServerVersion: s.opts.Version})
}
