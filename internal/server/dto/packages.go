// Package dto defines the JSON shapes exchanged with clients and their
// conversion to and from database rows.
package dto

import "encoding/json"

type Category struct {
	ID        int64  `json:"category_id"`
	CreatedAt int64  `json:"created_at"`
	SortKey   int32  `json:"sort_key"`
	Track     bool   `json:"track"`
	Title     string `json:"title"`
	Order     string `json:"order"`
	DeletedAt int64  `json:"deleted_at"`
	ShowInLib bool   `json:"show_in_lib"`
}

type MangaTag struct {
	ID     int64  `json:"tag_id"`
	Title  string `json:"title"`
	Key    string `json:"key"`
	Source string `json:"source"`
}

type Manga struct {
	ID            int64          `json:"manga_id"`
	Title         string         `json:"title"`
	AltTitle      *string        `json:"alt_title"`
	URL           string         `json:"url"`
	PublicURL     string         `json:"public_url"`
	Rating        float32        `json:"rating"`
	ContentRating *ContentRating `json:"content_rating"`
	CoverURL      string         `json:"cover_url"`
	LargeCoverURL *string        `json:"large_cover_url"`
	Tags          []MangaTag     `json:"tags"`
	State         *MangaState    `json:"state"`
	Author        *string        `json:"author"`
	Source        string         `json:"source"`
}

type Favourite struct {
	MangaID    int64 `json:"manga_id"`
	Manga      Manga `json:"manga"`
	CategoryID int64 `json:"category_id"`
	SortKey    int32 `json:"sort_key"`
	Pinned     bool  `json:"pinned"`
	CreatedAt  int64 `json:"created_at"`
	DeletedAt  int64 `json:"deleted_at"`
}

type History struct {
	MangaID   int64   `json:"manga_id"`
	Manga     Manga   `json:"manga"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
	ChapterID int64   `json:"chapter_id"`
	Page      int32   `json:"page"`
	Scroll    float64 `json:"scroll"`
	Percent   float64 `json:"percent"`
	Chapters  int32   `json:"chapters"`
	DeletedAt int64   `json:"deleted_at"`
}

// UnknownChapters is stored when a client omits the chapter count.
const UnknownChapters int32 = -1

func (h *History) UnmarshalJSON(b []byte) error {
	type plain History
	p := plain{Chapters: UnknownChapters}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*h = History(p)
	return nil
}

// FavouritesPackage is the full favourites collection of a user. Timestamp is
// the server watermark of the last accepted write, nil if there was none.
type FavouritesPackage struct {
	Categories []Category  `json:"categories"`
	Favourites []Favourite `json:"favourites"`
	Timestamp  *int64      `json:"timestamp"`
}

// UnmarshalJSON also accepts "favourite_categories", sent by older clients.
func (p *FavouritesPackage) UnmarshalJSON(b []byte) error {
	type plain FavouritesPackage
	var aux struct {
		plain
		Legacy []Category `json:"favourite_categories"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = FavouritesPackage(aux.plain)
	if p.Categories == nil && aux.Legacy != nil {
		p.Categories = aux.Legacy
	}
	return nil
}

// HistoryPackage is the full reading history of a user.
type HistoryPackage struct {
	History   []History `json:"history"`
	Timestamp *int64    `json:"timestamp"`
}

// AuthRequest is the body of POST /auth.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type Me struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Nickname *string `json:"nickname"`
}

type Stats struct {
	UsersCount int64 `json:"users_count"`
	MangaCount int64 `json:"manga_count"`
}

type Info struct {
	ServerVersion string `json:"server_version"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
