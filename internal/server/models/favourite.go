package models

type Category struct {
	ID        int64
	UserID    int64
	CreatedAt int64
	SortKey   int32
	Title     string
	Order     string
	Track     bool
	ShowInLib bool
	DeletedAt int64
}

type Favourite struct {
	MangaID    int64
	CategoryID int64
	UserID     int64
	SortKey    int32
	Pinned     bool
	CreatedAt  int64
	DeletedAt  int64
}

// FavouriteWithManga is a favourite row joined with its manga.
type FavouriteWithManga struct {
	Favourite
	Manga Manga
}
