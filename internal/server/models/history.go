package models

// History is the reading progress of one user on one manga.
type History struct {
	MangaID   int64
	UserID    int64
	CreatedAt int64
	UpdatedAt int64
	ChapterID int64
	Page      int32
	Scroll    float64
	Percent   float64
	Chapters  int32
	DeletedAt int64
}

// HistoryWithManga is a history row joined with its manga.
type HistoryWithManga struct {
	History
	Manga Manga
}
