package models

// Manga is a catalog row shared by all users.
type Manga struct {
	ID            int64
	Title         string
	AltTitle      *string
	URL           string
	PublicURL     string
	Rating        float32
	IsNSFW        bool
	ContentRating *string
	CoverURL      string
	LargeCoverURL *string
	State         *string
	Author        *string
	Source        string
}

// Tag is a catalog tag row shared by all users.
type Tag struct {
	ID     int64
	Title  string
	Key    string
	Source string
}

// MangaTag links a manga to one of its tags.
type MangaTag struct {
	MangaID int64
	TagID   int64
}
