package dto

import (
	"sort"
	"unicode/utf8"

	"github.com/dmitrijs2005/mangasync/internal/server/models"
)

// Column widths applied before storage.
const (
	maxMangaTitle    = 100
	maxURL           = 255
	maxAuthor        = 64
	maxSource        = 32
	maxCategoryTitle = 120
	maxCategoryOrder = 32
	maxTagTitle      = 64
	maxTagKey        = 120
)

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func truncatePtr(s *string, n int) *string {
	if s == nil {
		return nil
	}
	t := truncate(*s, n)
	return &t
}

// ToModel converts the manga to its catalog row.
func (m *Manga) ToModel() *models.Manga {
	row := &models.Manga{
		ID:            m.ID,
		Title:         truncate(m.Title, maxMangaTitle),
		AltTitle:      truncatePtr(m.AltTitle, maxMangaTitle),
		URL:           truncate(m.URL, maxURL),
		PublicURL:     truncate(m.PublicURL, maxURL),
		Rating:        m.Rating,
		CoverURL:      truncate(m.CoverURL, maxURL),
		LargeCoverURL: truncatePtr(m.LargeCoverURL, maxURL),
		Author:        truncatePtr(m.Author, maxAuthor),
		Source:        truncate(m.Source, maxSource),
	}
	if m.ContentRating != nil {
		s := string(*m.ContentRating)
		row.ContentRating = &s
		row.IsNSFW = *m.ContentRating == RatingAdult
	}
	if m.State != nil {
		s := string(*m.State)
		row.State = &s
	}
	return row
}

// TagsToModel converts the manga's tags to catalog rows.
func (m *Manga) TagsToModel() []*models.Tag {
	out := make([]*models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		out = append(out, t.toModel())
	}
	return out
}

func (t MangaTag) toModel() *models.Tag {
	return &models.Tag{
		ID:     t.ID,
		Title:  truncate(t.Title, maxTagTitle),
		Key:    truncate(t.Key, maxTagKey),
		Source: truncate(t.Source, maxSource),
	}
}

func tagFromModel(t *models.Tag) MangaTag {
	return MangaTag{ID: t.ID, Title: t.Title, Key: t.Key, Source: t.Source}
}

// MangaFromModel assembles the wire manga. The second result names the
// columns whose stored value was not recognised and was replaced by the
// default.
func MangaFromModel(m *models.Manga, tags []*models.Tag) (Manga, []string) {
	var unknown []string

	out := Manga{
		ID:            m.ID,
		Title:         m.Title,
		AltTitle:      m.AltTitle,
		URL:           m.URL,
		PublicURL:     m.PublicURL,
		Rating:        m.Rating,
		CoverURL:      m.CoverURL,
		LargeCoverURL: m.LargeCoverURL,
		Tags:          make([]MangaTag, 0, len(tags)),
		Author:        m.Author,
		Source:        m.Source,
	}

	switch {
	case m.ContentRating != nil:
		r, ok := ParseContentRating(*m.ContentRating)
		if !ok {
			unknown = append(unknown, "content_rating")
		}
		out.ContentRating = &r
	case m.IsNSFW:
		r := RatingAdult
		out.ContentRating = &r
	}

	if m.State != nil {
		s, ok := ParseMangaState(*m.State)
		if !ok {
			unknown = append(unknown, "state")
		}
		out.State = &s
	}

	for _, t := range tags {
		out.Tags = append(out.Tags, tagFromModel(t))
	}

	return out, unknown
}

func (c *Category) ToModel(userID int64) *models.Category {
	return &models.Category{
		ID:        c.ID,
		UserID:    userID,
		CreatedAt: c.CreatedAt,
		SortKey:   c.SortKey,
		Title:     truncate(c.Title, maxCategoryTitle),
		Order:     truncate(c.Order, maxCategoryOrder),
		Track:     c.Track,
		ShowInLib: c.ShowInLib,
		DeletedAt: c.DeletedAt,
	}
}

func CategoryFromModel(c *models.Category) Category {
	return Category{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		SortKey:   c.SortKey,
		Track:     c.Track,
		Title:     c.Title,
		Order:     c.Order,
		DeletedAt: c.DeletedAt,
		ShowInLib: c.ShowInLib,
	}
}

// ToModel converts the favourite to its row. The manga key is taken from the
// embedded manga so the row always points at the upserted catalog entry.
func (f *Favourite) ToModel(userID int64) *models.Favourite {
	return &models.Favourite{
		MangaID:    f.Manga.ID,
		CategoryID: f.CategoryID,
		UserID:     userID,
		SortKey:    f.SortKey,
		Pinned:     f.Pinned,
		CreatedAt:  f.CreatedAt,
		DeletedAt:  f.DeletedAt,
	}
}

func FavouriteFromModel(f *models.Favourite, m Manga) Favourite {
	return Favourite{
		MangaID:    f.MangaID,
		Manga:      m,
		CategoryID: f.CategoryID,
		SortKey:    f.SortKey,
		Pinned:     f.Pinned,
		CreatedAt:  f.CreatedAt,
		DeletedAt:  f.DeletedAt,
	}
}

func (h *History) ToModel(userID int64) *models.History {
	return &models.History{
		MangaID:   h.Manga.ID,
		UserID:    userID,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
		ChapterID: h.ChapterID,
		Page:      h.Page,
		Scroll:    h.Scroll,
		Percent:   h.Percent,
		Chapters:  h.Chapters,
		DeletedAt: h.DeletedAt,
	}
}

func HistoryFromModel(h *models.History, m Manga) History {
	return History{
		MangaID:   h.MangaID,
		Manga:     m,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
		ChapterID: h.ChapterID,
		Page:      h.Page,
		Scroll:    h.Scroll,
		Percent:   h.Percent,
		Chapters:  h.Chapters,
		DeletedAt: h.DeletedAt,
	}
}

// Normalized returns a copy in the canonical order used by the composer
// (categories by id, favourites by category then manga, tags by id) with nil
// slices replaced by empty ones, the timestamp cleared, manga_id fields
// taken from the embedded manga and strings cut to the stored widths.
// Two packages describe the same state when their normalized forms are equal.
func (p *FavouritesPackage) Normalized() FavouritesPackage {
	out := FavouritesPackage{
		Categories: make([]Category, 0, len(p.Categories)),
		Favourites: make([]Favourite, 0, len(p.Favourites)),
	}
	for _, c := range dedupCategories(p.Categories) {
		c.Title = truncate(c.Title, maxCategoryTitle)
		c.Order = truncate(c.Order, maxCategoryOrder)
		out.Categories = append(out.Categories, c)
	}
	for _, f := range dedupFavourites(p.Favourites) {
		f.Manga = f.Manga.normalized()
		f.MangaID = f.Manga.ID
		out.Favourites = append(out.Favourites, f)
	}
	sort.SliceStable(out.Categories, func(i, j int) bool { return out.Categories[i].ID < out.Categories[j].ID })
	sort.SliceStable(out.Favourites, func(i, j int) bool {
		a, b := out.Favourites[i], out.Favourites[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		return a.MangaID < b.MangaID
	})
	return out
}

// Normalized is the history counterpart of FavouritesPackage.Normalized.
func (p *HistoryPackage) Normalized() HistoryPackage {
	out := HistoryPackage{History: make([]History, 0, len(p.History))}
	for _, h := range dedupHistory(p.History) {
		h.Manga = h.Manga.normalized()
		h.MangaID = h.Manga.ID
		out.History = append(out.History, h)
	}
	sort.SliceStable(out.History, func(i, j int) bool { return out.History[i].MangaID < out.History[j].MangaID })
	return out
}

// normalized mirrors a store-and-load round trip of the manga.
func (m Manga) normalized() Manga {
	tags := m.Tags
	row := m.ToModel()
	out, _ := MangaFromModel(row, m.TagsToModel())
	out.Tags = make([]MangaTag, 0, len(tags))
	seen := make(map[int64]int, len(tags))
	for _, t := range tags {
		t = tagFromModel(t.toModel())
		if i, ok := seen[t.ID]; ok {
			out.Tags[i] = t
			continue
		}
		seen[t.ID] = len(out.Tags)
		out.Tags = append(out.Tags, t)
	}
	sort.SliceStable(out.Tags, func(i, j int) bool { return out.Tags[i].ID < out.Tags[j].ID })
	return out
}

// Later duplicates win, as they do when rows are upserted in order.
func dedupCategories(in []Category) []Category {
	idx := make(map[int64]int, len(in))
	out := make([]Category, 0, len(in))
	for _, c := range in {
		if i, ok := idx[c.ID]; ok {
			out[i] = c
			continue
		}
		idx[c.ID] = len(out)
		out = append(out, c)
	}
	return out
}

func dedupFavourites(in []Favourite) []Favourite {
	type key struct{ manga, category int64 }
	idx := make(map[key]int, len(in))
	out := make([]Favourite, 0, len(in))
	for _, f := range in {
		k := key{f.Manga.ID, f.CategoryID}
		if i, ok := idx[k]; ok {
			out[i] = f
			continue
		}
		idx[k] = len(out)
		out = append(out, f)
	}
	return out
}

func dedupHistory(in []History) []History {
	idx := make(map[int64]int, len(in))
	out := make([]History, 0, len(in))
	for _, h := range in {
		if i, ok := idx[h.Manga.ID]; ok {
			out[i] = h
			continue
		}
		idx[h.Manga.ID] = len(out)
		out = append(out, h)
	}
	return out
}
