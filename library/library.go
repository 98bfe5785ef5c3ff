// Package library turns the user's bookmarks and home feed into playlists
// and keeps bookmark edits responsive with optimistic updates.
package library

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"briefcast/config"
	"briefcast/gateway"
	"briefcast/optimistic"
	"briefcast/types"
)

// Remote is the bookmarks and briefings API.
type Remote interface {
	Bookmarks(ctx context.Context) ([]gateway.Bookmark, error)
	AddBookmark(ctx context.Context, b gateway.Bookmark) (*gateway.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int) error
	Briefings(ctx context.Context) ([]gateway.Briefing, error)
}

// Library caches the signed-in user's lists.
type Library struct {
	remote    Remote
	bookmarks *optimistic.Value[[]gateway.Bookmark]
	briefings *optimistic.Value[[]gateway.Briefing]
	tempID    atomic.Int64
}

func New(remote Remote) *Library {
	return &Library{
		remote:    remote,
		bookmarks: optimistic.NewValue[[]gateway.Bookmark](nil),
		briefings: optimistic.NewValue[[]gateway.Briefing](nil),
	}
}

// Refresh reloads both lists from the server.
func (l *Library) Refresh(ctx context.Context) error {
	bookmarks, err := l.remote.Bookmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}
	briefings, err := l.remote.Briefings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load briefings: %w", err)
	}
	l.bookmarks.Set(bookmarks)
	l.briefings.Set(briefings)
	log.Printf("📚 Library refreshed: %d bookmarks, %d briefings", len(bookmarks), len(briefings))
	return nil
}

// Clear drops everything, e.g. on sign-out.
func (l *Library) Clear() {
	l.bookmarks.Set(nil)
	l.briefings.Set(nil)
}

// Bookmarks returns the bookmarks as currently shown.
func (l *Library) Bookmarks() []gateway.Bookmark {
	return append([]gateway.Bookmark(nil), l.bookmarks.Get()...)
}

// AddBookmark shows the bookmark at once under a temporary id and swaps in
// the server's copy when the save succeeds.
func (l *Library) AddBookmark(ctx context.Context, b gateway.Bookmark) error {
	temp := -l.tempID.Add(1)
	local := b
	local.ID = int(temp)

	return optimistic.Do(ctx, l.bookmarks, optimistic.Tx[[]gateway.Bookmark]{
		Apply: func(list []gateway.Bookmark) []gateway.Bookmark {
			return append([]gateway.Bookmark{local}, list...)
		},
		Commit: func(ctx context.Context) (func([]gateway.Bookmark) []gateway.Bookmark, error) {
			saved, err := l.remote.AddBookmark(ctx, b)
			if err != nil {
				return nil, err
			}
			return func(list []gateway.Bookmark) []gateway.Bookmark {
				return replace(list, local.ID, *saved)
			}, nil
		},
		Revert: func(list []gateway.Bookmark) []gateway.Bookmark {
			return without(list, local.ID)
		},
	})
}

// RemoveBookmark hides the bookmark at once and restores it in place if the
// delete fails.
func (l *Library) RemoveBookmark(ctx context.Context, id int) error {
	var removed gateway.Bookmark
	at := -1
	return optimistic.Do(ctx, l.bookmarks, optimistic.Tx[[]gateway.Bookmark]{
		Apply: func(list []gateway.Bookmark) []gateway.Bookmark {
			for i, b := range list {
				if b.ID == id {
					removed, at = b, i
					break
				}
			}
			return without(list, id)
		},
		Commit: func(ctx context.Context) (func([]gateway.Bookmark) []gateway.Bookmark, error) {
			return nil, l.remote.DeleteBookmark(ctx, id)
		},
		Revert: func(list []gateway.Bookmark) []gateway.Bookmark {
			if at < 0 {
				return list
			}
			if at > len(list) {
				at = len(list)
			}
			out := make([]gateway.Bookmark, 0, len(list)+1)
			out = append(out, list[:at]...)
			out = append(out, removed)
			return append(out, list[at:]...)
		},
	})
}

// BookmarkID is the track id of a bookmark.
func BookmarkID(id int) string {
	return fmt.Sprintf("bookmark-%d", id)
}

// BookmarkPlaylist lists the bookmarks as playable items. Bookmarks without
// audio generate from their saved summary.
func (l *Library) BookmarkPlaylist() []types.PlaylistItem {
	list := l.bookmarks.Get()
	items := make([]types.PlaylistItem, 0, len(list))
	for _, b := range list {
		item := types.PlaylistItem{ID: BookmarkID(b.ID), Title: b.Title, AudioURL: b.AudioURL}
		if text := bookmarkText(b); text != "" {
			item.Source = types.ContentSource{Kind: types.SourceText, Text: text}
		}
		items = append(items, item)
	}
	return items
}

// HomePlaylist lists today's personal briefing followed by one item per
// home feed card.
func (l *Library) HomePlaylist() []types.PlaylistItem {
	items := []types.PlaylistItem{{
		ID:     config.TodaysBriefingID,
		Title:  config.TodaysBriefingTitle,
		Source: types.ContentSource{Kind: types.SourcePersonal},
	}}
	for _, b := range l.briefings.Get() {
		if b.Error != "" || b.URL == "" {
			continue
		}
		items = append(items, types.PlaylistItem{
			ID:     fmt.Sprintf("briefing-%d", b.ID),
			Title:  b.Title,
			Source: types.ContentSource{Kind: types.SourceURLs, URLs: []string{b.URL}},
		})
	}
	return items
}

// CombinedItem is one briefing generated from every home feed card.
func (l *Library) CombinedItem() (types.PlaylistItem, bool) {
	var urls []string
	for _, b := range l.briefings.Get() {
		if b.Error == "" && b.URL != "" {
			urls = append(urls, b.URL)
		}
	}
	if len(urls) == 0 {
		return types.PlaylistItem{}, false
	}
	return types.PlaylistItem{
		ID:     config.CombinedBriefingID,
		Title:  "Combined Briefing",
		Source: types.ContentSource{Kind: types.SourceURLs, URLs: urls},
	}, true
}

// IDs returns every track id the library can currently play.
func (l *Library) IDs() []string {
	var ids []string
	for _, item := range l.HomePlaylist() {
		ids = append(ids, item.ID)
	}
	for _, item := range l.BookmarkPlaylist() {
		ids = append(ids, item.ID)
	}
	if item, ok := l.CombinedItem(); ok {
		ids = append(ids, item.ID)
	}
	return ids
}

func bookmarkText(b gateway.Bookmark) string {
	if s := strings.TrimSpace(b.Summary); s != "" {
		return s
	}
	return strings.TrimSpace(b.Description)
}

func without(list []gateway.Bookmark, id int) []gateway.Bookmark {
	out := make([]gateway.Bookmark, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func replace(list []gateway.Bookmark, id int, with gateway.Bookmark) []gateway.Bookmark {
	out := make([]gateway.Bookmark, len(list))
	for i, b := range list {
		if b.ID == id {
			b = with
		}
		out[i] = b
	}
	return out
}
