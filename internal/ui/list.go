package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song        models.Song
	detail      string
	highlighted bool
	favorited   bool
}

func (i songItem) FilterValue() string { return i.song.Title }

func (i songItem) Title() string {
	title := i.song.Title
	if i.highlighted {
		title = "▶ " + title
	}
	if i.favorited {
		title += " ♥"
	}
	return title
}

func (i songItem) Description() string {
	if i.detail != "" {
		return fmt.Sprintf("%s • %s", i.song.Artist, i.detail)
	}
	return i.song.Artist
}

func newSongList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 14)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	return l
}

// songItems builds the items of a play-control list, marking the highlighted entry.
func songItems(s controller.State, kind controller.ListKind) []list.Item {
	ids := s.ListIDs(kind)
	items := make([]list.Item, 0, len(ids))

	switch kind {
	case controller.ListRecommendations:
		for i, song := range s.Recommendations.Songs {
			items = append(items, songItem{song: song, highlighted: s.IsHighlighted(kind, ids, i), favorited: s.Favorited[song.ID]})
		}
	case controller.ListFavorites:
		for i, song := range s.Favorites.Songs {
			items = append(items, songItem{song: song, highlighted: s.IsHighlighted(kind, ids, i)})
		}
	case controller.ListHistory:
		for i, r := range s.Dashboard.ListeningHistory {
			items = append(items, songItem{song: r.Song, detail: models.DisplayTime(r.Timestamp), highlighted: s.IsHighlighted(kind, ids, i)})
		}
	case controller.ListMostPlayed:
		for i, p := range s.Dashboard.MostPlayed {
			detail := fmt.Sprintf("#%d • %d plays", i+1, p.PlayCount)
			items = append(items, songItem{song: p.Song, detail: detail, highlighted: s.IsHighlighted(kind, ids, i)})
		}
	}
	return items
}
