package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	info   lipgloss.Style
	active lipgloss.Style
	tab    lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		info:   NewStyle(emotionColors[models.ColorInfo]),
		active: NewBold("#FFFFFF").Background(lipgloss.Color(t)).Padding(0, 1),
		tab:    NewStyle(h).Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// emotionColors maps each display category to a terminal color.
var emotionColors = map[models.Color]string{
	models.ColorPrimary:   "#7D56F4",
	models.ColorSecondary: "#626262",
	models.ColorSuccess:   "#04B575",
	models.ColorInfo:      "#3FA7D6",
	models.ColorWarning:   "#FFA500",
	models.ColorDanger:    "#FF0000",
	models.ColorDark:      "#8A8A8A",
}

// EmotionStyle returns the badge style for an emotion label.
func EmotionStyle(emotion string) lipgloss.Style {
	return NewBold(emotionColors[models.EmotionColor(emotion)])
}

func levelStyle(level controller.Level) lipgloss.Style {
	switch level {
	case controller.LevelSuccess:
		return styles.ok
	case controller.LevelError:
		return styles.err
	case controller.LevelWarning:
		return styles.warn
	default:
		return styles.info
	}
}
