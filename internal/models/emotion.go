package models

import "strings"

// Color is the display category an emotion label maps to.
type Color string

const (
	ColorPrimary   Color = "primary"
	ColorSecondary Color = "secondary"
	ColorSuccess   Color = "success"
	ColorInfo      Color = "info"
	ColorWarning   Color = "warning"
	ColorDanger    Color = "danger"
	ColorDark      Color = "dark"
)

var emotionColors = map[string]Color{
	"happy":    ColorSuccess,
	"sad":      ColorInfo,
	"angry":    ColorDanger,
	"surprise": ColorWarning,
	"neutral":  ColorSecondary,
	"fear":     ColorDark,
	"disgust":  ColorDark,
}

// EmotionColor maps an emotion label, case-insensitively, to its color category.
//
// Unrecognized labels map to [ColorPrimary].
func EmotionColor(emotion string) Color {
	if c, ok := emotionColors[strings.ToLower(strings.TrimSpace(emotion))]; ok {
		return c
	}
	return ColorPrimary
}

// Emotions lists the labels with a dedicated color, in display order.
func Emotions() []string {
	return []string{"happy", "sad", "angry", "surprise", "neutral", "fear", "disgust"}
}
