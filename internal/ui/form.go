package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodtune/internal/models"
)

// formKind identifies what a form submits.
type formKind int

const (
	formLogin formKind = iota
	formRegister
	formEmotion
	formPreferences
	formUpload
)

// form is a column of text inputs with one focused field.
type form struct {
	kind   formKind
	title  string
	keys   []string
	inputs []textinput.Model
	focus  int
}

type field struct {
	key, placeholder, value string
	secret                  bool
}

func newForm(kind formKind, title string, fields ...field) *form {
	f := &form{kind: kind, title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Prompt = fd.placeholder + ": "
		in.Placeholder = fd.placeholder
		in.CharLimit = 256
		in.SetValue(fd.value)
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.keys = append(f.keys, fd.key)
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func loginForm() *form {
	return newForm(formLogin, "Login",
		field{key: "username", placeholder: "Username"},
		field{key: "password", placeholder: "Password", secret: true},
	)
}

func registerForm() *form {
	return newForm(formRegister, "Register",
		field{key: "username", placeholder: "Username"},
		field{key: "email", placeholder: "Email"},
		field{key: "password", placeholder: "Password", secret: true},
	)
}

func emotionForm() *form {
	return newForm(formEmotion, "Recommend for emotion", field{key: "emotion", placeholder: "Emotion"})
}

func preferencesForm(p models.Preferences) *form {
	return newForm(formPreferences, "Preferences",
		field{key: "preferred_genre", placeholder: "Preferred genre", value: p.PreferredGenre},
		field{key: "preferred_artist", placeholder: "Preferred artist", value: p.PreferredArtist},
	)
}

func uploadForm() *form {
	return newForm(formUpload, "Upload song",
		field{key: "title", placeholder: "Title"},
		field{key: "artist", placeholder: "Artist"},
		field{key: "emotion_tag", placeholder: "Emotion tag"},
		field{key: "valence", placeholder: "Valence"},
		field{key: "energy", placeholder: "Energy"},
		field{key: "file", placeholder: "Audio file path"},
	)
}

// Value returns the current text of the field named key.
func (f *form) Value(key string) string {
	for i, k := range f.keys {
		if k == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// next moves focus to the following field, wrapping around.
func (f *form) next() {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// last reports whether the focused field is the final one.
func (f *form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(f.title))
	b.WriteString("\n")
	for _, in := range f.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}
