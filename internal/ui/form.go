package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form is a small stack of labeled text inputs. Enter advances to the next
// field and submits on the last one; esc cancels.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	raw    []bool // values returned untrimmed
	focus  int
	submit func(values []string) tea.Cmd
}

type field struct {
	label       string
	value       string
	placeholder string
	limit       int
	verbatim    bool
}

func newForm(title string, fields []field, submit func(values []string) tea.Cmd) *form {
	f := &form{title: title, submit: submit}
	for _, fl := range fields {
		ti := textinput.New()
		ti.Placeholder = fl.placeholder
		ti.CharLimit = fl.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 200
		}
		ti.Width = 40
		ti.SetValue(fl.value)
		f.labels = append(f.labels, fl.label)
		f.inputs = append(f.inputs, ti)
		f.raw = append(f.raw, fl.verbatim)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, w)
	}
}

func (f *form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
		if !f.raw[i] {
			out[i] = strings.TrimSpace(out[i])
		}
	}
	return out
}

// update handles a message. done reports that the form closed, either
// submitted or canceled.
func (f *form) update(msg tea.Msg, keys InputKeyMap) (cmd tea.Cmd, done bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Cancel):
			return nil, true
		case key.Matches(km, keys.Confirm), km.Type == tea.KeyTab:
			if f.focus < len(f.inputs)-1 {
				f.inputs[f.focus].Blur()
				f.focus++
				f.inputs[f.focus].Focus()
				return textinput.Blink, false
			}
			if km.Type == tea.KeyTab {
				return nil, false
			}
			return f.submit(f.values()), true
		case km.Type == tea.KeyShiftTab:
			if f.focus > 0 {
				f.inputs[f.focus].Blur()
				f.focus--
				f.inputs[f.focus].Focus()
			}
			return nil, false
		}
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, false
}

func (f *form) view(s *Styles) string {
	var b strings.Builder
	b.WriteString(s.PaneTitleStyle.Render(f.title))
	b.WriteString("\n")
	for i, in := range f.inputs {
		prompt := "  "
		if i == f.focus {
			prompt = s.InputPromptStyle.Render("› ")
		}
		b.WriteString(prompt + s.StatLabelStyle.Render(f.labels[i]+": ") + in.View())
		b.WriteString("\n")
	}
	return b.String()
}
