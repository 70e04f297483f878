package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func newPasswordInput(placeholder string) textinput.Model {
	in := newInput(placeholder, 128)
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return in
}

// inputForm is a column of text inputs followed by extra focus stops
// (buttons, links) that the owning view renders itself.
type inputForm struct {
	inputs []textinput.Model
	extra  int
	focus  int
}

func newInputForm(extra int, inputs ...textinput.Model) inputForm {
	f := inputForm{inputs: inputs, extra: extra}
	f.refocus()
	return f
}

func (f *inputForm) stops() int { return len(f.inputs) + f.extra }

func (f *inputForm) cycle(dir int) {
	n := f.stops()
	f.focus = (f.focus + dir + n) % n
	f.refocus()
}

func (f *inputForm) setFocus(i int) {
	f.focus = clamp(i, 0, f.stops()-1)
	f.refocus()
}

func (f *inputForm) refocus() {
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// onInput reports whether a text input currently has focus
func (f *inputForm) onInput() bool { return f.focus < len(f.inputs) }

// stop returns the index of the focused extra stop, or -1
func (f *inputForm) stop() int {
	if f.onInput() {
		return -1
	}
	return f.focus - len(f.inputs)
}

func (f *inputForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// raw returns the input untrimmed (passwords)
func (f *inputForm) raw(i int) string {
	return f.inputs[i].Value()
}

func (f *inputForm) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f *inputForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.setFocus(0)
}

func (f *inputForm) update(msg tea.Msg) tea.Cmd {
	if !f.onInput() {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// choice is a fixed set of options cycled with left/right
type choice struct {
	values []string
	labels []string
	idx    int
}

func (c *choice) next() { c.idx = (c.idx + 1) % len(c.values) }
func (c *choice) prev() { c.idx = (c.idx + len(c.values) - 1) % len(c.values) }

func (c *choice) value() string { return c.values[c.idx] }
func (c *choice) label() string { return c.labels[c.idx] }

func (c *choice) selectValue(v string) {
	c.idx = 0
	for i, val := range c.values {
		if val == v {
			c.idx = i
			return
		}
	}
}
