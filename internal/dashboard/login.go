package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginState is the sign-in form shown while no token is stored.
type loginState struct {
	username textinput.Model
	password textinput.Model
	focus    int // 0 username, 1 password
	err      string
	busy     bool
}

func newLoginState() loginState {
	u := textinput.New()
	u.Prompt = "Username  "
	u.CharLimit = 64
	u.Focus()

	p := textinput.New()
	p.Prompt = "Password  "
	p.CharLimit = 128
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	return loginState{username: u, password: p}
}

// toggle moves focus between the two inputs.
func (ls loginState) toggle() loginState {
	ls.focus = 1 - ls.focus
	if ls.focus == 0 {
		ls.password.Blur()
		ls.username.Focus()
	} else {
		ls.username.Blur()
		ls.password.Focus()
	}
	return ls
}

// Update feeds a key to the focused input.
func (ls loginState) Update(msg tea.Msg) (loginState, tea.Cmd) {
	var cmd tea.Cmd
	if ls.focus == 0 {
		ls.username, cmd = ls.username.Update(msg)
	} else {
		ls.password, cmd = ls.password.Update(msg)
	}
	return ls, cmd
}

// focusField focuses the input named by a validation field.
func (ls loginState) focusField(name string) loginState {
	want := 0
	if name == "Password" {
		want = 1
	}
	if ls.focus != want {
		ls = ls.toggle()
	}
	return ls
}

// View renders the login form.
func (ls loginState) View(spinnerView string) string {
	var b strings.Builder
	b.WriteString(titleText.Render("Storefront admin"))
	b.WriteString("\n\n")
	b.WriteString(ls.username.View())
	b.WriteByte('\n')
	b.WriteString(ls.password.View())
	if ls.err != "" {
		b.WriteString("\n\n" + errorText.Render(ls.err))
	}
	if ls.busy {
		b.WriteString("\n\n" + spinnerView + " Signing in...")
	}
	return b.String()
}
