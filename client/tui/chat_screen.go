package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/useattune/attune/client/chat"
)

// chatSettledMsg reports that a send or retry finished, success or not. The
// session already holds the settled transcript and error.
type chatSettledMsg struct{ err error }

// chatScreen renders the conversation with the active persona.
type chatScreen struct {
	styles  Styles
	session *chat.Session

	input textinput.Model
	view  viewport.Model
	spin  spinner.Model

	width  int
	height int
	ready  bool
}

func newChatScreen(styles Styles, session *chat.Session) *chatScreen {
	ti := textinput.New()
	ti.Placeholder = "Write to your guide..."
	ti.Prompt = "│ "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Faint

	s := &chatScreen{
		styles:  styles,
		session: session,
		input:   ti,
		spin:    sp,
	}
	return s
}

// setSession swaps the conversation, e.g. after picking another persona.
func (s *chatScreen) setSession(session *chat.Session) {
	s.session = session
	s.refresh()
}

func (s *chatScreen) setSize(width, height int) {
	s.width = width
	s.height = height
	viewHeight := height - 5
	if viewHeight < 3 {
		viewHeight = 3
	}
	if !s.ready {
		s.view = viewport.New(width, viewHeight)
		s.ready = true
	} else {
		s.view.Width = width
		s.view.Height = viewHeight
	}
	s.input.Width = width - 6
	s.refresh()
}

// refresh re-renders the transcript into the viewport and pins the bottom.
func (s *chatScreen) refresh() {
	if !s.ready {
		return
	}
	var sb strings.Builder
	name := s.session.Persona().Name
	for _, msg := range s.session.Messages() {
		if msg.Role == chat.RoleUser {
			sb.WriteString(s.styles.UserLabel.Render("You") + "\n")
		} else {
			sb.WriteString(s.styles.AssistantLabel.Render(name) + "\n")
		}
		body := lipgloss.NewStyle().Width(s.view.Width - 2).Render(msg.Content)
		sb.WriteString(s.styles.MessageBody.Render(body))
		sb.WriteString("\n\n")
	}
	s.view.SetContent(sb.String())
	s.view.GotoBottom()
}

func (s *chatScreen) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !s.session.Awaiting() {
			if cmd := s.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			break
		}
		s.input, cmd = s.input.Update(msg)
		cmds = append(cmds, cmd)
	case spinner.TickMsg:
		if s.session.Awaiting() {
			s.spin, cmd = s.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	s.view, cmd = s.view.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (s *chatScreen) submit() tea.Cmd {
	text := s.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	s.input.Reset()
	return tea.Batch(s.spin.Tick, sendChatCmd(s.session, text))
}

func (s *chatScreen) retry() tea.Cmd {
	if s.session.Awaiting() || s.session.PendingInput() == "" {
		return nil
	}
	return tea.Batch(s.spin.Tick, retryChatCmd(s.session))
}

func (s *chatScreen) render() string {
	if !s.ready {
		return ""
	}
	transcript := s.view.View()
	status := ""
	if s.session.Awaiting() {
		status = "\n" + s.spin.View() + s.styles.Faint.Render(" "+s.session.Persona().Name+" is thinking...")
	} else if s.session.PendingInput() != "" {
		status = "\n" + s.styles.Faint.Render("Last message kept. ctrl+r resends it.")
	}
	return transcript + status + "\n" + s.styles.InputBox.Render(s.input.View())
}

// Send blocks up to the session timeout, so it runs as a command off the
// update loop. The session is safe to read while it is in flight.
func sendChatCmd(sess *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		return chatSettledMsg{err: sess.Send(context.Background(), text)}
	}
}

func retryChatCmd(sess *chat.Session) tea.Cmd {
	return func() tea.Msg {
		return chatSettledMsg{err: sess.Retry(context.Background())}
	}
}
