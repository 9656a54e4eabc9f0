package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/useattune/attune/client"
	"github.com/useattune/attune/client/banner"
	"github.com/useattune/attune/client/chat"
	"github.com/useattune/attune/client/nav"
	"github.com/useattune/attune/plugin/persona"
)

// chatInputFocusID is the focus target the persona overlay returns to.
const chatInputFocusID = "chat-input"

type (
	// apiErrorMsg carries a failed client call into the banner strip.
	apiErrorMsg struct{ err error }
	// meLoadedMsg confirms the token works and names the account.
	meLoadedMsg struct{ user *client.User }
	// transitionRenderedMsg tells the navigator its pending transition has
	// been drawn, so the phase can settle.
	transitionRenderedMsg struct{}
	// tickMsg repaints while a notice is on screen so expiry shows without
	// waiting for a keypress.
	tickMsg time.Time
)

// apiStatus extracts the HTTP status behind a client error, 0 when the
// failure never got an API-shaped answer.
func apiStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Config wires the terminal client together.
type Config struct {
	// Client is the API client, already carrying an access token.
	Client *client.Client
	// Personas resolves full personas for chat sessions. Nil means the
	// built-in registry.
	Personas *persona.Registry
	// Route is the starting location: "/today", "/chat", or a deep link
	// such as "/chat/personas/ember".
	Route string
}

// Model is the program root. It owns navigation, the notice strip, and the
// screens; screens keep their own widget state and talk back through typed
// messages.
type Model struct {
	styles   Styles
	api      *client.Client
	personas *persona.Registry

	nav     *nav.Navigator
	banners *banner.Center

	chatScr *chatScreen
	today   *todayScreen
	picker  *personaPicker

	nickname string
	width    int
	height   int
	ready    bool
	ticking  bool
}

func newModel(cfg Config) *Model {
	styles := DefaultStyles()
	personas := cfg.Personas
	if personas == nil {
		personas = persona.Default()
	}

	chatScr := newChatScreen(styles, chat.NewSession(cfg.Client, personas.Get("sage")))

	routes := nav.NewRouteSet(nav.ModalRoute{
		Name:    "persona-picker",
		Pattern: "/chat/personas/:id",
		Parent:  "/chat",
	})
	focus := nav.NewFocusRegistry()
	focus.Register(chatInputFocusID, nav.FocusFunc(func() { chatScr.input.Focus() }))
	focus.SetFallback(nav.FocusFunc(func() { chatScr.input.Focus() }))

	route := cfg.Route
	if route == "" {
		route = "/today"
	}

	m := &Model{
		styles:   styles,
		api:      cfg.Client,
		personas: personas,
		nav:      nav.New(nav.Location{Path: route}, routes, focus),
		banners:  banner.NewCenter(),
		chatScr:  chatScr,
		today:    newTodayScreen(styles, cfg.Client),
		picker:   newPersonaPicker(styles),
	}
	if _, params, ok := m.nav.ModalContent(); ok {
		// Cold start on a deep link: the overlay is already opening.
		m.picker.open(params["id"])
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadMe(), m.today.load()}
	if m.nav.Phase() == nav.PhaseOpening {
		cmds = append(cmds, m.picker.load(m.api), finishTransition())
	}
	return tea.Batch(cmds...)
}

func finishTransition() tea.Cmd {
	return func() tea.Msg { return transitionRenderedMsg{} }
}

func (m *Model) loadMe() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		user, err := api.Me(ctx)
		if err != nil {
			return apiErrorMsg{err}
		}
		return meLoadedMsg{user: user}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.chatScr.setSize(msg.Width, m.bodyHeight())
		m.today.setSize(msg.Width, m.bodyHeight())
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case transitionRenderedMsg:
		m.nav.FinishTransition()
		return m, nil

	case tickMsg:
		m.ticking = false
		return m, m.maybeTick()

	case apiErrorMsg:
		m.postError(msg.err)
		return m, m.maybeTick()

	case meLoadedMsg:
		m.nickname = msg.user.Nickname
		return m, nil

	case todayLoadedMsg:
		m.today.apply(msg)
		return m, nil

	case checkInSavedMsg:
		m.today.applySaved(msg.checkIn)
		m.banners.Success("Check-in saved. Rest easy.")
		return m, m.maybeTick()

	case routineAddedMsg:
		m.today.applyAdded(msg.routine)
		m.banners.Success("Added to your plan.")
		return m, m.maybeTick()

	case personasLoadedMsg:
		m.picker.apply(msg)
		return m, nil

	case personaPickedMsg:
		return m, m.pickPersona(msg.persona)

	case chatSettledMsg:
		return m, m.settleChat(msg.err)
	}

	return m, m.route(msg)
}

// handleGlobalKey covers the few chords that work everywhere. Everything
// else belongs to the focused screen, so a plain letter still types into an
// input instead of triggering an action.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "esc":
		// A screen with an armed input gets esc first, to cancel it.
		if m.nav.Phase() == nav.PhaseClosed && m.onToday() && (m.today.adding || m.today.note.Focused()) {
			return nil, false
		}
		if m.nav.Back() && m.nav.Phase() == nav.PhaseClosing {
			return finishTransition(), true
		}
		return nil, true
	case "tab":
		if m.nav.Phase() != nav.PhaseClosed {
			return nil, true
		}
		target := "/chat"
		if !m.onToday() {
			target = "/today"
		}
		if err := m.nav.NavigateTo(target); err == nil && target == "/today" {
			return m.today.load(), true
		}
		return nil, true
	case "ctrl+p":
		return m.openPicker(), true
	case "ctrl+r":
		if m.nav.Phase() == nav.PhaseClosed && !m.onToday() {
			return m.chatScr.retry(), true
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) openPicker() tea.Cmd {
	if m.nav.Phase() != nav.PhaseClosed {
		return nil
	}
	id := m.chatScr.session.Persona().ID
	if err := m.nav.OpenModal("/chat/personas/"+id, chatInputFocusID); err != nil {
		return nil
	}
	m.chatScr.input.Blur()
	m.picker.open(id)
	return tea.Batch(m.picker.load(m.api), finishTransition())
}

func (m *Model) pickPersona(p client.Persona) tea.Cmd {
	chosen := sessionPersona(m.personas, p)
	if chosen.ID != m.chatScr.session.Persona().ID {
		m.chatScr.setSession(chat.NewSession(m.api, chosen))
		m.banners.Info("You're talking with " + chosen.Name + " now.")
	}
	cmds := []tea.Cmd{m.maybeTick()}
	if m.nav.CloseModal() == nil {
		cmds = append(cmds, finishTransition())
	}
	return tea.Batch(cmds...)
}

func (m *Model) settleChat(err error) tea.Cmd {
	m.chatScr.refresh()
	if err == nil {
		// A turn that landed supersedes any lingering retry notice.
		if n := m.banners.Current(); n != nil && n.Retryable {
			m.banners.Dismiss()
		}
		return nil
	}
	if errors.Is(err, chat.ErrBusy) ||
		errors.Is(err, chat.ErrEmptyInput) ||
		errors.Is(err, chat.ErrNothingToRetry) {
		return nil
	}
	var turn *chat.Error
	if errors.As(err, &turn) {
		switch turn.Category {
		case chat.CategoryContentSafety, chat.CategoryInvalidRequest:
			m.banners.Error(turn.Message)
		default:
			m.banners.RetryableError(turn.Message)
		}
		return m.maybeTick()
	}
	m.banners.Error(err.Error())
	return m.maybeTick()
}

func (m *Model) postError(err error) {
	if apiStatus(err) == 401 {
		m.banners.Error("Your session expired. Run attune-cli login again.")
		return
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		m.banners.Error(apiErr.Message)
		return
	}
	m.banners.Error(err.Error())
}

// maybeTick keeps exactly one repaint timer alive while a notice shows.
func (m *Model) maybeTick() tea.Cmd {
	if m.ticking || m.banners.Current() == nil {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// route hands the message to whichever surface owns it right now.
func (m *Model) route(msg tea.Msg) tea.Cmd {
	if _, isSpin := msg.(spinner.TickMsg); isSpin {
		// The chat spinner animates even from behind another screen.
		return m.chatScr.update(msg)
	}
	if _, _, ok := m.nav.ModalContent(); ok {
		return m.picker.update(msg)
	}
	if m.onToday() {
		return m.today.update(msg)
	}
	return m.chatScr.update(msg)
}

// activePath is the page under the user: the overlay background when one is
// up, the plain location otherwise.
func (m *Model) activePath() string {
	if bg := m.nav.Background(); bg != nil {
		return bg.Path
	}
	return m.nav.Location().Path
}

func (m *Model) onToday() bool {
	return m.activePath() != "/chat"
}

func (m *Model) bodyHeight() int {
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) View() string {
	if !m.ready {
		return "starting attune..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBanner(),
		m.renderBody(),
		m.renderFooter(),
	)
}

func (m *Model) renderHeader() string {
	todayTab := m.styles.HeaderTab.Render("today")
	chatTab := m.styles.HeaderTab.Render("chat")
	if m.onToday() {
		todayTab = m.styles.ActiveTab.Render("today")
	} else {
		chatTab = m.styles.ActiveTab.Render("chat")
	}
	who := m.styles.Faint.Render("with " + m.chatScr.session.Persona().Name)
	parts := []string{m.styles.Header.Render("attune"), todayTab, chatTab, "  ", who}
	if m.nickname != "" {
		parts = append(parts, "  ", m.styles.Faint.Render(m.nickname))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderBanner() string {
	n := m.banners.Current()
	if n == nil {
		return ""
	}
	text := n.Text
	if n.Retryable {
		text += "  (ctrl+r retries)"
	}
	switch n.Kind {
	case banner.KindSuccess:
		return m.styles.BannerSuccess.Render(text)
	case banner.KindError:
		return m.styles.BannerError.Render(text)
	default:
		return m.styles.BannerInfo.Render(text)
	}
}

func (m *Model) renderBody() string {
	if _, _, ok := m.nav.ModalContent(); ok {
		overlay := m.picker.render()
		if bg := m.nav.Background(); bg != nil {
			crumb := m.styles.Faint.Render("over " + bg.Path + " · esc returns")
			overlay = lipgloss.JoinVertical(lipgloss.Center, overlay, crumb)
		}
		return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, overlay)
	}
	if m.onToday() {
		return m.today.render()
	}
	return m.chatScr.render()
}

func (m *Model) renderFooter() string {
	var help string
	switch {
	case m.nav.Phase() == nav.PhaseOpening || m.nav.Phase() == nav.PhaseOpen:
		help = "↑/↓ choose · enter picks · esc closes"
	case m.onToday():
		help = "space ticks · 1-5 mood/energy · n note · a adds · enter saves · tab chat"
	default:
		help = "enter sends · ctrl+p guides · ctrl+r retry · tab today"
	}
	return m.styles.Footer.Render(help + " · ctrl+c quits")
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(cfg Config) error {
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
