package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/useattune/attune/client"
)

type (
	todayLoadedMsg struct {
		routines []client.Routine
		checkIn  *client.CheckIn // nil when today has none yet
	}
	checkInSavedMsg struct{ checkIn *client.CheckIn }
	routineAddedMsg struct{ routine *client.Routine }
)

// todayScreen is the landing view: the routine plan for the day and the daily
// check-in that closes it out.
type todayScreen struct {
	styles Styles
	api    *client.Client

	routines []client.Routine
	// completed marks routine UIDs ticked off today. Seeded from the saved
	// check-in, kept here until the next save.
	completed map[string]bool
	cursor    int
	loaded    bool

	mood   int32
	energy int32
	saved  *client.CheckIn

	note   textinput.Model
	adding bool
	addbox textinput.Model

	width int
}

func newTodayScreen(styles Styles, api *client.Client) *todayScreen {
	note := textinput.New()
	note.Placeholder = "A line about today (optional)"
	note.Prompt = "│ "

	addbox := textinput.New()
	addbox.Placeholder = "New routine title"
	addbox.Prompt = "+ "

	return &todayScreen{
		styles:    styles,
		api:       api,
		completed: map[string]bool{},
		note:      note,
		addbox:    addbox,
	}
}

func (s *todayScreen) setSize(width, _ int) {
	s.width = width
	s.note.Width = width - 6
	s.addbox.Width = width - 6
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// load fetches the plan and today's entry in one command.
func (s *todayScreen) load() tea.Cmd {
	api := s.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		routines, err := api.ListRoutines(ctx)
		if err != nil {
			return apiErrorMsg{err}
		}
		checkIn, err := api.GetCheckIn(ctx, today())
		if err != nil {
			if apiStatus(err) != 404 {
				return apiErrorMsg{err}
			}
			checkIn = nil
		}
		return todayLoadedMsg{routines: routines, checkIn: checkIn}
	}
}

func (s *todayScreen) apply(msg todayLoadedMsg) {
	s.loaded = true
	s.routines = activeOnly(msg.routines)
	if s.cursor >= len(s.routines) {
		s.cursor = 0
	}
	s.saved = msg.checkIn
	s.completed = map[string]bool{}
	if msg.checkIn != nil {
		s.mood = msg.checkIn.Mood
		s.energy = msg.checkIn.Energy
		s.note.SetValue(msg.checkIn.Note)
		for _, uid := range msg.checkIn.CompletedRoutines {
			s.completed[uid] = true
		}
	}
}

func activeOnly(routines []client.Routine) []client.Routine {
	out := make([]client.Routine, 0, len(routines))
	for _, r := range routines {
		if !r.Archived {
			out = append(out, r)
		}
	}
	return out
}

func (s *todayScreen) update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if s.adding {
		switch key.Type {
		case tea.KeyEnter:
			title := strings.TrimSpace(s.addbox.Value())
			s.adding = false
			s.addbox.Reset()
			if title == "" {
				return nil
			}
			return s.addRoutine(title)
		case tea.KeyEsc:
			s.adding = false
			s.addbox.Reset()
			return nil
		default:
			var cmd tea.Cmd
			s.addbox, cmd = s.addbox.Update(msg)
			return cmd
		}
	}

	if s.note.Focused() {
		switch key.Type {
		case tea.KeyEnter:
			s.note.Blur()
			return s.save()
		case tea.KeyEsc:
			s.note.Blur()
			return nil
		default:
			var cmd tea.Cmd
			s.note, cmd = s.note.Update(msg)
			return cmd
		}
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.routines)-1 {
			s.cursor++
		}
	case " ":
		if s.cursor < len(s.routines) {
			uid := s.routines[s.cursor].UID
			s.completed[uid] = !s.completed[uid]
		}
	case "1", "2", "3", "4", "5":
		n := int32(key.String()[0] - '0')
		// First the mood, then the energy. Pressing a digit twice in a row
		// fills both scales without a mode switch.
		if s.mood == 0 {
			s.mood = n
		} else if s.energy == 0 {
			s.energy = n
		} else {
			s.mood = n
			s.energy = 0
		}
	case "n":
		s.note.Focus()
		return textinput.Blink
	case "a":
		s.adding = true
		s.addbox.Focus()
		return textinput.Blink
	case "enter":
		return s.save()
	}
	return nil
}

func (s *todayScreen) save() tea.Cmd {
	if s.mood < 1 || s.energy < 1 {
		return func() tea.Msg {
			return apiErrorMsg{fmt.Errorf("pick mood and energy first (keys 1-5)")}
		}
	}
	completed := make([]string, 0, len(s.completed))
	for _, r := range s.routines {
		if s.completed[r.UID] {
			completed = append(completed, r.UID)
		}
	}
	submit := &client.SubmitCheckIn{
		Date:              today(),
		Mood:              s.mood,
		Energy:            s.energy,
		Note:              s.note.Value(),
		CompletedRoutines: completed,
	}
	api := s.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		saved, err := api.PostCheckIn(ctx, submit)
		if err != nil {
			return apiErrorMsg{err}
		}
		return checkInSavedMsg{checkIn: saved}
	}
}

func (s *todayScreen) addRoutine(title string) tea.Cmd {
	api := s.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		routine, err := api.AddRoutine(ctx, &client.CreateRoutine{Title: title})
		if err != nil {
			return apiErrorMsg{err}
		}
		return routineAddedMsg{routine: routine}
	}
}

func (s *todayScreen) applySaved(checkIn *client.CheckIn) {
	s.saved = checkIn
}

func (s *todayScreen) applyAdded(routine *client.Routine) {
	if routine == nil {
		return
	}
	s.routines = append(s.routines, *routine)
}

func (s *todayScreen) render() string {
	if !s.loaded {
		return s.styles.Faint.Render("Loading your day...")
	}

	var sb strings.Builder
	sb.WriteString(s.styles.Faint.Render(time.Now().Format("Monday, January 2")) + "\n\n")

	if len(s.routines) == 0 {
		sb.WriteString(s.styles.Faint.Render("No routines yet. Press a to add one.") + "\n")
	}
	for i, r := range s.routines {
		cursor := "  "
		if i == s.cursor {
			cursor = s.styles.Cursor.Render("> ")
		}
		box := "[ ]"
		title := s.styles.ListItem.Render(r.Title)
		if s.completed[r.UID] {
			box = "[x]"
			title = s.styles.Done.Render(r.Title)
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, box, r.Emoji, title)
		if r.TimeOfDay != "anytime" {
			line += " " + s.styles.Faint.Render("("+r.TimeOfDay+")")
		}
		sb.WriteString(line + "\n")
	}

	if s.adding {
		sb.WriteString("\n" + s.styles.InputBox.Render(s.addbox.View()) + "\n")
	}

	sb.WriteString("\n" + s.renderCheckIn())
	return sb.String()
}

func (s *todayScreen) renderCheckIn() string {
	var sb strings.Builder
	title := "Evening check-in"
	if s.saved != nil {
		title += " " + s.styles.Faint.Render("(saved, enter revises)")
	}
	sb.WriteString(s.styles.ModalTitle.Render(title) + "\n")
	sb.WriteString(fmt.Sprintf("mood   %s\n", scale(s.mood)))
	sb.WriteString(fmt.Sprintf("energy %s\n", scale(s.energy)))
	sb.WriteString(s.note.View() + "\n")
	return sb.String()
}

func scale(v int32) string {
	var sb strings.Builder
	for i := int32(1); i <= 5; i++ {
		if i <= v {
			sb.WriteString("●")
		} else {
			sb.WriteString("○")
		}
	}
	return sb.String()
}
