package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/useattune/attune/client"
	"github.com/useattune/attune/plugin/persona"
)

type (
	personasLoadedMsg struct{ personas []client.Persona }
	personaPickedMsg  struct{ persona client.Persona }
)

// personaPicker is the overlay for /chat/personas/:id. It lists the guides
// the server offers; the :id from the route preselects one. An id the server
// doesn't know still opens the overlay, with a not-found line in place of a
// selection.
type personaPicker struct {
	styles Styles

	wantID   string
	personas []client.Persona
	cursor   int
	loaded   bool
}

func newPersonaPicker(styles Styles) *personaPicker {
	return &personaPicker{styles: styles}
}

// open resets the picker for a fresh overlay addressing wantID.
func (p *personaPicker) open(wantID string) {
	p.wantID = wantID
	p.cursor = 0
	for i, cand := range p.personas {
		if cand.ID == wantID {
			p.cursor = i
			break
		}
	}
}

func (p *personaPicker) load(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		personas, err := api.ListPersonas(ctx)
		if err != nil {
			return apiErrorMsg{err}
		}
		return personasLoadedMsg{personas: personas}
	}
}

func (p *personaPicker) apply(msg personasLoadedMsg) {
	p.personas = msg.personas
	p.loaded = true
	for i, cand := range p.personas {
		if cand.ID == p.wantID {
			p.cursor = i
			break
		}
	}
}

// notFound reports that the route addressed a guide the server doesn't have.
func (p *personaPicker) notFound() bool {
	if !p.loaded || p.wantID == "" {
		return false
	}
	for _, cand := range p.personas {
		if cand.ID == p.wantID {
			return false
		}
	}
	return true
}

func (p *personaPicker) update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.personas)-1 {
			p.cursor++
		}
	case "enter":
		if p.cursor < len(p.personas) {
			picked := p.personas[p.cursor]
			return func() tea.Msg { return personaPickedMsg{persona: picked} }
		}
	}
	return nil
}

func (p *personaPicker) render() string {
	var sb strings.Builder
	sb.WriteString(p.styles.ModalTitle.Render("Choose your guide") + "\n\n")

	if !p.loaded {
		sb.WriteString(p.styles.Faint.Render("Loading guides..."))
		return p.styles.Modal.Render(sb.String())
	}
	if p.notFound() {
		sb.WriteString(p.styles.Faint.Render("No guide called \""+p.wantID+"\" here. Pick one below.") + "\n\n")
	}
	for i, cand := range p.personas {
		cursor := "  "
		name := p.styles.ListItem.Render(cand.Name)
		if i == p.cursor {
			cursor = p.styles.Cursor.Render("> ")
			name = p.styles.ListPicked.Render(cand.Name)
		}
		sb.WriteString(cursor + name + " " + p.styles.Faint.Render(cand.Tagline) + "\n")
	}
	sb.WriteString("\n" + p.styles.Faint.Render("enter picks, esc keeps the current guide"))
	return p.styles.Modal.Render(sb.String())
}

// sessionPersona resolves the full persona behind a wire listing. Built-ins
// come from the shared registry; a persona only the server knows still works,
// with stock fallback lines.
func sessionPersona(reg *persona.Registry, p client.Persona) *persona.Persona {
	if full := reg.Get(p.ID); full != nil {
		return full
	}
	return &persona.Persona{
		ID:       p.ID,
		Name:     p.Name,
		Tagline:  p.Tagline,
		Greeting: p.Greeting,
		Fallbacks: persona.FallbackSet{
			General: "I lost my thread for a moment. Try sending that again.",
			Busy:    "I'm stretched thin right now. Ask me again in a little while.",
			Safety:  "I can't go there with you, but I care about why it came up. If things feel heavy, please reach out to a crisis line or someone you trust.",
		},
	}
}
