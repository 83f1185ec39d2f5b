package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/talemap/pkg/scene"
)

func (m Model) palette() Palette {
	return PaletteFor(m.deps.Theme.Mode())
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.screen {
	case ScreenLoading:
		content = m.spinner.View() + " " + m.deps.Controller.Scenes().Messages.Loading
	case ScreenMenu:
		content = m.renderMenu()
	case ScreenGame:
		content = m.renderGame()
	}

	footer := m.renderFooter()
	lines := strings.Count(content, "\n") + 1
	if pad := m.height - lines - 1; pad > 0 {
		content += strings.Repeat("\n", pad)
	}
	return content + "\n" + footer
}

func (m Model) renderMenu() string {
	pal := m.palette()
	var b strings.Builder
	b.WriteString(pal.Title.Render("talemap"))
	b.WriteString("\n\n")

	if m.menuStatus != nil {
		text := m.menuStatus.TextContent()
		if m.menuStatus.Class() == scene.ErrorClass {
			b.WriteString(pal.Error.Render(text))
		} else {
			b.WriteString(m.spinner.View() + " " + pal.Text.Render(text))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range m.deps.StoryTypes {
		line := fmt.Sprintf("%d. %s", i+1, t)
		if i == m.selected {
			b.WriteString(pal.Selected.Render("› " + line))
		} else {
			b.WriteString(pal.Choice.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderGame() string {
	pal := m.palette()
	l := m.layout
	st := m.page.State

	title := ""
	if st != nil {
		title = st.Title
		if st.Author != "" {
			title += pal.Muted.Render("  " + st.Author)
		}
	}

	var left strings.Builder
	if st != nil {
		left.WriteString(pal.Text.Width(l.left).Render(st.Scene.Content))
	}
	left.WriteString("\n\n")
	left.WriteString(m.renderChoices(pal))
	if m.errorMessage != "" {
		left.WriteString("\n")
		left.WriteString(pal.Error.Width(l.left).Render(m.errorMessage))
	}

	body := max(m.height-2, 0)
	sceneH := max(body-l.historyH-1, 0)
	column := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(l.left).Height(sceneH).MaxHeight(sceneH).Render(left.String()),
		pal.Muted.Render(strings.Repeat("─", l.left)),
		m.history.View(),
	)

	current := ""
	if st != nil {
		current = st.Scene.CurrentNodeID
	}
	mapView := m.deps.Pane.Draw(m.deps.Engine.Transform(), current, pal)
	box := pal.Box.Width(l.mapW).Height(l.mapH).Render(mapView)

	return lipgloss.JoinVertical(lipgloss.Left,
		pal.Title.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, column, " ", box),
	)
}

func (m Model) renderChoices(pal Palette) string {
	buttons := choiceButtons(m.choices)
	if len(buttons) == 0 {
		if m.choices == nil {
			return ""
		}
		return pal.Muted.Render(m.choices.TextContent())
	}
	var b strings.Builder
	for i, btn := range buttons {
		label := fmt.Sprintf("%d. %s", i+1, btn.TextContent())
		switch {
		case btn.Disabled() && btn.TextContent() == m.deps.Controller.Scenes().Messages.Loading:
			b.WriteString(m.spinner.View() + " " + pal.Busy.Render(label))
		case btn.Disabled():
			b.WriteString(pal.Busy.Render("  " + label))
		case i == m.selected:
			b.WriteString(pal.Selected.Render("› " + label))
		default:
			b.WriteString(pal.Choice.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) refreshHistory() {
	if m.page.History == nil {
		m.history.SetContent("")
		return
	}
	pal := m.palette()
	var b strings.Builder
	for _, turn := range m.page.History.Kids {
		for i := range turn.Kids {
			entry := &turn.Kids[i]
			style := pal.PastScene
			if entry.Class() == scene.PastChoiceClass {
				style = pal.PastChoice
			}
			b.WriteString(style.Width(max(m.history.Width, 1)).Render(entry.TextContent()))
			b.WriteString("\n")
		}
	}
	m.history.SetContent(strings.TrimRight(b.String(), "\n"))
	m.history.GotoBottom()
}

func (m Model) renderFooter() string {
	k := DefaultKeyMap
	var keys []string
	switch m.screen {
	case ScreenMenu:
		keys = []string{k.Enter.Help().Key + " start", k.Quit.Help().Key + " quit"}
	case ScreenGame:
		keys = []string{
			k.Pick.Help().Key + " choose",
			"+/-/0 zoom",
			"arrows pan",
			k.Focus.Help().Key + " focus",
			k.Theme.Help().Key + " theme",
			k.New.Help().Key + " new",
			k.Quit.Help().Key + " quit",
		}
	}
	keys = append(keys, k.Help.Help().Key+" help")
	return m.palette().Footer.Render(strings.Join(keys, " • "))
}

func (m Model) renderHelp() string {
	pal := m.palette()
	k := DefaultKeyMap
	bindings := [][]keyHelp{
		{help(k.Enter), help(k.Pick), help(k.Up), help(k.Down)},
		{help(k.ZoomIn), help(k.ZoomOut), help(k.ZoomZero), help(k.Focus)},
		{help(k.PanUp), help(k.PanDown), help(k.PanLeft), help(k.PanRight)},
		{help(k.PageUp), help(k.PageDown), help(k.Theme), help(k.New), help(k.Quit)},
	}
	var b strings.Builder
	b.WriteString(pal.Title.Render("Keys"))
	b.WriteString("\n\n")
	for _, group := range bindings {
		for _, h := range group {
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.key, pal.Muted.Render(h.desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(pal.Muted.Render("Drag the map with the mouse; scroll to zoom. Press ? to close."))
	return b.String()
}

type keyHelp struct{ key, desc string }

func help(b key.Binding) keyHelp {
	h := b.Help()
	return keyHelp{key: h.Key, desc: h.Desc}
}
