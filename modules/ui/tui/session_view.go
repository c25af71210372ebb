package tui

import (
	"fmt"
	"strings"

	"pilotdeck/modules/ui/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// sessionTabLabels pairs each tab with its shortcut label
var sessionTabLabels = []struct {
	label string
	id    string
}{
	{"[c] Chat", sessionTabChat},
	{"[t] Tasks", sessionTabTasks},
	{"[f] Files", sessionTabFiles},
	{"[s] Settings", sessionTabSettings},
}

// renderSession renders the project session view with its sub-tabs
func (m *Model) renderSession(width, height int) string {
	session := m.sessionVM()

	if session.ProjectID == "" {
		hint := SubtitleStyle.Render("No project open.") + "\n\n" +
			HelpDescStyle.Render("Pick one on the [D]ashboard, or press 'n' there to create one.")
		return lipgloss.Place(width, height,
			lipgloss.Center, lipgloss.Center, hint)
	}

	tabs := m.renderSessionTabs(width)
	separator := SubtitleStyle.Render(strings.Repeat("─", max(0, width-2)))
	bodyHeight := height - 2

	var body string
	switch m.sessionTab {
	case sessionTabTasks:
		body = m.renderTasksTab(width, bodyHeight)
	case sessionTabFiles:
		body = m.renderFilesTab(width, bodyHeight)
	case sessionTabSettings:
		body = m.renderSettingsTab(width, bodyHeight)
	default:
		body = m.renderChatTab(width, bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabs, separator, body)
}

// renderSessionTabs renders the tab bar
func (m *Model) renderSessionTabs(width int) string {
	tabWidth := max(10, (width-2)/len(sessionTabLabels))

	var rendered []string
	for _, tab := range sessionTabLabels {
		label := truncate(tab.label, tabWidth)
		if tab.id == m.sessionTab {
			rendered = append(rendered, TabActiveStyle.Width(tabWidth).Render(label))
		} else {
			rendered = append(rendered, TabStyle.Width(tabWidth).Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

// ===========================================
// Chat tab
// ===========================================

// renderChatTab renders the transcript, the pending question and the
// answer input
func (m *Model) renderChatTab(width, height int) string {
	session := m.sessionVM()
	q := session.Question

	questionBox := ""
	questionLines := 0
	if q != nil {
		questionBox = m.renderQuestionPrompt(q, width)
		questionLines = lipgloss.Height(questionBox)
	}

	input := m.renderChatInput(q, width)
	inputLines := lipgloss.Height(input)

	transcriptHeight := height - questionLines - inputLines - 1
	transcript := m.renderTranscript(session, width, transcriptHeight)

	parts := []string{transcript}
	if questionBox != "" {
		parts = append(parts, questionBox)
	}
	parts = append(parts, input)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderTranscript renders the scrollable message history
func (m *Model) renderTranscript(session *core.SessionVM, width, height int) string {
	streaming := false
	for _, entry := range session.Transcript {
		if entry.Streaming {
			streaming = true
			break
		}
	}

	header := SubtitleStyle.Render(fmt.Sprintf("Messages: %d", len(session.Transcript)))
	if streaming {
		header += "  " + m.spinner.View() + ChatStreamStyle.Render(" streaming")
	}

	var lines []string
	for _, entry := range session.Transcript {
		lines = append(lines, m.renderChatEntry(entry, width-2)...)
	}

	if len(lines) == 0 {
		lines = []string{SubtitleStyle.Render("Nothing here yet. The backend speaks first.")}
	}

	// Bottom-anchored window: chatScroll counts lines back from the tail
	visible := max(1, height-2)
	maxScroll := max(0, len(lines)-visible)
	scroll := min(m.chatScroll, maxScroll)
	end := len(lines) - scroll
	start := max(0, end-visible)

	window := make([]string, 0, visible+3)
	window = append(window, header)
	if start > 0 {
		window = append(window, SubtitleStyle.Render(fmt.Sprintf("%s %d earlier lines", IconArrowUp, start)))
	}
	window = append(window, lines[start:end]...)
	if scroll > 0 {
		window = append(window, SubtitleStyle.Render(fmt.Sprintf("%s %d newer lines (end follows)", IconArrowDn, scroll)))
	}

	return strings.Join(window, "\n")
}

// renderChatEntry renders one transcript entry as a label line plus
// indented content lines
func (m *Model) renderChatEntry(entry core.ChatEntryVM, width int) []string {
	switch entry.Kind {
	case core.EntrySystem:
		return []string{ChatSystemStyle.Render("· " + truncate(entry.Content, width-2))}

	case core.EntryStream:
		label := ChatStreamStyle.Render("‹ " + orDefault(entry.SourceName, "Stream"))
		if entry.Streaming {
			label += " " + m.spinner.View()
		}
		return appendIndented([]string{label}, wrapText(entry.Content, width-2))

	case core.EntryQuestion:
		label := QuestionTitleStyle.Render(IconQuestion + " " + orDefault(entry.SourceName, "Question"))
		return appendIndented([]string{label}, wrapText(entry.Content, width-2))

	default:
		label := ChatAgentStyle.Render("‹ " + orDefault(entry.SourceName, "Agent"))
		content := entry.Content
		if m.md != nil {
			content = m.md.Render(content)
		}
		return appendIndented([]string{label}, strings.Split(content, "\n"))
	}
}

// appendIndented appends content lines indented under a label, with a
// trailing blank separator
func appendIndented(lines, content []string) []string {
	for _, c := range content {
		lines = append(lines, "  "+c)
	}
	return append(lines, "")
}

// renderQuestionPrompt renders the pending question box with its
// numbered answer buttons
func (m *Model) renderQuestionPrompt(q *core.QuestionVM, width int) string {
	var b strings.Builder

	b.WriteString(QuestionTitleStyle.Render(fmt.Sprintf("%s %s is asking:", IconQuestion, orDefault(q.SourceName, "Pilot"))))
	b.WriteString("\n")
	for _, line := range wrapText(q.Text, width-6) {
		b.WriteString(line + "\n")
	}

	if len(q.Buttons) > 0 {
		b.WriteString("\n")
		for i, btn := range q.Buttons {
			label := fmt.Sprintf("[%d] %s", i+1, btn.Label)
			if btn.Key == q.Default {
				b.WriteString(QuestionButtonSelStyle.Render(label))
			} else {
				b.WriteString(QuestionButtonStyle.Render(label))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	if q.Hint != "" {
		b.WriteString(SubtitleStyle.Render(truncate(q.Hint, width-6)) + "\n")
	}

	var hints []string
	if len(q.Buttons) > 0 {
		hints = append(hints, fmt.Sprintf("1-%d answer", min(9, len(q.Buttons))))
		if q.ButtonsOnly && q.Default != "" {
			hints = append(hints, "enter default")
		}
	}
	if !q.ButtonsOnly {
		hints = append(hints, "i type")
	}
	hints = append(hints, "x cancel")
	b.WriteString(HelpDescStyle.Render(strings.Join(hints, " · ")))

	return QuestionBoxStyle.Width(max(20, width-2)).Render(b.String())
}

// renderChatInput renders the answer input line
func (m *Model) renderChatInput(q *core.QuestionVM, width int) string {
	style := InputStyle
	var content string

	switch {
	case m.inputActive:
		style = InputFocusedStyle
		content = m.chatInput.View() + "\n" +
			HelpDescStyle.Render("enter send · esc leave input")
	case q != nil && !q.ButtonsOnly:
		content = SubtitleStyle.Render("> Press 'i' to type your answer...") + "\n" +
			HelpDescStyle.Render("or pick a numbered option above")
	case q != nil:
		content = SubtitleStyle.Render("> This question takes button answers only.") + "\n" +
			HelpDescStyle.Render("press 1-9 to choose")
	default:
		content = SubtitleStyle.Render("> Waiting for the next question...") + "\n" +
			HelpDescStyle.Render("input unlocks when the backend asks something")
	}

	return style.Width(max(20, width-2)).Render(content)
}

// ===========================================
// Tasks tab
// ===========================================

// renderTasksTab renders pipeline stage, epics and task progress
func (m *Model) renderTasksTab(width, height int) string {
	p := m.sessionVM().Progress

	var lines []string
	lines = append(lines, PanelTitleStyle.Render("Stage: "+orDefault(p.Stage, "-")))
	lines = append(lines, "")

	if len(p.Epics) > 0 {
		lines = append(lines, TableHeaderStyle.Render("Epics"))
		for _, epic := range p.Epics {
			icon := StatusOffline.Render(IconPending)
			if epic.Completed {
				icon = StatusSuccess.Render(IconSuccess)
			}
			row := fmt.Sprintf(" %s %s", icon, epic.Name)
			if epic.Description != "" {
				row += SubtitleStyle.Render("  " + truncate(epic.Description, max(10, width-len(epic.Name)-10)))
			}
			lines = append(lines, truncate(row, width))
		}
		lines = append(lines, "")
	}

	if len(p.Tasks) > 0 {
		lines = append(lines, TableHeaderStyle.Render("Tasks"))
		for i, task := range p.Tasks {
			row := fmt.Sprintf(" %s %s", TaskStatusIcon(task.Status), truncate(task.Description, width-8))
			if p.TaskIndex > 0 && i == p.TaskIndex-1 {
				row = TableRowSelectedStyle.Render(row)
			}
			lines = append(lines, row)
		}
		lines = append(lines, "")
	}

	if p.TaskCount > 0 {
		current := fmt.Sprintf("Task %d/%d: %s", p.TaskIndex, p.TaskCount, orDefault(p.CurrentTask, "-"))
		if p.TaskStatus != "" {
			current += " (" + p.TaskStatus + ")"
		}
		lines = append(lines, StatusWorking.Render(truncate(current, width)))
	}

	if p.StepCount > 0 {
		bar := renderProgressBar(p.StepIndex, p.StepCount, max(10, width-20))
		lines = append(lines, fmt.Sprintf("Step %d/%d %s", p.StepIndex, p.StepCount, bar))
	}

	if len(p.Epics) == 0 && len(p.Tasks) == 0 && p.TaskCount == 0 {
		lines = append(lines, SubtitleStyle.Render("No task breakdown yet."))
	}

	// Vertical scroll window
	visible := max(1, height-1)
	start := min(m.scrollOffset, max(0, len(lines)-visible))
	end := min(len(lines), start+visible)
	return strings.Join(lines[start:end], "\n")
}

// renderProgressBar renders a fixed-width completion bar
func renderProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := clamp(width*current/total, 0, width)
	return ProgressBarFilled.Render(strings.Repeat(" ", filled)) +
		ProgressBarEmpty.Render(strings.Repeat(" ", width-filled))
}

// ===========================================
// Files tab
// ===========================================

// renderFilesTab renders the backend-reported workspace file list
func (m *Model) renderFilesTab(width, height int) string {
	files := m.sessionVM().Files

	var lines []string
	lines = append(lines, PanelTitleStyle.Render(fmt.Sprintf("Workspace files (%d)", len(files))))

	if len(files) == 0 {
		lines = append(lines, SubtitleStyle.Render("No files reported yet."))
		return strings.Join(lines, "\n")
	}

	visible := max(1, height-3)
	start := m.scrollOffset
	if start > len(files)-1 {
		start = max(0, len(files)-1)
	}
	end := min(len(files), start+visible)

	for i := start; i < end; i++ {
		f := files[i]
		row := fmt.Sprintf("%s %s", fileStatusIcon(f.Status), truncate(f.Path, width-10))
		if f.Status != "" {
			row += SubtitleStyle.Render(" · " + f.Status)
		}
		if i == m.mainIndex && m.focusArea == FocusMain {
			row = TableRowSelectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, truncate(row, width))
	}

	if info := renderScrollInfo(m.mainIndex, len(files), visible); info != "" {
		lines = append(lines, SubtitleStyle.Render(info))
	}

	return strings.Join(lines, "\n")
}

// fileStatusIcon maps a reported file status to a colored marker
func fileStatusIcon(status string) string {
	switch status {
	case "created", "new":
		return StatusSuccess.Render("+")
	case "deleted", "removed":
		return StatusError.Render("-")
	case "done", "reviewed":
		return StatusSuccess.Render(IconSuccess)
	default:
		return StatusWarning.Render("~")
	}
}

// ===========================================
// Settings tab
// ===========================================

// renderSettingsTab renders the provider and model selector
func (m *Model) renderSettingsTab(width, height int) string {
	session := m.sessionVM()
	sel := session.Selector

	var lines []string
	lines = append(lines, PanelTitleStyle.Render("Model Selection"))
	lines = append(lines, "")

	// Provider row
	lines = append(lines, TableHeaderStyle.Render("Provider"))
	var providers []string
	for i, p := range sel.Providers {
		if i == sel.ProviderIndex {
			providers = append(providers, OptionSelectedStyle.Render(p.Name))
		} else {
			providers = append(providers, OptionStyle.Render(p.Name))
		}
	}
	lines = append(lines, truncate(lipgloss.JoinHorizontal(lipgloss.Center, providers...), width))
	lines = append(lines, "")

	// Model list for the selected provider
	lines = append(lines, TableHeaderStyle.Render("Model"))
	if sel.ProviderIndex >= 0 && sel.ProviderIndex < len(sel.Providers) {
		for i, model := range sel.Providers[sel.ProviderIndex].Models {
			row := truncate(model, width-6)
			if i == sel.ModelIndex {
				lines = append(lines, OptionSelectedStyle.Render(row))
			} else {
				lines = append(lines, OptionStyle.Render(row))
			}
		}
	}
	lines = append(lines, "")

	lines = append(lines, SubtitleStyle.Render(
		truncate(fmt.Sprintf("Active: %s · %s", orDefault(session.Provider, "-"), orDefault(session.Model, "-")), width)))
	lines = append(lines, HelpDescStyle.Render("←/→ provider · ↑/↓ model · changes apply immediately"))

	visible := max(1, height-1)
	if len(lines) > visible {
		lines = lines[:visible]
	}
	return strings.Join(lines, "\n")
}

// ===========================================
// Text helpers
// ===========================================

// wrapText breaks long lines at word boundaries to fit the width,
// hard-breaking words wider than the line. Rune-aware, so multibyte
// text never splits mid-character.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	return strings.Split(wrap.String(wordwrap.String(text, width), width), "\n")
}
