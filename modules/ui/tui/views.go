package tui

import (
	"fmt"
	"strings"
	"time"

	"pilotdeck/modules"
	"pilotdeck/modules/ui/core"

	"github.com/charmbracelet/lipgloss"
)

// Styles for focus states
var (
	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	UnfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder)

	FocusIndicator = lipgloss.NewStyle().Foreground(ColorPrimary).Render("▶")
)

// renderHeader renders the top header bar
func (m *Model) renderHeader() string {
	title := TitleStyle.Render(modules.AppName)
	version := SubtitleStyle.Render("v" + modules.AppVersion)

	// Connection chip
	var status string
	if m.state.IsConnected {
		status = StatusOnline.Render("● Connected")
	} else {
		status = StatusOffline.Render("○ Disconnected")
	}

	// Active model chip
	session := m.sessionVM()
	modelStr := ""
	if session.Provider != "" {
		modelStr = SubtitleStyle.Render(session.Provider+" · "+session.Model) + "  "
	}

	// Current view indicator
	viewName := strings.ToUpper(string(m.currentView))
	if m.currentView == core.VMSession && session.ProjectName != "" {
		viewName = "PROJECT · " + session.ProjectName
	}

	left := fmt.Sprintf(" %s %s │ %s", title, version, viewName)
	right := fmt.Sprintf("%s%s ", modelStr, status)

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Center,
		left,
		strings.Repeat(" ", padding),
		right,
	)

	return lipgloss.NewStyle().
		Background(ColorBgAlt).
		Width(m.width).
		Render(header)
}

// sidebarViews defines the navigation menu items
var sidebarViews = []struct {
	name  string // Name with [X] shortcut highlighted
	vtype core.ViewModelType
}{
	{"[D]ashboard", core.VMDashboard},
	{"[P]roject", core.VMSession},
	{"[L]ogs", core.VMLogs},
}

// getSidebarWidth returns a fixed width that fits all menu items
func getSidebarWidth() int {
	maxLen := 0
	for _, v := range sidebarViews {
		if len(v.name) > maxLen {
			maxLen = len(v.name)
		}
	}
	return maxLen + 12
}

// renderSidebar renders the navigation sidebar
func (m *Model) renderSidebar() string {
	width := getSidebarWidth()

	var items []string
	items = append(items, PanelTitleStyle.Render("≡ MENU"))
	items = append(items, SubtitleStyle.Render(strings.Repeat("─", width-6)))

	for i, view := range sidebarViews {
		label := RenderShortcutLabel(view.name)

		prefix := "  "
		if m.focusArea == FocusSidebar && i == m.sidebarIndex {
			prefix = "> "
		} else if view.vtype == m.currentView {
			prefix = "* "
		}

		line := prefix + label
		if view.vtype == m.currentView {
			line = NavItemActiveStyle.Render(line)
		} else {
			line = NavItemStyle.Render(line)
		}
		items = append(items, line)
	}

	content := strings.Join(items, "\n")

	style := UnfocusedBorderStyle
	if m.focusArea == FocusSidebar {
		style = FocusedBorderStyle
	}

	return style.
		Width(width).
		Height(m.height - 6).
		Padding(0, 1).
		Render(content)
}

// renderMainContent renders the main content area for the current view
func (m *Model) renderMainContent() string {
	mainWidth := m.width - getSidebarWidth() - 4
	contentHeight := m.height - 6

	// Overlays replace the main content
	if m.showHelp {
		return m.renderHelpOverlay(mainWidth, contentHeight)
	}
	if m.createActive {
		return m.renderCreateOverlay(mainWidth, contentHeight)
	}
	if m.filterActive {
		return m.renderFilterOverlay(mainWidth, contentHeight)
	}

	var content string
	switch m.currentView {
	case core.VMDashboard:
		content = m.renderDashboard(mainWidth, contentHeight)
	case core.VMSession:
		content = m.renderSession(mainWidth, contentHeight)
	case core.VMLogs:
		content = m.renderLogs(mainWidth, contentHeight)
	default:
		content = "Unknown view"
	}

	style := UnfocusedBorderStyle
	if m.focusArea == FocusMain {
		style = FocusedBorderStyle
	}

	return style.
		Width(mainWidth).
		Height(contentHeight).
		Padding(0, 1).
		Render(content)
}

// ===========================================
// Dashboard
// ===========================================

// renderDashboard renders the project dashboard
func (m *Model) renderDashboard(width, height int) string {
	dash := m.dashboardVM()

	if dash.IsLoading && len(dash.Projects) == 0 {
		return m.renderLoading(width, height)
	}

	// Stat boxes
	linkValue := StatusOffline.Render("○ offline")
	if m.state.IsConnected {
		linkValue = StatusOnline.Render("● online")
	}
	session := m.sessionVM()

	boxWidth := max(14, width/4-2)
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStatBox("Projects", fmt.Sprintf("%d", dash.ProjectCount), boxWidth),
		m.renderStatBox("Backend", linkValue, boxWidth),
		m.renderStatBox("Provider", orDefault(session.Provider, "-"), boxWidth),
		m.renderStatBox("Model", truncate(orDefault(session.Model, "-"), boxWidth-4), boxWidth),
	)

	// Panels: project table on the left, recent activity on the right
	tableWidth := width * 2 / 3
	logsWidth := width - tableWidth - 2
	panelHeight := height - 7

	table := m.renderProjectsTable(tableWidth, panelHeight)
	recent := m.renderMiniLogs(logsWidth, panelHeight)
	panels := lipgloss.JoinHorizontal(lipgloss.Top, table, " ", recent)

	parts := []string{stats, "", panels}
	if dash.FilterText != "" || m.filterText != "" {
		filter := m.filterText
		if filter == "" {
			filter = dash.FilterText
		}
		parts = append(parts, SubtitleStyle.Render(fmt.Sprintf(" Filter: %q (esc clears)", filter)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderStatBox renders one metric card on the dashboard
func (m *Model) renderStatBox(title, value string, width int) string {
	content := PanelTitleStyle.Render(title) + "\n" + value
	return PanelStyle.
		Width(width).
		Render(content)
}

// renderProjectsTable renders the selectable project list
func (m *Model) renderProjectsTable(width, height int) string {
	rows := m.filteredProjects()

	var lines []string
	lines = append(lines, PanelTitleStyle.Render("Projects"))

	if len(rows) == 0 {
		if m.filterText != "" {
			lines = append(lines, SubtitleStyle.Render("No projects match the filter."))
		} else {
			lines = append(lines, SubtitleStyle.Render("No projects yet. Press 'n' to create one."))
		}
		return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
	}

	nameWidth := max(12, width-44)
	header := fmt.Sprintf("  %-*s %-12s %8s %6s  %s", nameWidth, "NAME", "UPDATED", "BRANCHES", "STEPS", "GIT")
	lines = append(lines, TableHeaderStyle.Render(truncate(header, width)))

	visible := max(1, height-4)
	start := m.scrollOffset
	if start > len(rows)-1 {
		start = max(0, len(rows)-1)
	}
	end := min(len(rows), start+visible)

	for i := start; i < end; i++ {
		p := rows[i]

		gitCol := "-"
		if p.GitBranch != "" {
			gitCol = GitBranchStyle.Render(IconBranch+" "+p.GitBranch) + " " + GitStatusIcon(!p.GitDirty)
		}

		line := fmt.Sprintf("%-*s %-12s %8d %6d  %s",
			nameWidth, truncate(p.Name, nameWidth), truncate(p.UpdatedStr, 12),
			p.BranchCount, p.StepCount, gitCol)

		if i == m.mainIndex && m.focusArea == FocusMain {
			line = TableRowSelectedStyle.Render("> " + line)
		} else {
			line = TableRowStyle.Render("  " + line)
		}
		lines = append(lines, truncate(line, width))
	}

	if info := renderScrollInfo(m.mainIndex, len(rows), visible); info != "" {
		lines = append(lines, SubtitleStyle.Render(info))
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderMiniLogs renders the recent activity panel on the dashboard
func (m *Model) renderMiniLogs(width, height int) string {
	logs := m.logsVM()

	var lines []string
	lines = append(lines, PanelTitleStyle.Render("Recent Activity"))

	count := max(1, height-3)
	entries := logs.Lines
	if len(entries) > count {
		entries = entries[len(entries)-count:]
	}

	if len(entries) == 0 {
		lines = append(lines, SubtitleStyle.Render("No activity yet."))
	}
	for _, entry := range entries {
		icon := logLevelIcon(entry.Level)
		text := fmt.Sprintf("%s %s %s",
			LogTimestampStyle.Render(entry.TimeStr), icon, entry.Message)
		lines = append(lines, truncate(text, width-2))
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// ===========================================
// Logs view
// ===========================================

// renderLogs renders the diagnostics log view
func (m *Model) renderLogs(width, height int) string {
	logs := m.logsVM()

	// Level filter buttons
	levels := []struct {
		label string
		value string
		key   string
	}{
		{"ALL", "", "a"},
		{"ERR", "error", "e"},
		{"WRN", "warn", "w"},
		{"INF", "info", "i"},
		{"DBG", "debug", "d"},
	}
	var buttons []string
	for _, lv := range levels {
		label := fmt.Sprintf("[%s] %s", lv.key, lv.label)
		if m.logLevelFilter == lv.value {
			buttons = append(buttons, NavItemActiveStyle.Render(label))
		} else {
			buttons = append(buttons, NavItemStyle.Render(label))
		}
	}
	filterBar := lipgloss.JoinHorizontal(lipgloss.Center, buttons...)

	// Search box
	search := "Search [/]: " + m.logSearchText
	if m.logSearchActive {
		search += "█"
	}
	searchBar := SubtitleStyle.Render(search)

	// Filter the lines
	filtered := make([]core.LogLineVM, 0, len(logs.Lines))
	needle := strings.ToLower(m.logSearchText)
	for _, line := range logs.Lines {
		if m.logLevelFilter != "" && line.Level != m.logLevelFilter {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(line.Message), needle) &&
			!strings.Contains(strings.ToLower(line.Source), needle) {
			continue
		}
		filtered = append(filtered, line)
	}

	// Window the lines, honoring the scroll offset from the bottom
	visible := max(1, height-6)
	offset := m.logScrollOffset
	if m.logAutoScroll {
		offset = 0
	}
	end := len(filtered) - offset
	if end > len(filtered) {
		end = len(filtered)
	}
	if end < 0 {
		end = 0
	}
	start := max(0, end-visible)

	var lines []string
	for _, entry := range filtered[start:end] {
		icon := logLevelIcon(entry.Level)
		msg := entry.Message
		if needle != "" {
			msg = highlightMatch(msg, m.logSearchText)
		}
		lines = append(lines, truncate(fmt.Sprintf("%s %s [%-12s] %s",
			LogTimestampStyle.Render(entry.TimeStr), icon,
			truncate(entry.Source, 12), msg), width))
	}
	if len(lines) == 0 {
		lines = append(lines, SubtitleStyle.Render("No log lines match."))
	}

	stats := SubtitleStyle.Render(fmt.Sprintf(
		"Showing %d of %d lines │ Auto-scroll: %v (space toggles)",
		end-start, len(logs.Lines), m.logAutoScroll))

	sections := []string{filterBar, searchBar, ""}
	sections = append(sections, lines...)
	sections = append(sections, "", stats)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// logLevelIcon returns the colored single-letter level marker
func logLevelIcon(level string) string {
	switch level {
	case "error":
		return LogErrorStyle.Render("E")
	case "warn":
		return LogWarnStyle.Render("W")
	case "debug":
		return LogDebugStyle.Render("D")
	default:
		return LogInfoStyle.Render("I")
	}
}

// highlightMatch highlights the first case-insensitive occurrence of
// needle in line
func highlightMatch(line, needle string) string {
	if needle == "" {
		return line
	}
	idx := strings.Index(strings.ToLower(line), strings.ToLower(needle))
	if idx < 0 {
		return line
	}
	return line[:idx] +
		StatusWarning.Render(line[idx:idx+len(needle)]) +
		line[idx+len(needle):]
}

// ===========================================
// Footer
// ===========================================

// renderFooter renders the shortcut bar and status strip
func (m *Model) renderFooter() string {
	shortcuts := m.footerShortcuts()

	var pairs []string
	for i := 0; i+1 < len(shortcuts); i += 2 {
		pairs = append(pairs, HelpKeyStyle.Render(shortcuts[i])+" "+HelpDescStyle.Render(shortcuts[i+1]))
	}
	left := " " + strings.Join(pairs, " · ")

	// Right side: recent error wins, then the latest notification
	right := ""
	if m.lastError != "" && time.Since(m.lastErrorTime) < 5*time.Second {
		right = StatusError.Render(IconError+" "+truncate(m.lastError, 60)) + " "
	} else if len(m.notifications) > 0 {
		n := m.notifications[len(m.notifications)-1]
		right = notifyStyle(n.Type).Render(truncate(n.Title+": "+n.Message, 60)) + " "
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	line1 := left + strings.Repeat(" ", padding) + right

	// Second line: focus indicator and resource strip
	focus := " Focus: "
	if m.focusArea == FocusSidebar {
		focus += FocusIndicator + " Sidebar   Main"
	} else {
		focus += "Sidebar   " + FocusIndicator + " Main"
	}
	focusLine := SubtitleStyle.Render(focus)

	metricsStr := ""
	if m.metrics != nil {
		mm := m.metrics.Get()
		if !mm.UpdatedAt.IsZero() {
			metricsStr = SubtitleStyle.Render(fmt.Sprintf(
				"CPU %.0f%% · MEM %.1f/%.1fGB · RSS %.0fMB · %d goroutines ",
				mm.CPUPercent, mm.MemUsedGB, mm.MemTotalGB, mm.ProcMemMB, mm.Goroutines))
		}
	}

	padding2 := m.width - lipgloss.Width(focusLine) - lipgloss.Width(metricsStr)
	if padding2 < 0 {
		padding2 = 0
	}
	line2 := focusLine + strings.Repeat(" ", padding2) + metricsStr

	return line1 + "\n" + line2
}

// footerShortcuts returns key/description pairs for the current context
func (m *Model) footerShortcuts() []string {
	switch m.currentView {
	case core.VMDashboard:
		return []string{
			"enter", "open", "n", "new", "/", "filter",
			"tab", "focus", "?", "help", "q", "quit",
		}
	case core.VMSession:
		switch m.sessionTab {
		case sessionTabChat:
			base := []string{"c/t/f/s", "tabs"}
			if q := m.activeQuestion(); q != nil {
				if len(q.Buttons) > 0 {
					base = append(base, "1-9", "answer")
				}
				if !q.ButtonsOnly {
					base = append(base, "i", "type")
				}
				base = append(base, "x", "cancel")
			} else {
				base = append(base, "↑/↓", "scroll")
			}
			return append(base, "?", "help", "q", "quit")
		case sessionTabSettings:
			return []string{
				"←/→", "provider", "↑/↓", "model",
				"c/t/f/s", "tabs", "q", "quit",
			}
		default:
			return []string{
				"↑/↓", "scroll", "c/t/f/s", "tabs",
				"?", "help", "q", "quit",
			}
		}
	case core.VMLogs:
		return []string{
			"a/e/w/i/d", "level", "/", "search", "space", "follow",
			"?", "help", "q", "quit",
		}
	}
	return []string{"?", "help", "q", "quit"}
}

// notifyStyle maps a notification type to its footer style
func notifyStyle(t core.NotificationType) lipgloss.Style {
	switch t {
	case core.NotifySuccess:
		return NotifySuccessStyle
	case core.NotifyWarning:
		return NotifyWarningStyle
	case core.NotifyError:
		return NotifyErrorStyle
	default:
		return NotifyInfoStyle
	}
}

// ===========================================
// Overlays
// ===========================================

// renderLoading renders a centered spinner
func (m *Model) renderLoading(width, height int) string {
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		m.spinner.View()+" Loading...")
}

// renderCreateOverlay renders the new-project dialog
func (m *Model) renderCreateOverlay(width, height int) string {
	content := DialogTitleStyle.Render("New Project") + "\n" +
		m.createInput.View() + "\n\n" +
		HelpDescStyle.Render("enter create · esc cancel")

	dialog := DialogStyle.Width(44).Render(content)
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		dialog)
}

// renderHelpOverlay renders the keybinding reference
func (m *Model) renderHelpOverlay(width, height int) string {
	content := DialogTitleStyle.Render("Keyboard Shortcuts") + "\n" +
		m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		HelpDescStyle.Render("press any key to close")

	dialog := DialogStyle.Width(min(72, width-4)).Render(content)
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		dialog)
}

// renderFilterOverlay renders the dashboard filter input
func (m *Model) renderFilterOverlay(width, height int) string {
	input := m.filterText + "█"
	content := DialogTitleStyle.Render("Filter Projects") + "\n" +
		InputFocusedStyle.Width(30).Render(input) + "\n" +
		HelpDescStyle.Render("enter apply · esc clear")

	dialog := DialogStyle.Render(content)
	return lipgloss.Place(width, height,
		lipgloss.Center, 0.2,
		dialog)
}

// ===========================================
// Helpers
// ===========================================

// truncate shortens a string to max characters with an ellipsis
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// orDefault returns def when s is empty
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// renderScrollInfo renders a "showing x-y of z" line when the list
// overflows the panel
func renderScrollInfo(index, total, visible int) string {
	if total <= visible {
		return ""
	}
	return fmt.Sprintf(" %d/%d %s%s", index+1, total, IconArrowUp, IconArrowDn)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
