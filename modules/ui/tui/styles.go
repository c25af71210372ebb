package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Layout constants
const (
	GapHorizontal = 1 // Horizontal gap between panels/cards
	GapVertical   = 1 // Vertical gap between sections
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Orange
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorText      = lipgloss.Color("#F9FAFB") // Light
	ColorBg        = lipgloss.Color("#111827") // Dark
	ColorBgAlt     = lipgloss.Color("#1F2937") // Dark alt
	ColorBorder    = lipgloss.Color("#374151") // Gray border
)

// Base styles
var (
	BaseStyle = lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText)

	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorBgAlt).
			Padding(0, 1)

	// Title
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// Subtitle
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Status indicators
	StatusOnline = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusOffline = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StatusWorking = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	// Navigation
	NavItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	NavItemActiveStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(ColorPrimary).
				Foreground(ColorText).
				Bold(true)

	// Panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			MarginBottom(1)

	// Table
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSecondary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorBorder)

	TableRowStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	TableRowSelectedStyle = lipgloss.NewStyle().
				Background(ColorBgAlt).
				Foreground(ColorText).
				Bold(true)

	// Logs
	LogInfoStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	LogWarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	LogErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	LogDebugStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	LogTimestampStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	LogSourceStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// Git
	GitBranchStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	GitCleanStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	GitDirtyStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Chat transcript
	ChatAgentStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ChatSystemStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	ChatStreamStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// Question prompt
	QuestionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorWarning).
				Padding(0, 1)

	QuestionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWarning)

	QuestionButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorBgAlt).
				Foreground(ColorText)

	QuestionButtonSelStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorWarning).
				Foreground(ColorBg).
				Bold(true)

	// Session tabs
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorBgAlt).
			Padding(0, 1)

	// Model selector
	OptionStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorText)

	OptionSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorPrimary).
				Foreground(ColorText).
				Bold(true)

	// Notifications
	NotifyInfoStyle = lipgloss.NewStyle().
			Background(ColorSecondary).
			Foreground(ColorText).
			Padding(0, 1)

	NotifySuccessStyle = lipgloss.NewStyle().
				Background(ColorSuccess).
				Foreground(ColorText).
				Padding(0, 1)

	NotifyWarningStyle = lipgloss.NewStyle().
				Background(ColorWarning).
				Foreground(ColorBg).
				Padding(0, 1)

	NotifyErrorStyle = lipgloss.NewStyle().
			Background(ColorError).
			Foreground(ColorText).
			Padding(0, 1)

	// Help
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Progress bar
	ProgressBarFilled = lipgloss.NewStyle().
				Background(ColorSuccess)

	ProgressBarEmpty = lipgloss.NewStyle().
				Background(ColorBgAlt)

	// Input
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	InputFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	// Dialog
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2).
			Background(ColorBgAlt)

	DialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				MarginBottom(1)
)

// Icons (using Unicode symbols for cross-platform compatibility)
const (
	IconOnline   = "●"
	IconOffline  = "○"
	IconError    = "✗"
	IconSuccess  = "✓"
	IconWarning  = "⚠"
	IconWorking  = "◐"
	IconPending  = "○"
	IconGitClean = "✓"
	IconGitDirty = "✗"
	IconArrowUp  = "↑"
	IconArrowDn  = "↓"
	IconBranch   = "⎇"
	IconQuestion = "❓"
)

// TaskStatusIcon renders the status glyph for an epic or task row
func TaskStatusIcon(status string) string {
	switch status {
	case "done", "completed", "reviewed":
		return StatusSuccess.Render(IconSuccess)
	case "in_progress", "working":
		return StatusWorking.Render(IconWorking)
	case "error", "failed":
		return StatusError.Render(IconError)
	default:
		return StatusOffline.Render(IconPending)
	}
}

// GitStatusIcon renders the clean/dirty glyph for a workspace checkout
func GitStatusIcon(clean bool) string {
	if clean {
		return GitCleanStyle.Render(IconGitClean)
	}
	return GitDirtyStyle.Render(IconGitDirty)
}

// ShortcutStyle is the style used for highlighting shortcut keys in labels
var ShortcutStyle = lipgloss.NewStyle().
	Foreground(ColorSecondary).
	Bold(true)

// SupportsColoredShortcuts returns true if terminal supports colors for shortcuts
func SupportsColoredShortcuts() bool {
	profile := lipgloss.ColorProfile()
	return profile != termenv.Ascii
}

// StripShortcutBrackets removes [X] syntax from label, returning clean text and shortcut position
// Returns the clean label and the position of the shortcut character (-1 if not found)
// Example: "[D]ashboard" -> ("Dashboard", 0)
// Example: "[L]ogs" -> ("Logs", 0)
func StripShortcutBrackets(label string) (clean string, shortcutPos int) {
	// Find [X] pattern (single character in brackets)
	for i := 0; i < len(label); i++ {
		if label[i] == '[' && i+2 < len(label) && label[i+2] == ']' {
			// Found [X] - remove brackets
			before := label[:i]
			shortcut := string(label[i+1])
			after := label[i+3:]
			return before + shortcut + after, len(before)
		}
	}
	// No [X] pattern found
	return label, -1
}

// ApplyShortcutColor applies color to the character at the given position
// Used after truncation to color the shortcut if still visible
func ApplyShortcutColor(label string, pos int) string {
	if pos < 0 || pos >= len(label) {
		return label
	}
	// Don't color if position is in the "..." suffix
	if len(label) > 3 && label[len(label)-3:] == "..." && pos >= len(label)-3 {
		return label
	}
	runes := []rune(label)
	if pos >= len(runes) {
		return label
	}
	before := string(runes[:pos])
	char := string(runes[pos])
	after := string(runes[pos+1:])
	return before + ShortcutStyle.Render(char) + after
}

// RenderShortcutLabel renders a label with [X] syntax, using color if supported
// or keeping brackets if the terminal doesn't support styling.
func RenderShortcutLabel(label string) string {
	if !SupportsColoredShortcuts() {
		// No color support - keep brackets as-is
		return label
	}
	clean, pos := StripShortcutBrackets(label)
	return ApplyShortcutColor(clean, pos)
}
