package cli

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type Theme struct {
	Name       string
	Foreground tcell.Color
	Border     tcell.Color
	Title      tcell.Color
	Highlight  tcell.Color
	Secondary  tcell.Color
	Accent     tcell.Color
	Success    tcell.Color
	Warning    tcell.Color
	Error      tcell.Color
	// Field is the background of input fields and buttons
	Field      tcell.Color
}

var (
	DarkTheme = Theme{
		Name:       "dark",
		Foreground: tcell.ColorWhite,
		Border:     tcell.ColorBlue,
		Title:      tcell.ColorYellow,
		Highlight:  tcell.ColorGreen,
		Secondary:  tcell.ColorGray,
		Accent:     tcell.ColorAqua,
		Success:    tcell.ColorGreen,
		Warning:    tcell.ColorYellow,
		Error:      tcell.ColorRed,
		Field:      tcell.ColorDarkSlateGray,
	}

	LightTheme = Theme{
		Name:       "light",
		Foreground: tcell.ColorBlack,
		Border:     tcell.ColorNavy,
		Title:      tcell.ColorDarkBlue,
		Highlight:  tcell.ColorDarkGreen,
		Secondary:  tcell.ColorDarkGray,
		Accent:     tcell.ColorTeal,
		Success:    tcell.ColorDarkGreen,
		Warning:    tcell.ColorOrange,
		Error:      tcell.ColorDarkRed,
		Field:      tcell.ColorLightGray,
	}
)

func GetTheme(themeName string) Theme {
	switch themeName {
	case "light":
		return LightTheme
	case "dark":
		fallthrough
	default:
		return DarkTheme
	}
}

// colorTags are tview color tags for inline text
type colorTags struct {
	Header    string
	Label     string
	Value     string
	Secondary string
}

func (t Theme) tags() colorTags {
	if t.Name == "light" {
		return colorTags{Header: "[navy]", Label: "[black]", Value: "[teal]", Secondary: "[darkgray]"}
	}
	return colorTags{Header: "[yellow]", Label: "[white]", Value: "[aqua]", Secondary: "[gray]"}
}

// tag renders a tcell color as a tview color tag
func tag(c tcell.Color) string {
	return fmt.Sprintf("[%s]", c.String())
}

func ApplyTheme(theme Theme) {
	// Transparent backgrounds so the terminal's own background shows through
	tview.Styles = tview.Theme{
		PrimitiveBackgroundColor:    tcell.ColorDefault,
		ContrastBackgroundColor:     tcell.ColorDefault,
		MoreContrastBackgroundColor: tcell.ColorDefault,
		BorderColor:                 theme.Border,
		TitleColor:                  theme.Title,
		GraphicsColor:               theme.Accent,
		PrimaryTextColor:            theme.Foreground,
		SecondaryTextColor:          theme.Secondary,
		TertiaryTextColor:           theme.Accent,
		InverseTextColor:            theme.Foreground,
		ContrastSecondaryTextColor:  theme.Foreground,
	}
}

func ApplyThemeToTextView(tv *tview.TextView, theme Theme) {
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetTextColor(theme.Foreground)
	tv.SetBorderColor(theme.Border)
	tv.SetTitleColor(theme.Title)
}

func ApplyThemeToList(list *tview.List, theme Theme) {
	list.SetMainTextColor(theme.Foreground)
	list.SetSecondaryTextColor(theme.Secondary)
	list.SetSelectedTextColor(theme.Foreground)
	list.SetSelectedBackgroundColor(theme.Border)
	list.SetShortcutColor(theme.Accent)
}

func ApplyThemeToForm(form *tview.Form, theme Theme) {
	form.SetLabelColor(theme.Title)
	form.SetFieldBackgroundColor(theme.Field)
	form.SetFieldTextColor(theme.Foreground)
	form.SetButtonBackgroundColor(theme.Field)
	form.SetButtonTextColor(theme.Foreground)
	form.SetBorderColor(theme.Border)
	form.SetTitleColor(theme.Title)
}

const statsTemplate = `{{.Label}}Accounts:{{.Value}} {{.AccountCount}}{{.Label}}
Notes:{{.Value}} {{.NoteCount}}{{.Label}}
Reads:{{.Value}} {{.Reads}}{{.Label}}
Writes:{{.Value}} {{.Writes}}{{.Label}}
Images copied:{{.Value}} {{.BlobCopies}} ({{.BlobBytes}}){{.Label}}
Failures:{{.Value}} {{.Failures}}{{.Label}}
Rate:{{.Value}} {{.OpsPerSec}}/sec{{.Label}}
Uptime:{{.Value}} {{.Uptime}}{{.Label}}
Goroutines:{{.Value}} {{.GoRoutines}}{{.Label}}
Memory:{{.Value}} {{.MemoryUsage}}{{.Label}}
Updated:{{.Secondary}} {{.LastUpdated}}[-]`

type statsData struct {
	*telemetry.Stats
	colorTags
	Reads       int64
	Writes      int64
	Uptime      string
	LastUpdated string
}

var statsTemplateParsed = template.Must(template.New("stats").Parse(statsTemplate))

func FormatStatsWithTheme(stats *telemetry.Stats, theme Theme) string {
	data := statsData{
		Stats:       stats,
		colorTags:   theme.tags(),
		Reads:       stats.AccountReads + stats.NoteReads,
		Writes:      stats.AccountWrites + stats.NoteWrites,
		Uptime:      formatDuration(stats.Uptime),
		LastUpdated: stats.LastUpdated.Format(time.TimeOnly),
	}

	var buf bytes.Buffer
	if err := statsTemplateParsed.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting stats: %v", err)
	}

	return buf.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func formatTopAccounts(accounts []store.AccountStats, theme Theme) string {
	colors := theme.tags()
	if len(accounts) == 0 {
		return colors.Secondary + "No accounts yet...[-]\n"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "%s%-20s %s[-]\n", colors.Header, "Account", "Notes")
	fmt.Fprintf(&result, "%s%s[-]\n", colors.Header, strings.Repeat("─", 26))

	for _, accountStats := range accounts {
		name := accountStats.Account.Username
		if len([]rune(name)) > 18 {
			name = string([]rune(name)[:15]) + "..."
		}
		fmt.Fprintf(&result, "%s%-20s %s%d[-]\n",
			colors.Label, tview.Escape(name), colors.Value, accountStats.NoteCount)
	}

	return result.String()
}

func FormatLogEntryWithTheme(entry telemetry.LogEntry, theme Theme) string {
	// tint already adds ANSI colors and the timestamp
	return tview.TranslateANSI(entry.Message) + "\n"
}
