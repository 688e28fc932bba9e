package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brunoscheufler/pocketnotes/constants"
	"github.com/brunoscheufler/pocketnotes/listing"
	"github.com/brunoscheufler/pocketnotes/notebook"
	"github.com/brunoscheufler/pocketnotes/store"
	"github.com/brunoscheufler/pocketnotes/telemetry"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageLogin   = "login"
	pageSignUp  = "signup"
	pageNotes   = "notes"
	pageEditor  = "editor"
	pageSwitch  = "switch"
	pageConfirm = "confirm"
)

type CLIOptions struct {
	Theme string
}

type CLIApp struct {
	app       *tview.Application
	pages     *tview.Pages
	service   *notebook.Service
	telemetry *telemetry.Telemetry
	theme     Theme
	options   CLIOptions

	session notebook.Session
	query   string
	order   listing.Order
	notes   []store.Note
	draft   notebook.Draft

	statusView   *tview.TextView
	statsView    *tview.TextView
	accountsView *tview.TextView
	logView      *tview.TextView

	login    loginPage
	signUp   signUpPage
	browse   notesPage
	editor   editorPage
	switcher switchPage

	statusSeq atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// RunCLI starts the terminal UI and blocks until it exits
func RunCLI(service *notebook.Service, tel *telemetry.Telemetry, options CLIOptions) error {
	cliApp := NewCLIApp(service, tel, options)
	cliApp.Setup()

	return cliApp.Start()
}

func NewCLIApp(service *notebook.Service, tel *telemetry.Telemetry, options CLIOptions) *CLIApp {
	ctx, cancel := context.WithCancel(context.Background())

	return &CLIApp{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		service:   service,
		telemetry: tel,
		theme:     GetTheme(options.Theme),
		options:   options,
		order:     listing.DefaultOrder,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *CLIApp) Setup() {
	ApplyTheme(c.theme)

	c.statusView = tview.NewTextView()
	c.statusView.SetDynamicColors(true)
	ApplyThemeToTextView(c.statusView, c.theme)

	c.statsView = c.newPane(" Stats ")
	c.accountsView = c.newPane(" Top Accounts ")

	c.logView = c.newPane(" Logs ")
	c.logView.SetScrollable(true)
	c.logView.SetMaxLines(constants.DefaultLogBufferSize)

	c.pages.AddPage(pageLogin, c.buildLoginPage(), true, true)
	c.pages.AddPage(pageSignUp, c.buildSignUpPage(), true, false)
	c.pages.AddPage(pageNotes, c.buildNotesPage(), true, false)
	c.pages.AddPage(pageEditor, c.buildEditorPage(), true, false)

	root := tview.NewFlex()
	root.SetDirection(tview.FlexRow)
	root.AddItem(c.pages, 0, 1, true)
	root.AddItem(c.statusView, 1, 0, false)

	c.app.SetRoot(root, true)
	c.app.EnableMouse(true)

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			c.Stop()
			return nil
		}
		return event
	})

	c.telemetry.LogCapture.SetLogCallback(func(entry telemetry.LogEntry) {
		c.appendLog(FormatLogEntryWithTheme(entry, c.theme))
	})

	c.showLogin()
}

func (c *CLIApp) newPane(title string) *tview.TextView {
	tv := tview.NewTextView()
	tv.SetBorder(true)
	tv.SetTitle(title)
	tv.SetTitleAlign(tview.AlignLeft)
	tv.SetDynamicColors(true)
	ApplyThemeToTextView(tv, c.theme)
	return tv
}

func (c *CLIApp) Start() error {
	c.telemetry.Start()
	go c.statsUpdateLoop()
	go c.loadExistingLogs()

	return c.app.Run()
}

func (c *CLIApp) Stop() {
	c.cancel()
	c.telemetry.LogCapture.SetLogCallback(nil)
	c.telemetry.Stop()
	c.app.Stop()
}

// setStatus shows msg in the status line until a newer message replaces it
// or StatusClearTimeout passes
func (c *CLIApp) setStatus(msg string, color tcell.Color) {
	seq := c.statusSeq.Add(1)
	c.statusView.SetText(tag(color) + tview.Escape(msg) + "[-]")

	time.AfterFunc(constants.StatusClearTimeout, func() {
		if c.statusSeq.Load() != seq || c.ctx.Err() != nil {
			return
		}
		c.app.QueueUpdateDraw(func() {
			c.statusView.Clear()
		})
	})
}

func (c *CLIApp) showError(err error) {
	c.setStatus(errorMessage(err), c.theme.Error)
}

func (c *CLIApp) showInfo(msg string) {
	c.setStatus(msg, c.theme.Success)
}

// center wraps p in spacers so it is drawn in the middle of the screen
func center(p tview.Primitive, width, height int) tview.Primitive {
	column := tview.NewFlex()
	column.SetDirection(tview.FlexRow)
	column.AddItem(nil, 0, 1, false)
	column.AddItem(p, height, 0, true)
	column.AddItem(nil, 0, 1, false)

	row := tview.NewFlex()
	row.AddItem(nil, 0, 1, false)
	row.AddItem(column, width, 0, true)
	row.AddItem(nil, 0, 1, false)
	return row
}

func (c *CLIApp) statsUpdateLoop() {
	c.updateStats()

	ticker := time.NewTicker(constants.DefaultStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateStats()
		}
	}
}

func (c *CLIApp) updateStats() {
	stats, err := c.telemetry.StatsCollector.CollectStats(c.ctx)
	if err != nil {
		return
	}

	statsText := FormatStatsWithTheme(stats, c.theme)
	accountsText := formatTopAccounts(stats.TopAccounts, c.theme)
	c.app.QueueUpdateDraw(func() {
		c.statsView.SetText(statsText)
		c.accountsView.SetText(accountsText)
	})
}

func (c *CLIApp) appendLog(message string) {
	c.app.QueueUpdateDraw(func() {
		fmt.Fprint(c.logView, message)
		c.logView.ScrollToEnd()
	})
}

func (c *CLIApp) loadExistingLogs() {
	logs := c.telemetry.LogCapture.GetAllLogs()

	if len(logs) == 0 {
		c.appendLog(c.theme.tags().Secondary + "Waiting for logs...[-]\n")
		return
	}

	var logText strings.Builder
	for _, entry := range logs {
		logText.WriteString(FormatLogEntryWithTheme(entry, c.theme))
	}

	c.app.QueueUpdateDraw(func() {
		c.logView.SetText(logText.String())
		c.logView.ScrollToEnd()
	})
}
