package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/courier/internal/chatlist"
	"github.com/five82/courier/internal/delta"
	"github.com/five82/courier/internal/logtail"
	"github.com/five82/courier/internal/market"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/prefs"
	"github.com/five82/courier/internal/session"
	"github.com/five82/courier/internal/state"
)

// Tab identifies one of the three screens.
type Tab int

const (
	TabTracking Tab = iota
	TabWallet
	TabChats
	tabCount
)

var tabLabels = [tabCount]string{"Tracking", "Wallet", "Chats"}

var tabPrefs = [tabCount]string{prefs.ScreenTracking, prefs.ScreenWallet, prefs.ScreenChats}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "Unknown"
	}
	return tabLabels[t]
}

func tabFromPref(name string) Tab {
	for i, p := range tabPrefs {
		if p == name {
			return Tab(i)
		}
	}
	return TabTracking
}

// Screen is the live session behind a tab. *session.Session satisfies it.
type Screen interface {
	SetFocused(bool)
	SetForeground(bool)
	Refresh() error
	Polling() bool
}

// Messages delivered by session commit callbacks through Program.Send.
type (
	OrderMsg  session.Commit[market.OrderSnapshot]
	WalletMsg session.Commit[market.WalletSnapshot]
	ChatsMsg  session.Commit[market.ConversationList]
)

type toastExpiredMsg struct{ id int }

type logTailMsg struct {
	entries []logtail.Entry
	err     error
}

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

type credit struct {
	event    delta.Event
	currency string
	at       time.Time
}

// Options configures the UI.
type Options struct {
	Tracking Screen
	Wallet   Screen
	Chats    Screen

	// OrderID is the order the tracking screen starts on.
	OrderID string
	// SwitchOrder remounts the tracking session on another order and returns
	// the new session id. Nil disables the order prompt.
	SwitchOrder func(orderID string) (string, error)

	Prefs     prefs.Prefs
	PrefsPath string
	// LogFile is shown by the log overlay. Empty disables it.
	LogFile string

	Now    func() time.Time
	Logger *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	screens     [tabCount]Screen
	switchOrder func(string) (string, error)
	prefsPath   string
	logFile     string
	now         func() time.Time
	log         *zap.Logger

	// UI state
	keys     keyMap
	help     help.Model
	theme    Theme
	active   Tab
	width    int
	height   int
	ready    bool
	showHelp bool
	showLog  bool
	toast    toast
	toastSeq int

	// pendingManual marks screens whose user-requested refresh hasn't
	// reported back yet.
	pendingManual [tabCount]bool

	// Tracking
	orderID      string
	orderSession string
	order        state.Snapshot[market.OrderSnapshot]
	orderInput   textinput.Model
	promptOrder  bool

	// Wallet
	wallet     state.Snapshot[market.WalletSnapshot]
	lastCredit *credit

	// Log overlay
	logEntries []logtail.Entry
	logErr     error
	logView    viewport.Model

	// Chats
	chats      state.Snapshot[market.ConversationList]
	chatCursor int
	search     textinput.Model
	searching  bool
}

// New creates the root model. Nil screens are treated as never polling.
func New(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	themeName := opts.Prefs.Theme
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name or last message"
	search.CharLimit = 64

	orderInput := textinput.New()
	orderInput.Prompt = "order id: "
	orderInput.CharLimit = 64

	m := Model{
		screens:     [tabCount]Screen{orNoop(opts.Tracking), orNoop(opts.Wallet), orNoop(opts.Chats)},
		switchOrder: opts.SwitchOrder,
		prefsPath:   opts.PrefsPath,
		logFile:     opts.LogFile,
		logView:     viewport.New(0, 0),
		now:         now,
		log:         log,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		active:      tabFromPref(opts.Prefs.Screen),
		orderID:     opts.OrderID,
		orderInput:  orderInput,
		search:      search,
	}
	m.applyTheme(GetTheme(themeName))
	return m
}

// Init implements tea.Model. It focuses the starting screen so its gate can
// open.
func (m Model) Init() tea.Cmd {
	m.screens[m.active].SetFocused(true)
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeLog()
		return m, nil

	case tea.FocusMsg:
		m.setForeground(true)
		return m, nil

	case tea.BlurMsg:
		m.setForeground(false)
		return m, nil

	case OrderMsg:
		if m.orderSession != "" && msg.SessionID != m.orderSession {
			return m, nil
		}
		m.order = msg.Snapshot
		return m, m.settleManual(TabTracking, msg.Result.Trigger, msg.Result.Err)

	case WalletMsg:
		m.wallet = msg.Snapshot
		var cmds []tea.Cmd
		if msg.HasDelta {
			currency := msg.Snapshot.Value.Currency
			m.lastCredit = &credit{event: msg.Delta, currency: currency, at: m.now()}
			cmds = append(cmds, m.showToast(toastSuccess,
				"+"+formatMoney(market.Amount(msg.Delta.Delta), currency)+" received"))
		}
		cmds = append(cmds, m.settleManual(TabWallet, msg.Result.Trigger, msg.Result.Err))
		return m, tea.Batch(cmds...)

	case ChatsMsg:
		m.chats = msg.Snapshot
		m.clampCursor()
		return m, m.settleManual(TabChats, msg.Result.Trigger, msg.Result.Err)

	case prefs.ChangedMsg:
		if msg.Prefs.Theme != m.theme.Name {
			m.applyTheme(GetTheme(msg.Prefs.Theme))
		}
		return m, nil

	case logTailMsg:
		m.logEntries, m.logErr = msg.entries, msg.err
		m.resizeLog()
		m.logView.GotoBottom()
		return m, nil

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLog {
		return m.renderLog()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.savePrefs()
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.showLog {
		return m.handleLogKey(msg)
	}
	if m.promptOrder {
		return m.handleOrderPrompt(msg)
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Log):
		if m.logFile == "" {
			return m, nil
		}
		m.showLog = true
		return m, loadLogCmd(m.logFile)

	case key.Matches(msg, m.keys.CycleTheme):
		m.applyTheme(GetTheme(NextTheme(m.theme.Name)))
		m.savePrefs()

	case key.Matches(msg, m.keys.Tab):
		m.switchTab((m.active + 1) % tabCount)

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchTab((m.active + tabCount - 1) % tabCount)

	case key.Matches(msg, m.keys.ScreenTracking):
		m.switchTab(TabTracking)

	case key.Matches(msg, m.keys.ScreenWallet):
		m.switchTab(TabWallet)

	case key.Matches(msg, m.keys.ScreenChats):
		m.switchTab(TabChats)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, m.keys.SwitchOrder):
		if m.switchOrder == nil {
			return m, nil
		}
		m.switchTab(TabTracking)
		m.promptOrder = true
		m.orderInput.SetValue("")
		return m, m.orderInput.Focus()

	case m.active == TabChats:
		return m.handleChatsKey(msg)
	}

	return m, nil
}

func (m Model) handleChatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		m.search.SetValue("")
		m.chatCursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.chatCursor > 0 {
			m.chatCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.chatCursor < len(m.chatRows())-1 {
			m.chatCursor++
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.chatCursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.chatCursor = 0
	return m, cmd
}

func (m Model) handleOrderPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.promptOrder = false
		m.orderInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.promptOrder = false
		m.orderInput.Blur()
		id := strings.TrimSpace(m.orderInput.Value())
		if id == "" || id == m.orderID {
			return m, nil
		}
		sessionID, err := m.switchOrder(id)
		if err != nil {
			m.log.Warn("switch order failed", zap.String("order_id", id), zap.Error(err))
			return m, m.showToast(toastError, "switch order: "+err.Error())
		}
		m.orderID = id
		m.orderSession = sessionID
		m.order = state.Snapshot[market.OrderSnapshot]{}
		m.pendingManual[TabTracking] = false
		return m, m.showToast(toastInfo, "Tracking order "+id)
	}

	var cmd tea.Cmd
	m.orderInput, cmd = m.orderInput.Update(msg)
	return m, cmd
}

// switchTab moves view focus; only the visible screen's session polls.
func (m *Model) switchTab(t Tab) {
	if t == m.active {
		return
	}
	m.screens[m.active].SetFocused(false)
	m.active = t
	m.screens[t].SetFocused(true)
}

func (m *Model) setForeground(foreground bool) {
	for _, s := range m.screens {
		s.SetForeground(foreground)
	}
}

func (m *Model) refresh() tea.Cmd {
	if err := m.screens[m.active].Refresh(); err != nil {
		return m.showToast(toastError, m.active.String()+" refresh failed: "+err.Error())
	}
	m.pendingManual[m.active] = true
	return nil
}

// settleManual reports the outcome of a pending manual refresh. Only
// failures surface; success is visible in the data itself.
func (m *Model) settleManual(t Tab, trigger poller.Trigger, err error) tea.Cmd {
	if trigger != poller.TriggerForced || !m.pendingManual[t] {
		return nil
	}
	m.pendingManual[t] = false
	if err == nil {
		return nil
	}
	return m.showToast(toastError, t.String()+" refresh failed: "+err.Error())
}

func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = toast{id: id, kind: kind, text: text}
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) applyTheme(t Theme) {
	m.theme = t
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint))
	m.search.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	m.orderInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	m.resizeLog()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Screen: tabPrefs[m.active]}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

func (m Model) chatRows() []chatlist.Row {
	if !m.chats.HasValue {
		return nil
	}
	return chatlist.Project(m.chats.Value, m.search.Value())
}

func (m *Model) clampCursor() {
	n := len(m.chatRows())
	if m.chatCursor >= n {
		m.chatCursor = maxInt(n-1, 0)
	}
}

func loadLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines)
		return logTailMsg{entries: entries, err: err}
	}
}

type noopScreen struct{}

func (noopScreen) SetFocused(bool)    {}
func (noopScreen) SetForeground(bool) {}
func (noopScreen) Refresh() error     { return session.ErrClosed }
func (noopScreen) Polling() bool      { return false }

func orNoop(s Screen) Screen {
	if s == nil {
		return noopScreen{}
	}
	return s
}
