package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/ztdash/internal/command"
	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/dispatch"
	"github.com/muurk/ztdash/internal/logging"
	"github.com/muurk/ztdash/internal/refresh"
	"github.com/muurk/ztdash/internal/state"
	"github.com/muurk/ztdash/internal/ztapi"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenMainList    Screen = "main"
	ScreenMemberList  Screen = "members"
	ScreenJSONDetail  Screen = "detail"
	ScreenRulesEditor Screen = "rules"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptJoinByID
	promptBookmarkID
	promptRename
	promptFilter
)

// Deps are the collaborators the dashboard drives. Store, Config,
// Poller, Mutator and Runner are required.
type Deps struct {
	Store    *state.Store
	Config   *config.Store
	Current  *config.Config
	Bindings config.Bindings
	Poller   *refresh.Poller
	Mutator  *refresh.Mutator
	Runner   *dispatch.Runner
	// Terminal is released while a command or the editor runs.
	Terminal dispatch.Terminal
	// Changes signals that config.yaml changed on disk. May be nil.
	Changes <-chan struct{}
	// Editor is the rules editor command line; empty means dispatch.Editor().
	Editor string
	// Interval overrides refresh_interval, here and after every reload.
	// Zero keeps the configured value.
	Interval time.Duration
}

// Model is the top-level Bubble Tea model. It is the only writer of the
// view model: every background result arrives here as a message.
type Model struct {
	ctx context.Context

	store    *state.Store
	cfgStore *config.Store
	cfg      *config.Config
	bindings config.Bindings
	poller   *refresh.Poller
	mutator  *refresh.Mutator
	runner   *dispatch.Runner
	tracker  *refresh.Tracker
	term     dispatch.Terminal
	changes  <-chan struct{}
	editor   string
	interval time.Duration

	// Navigation
	screen    Screen
	origin    Screen // screen to return to from detail and rules
	networkID string // network open in the member, detail or rules screen
	memberID  string // member shown in the detail screen

	cursor       int
	memberCursor int
	memberFilter string

	// Prompts and modals
	prompt        promptKind
	input         textinput.Model
	confirmDelete string
	showHelp      bool

	detail  viewport.Model
	spinner spinner.Model
	help    help.Model

	mainKeys   mainKeyMap
	memberKeys memberKeyMap
	detailKeys detailKeyMap

	// lastPollErr holds the last failure per refresh target, so the same
	// failure is not repeated every tick.
	lastPollErr map[refresh.Key]string

	width  int
	height int
}

// New creates the dashboard model.
func New(ctx context.Context, deps Deps) Model {
	cfg := deps.Current
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if deps.Interval > 0 {
		c := *cfg
		c.RefreshInterval = deps.Interval
		cfg = &c
	}
	editor := deps.Editor
	if editor == "" {
		editor = dispatch.Editor()
	}
	term := deps.Terminal
	if term == nil {
		term = dispatch.NopTerminal{}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ti := textinput.New()
	ti.CharLimit = 64

	return Model{
		ctx:         ctx,
		store:       deps.Store,
		cfgStore:    deps.Config,
		cfg:         cfg,
		bindings:    deps.Bindings,
		poller:      deps.Poller,
		mutator:     deps.Mutator,
		runner:      deps.Runner,
		tracker:     refresh.NewTracker(),
		lastPollErr: make(map[refresh.Key]string),
		term:        term,
		changes:     deps.Changes,
		editor:      editor,
		interval:    deps.Interval,
		screen:      ScreenMainList,
		origin:      ScreenMainList,
		input:       ti,
		detail:      viewport.New(DefaultWidth-6, DefaultHeight-8),
		spinner:     s,
		help:        help.New(),
		mainKeys:    newMainKeyMap(),
		memberKeys:  newMemberKeyMap(),
		detailKeys:  newDetailKeyMap(),
		width:       DefaultWidth,
		height:      DefaultHeight,
	}
}

// Screen returns the active screen.
func (m Model) Screen() Screen { return m.screen }

// Init starts the first refresh, the refresh ticker and the config watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startRefresh(),
		tickCmd(m.cfg.RefreshInterval),
		waitForConfigChange(m.changes),
	)
}

// Update handles all messages and routes them to the appropriate screen
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = max(msg.Width-6, 10)
		m.detail.Height = max(msg.Height-8, 3)
		m.help.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tickMsg:
		m.store.Notices().Expire()
		return m, tea.Batch(m.startRefresh(), tickCmd(m.cfg.RefreshInterval))

	case networksMsg:
		key := refresh.AllNetworks()
		again := m.tracker.End(key)
		if m.polled(key, msg.err) {
			m.store.MergeNetworkSnapshot(msg.snap)
		}
		m.clampCursors()
		if again && m.tracker.Begin(key) {
			return m, pollNetworksCmd(m.ctx, m.poller)
		}
		return m, nil

	case networkMsg:
		key := refresh.OneNetwork(msg.id)
		again := m.tracker.End(key)
		if m.polled(key, msg.err) {
			m.store.MergeNetworkSnapshot(msg.snap)
		}
		m.clampCursors()
		if again {
			return m, m.refreshNetwork(msg.id)
		}
		return m, nil

	case membersMsg:
		key := refresh.MembersOf(msg.networkID)
		again := m.tracker.End(key)
		if m.polled(key, msg.err) {
			m.store.MergeMemberSnapshotAt(msg.networkID, msg.members, msg.taken)
		}
		m.clampCursors()
		if again {
			return m, m.refreshMembers(msg.networkID)
		}
		return m, nil

	case rulesMsg:
		return m.handleRules(msg)

	case mutationMsg:
		return m.handleMutation(msg)

	case configChangedMsg:
		m.store.Notices().Info("config.yaml changed, press R to reload")
		return m, waitForConfigChange(m.changes)

	case spinner.TickMsg:
		if m.screen != ScreenRulesEditor {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink and friends
	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes a key press. Overlays get it first, then the global
// back key, then the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes the help modal
		m.showHelp = false
		return m, nil
	}
	if m.prompt != promptNone {
		return m.updatePrompt(msg)
	}
	if m.confirmDelete != "" {
		return m.updateConfirmDelete(msg)
	}
	if msg.String() == "esc" {
		return m.toMainList(), nil
	}

	switch m.screen {
	case ScreenMainList:
		return m.updateMainList(msg)
	case ScreenMemberList:
		return m.updateMemberList(msg)
	case ScreenJSONDetail:
		return m.updateDetail(msg)
	}
	return m, nil
}

// toMainList returns to the main list, closing whatever was open.
func (m Model) toMainList() Model {
	m.screen = ScreenMainList
	m.origin = ScreenMainList
	m.prompt = promptNone
	m.input.Blur()
	m.confirmDelete = ""
	m.memberFilter = ""
	m.memberID = ""
	m.clampCursors()
	return m
}

// startRefresh starts the periodic refresh: every network, plus the
// members of the network open in the member screen. Targets already in
// flight are skipped.
func (m Model) startRefresh() tea.Cmd {
	var cmds []tea.Cmd
	if m.tracker.Begin(refresh.AllNetworks()) {
		cmds = append(cmds, pollNetworksCmd(m.ctx, m.poller))
	}
	nwid := m.membersOpen()
	if nwid != "" && m.poller.Directory != nil && m.tracker.Begin(refresh.MembersOf(nwid)) {
		cmds = append(cmds, pollMembersCmd(m.ctx, m.poller, nwid))
	}
	return tea.Batch(cmds...)
}

// refreshNetwork starts an out-of-band refresh of one network after a
// change. If a poll covering it is in flight, that poll is repeated when
// it lands instead.
func (m Model) refreshNetwork(id string) tea.Cmd {
	if !m.tracker.Follow(refresh.OneNetwork(id)) {
		return nil
	}
	return pollNetworkCmd(m.ctx, m.poller, id)
}

// refreshMembers starts a member refresh of one network after a change,
// or schedules a repeat of the one in flight.
func (m Model) refreshMembers(nwid string) tea.Cmd {
	if m.poller.Directory == nil || !m.tracker.Follow(refresh.MembersOf(nwid)) {
		return nil
	}
	return pollMembersCmd(m.ctx, m.poller, nwid)
}

// membersOpen returns the network whose member list is open, directly or
// beneath the detail or rules screen.
func (m Model) membersOpen() string {
	if m.screen == ScreenMemberList || (m.screen != ScreenMainList && m.origin == ScreenMemberList) {
		return m.networkID
	}
	return ""
}

// polled records the outcome of a refresh of key and reports whether it
// succeeded. A failure is pushed as a notice unless key failed the same
// way last time.
func (m *Model) polled(key refresh.Key, err error) bool {
	if err == nil {
		delete(m.lastPollErr, key)
		return true
	}
	msg := ztapi.ShortMessage(err)
	logging.Debug("Refresh failed", zap.String("target", string(key)), zap.Error(err))
	if prev, ok := m.lastPollErr[key]; ok && prev == msg {
		return false
	}
	m.lastPollErr[key] = msg
	m.store.Notify(err)
	return false
}

func (m *Model) clampCursors() {
	m.cursor = state.Clamp(m.cursor, len(m.store.Visible()))
	if m.networkID != "" {
		m.memberCursor = state.Clamp(m.memberCursor, len(m.visibleMembers()))
	}
}

// handleMutation applies a finished action and refreshes what it touched.
func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	res := msg.result
	ok := m.store.ApplyMutationResult(res)
	m.clampCursors()
	if !ok {
		return m, nil
	}

	switch res.Op {
	case state.OpJoin, state.OpLeave, state.OpSetRules:
		return m, m.refreshNetwork(res.NetworkID)
	default:
		return m, m.refreshMembers(res.NetworkID)
	}
}

// dispatchBinding runs a command binding with the terminal handed over.
// Update blocks until the command exits; results that arrive meanwhile
// wait in the program's message queue.
func (m Model) dispatchBinding(b config.Binding, ctx command.Context, nwid string) (tea.Model, tea.Cmd) {
	line := command.Resolve(b.Template, ctx)
	logging.Info("Dispatching command binding",
		zap.String("key", b.Key),
		zap.String("scope", string(b.Scope)),
		zap.String("network_id", nwid),
	)

	if err := m.runner.Dispatch(m.term, line); err != nil {
		m.store.Notices().Push(state.NoticeFromError(err, "command "+b.Key))
	}

	cmds := []tea.Cmd{tea.ClearScreen, m.refreshNetwork(nwid)}
	if b.Scope == config.ScopeMember {
		cmds = append(cmds, m.refreshMembers(nwid))
	}
	return m, tea.Batch(cmds...)
}

// saveBookmarks persists the bookmark list after a change.
func (m Model) saveBookmarks() {
	if err := m.cfgStore.SaveBookmarks(m.store.Bookmarks()); err != nil {
		m.store.Notify(&config.ConfigError{Path: m.cfgStore.SettingsPath(), Err: err})
	}
}

// reloadConfig re-reads config.yaml and swaps in the new bindings.
func (m Model) reloadConfig() Model {
	cfg, bindings, warnings := m.cfgStore.ReloadConfig()
	if m.interval > 0 {
		cfg.RefreshInterval = m.interval
	}
	m.cfg = cfg
	m.bindings = bindings
	m.runner.Shell = cfg.Shell
	m.runner.Pause = cfg.PauseAfterCommand
	m.poller.Timeout = cfg.RequestTimeout
	m.mutator.Timeout = cfg.RequestTimeout

	logging.Info("Reloaded config",
		zap.Int("bindings", bindings.Len()),
		zap.Int("warnings", len(warnings)),
	)
	m.store.Notices().Info(fmt.Sprintf("Reloaded config.yaml (%d bindings)", bindings.Len()))
	for _, w := range warnings {
		m.store.Notify(w)
	}
	return m
}

// View renders the current screen
func (m Model) View() string {
	if m.showHelp {
		return RenderModal(m.renderHelpModalContent(), m.width, m.height)
	}

	var body, footer string
	switch m.screen {
	case ScreenMainList:
		body = m.renderMainList()
		footer = m.help.View(m.mainKeys)
	case ScreenMemberList:
		body = m.renderMemberList()
		footer = m.help.View(m.memberKeys)
	case ScreenJSONDetail:
		body = m.renderDetail()
		footer = m.help.View(m.detailKeys)
	case ScreenRulesEditor:
		body = m.renderRulesLoading()
		footer = "esc cancel"
	}

	var top string
	if n, ok := m.store.Notices().Current(); ok {
		top = renderNotice(n, m.store.Notices().Pending()) + "\n"
	}
	if m.prompt != promptNone {
		top += m.renderPrompt() + "\n"
	}
	if m.confirmDelete != "" {
		top += m.renderConfirmDelete() + "\n"
	}

	return RenderApplicationContainer(m.headerStatus(), top+body, footer, m.width, m.height)
}

func (m Model) headerStatus() string {
	status := fmt.Sprintf("%d bookmarked · filter: %s", len(m.store.Bookmarks()), m.store.Filter())
	if n := len(m.store.Unlisted()); n > 0 {
		status += fmt.Sprintf(" · %d unlisted (i to import)", n)
	}
	if m.tracker.Busy() {
		status += " · refreshing"
	}
	return status
}
