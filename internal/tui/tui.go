package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/minicasino/internal/config"
	"github.com/lox/minicasino/internal/game"
	"github.com/lox/minicasino/internal/pacing"
	"github.com/lox/minicasino/internal/statistics"
)

// Options configures a TUIModel
type Options struct {
	Pacer    *pacing.Pacer          // Nil shows events as soon as they happen
	Limits   config.TableConfig     // Bet minimum, step and starting bet
	Stats    *statistics.Statistics // Session statistics for the sidebar
	TestMode bool
}

// TUIModel represents the Bubble Tea model for a casino table
type TUIModel struct {
	table     Table
	logger    *log.Logger
	ctx       context.Context
	pacer     *pacing.Pacer
	formatter *game.EventFormatter
	limits    config.TableConfig
	stats     *statistics.Statistics

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// Playback: table events wait in queue until the pacer lets them through
	queue      []game.Event
	pending    game.Event
	pendingSeq int
	shown      game.Snapshot

	// Betting state
	bet  int64
	side string

	// State
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// eventDueMsg fires when an event's pacing delay has elapsed
type eventDueMsg struct {
	seq int
}

// resetDueMsg fires when a settled round has stayed on the table long enough
type resetDueMsg struct {
	roundID string
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// NewTUIModel creates a TUI model driving table
func NewTUIModel(ctx context.Context, table Table, logger *log.Logger, opts Options) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	if opts.Limits.MinBet <= 0 {
		opts.Limits = config.TableConfig{Game: string(table.Kind()), MinBet: 5, BetStep: 5, DefaultBet: 10}
	}
	if opts.Pacer == nil {
		opts.Pacer = pacing.New(nil, pacing.WithEnabled(false))
	}

	profile := termenv.ANSI256
	if opts.TestMode {
		profile = termenv.Ascii
	}

	side, _ := table.NormalizeSide("")

	m := &TUIModel{
		table:       table,
		logger:      logger.WithPrefix("tui"),
		ctx:         ctx,
		pacer:       opts.Pacer,
		formatter:   game.NewEventFormatter(game.FormattingOptions{Profile: profile}),
		limits:      opts.Limits,
		stats:       opts.Stats,
		logViewport: vp,
		actionInput: ti,
		shown:       table.Snapshot(),
		bet:         opts.Limits.DefaultBet,
		side:        side,
		focusedPane: 1,
		testMode:    opts.TestMode,
	}
	table.Bus().Subscribe(m)
	m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(string(table.Kind())))))
	if msg := m.shown.Message; msg != "" {
		m.AddLogEntry(msg)
	}
	m.AddLogEntry(InfoStyle.Render("Type 'help' for commands"))
	return m
}

// OnEvent queues table events for paced playback
func (m *TUIModel) OnEvent(ev game.Event) {
	m.queue = append(m.queue, ev)
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case eventDueMsg:
		if msg.seq == m.pendingSeq && m.pending != nil {
			ev := m.pending
			m.pending = nil
			cmds = append(cmds, m.show(ev), m.playNext())
		}

	case resetDueMsg:
		snap := m.table.Snapshot()
		if snap.RoundID == msg.roundID && snap.Phase == game.Settled {
			m.table.Reset()
			cmds = append(cmds, m.playNext())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				cmds = append(cmds, m.ProcessCommand(input))
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Busy reports whether dealt cards are still being played back
func (m *TUIModel) Busy() bool {
	return m.pending != nil || len(m.queue) > 0
}

// ProcessCommand applies one line of user input and returns the command
// that starts playback of whatever the table did
func (m *TUIModel) ProcessCommand(input string) tea.Cmd {
	cmd, err := ParseCommand(input)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch cmd.Kind {
	case CmdQuit:
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case CmdHelp:
		m.addHelp()
		return nil
	case CmdStats:
		m.addStats()
		return nil
	}

	if m.Busy() {
		m.AddLogEntry(InfoStyle.Render("Dealing, one moment..."))
		return nil
	}

	switch cmd.Kind {
	case CmdDefault:
		if m.table.Snapshot().Phase.BetweenRounds() {
			m.deal()
		}
	case CmdDeal:
		m.deal()
	case CmdHit:
		if !m.table.Hit(m.ctx) {
			m.AddLogEntry(InfoStyle.Render("Nothing to hit right now"))
		}
	case CmdStand:
		if !m.table.Stand(m.ctx) {
			m.AddLogEntry(InfoStyle.Render("Nothing to stand on right now"))
		}
	case CmdBet:
		m.setBet(cmd.Amount, cmd.Side)
	case CmdBetUp:
		m.bet = m.limits.Step(m.bet, 1, m.table.Snapshot().Balance)
	case CmdBetDown:
		m.bet = m.limits.Step(m.bet, -1, m.table.Snapshot().Balance)
	case CmdSide:
		m.setBet(m.bet, cmd.Side)
	}
	return m.playNext()
}

func (m *TUIModel) setBet(amount int64, side string) {
	if amount < m.limits.MinBet {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Minimum bet is $%d", m.limits.MinBet)))
		return
	}
	if side != "" {
		normalized, err := m.table.NormalizeSide(side)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
			return
		}
		m.side = normalized
	}
	m.bet = amount
}

func (m *TUIModel) deal() {
	if err := m.table.PlaceBet(m.ctx, m.bet, m.side); err != nil {
		m.logger.Debug("Bet rejected", "amount", m.bet, "error", err)
		m.AddLogEntry(ErrorStyle.Render(betError(err)))
		return
	}
	if err := m.table.StartRound(m.ctx); err != nil {
		m.logger.Error("Failed to start round", "error", err)
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
	}
}

func betError(err error) string {
	if errors.Is(err, game.ErrInvalidAction) {
		return "Finish the current round first"
	}
	return "Bet rejected: " + err.Error()
}

// playNext moves the next queued event into the pacer. Events with no delay
// are shown at once.
func (m *TUIModel) playNext() tea.Cmd {
	var cmds []tea.Cmd
	for m.pending == nil && len(m.queue) > 0 {
		ev := m.queue[0]
		m.queue = m.queue[1:]

		d := m.pacer.Delay(ev)
		if d <= 0 {
			cmds = append(cmds, m.show(ev))
			continue
		}

		m.pending = ev
		m.pendingSeq++
		seq, pacer, ctx := m.pendingSeq, m.pacer, m.ctx
		cmds = append(cmds, func() tea.Msg {
			_ = pacer.Wait(ctx, d)
			return eventDueMsg{seq: seq}
		})
	}
	return tea.Batch(cmds...)
}

// Flush shows every queued event immediately, ignoring pacing
func (m *TUIModel) Flush() {
	if m.pending != nil {
		ev := m.pending
		m.pending = nil
		m.pendingSeq++
		m.show(ev)
	}
	for len(m.queue) > 0 {
		ev := m.queue[0]
		m.queue = m.queue[1:]
		m.show(ev)
	}
}

// show displays one event and returns any follow-up it schedules
func (m *TUIModel) show(ev game.Event) tea.Cmd {
	m.shown = ev.State()

	if ev.EventType() == game.EventTypeRoundStart {
		m.AddLogEntry("")
	}
	if line := m.formatter.Format(ev); line != "" {
		m.AddLogEntry(line)
	}

	settled, ok := ev.(game.RoundSettledEvent)
	if !ok || m.shown.Game != game.Baccarat {
		return nil
	}
	roundID, d, pacer, ctx := m.shown.RoundID, m.pacer.ResetDelay(), m.pacer, m.ctx
	m.logger.Debug("Scheduling reset", "round", roundID, "outcome", settled.Outcome, "after", d)
	return func() tea.Msg {
		_ = pacer.Wait(ctx, d)
		return resetDueMsg{roundID: roundID}
	}
}

// Shown returns the snapshot currently on screen, which trails the table
// while events are being played back
func (m *TUIModel) Shown() game.Snapshot {
	return m.shown
}

// Bet returns the amount and side the next deal will stake
func (m *TUIModel) Bet() (int64, string) {
	return m.bet, m.side
}

func (m *TUIModel) addHelp() {
	lines := []string{
		"deal (d)           place the bet and deal",
		"bet <n> [side]     set the bet amount",
		"bet + / bet -      raise or lower the bet by one step",
		"stats              show session statistics",
		"quit (q)           leave the table",
	}
	if m.table.Kind() == game.Blackjack {
		lines = append(lines[:1], append([]string{
			"hit (h)            take a card",
			"stand (s)          end your turn",
		}, lines[1:]...)...)
	} else {
		lines = append(lines[:2], append([]string{
			"player|banker|tie  choose the side to bet on",
		}, lines[2:]...)...)
	}
	for _, l := range lines {
		m.AddLogEntry(InfoStyle.Render(l))
	}
}

func (m *TUIModel) addStats() {
	if m.stats == nil || m.stats.Rounds == 0 {
		m.AddLogEntry(InfoStyle.Render("No rounds played yet"))
		return
	}
	lo, hi := m.stats.ConfidenceInterval95()
	m.AddLogEntry(fmt.Sprintf("Rounds %d: %d won, %d lost, %d pushed", m.stats.Rounds, m.stats.Wins, m.stats.Losses, m.stats.Pushes))
	m.AddLogEntry(fmt.Sprintf("Net $%d, mean $%.2f per round (95%% CI %.2f to %.2f)", m.stats.Net(), m.stats.Mean(), lo, hi))
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1))
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", m.shown.Balance)))
	content.WriteString("\n")
	bet := fmt.Sprintf("Bet: $%d", m.bet)
	if m.side != "" {
		bet += " on " + strings.ToUpper(m.side)
	}
	content.WriteString(PlayerInfoStyle.Render(bet))
	content.WriteString("\n\n")

	for _, h := range []game.HandView{m.shown.Dealer, m.shown.Player} {
		content.WriteString(HandInfoStyle.Render(h.Name))
		content.WriteString("\n  ")
		content.WriteString(m.formatHand(h))
		content.WriteString("\n")
	}

	if m.shown.Message != "" {
		content.WriteString("\n")
		content.WriteString(messageStyle(m.shown).Render(m.shown.Message))
		content.WriteString("\n")
	}

	if m.stats != nil && m.stats.Rounds > 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Rounds: %d  W/L/P: %d/%d/%d", m.stats.Rounds, m.stats.Wins, m.stats.Losses, m.stats.Pushes)))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Net: $%d", m.stats.Net())))
	}

	return content.String()
}

func messageStyle(s game.Snapshot) lipgloss.Style {
	switch {
	case s.Phase != game.Settled:
		return PlayerInfoStyle
	case s.Payout > s.Wager:
		return SuccessStyle
	case s.Payout == s.Wager:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	var actions []string
	switch {
	case m.Busy():
		actions = append(actions, InfoStyle.Render("Dealing..."))
	case m.shown.CanAct():
		actions = append(actions, SuccessStyle.Render("[hit]"), WarningStyle.Render("[stand]"))
	default:
		actions = append(actions, SuccessStyle.Render("[deal]"), WarningStyle.Render("[bet +/-]"))
		if m.table.Kind() == game.Baccarat {
			actions = append(actions, WarningStyle.Render("[player|banker|tie]"))
		}
	}
	content.WriteString(ActionsStyle.Render("Actions: " + strings.Join(actions, " ")))
	content.WriteString("\n")

	if m.shown.CanAct() {
		m.actionInput.Placeholder = "hit or stand"
	} else {
		m.actionInput.Placeholder = "Enter to deal, 'help' for commands"
	}
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

// formatHand formats a hand with coloured cards
func (m *TUIModel) formatHand(h game.HandView) string {
	if len(h.Cards) == 0 {
		return InfoStyle.Render("-")
	}

	formatted := make([]string, len(h.Cards))
	for i, cv := range h.Cards {
		formatted[i] = formatCard(cv)
	}

	out := "[" + strings.Join(formatted, " ") + "]"
	if !h.ScoreHidden {
		out += fmt.Sprintf(" (%d)", h.Score)
	}
	return out
}

func formatCard(cv game.CardView) string {
	switch {
	case cv.FaceDown:
		return CardBackStyle.Render("??")
	case cv.Card.IsRed():
		return RedCardStyle.Render(cv.Card.String())
	default:
		return BlackCardStyle.Render(cv.Card.String())
	}
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
