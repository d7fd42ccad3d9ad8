package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type sortMode int

const (
	sortBySizeDesc sortMode = iota
	sortBySizeAsc
	sortByPathAsc
)

func (m sortMode) String() string {
	switch m {
	case sortBySizeAsc:
		return "size ↑"
	case sortByPathAsc:
		return "path"
	default:
		return "size ↓"
	}
}

type scanStreamMsg struct {
	ID int
	Ch <-chan tea.Msg
}

type scanRowMsg struct {
	ID    int
	Entry Entry
}

type scanProgressMsg struct {
	ID      int
	Visited int
	Found   int
}

type scanFinishedMsg struct {
	ID      int
	Entries []Entry
	Errors  []ScanError
	Err     error
	Elapsed time.Duration
}

type scanPulseMsg struct{}

type deleteResultMsg struct {
	Path string
	Err  error
}

type keyMap struct {
	Toggle    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	Commit    key.Binding
	Rescan    key.Binding
	Sort      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("space"),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Clear: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "clear selection"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter", "D"),
			key.WithHelp("enter/D", "delete selected"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.SelectAll, k.Commit, k.Sort, k.Rescan, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.SelectAll, k.Clear, k.Commit},
		{k.Sort, k.Rescan, k.Help, k.Quit},
	}
}

type modelConfig struct {
	ConfirmDeletes bool
	MinSize        int64
	OutputCSV      string
	Log            zerolog.Logger
}

type model struct {
	table        table.Model
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	confirmInput textinput.Model

	cfg      modelConfig
	store    *Store
	rows     []Entry
	session  *Session
	deleted  map[string]struct{}
	failures map[string]string
	sizeBy   map[string]int64

	loading   bool
	fromCSV   bool
	err       error
	scanErrs  []ScanError
	lastScan  time.Duration
	lastEvent string
	sortMode  sortMode
	width     int
	height    int

	scanOpts     ScanOptions
	scanID       int
	baseCtx      context.Context
	baseCancel   context.CancelFunc
	scanCtx      context.Context
	scanCancel   context.CancelFunc
	scanStream   <-chan tea.Msg
	scanVisited  int
	scanFound    int
	scanStart    time.Time
	scanPulse    float64
	scanPulseDir float64
	scanProgress progress.Model

	deleting       bool
	deleteQueue    []string
	deleteDone     int
	deleteProgress progress.Model
	report         DeletionReport
}

type styles struct {
	base      lipgloss.Style
	header    lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	status    lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	danger    lipgloss.Style
	warning   lipgloss.Style
	confirm   lipgloss.Style
	chip      lipgloss.Style
	container lipgloss.Style
}

var ui = styles{
	base: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")),
	container: lipgloss.NewStyle().Padding(0, 1),
	header:    lipgloss.NewStyle().Padding(0, 1),
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	status:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")).Bold(true).Padding(0, 1),
	chip:      lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
}

func newModel(ctx context.Context, opts ScanOptions, cfg modelConfig) model {
	m := baseModel(ctx, cfg)
	m.scanOpts = opts
	m.loading = true
	return m
}

// newModelFromEntries builds a model over a pre-loaded entry set (CSV input
// path); there is nothing to scan and rescan is unavailable.
func newModelFromEntries(ctx context.Context, entries []Entry, cfg modelConfig) model {
	m := baseModel(ctx, cfg)
	m.fromCSV = true
	m.ingest(entries, nil)
	m.lastEvent = fmt.Sprintf("Loaded %d item(s) from CSV", len(m.rows))
	return m
}

func baseModel(ctx context.Context, cfg modelConfig) model {
	baseCtx, baseCancel := context.WithCancel(ctx)
	scanCtx, scanCancel := context.WithCancel(baseCtx)

	columns := []table.Column{
		{Title: "Path", Width: 52},
		{Title: "Size", Width: 10},
		{Title: "Files", Width: 10},
		{Title: "Kind", Width: 8},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(ts)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	ti := textinput.New()
	ti.Placeholder = "yes"
	ti.Prompt = "> "
	ti.CharLimit = 16
	ti.Width = 16

	return model{
		table:          t,
		spinner:        sp,
		help:           help.New(),
		keys:           newKeyMap(),
		confirmInput:   ti,
		cfg:            cfg,
		store:          NewStore(nil),
		session:        NewSession(NewStore(nil)),
		deleted:        map[string]struct{}{},
		failures:       map[string]string{},
		sizeBy:         map[string]int64{},
		sortMode:       sortBySizeDesc,
		scanID:         1,
		baseCtx:        baseCtx,
		baseCancel:     baseCancel,
		scanCtx:        scanCtx,
		scanCancel:     scanCancel,
		scanStart:      time.Now(),
		scanPulseDir:   1,
		scanProgress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		deleteProgress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m model) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return tea.Batch(m.spinner.Tick, scanStartCmd(m.scanCtx, m.scanOpts, m.scanID), scanPulseCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateLayout(msg.Width, msg.Height)
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	case progress.FrameMsg:
		updated, cmd := m.deleteProgress.Update(msg)
		if next, ok := updated.(progress.Model); ok {
			m.deleteProgress = next
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	case scanStreamMsg:
		if msg.ID != m.scanID {
			break
		}
		m.scanStream = msg.Ch
		cmds = append(cmds, waitScanMsg(msg.Ch))
	case scanRowMsg:
		if msg.ID != m.scanID {
			break
		}
		m.rows = append(m.rows, msg.Entry)
		m.setTableRows()
		m.lastEvent = fmt.Sprintf("Found %s", msg.Entry.Path)
		if m.scanStream != nil {
			cmds = append(cmds, waitScanMsg(m.scanStream))
		}
	case scanProgressMsg:
		if msg.ID != m.scanID {
			break
		}
		m.scanVisited = msg.Visited
		m.scanFound = msg.Found
		if m.scanStream != nil {
			cmds = append(cmds, waitScanMsg(m.scanStream))
		}
	case scanFinishedMsg:
		if msg.ID != m.scanID {
			break
		}
		m.finishScan(msg)
	case scanPulseMsg:
		if m.loading {
			m.scanPulse += 0.06 * m.scanPulseDir
			if m.scanPulse >= 1 {
				m.scanPulse = 1
				m.scanPulseDir = -1
			} else if m.scanPulse <= 0 {
				m.scanPulse = 0
				m.scanPulseDir = 1
			}
			cmds = append(cmds, scanPulseCmd())
		}
	case deleteResultMsg:
		if cmd := m.applyDeleteResult(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.setTableRows()
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg)...)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	if m.session.State() == StateConfirmingDeletion {
		switch msg.String() {
		case "enter":
			value := m.confirmInput.Value()
			m.confirmInput.Blur()
			if isAffirmative(value) {
				if err := m.session.Confirm(); err == nil {
					if cmd := m.startDelete(); cmd != nil {
						cmds = append(cmds, cmd)
					}
				}
			} else {
				_ = m.session.Decline()
				m.lastEvent = "Deletion cancelled"
			}
		case "esc", "ctrl+c":
			_ = m.session.Decline()
			m.confirmInput.Blur()
			m.lastEvent = "Deletion cancelled"
		default:
			var cmd tea.Cmd
			m.confirmInput, cmd = m.confirmInput.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.setTableRows()
		return cmds
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.State() == StateBrowsing {
			_ = m.session.Quit()
		}
		if m.baseCancel != nil {
			m.baseCancel()
		}
		cmds = append(cmds, tea.Quit)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Rescan):
		if m.fromCSV {
			m.lastEvent = "Entries came from a CSV file; nothing to rescan"
			break
		}
		if m.loading || m.deleting {
			break
		}
		cmds = append(cmds, m.startScan()...)
	case key.Matches(msg, m.keys.Sort):
		m.sortMode = nextSortMode(m.sortMode)
		m.sortRows()
		m.lastEvent = fmt.Sprintf("Sorted by %s", m.sortMode.String())
	case key.Matches(msg, m.keys.Toggle):
		m.toggleCurrent()
	case key.Matches(msg, m.keys.SelectAll):
		m.session.SelectAll()
		m.lastEvent = fmt.Sprintf("Selected %d item(s)", m.session.SelectionCount())
		m.setTableRows()
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
		m.lastEvent = "Selection cleared"
		m.setTableRows()
	case key.Matches(msg, m.keys.Commit):
		cmds = append(cmds, m.commitSelection()...)
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return cmds
}

func (m *model) toggleCurrent() {
	if len(m.rows) == 0 {
		return
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return
	}
	path := m.rows[idx].Path
	if err := m.session.Toggle(path); err != nil {
		m.lastEvent = err.Error()
		return
	}
	if m.session.Selected(path) {
		m.lastEvent = "Added to selection"
	} else {
		m.lastEvent = "Removed from selection"
	}
	m.setTableRows()
}

func (m *model) commitSelection() []tea.Cmd {
	if m.loading || m.deleting {
		return nil
	}
	if err := m.session.Commit(); err != nil {
		m.lastEvent = err.Error()
		return nil
	}
	if !m.cfg.ConfirmDeletes {
		_ = m.session.Confirm()
		if cmd := m.startDelete(); cmd != nil {
			return []tea.Cmd{cmd}
		}
		return nil
	}
	m.confirmInput.SetValue("")
	return []tea.Cmd{m.confirmInput.Focus()}
}

func (m *model) startDelete() tea.Cmd {
	paths := m.session.SelectedPaths()
	if len(paths) == 0 || m.deleting {
		return nil
	}
	m.deleting = true
	m.deleteQueue = paths
	m.deleteDone = 0
	m.report = DeletionReport{}
	m.lastEvent = fmt.Sprintf("Deleting %d item(s)…", len(paths))
	return tea.Batch(m.deleteProgress.SetPercent(0), deleteCmd(paths[0]))
}

func (m *model) applyDeleteResult(msg deleteResultMsg) tea.Cmd {
	size := m.sizeBy[msg.Path]
	m.report.record(msg.Path, size, msg.Err)
	if msg.Err != nil {
		m.failures[msg.Path] = msg.Err.Error()
		m.cfg.Log.Warn().Str("path", msg.Path).Str("reason", msg.Err.Error()).Msg("delete failed")
	} else {
		m.deleted[msg.Path] = struct{}{}
		delete(m.failures, msg.Path)
		m.cfg.Log.Info().Str("path", msg.Path).Int64("size", size).Msg("deleted")
	}

	if !m.deleting {
		return nil
	}
	m.deleteDone++
	percent := 1.0
	if len(m.deleteQueue) > 0 {
		percent = float64(m.deleteDone) / float64(len(m.deleteQueue))
	}
	progressCmd := m.deleteProgress.SetPercent(percent)
	if m.deleteDone < len(m.deleteQueue) {
		return tea.Batch(progressCmd, deleteCmd(m.deleteQueue[m.deleteDone]))
	}

	m.deleting = false
	m.deleteQueue = nil
	_ = m.session.FinishDeletion()
	m.lastEvent = m.report.Summary()
	// A completed batch is terminal; browsing resumes on a fresh session
	// over whatever survived.
	m.session = NewSession(m.currentView())
	m.sortRows()
	return progressCmd
}

// currentView is the live selection view: min-size filter applied and
// already-deleted entries dropped.
func (m *model) currentView() *Store {
	kept := make([]Entry, 0, m.store.Len())
	for _, e := range m.store.MinSize(m.cfg.MinSize).Entries() {
		if _, gone := m.deleted[e.Path]; gone {
			continue
		}
		kept = append(kept, e)
	}
	return NewStore(kept)
}

func (m *model) ingest(entries []Entry, scanErrs []ScanError) {
	m.store = NewStore(entries)
	m.scanErrs = scanErrs
	m.deleted = map[string]struct{}{}
	m.failures = map[string]string{}
	m.sizeBy = make(map[string]int64, len(entries))
	for _, e := range entries {
		m.sizeBy[e.Path] = e.SizeBytes
	}
	view := m.currentView()
	m.session = NewSession(view)
	m.rows = view.Entries()
	m.sortRows()
}

func (m *model) finishScan(msg scanFinishedMsg) {
	m.loading = false
	m.err = msg.Err
	m.lastScan = msg.Elapsed
	m.scanStream = nil
	if msg.Err != nil {
		m.lastEvent = fmt.Sprintf("Scan failed: %v", msg.Err)
		return
	}
	m.ingest(msg.Entries, msg.Errors)
	for _, se := range msg.Errors {
		m.cfg.Log.Warn().Str("path", se.Path).Str("cause", se.Cause).Msg("scan warning")
	}
	m.lastEvent = fmt.Sprintf("Scan complete: %d item(s)", len(m.rows))
	if m.cfg.OutputCSV != "" {
		if err := writeCSVFile(m.cfg.OutputCSV, msg.Entries); err != nil {
			m.lastEvent = fmt.Sprintf("CSV save failed: %v", err)
			m.cfg.Log.Error().Err(err).Msg("csv save failed")
		} else {
			m.lastEvent = fmt.Sprintf("Scan complete: %d item(s) · saved to %s", len(m.rows), m.cfg.OutputCSV)
		}
	}
}

func (m *model) startScan() []tea.Cmd {
	if m.scanCancel != nil {
		m.scanCancel()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.scanCtx = ctx
	m.scanCancel = cancel
	m.scanID++
	m.loading = true
	m.err = nil
	m.scanErrs = nil
	m.rows = nil
	m.store = NewStore(nil)
	m.session = NewSession(NewStore(nil))
	m.deleted = map[string]struct{}{}
	m.failures = map[string]string{}
	m.sizeBy = map[string]int64{}
	m.scanVisited = 0
	m.scanFound = 0
	m.lastScan = 0
	m.scanStart = time.Now()
	m.scanPulse = 0
	m.scanPulseDir = 1
	m.lastEvent = "Scanning…"
	m.setTableRows()

	return []tea.Cmd{m.spinner.Tick, scanStartCmd(ctx, m.scanOpts, m.scanID), scanPulseCmd()}
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	content := ui.base.Render(m.table.View())
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		content,
		m.statusView(),
		m.footerView(),
	)
	return ui.container.Render(view)
}

func (m *model) updateLayout(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	if width < 60 {
		width = 60
	}
	if height < 12 {
		height = 12
	}
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	sizeWidth := 10
	filesWidth := 10
	kindWidth := 8
	statusWidth := 10
	pathWidth := max(width-sizeWidth-filesWidth-kindWidth-statusWidth-12, 20)

	m.table.SetColumns([]table.Column{
		{Title: "Path", Width: pathWidth},
		{Title: "Size", Width: sizeWidth},
		{Title: "Files", Width: filesWidth},
		{Title: "Kind", Width: kindWidth},
		{Title: "Status", Width: statusWidth},
	})

	headerHeight := lipgloss.Height(m.headerView())
	statusHeight := lipgloss.Height(m.statusView())
	footerHeight := lipgloss.Height(m.footerView())
	available := max(height-headerHeight-statusHeight-footerHeight-4, 5)
	m.table.SetHeight(available)
	m.table.SetWidth(width - 4)
	progressWidth := max(width-28, 20)
	m.scanProgress.Width = progressWidth
	m.deleteProgress.Width = progressWidth
}

func (m model) headerView() string {
	title := ui.title.Render("reclaim")
	subtitle := ui.subtitle.Render("Find and delete reclaimable directories")
	source := ui.muted.Render(fmt.Sprintf("Root: %s", m.scanOpts.Root))
	if m.fromCSV {
		source = ui.muted.Render("Source: CSV")
	}
	line := lipgloss.JoinHorizontal(lipgloss.Left, title, " ",
		ui.chip.Render(fmt.Sprintf("targets: %d", len(m.scanOpts.Targets))))
	return ui.header.Render(lipgloss.JoinVertical(lipgloss.Left, line,
		lipgloss.JoinHorizontal(lipgloss.Left, subtitle, " · ", source)))
}

func (m model) statusView() string {
	if m.loading {
		elapsed := time.Since(m.scanStart).Truncate(100 * time.Millisecond)
		line := fmt.Sprintf("%s Scanning… visited %d · found %d · %s",
			m.spinner.View(), m.scanVisited, m.scanFound, elapsed)
		bar := m.scanProgress.ViewAs(m.scanPulse)
		return lipgloss.JoinVertical(lipgloss.Left, ui.status.Render(line), ui.muted.Render(bar))
	}

	reclaimable, tempCount := m.reclaimableStats()
	parts := []string{
		fmt.Sprintf("Items: %d", len(m.rows)),
		fmt.Sprintf("Temp: %d", tempCount),
		fmt.Sprintf("Reclaimable: %s", formatSize(reclaimable)),
		fmt.Sprintf("Selected: %d (%s)", m.session.SelectionCount(), formatSize(m.session.SelectedBytes())),
		fmt.Sprintf("Sort: %s", m.sortMode.String()),
	}
	if m.lastScan > 0 {
		parts = append(parts, fmt.Sprintf("Scan: %s", m.lastScan.Truncate(10*time.Millisecond)))
	}
	if len(m.scanErrs) > 0 {
		parts = append(parts, ui.warning.Render(fmt.Sprintf("Warnings: %d", len(m.scanErrs))))
	}
	status := strings.Join(parts, " · ")
	if m.err != nil {
		status = ui.danger.Render(fmt.Sprintf("Error: %v", m.err))
	}
	lines := []string{ui.status.Render(status)}
	if m.deleting {
		lines = append(lines,
			ui.muted.Render(fmt.Sprintf("Deleting %d/%d", m.deleteDone, len(m.deleteQueue))),
			ui.muted.Render(m.deleteProgress.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) footerView() string {
	if m.session.State() == StateConfirmingDeletion {
		label := fmt.Sprintf("Delete %d item(s), %s total? Type 'yes' to confirm, esc to cancel.",
			m.session.SelectionCount(), formatSize(m.session.SelectedBytes()))
		return lipgloss.JoinVertical(lipgloss.Left,
			ui.confirm.Render(label),
			m.confirmInput.View())
	}
	if m.lastEvent != "" {
		return lipgloss.JoinVertical(lipgloss.Left, ui.muted.Render(m.lastEvent), m.help.View(m.keys))
	}
	return m.help.View(m.keys)
}

func (m model) reclaimableStats() (int64, int) {
	var total int64
	count := 0
	for _, e := range m.rows {
		if e.Kind != KindTemporary {
			continue
		}
		if _, gone := m.deleted[e.Path]; gone {
			continue
		}
		total += e.SizeBytes
		count++
	}
	return total, count
}

func (m *model) setTableRows() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		status := "ready"
		if _, failed := m.failures[e.Path]; failed {
			status = ui.danger.Render("error")
		} else if _, gone := m.deleted[e.Path]; gone {
			status = ui.muted.Render("deleted")
		} else if m.session.Selected(e.Path) {
			status = ui.accent.Render("selected")
		}
		rows = append(rows, table.Row{
			e.Path,
			formatSize(e.SizeBytes),
			formatCount(e.FileCount),
			e.Kind.String(),
			status,
		})
	}
	m.table.SetRows(rows)
}

func (m *model) sortRows() {
	sort.SliceStable(m.rows, func(i, j int) bool {
		left, right := m.rows[i], m.rows[j]
		_, leftGone := m.deleted[left.Path]
		_, rightGone := m.deleted[right.Path]
		if leftGone != rightGone {
			return !leftGone
		}
		switch m.sortMode {
		case sortBySizeAsc:
			if left.SizeBytes != right.SizeBytes {
				return left.SizeBytes < right.SizeBytes
			}
		case sortByPathAsc:
		default:
			if left.SizeBytes != right.SizeBytes {
				return left.SizeBytes > right.SizeBytes
			}
		}
		return left.Path < right.Path
	})
	m.setTableRows()
}

func nextSortMode(current sortMode) sortMode {
	switch current {
	case sortBySizeDesc:
		return sortBySizeAsc
	case sortBySizeAsc:
		return sortByPathAsc
	default:
		return sortBySizeDesc
	}
}

func scanStartCmd(ctx context.Context, opts ScanOptions, id int) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tea.Msg)
		go runScanStream(ctx, opts, id, ch)
		return scanStreamMsg{ID: id, Ch: ch}
	}
}

func waitScanMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func deleteCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return deleteResultMsg{Path: path, Err: removePath(path)}
	}
}

func scanPulseCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return scanPulseMsg{}
	})
}
