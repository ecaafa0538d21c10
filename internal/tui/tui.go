// Package tui provides the interactive Bubble Tea editor for cropping and
// trimming a clip. Mouse cells are mapped onto a virtual pixel surface so the
// same gesture engine drives both the preview pane and the timeline track.
package tui

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/framecut/framecut/internal/config"
	"github.com/framecut/framecut/internal/editor"
	"github.com/framecut/framecut/internal/export"
	"github.com/framecut/framecut/internal/geometry"
	"github.com/framecut/framecut/internal/media"
	"github.com/framecut/framecut/internal/player"
	"github.com/framecut/framecut/internal/state"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	frameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	cropStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	focusedHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("214")).
				Bold(true)

	selectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	playheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")).
		Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Display geometry ─────────────────

// Terminal cells are not square. Each cell covers an 8x16 patch of the
// virtual display surface so pixel distances (hit radii, drag deltas) behave
// roughly isotropically on screen.
const (
	cellPxW = 8.0
	cellPxH = 16.0
)

// tickInterval drives playhead updates while the clock runs.
const tickInterval = 100 * time.Millisecond

// ── Messages ─────────────────

type tickMsg time.Time

type exportEventMsg struct {
	ev export.Event
	ok bool // false once the job channel closed
}

type fileChangedMsg struct{}

type reprobeMsg struct {
	info media.Info
	err  error
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the editor.
type Model struct {
	cfg    config.Config
	logger zerolog.Logger

	sess  *editor.Session
	clock *player.Clock
	sync  *editor.Synchronizer

	inputPath  string
	outputPath string
	filename   string

	// changes delivers debounce-free notifications from the file watcher;
	// each one triggers a re-probe of the input.
	changes <-chan struct{}
	probe   func() (media.Info, error)

	width    int
	height   int
	previewH int
	ready    bool

	focus editor.TrimHandle

	runner    *export.Runner
	job       *export.Job
	exporting bool
	exportBar progress.Model

	showLog  bool
	logView  viewport.Model
	logLines []string

	// store persists the edit for resume; nil disables persistence.
	store state.Store

	status    string
	statusErr bool
}

// New builds the editor model. probe is invoked again whenever the watcher
// reports a change to the input file; pass nil to disable re-probing.
func New(cfg config.Config, logger zerolog.Logger, info media.Info, outputPath string, changes <-chan struct{}, probe func() (media.Info, error), store state.Store) Model {
	clock := player.NewClock(info.Duration)
	sess := editor.NewSession(cfg.Editor(), nil, clock)
	sess.LoadMetadata(float64(info.Width), float64(info.Height), info.Duration)

	m := Model{
		cfg:        cfg,
		logger:     logger,
		sess:       sess,
		clock:      clock,
		sync:       editor.NewSynchronizer(clock),
		inputPath:  info.Path,
		outputPath: outputPath,
		filename:   filepath.Base(info.Path),
		changes:    changes,
		probe:      probe,
		focus:      editor.TrimNone,
		runner:     &export.Runner{FFmpegPath: cfg.FFmpegPath, Logger: logger},
		exportBar:  progress.New(progress.WithDefaultGradient()),
		store:      store,
	}
	m.restoreEdit()
	return m
}

// restoreEdit reapplies a previously saved crop and trim, if one exists and
// still validates against the current media. Stale state (the file was
// re-encoded to different dimensions or length) is silently discarded.
func (m *Model) restoreEdit() {
	if m.store == nil {
		return
	}
	prev, err := m.store.Load(m.inputPath)
	if err != nil {
		return
	}
	crop := geometry.Rect{X: prev.CropX, Y: prev.CropY, Width: prev.CropWidth, Height: prev.CropHeight}
	origCrop := m.sess.Crop()
	if err := m.sess.SetCrop(crop); err != nil {
		return
	}
	if err := m.sess.SetSelection(prev.Start, prev.End); err != nil {
		// All or nothing: a stale selection rolls the crop back too.
		m.sess.SetCrop(origCrop)
		return
	}
	m.status = "restored previous edit"
}

func (m Model) saveEdit() {
	if m.store == nil || !m.sess.Ready() {
		return
	}
	crop := m.sess.Crop()
	sel := m.sess.Selection()
	err := m.store.Save(&state.State{
		Input:      m.inputPath,
		CropX:      crop.X,
		CropY:      crop.Y,
		CropWidth:  crop.Width,
		CropHeight: crop.Height,
		Start:      sel.Start,
		End:        sel.End,
		SavedAt:    time.Now().UTC(),
	})
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not save edit state")
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitChange())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m Model) waitExport() tea.Cmd {
	job := m.job
	return func() tea.Msg {
		ev, ok := <-job.Events
		return exportEventMsg{ev: ev, ok: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tickMsg:
		if m.clock.Playing() {
			m.sess.HandleTimeUpdate(m.clock.Position())
		}
		return m, tick()

	case exportEventMsg:
		return m.handleExportEvent(msg)

	case fileChangedMsg:
		if m.probe == nil {
			return m, m.waitChange()
		}
		m.logger.Info().Str("path", m.inputPath).Msg("input changed on disk, re-probing")
		probe := m.probe
		cmd := func() tea.Msg {
			info, err := probe()
			return reprobeMsg{info: info, err: err}
		}
		return m, tea.Batch(cmd, m.waitChange())

	case reprobeMsg:
		m.handleReprobe(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.showLog {
		switch key {
		case "q", "ctrl+c":
			return m.quit()
		case "l", "esc":
			m.showLog = false
			return m, nil
		}
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return m.quit()
	case "tab":
		m.focus = nextFocus(m.focus)
	case "shift+tab":
		m.focus = prevFocus(m.focus)
	case " ":
		m.sess.TogglePlay()
	case "m":
		m.clock.SetMuted(!m.clock.Muted())
	case "l":
		m.showLog = true
		m.refreshLogView()
	case "e":
		return m.startExport()
	case "left", "right", "shift+left", "shift+right", "alt+left", "alt+right":
		if m.focus == editor.TrimNone {
			m.status = "press tab to focus a trim handle first"
			m.statusErr = false
			break
		}
		dir := 1
		if strings.HasSuffix(key, "left") {
			dir = -1
		}
		alt := strings.HasPrefix(key, "alt+")
		shift := strings.HasPrefix(key, "shift+")
		m.sess.Nudge(m.focus, dir, editor.NudgeStep(alt, shift))
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if msg.Y == m.timelineRow() {
			h := m.sess.TrackPress(m.displayPoint(msg.X, msg.Y), m.trackOrigin(), m.trackWidth())
			if h != editor.TrimNone {
				m.focus = h
			}
			return
		}
		if msg.Y >= 1 && msg.Y < 1+m.previewH {
			m.sess.BeginCropDrag(m.displayPoint(msg.X, msg.Y))
		}
	case tea.MouseActionMotion:
		m.sess.Surface().Move(m.displayPoint(msg.X, msg.Y))
	case tea.MouseActionRelease:
		m.sess.Surface().Up()
	}
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting {
		m.status = "export already running"
		m.statusErr = false
		return m, nil
	}
	req, err := m.sess.BuildExport(m.inputPath, m.outputPath)
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return m, nil
	}
	job, err := m.runner.Start(context.Background(), req)
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return m, nil
	}
	m.logger.Info().Str("job", job.ID).Str("out", req.OutputPath).Msg("export started")
	m.job = job
	m.exporting = true
	m.logLines = m.logLines[:0]
	m.status = "exporting " + filepath.Base(req.OutputPath)
	m.statusErr = false
	return m, m.waitExport()
}

func (m Model) handleExportEvent(msg exportEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.job = nil
		m.exporting = false
		return m, nil
	}
	switch msg.ev.Kind {
	case export.EventProgress:
		m.logLines = append(m.logLines, msg.ev.Line)
		if m.showLog {
			m.refreshLogView()
		}
		return m, m.waitExport()
	case export.EventDone:
		m.exporting = false
		m.job = nil
		if msg.ev.Err != nil {
			m.status = "export failed: " + msg.ev.Err.Error()
			m.statusErr = true
			m.logger.Error().Err(msg.ev.Err).Msg("export failed")
		} else {
			m.status = "export complete: " + m.outputPath
			m.statusErr = false
			m.logger.Info().Str("out", m.outputPath).Msg("export complete")
		}
		return m, nil
	}
	return m, m.waitExport()
}

func (m *Model) handleReprobe(msg reprobeMsg) {
	if msg.err != nil || !msg.info.Valid() {
		m.sess.ResetForMediaFailure()
		m.clock.SetDuration(0)
		m.status = "input no longer readable"
		m.statusErr = true
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("re-probe failed")
		}
		return
	}
	m.sess.ResetForNewMedia()
	m.clock.SetDuration(msg.info.Duration)
	m.sess.LoadMetadata(float64(msg.info.Width), float64(msg.info.Height), msg.info.Duration)
	m.status = "input reloaded"
	m.statusErr = false
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.saveEdit()
	m.sync.Close()
	m.sess.Close()
	return m, tea.Quit
}

// ── Layout ───────────────────

// layout recomputes the preview pane height and pushes the resulting virtual
// viewport into the session so the crop mapper tracks the terminal size.
func (m *Model) layout() {
	// title(1) + timeline(1) + info(1) + statusBar(1) = 4 fixed rows
	m.previewH = m.height - 4
	if m.previewH < 1 {
		m.previewH = 1
	}
	m.sess.SetViewport(geometry.Size{
		Width:  float64(m.width) * cellPxW,
		Height: float64(m.previewH) * cellPxH,
	})
	m.logView = viewport.New(m.width, m.previewH)
	m.refreshLogView()
	m.exportBar.Width = m.width - 30
	if m.exportBar.Width < 10 {
		m.exportBar.Width = 10
	}
}

func (m *Model) refreshLogView() {
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

func (m Model) timelineRow() int { return 1 + m.previewH }

// displayPoint maps a terminal cell to the centre of its patch on the
// virtual display surface. Y is relative to the top of the preview pane,
// which is also the origin of the session viewport.
func (m Model) displayPoint(x, y int) geometry.Point {
	return geometry.Point{
		X: (float64(x) + 0.5) * cellPxW,
		Y: (float64(y-1) + 0.5) * cellPxH,
	}
}

// The track spans the full width minus a one cell margin on each side.
func (m Model) trackOrigin() geometry.Point {
	return geometry.Point{X: cellPxW, Y: float64(m.timelineRow()-1) * cellPxH}
}

func (m Model) trackWidth() float64 {
	w := float64(m.width-2) * cellPxW
	if w < cellPxW {
		w = cellPxW
	}
	return w
}

func nextFocus(h editor.TrimHandle) editor.TrimHandle {
	switch h {
	case editor.TrimNone:
		return editor.TrimStart
	case editor.TrimStart:
		return editor.TrimEnd
	default:
		return editor.TrimNone
	}
}

func prevFocus(h editor.TrimHandle) editor.TrimHandle {
	switch h {
	case editor.TrimNone:
		return editor.TrimEnd
	case editor.TrimEnd:
		return editor.TrimStart
	default:
		return editor.TrimNone
	}
}

// ── View ─────────────────────

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  framecut  " + m.filename)

	var body string
	if m.showLog {
		body = m.logView.View()
	} else {
		body = m.renderPreview()
	}

	timeline := m.renderTimeline()
	info := m.renderInfo()

	hint := "  drag corners/edges crop  drag track trim  space play  m mute  tab focus  ←/→ nudge (alt fine, shift coarse)  e export  l log  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, timeline, info, statusBar)
}

// renderPreview draws the media frame and the crop rectangle as box glyphs.
// Cell coordinates come from the same mapper the mouse path uses, so what is
// drawn and what is hit-tested always agree.
func (m Model) renderPreview() string {
	rows := make([][]rune, m.previewH)
	for i := range rows {
		rows[i] = blankRow(m.width)
	}
	// Per cell style layer: 0 none, 1 frame, 2 crop, 3 handle.
	layers := make([][]byte, m.previewH)
	for i := range layers {
		layers[i] = make([]byte, m.width)
	}

	if m.sess.Ready() {
		mapper := m.sess.Mapper()
		frame := mapper.RectToDisplay(geometry.Rect{Width: m.sess.MediaSize().Width, Height: m.sess.MediaSize().Height})
		drawRect(rows, layers, m.cellRect(frame), '·', 1)
		drawBox(rows, layers, m.cellRect(m.sess.DisplayCrop()), 2)
	} else {
		msg := "no media loaded"
		x := (m.width - len(msg)) / 2
		y := m.previewH / 2
		if y >= 0 && y < m.previewH && x >= 0 {
			copy(rows[y][x:], []rune(msg))
			for i := 0; i < len(msg) && x+i < m.width; i++ {
				layers[y][x+i] = 1
			}
		}
	}

	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(styleRow(row, layers[i]))
	}
	return sb.String()
}

type cellRect struct{ x0, y0, x1, y1 int }

// cellRect converts a display-pixel rect to inclusive cell bounds.
func (m Model) cellRect(r geometry.Rect) cellRect {
	cr := cellRect{
		x0: int(math.Floor(r.X / cellPxW)),
		y0: int(math.Floor(r.Y / cellPxH)),
		x1: int(math.Ceil((r.X+r.Width)/cellPxW)) - 1,
		y1: int(math.Ceil((r.Y+r.Height)/cellPxH)) - 1,
	}
	if cr.x0 < 0 {
		cr.x0 = 0
	}
	if cr.y0 < 0 {
		cr.y0 = 0
	}
	if cr.x1 >= m.width {
		cr.x1 = m.width - 1
	}
	if cr.y1 >= m.previewH {
		cr.y1 = m.previewH - 1
	}
	return cr
}

func blankRow(w int) []rune {
	row := make([]rune, w)
	for i := range row {
		row[i] = ' '
	}
	return row
}

func drawRect(rows [][]rune, layers [][]byte, r cellRect, fill rune, layer byte) {
	for y := r.y0; y <= r.y1 && y < len(rows); y++ {
		if y < 0 {
			continue
		}
		for x := r.x0; x <= r.x1 && x < len(rows[y]); x++ {
			if x < 0 {
				continue
			}
			rows[y][x] = fill
			layers[y][x] = layer
		}
	}
}

func drawBox(rows [][]rune, layers [][]byte, r cellRect, layer byte) {
	if r.x1 < r.x0 || r.y1 < r.y0 {
		return
	}
	set := func(x, y int, ch rune, l byte) {
		if y < 0 || y >= len(rows) || x < 0 || x >= len(rows[y]) {
			return
		}
		rows[y][x] = ch
		layers[y][x] = l
	}
	for x := r.x0 + 1; x < r.x1; x++ {
		set(x, r.y0, '─', layer)
		set(x, r.y1, '─', layer)
	}
	for y := r.y0 + 1; y < r.y1; y++ {
		set(r.x0, y, '│', layer)
		set(r.x1, y, '│', layer)
	}
	// Corner handles drawn last so they win over the edges.
	set(r.x0, r.y0, '◤', 3)
	set(r.x1, r.y0, '◥', 3)
	set(r.x0, r.y1, '◣', 3)
	set(r.x1, r.y1, '◢', 3)
}

// styleRow renders one preview row, batching runs of equal layer into a
// single styled segment.
func styleRow(row []rune, layers []byte) string {
	var sb strings.Builder
	i := 0
	for i < len(row) {
		j := i
		for j < len(row) && layers[j] == layers[i] {
			j++
		}
		seg := string(row[i:j])
		switch layers[i] {
		case 1:
			sb.WriteString(frameStyle.Render(seg))
		case 2:
			sb.WriteString(cropStyle.Render(seg))
		case 3:
			sb.WriteString(handleStyle.Render(seg))
		default:
			sb.WriteString(seg)
		}
		i = j
	}
	return sb.String()
}

// renderTimeline draws the trim track: selection span, trim handles and the
// playhead, on the same cell grid the mouse press path resolves against.
func (m Model) renderTimeline() string {
	n := m.width - 2
	if n < 1 || !m.sess.Ready() || m.sess.Duration() <= 0 {
		return dimStyle.Render(strings.Repeat(" ", m.width))
	}
	dur := m.sess.Duration()
	sel := m.sess.Selection()
	toCell := func(t float64) int {
		c := int(math.Round(t / dur * float64(n-1)))
		if c < 0 {
			c = 0
		}
		if c >= n {
			c = n - 1
		}
		return c
	}
	startCell := toCell(sel.Start)
	endCell := toCell(sel.End)
	headCell := toCell(m.clock.Position())

	cells := make([]string, n)
	for i := range cells {
		switch {
		case i == headCell:
			cells[i] = playheadStyle.Render("┃")
		case i == startCell:
			cells[i] = m.handleGlyph(editor.TrimStart, "▐")
		case i == endCell:
			cells[i] = m.handleGlyph(editor.TrimEnd, "▌")
		case i > startCell && i < endCell:
			cells[i] = selectionStyle.Render("━")
		default:
			cells[i] = dimStyle.Render("─")
		}
	}
	return " " + strings.Join(cells, "") + " "
}

func (m Model) handleGlyph(h editor.TrimHandle, glyph string) string {
	if m.focus == h && m.sess.TrimDragging() == editor.TrimNone {
		return focusedHandleStyle.Render(glyph)
	}
	if m.sess.TrimDragging() == h {
		return focusedHandleStyle.Render(glyph)
	}
	return handleStyle.Render(glyph)
}

func (m Model) renderInfo() string {
	if m.exporting {
		frac := m.exportFraction()
		line := labelStyle.Render("  export ") + m.exportBar.ViewAs(frac)
		return line
	}

	if !m.sess.Ready() {
		return m.statusLine(dimStyle.Render("  waiting for readable media"))
	}

	crop := m.sess.Crop()
	sel := m.sess.Selection()
	ps := m.sync.State()

	play := dimStyle.Render("paused")
	if ps.Playing {
		play = okStyle.Render("playing")
	}
	mute := ""
	if ps.Muted {
		mute = dimStyle.Render("  muted")
	}
	line := fmt.Sprintf("  %s %.0fx%.0f@%.0f,%.0f   %s %s – %s   %s %s   %s%s",
		labelStyle.Render("crop"), crop.Width, crop.Height, crop.X, crop.Y,
		labelStyle.Render("trim"), timeStyle.Render(fmtTime(sel.Start)), timeStyle.Render(fmtTime(sel.End)),
		labelStyle.Render("t"), timeStyle.Render(fmtTime(m.clock.Position())),
		play, mute,
	)
	return m.statusLine(line)
}

func (m Model) statusLine(left string) string {
	if m.status == "" {
		return left
	}
	msg := m.status
	if m.statusErr {
		msg = errStyle.Render(msg)
	} else {
		msg = hintStyle.Render(msg)
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(msg) - 2
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + msg
}

// exportFraction estimates encode progress from the last backend line that
// carried a time field, relative to the trimmed span.
func (m Model) exportFraction() float64 {
	sel := m.sess.Selection()
	span := sel.End - sel.Start
	if span <= 0 {
		return 0
	}
	for i := len(m.logLines) - 1; i >= 0; i-- {
		if t, ok := export.ProgressTime(m.logLines[i]); ok {
			frac := t / span
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
			return frac
		}
	}
	return 0
}

func fmtTime(t float64) string {
	mins := int(t) / 60
	secs := t - float64(mins*60)
	return fmt.Sprintf("%02d:%06.3f", mins, secs)
}

// Run starts the editor for a probed input file.
func Run(cfg config.Config, logger zerolog.Logger, info media.Info, outputPath string, changes <-chan struct{}, probe func() (media.Info, error), store state.Store) error {
	p := tea.NewProgram(
		New(cfg, logger, info, outputPath, changes, probe, store),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
