package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/config"
	"github.com/llehouerou/vbplayer/internal/display"
	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/keymap"
	"github.com/llehouerou/vbplayer/internal/mediatime"
	"github.com/llehouerou/vbplayer/internal/player"
	"github.com/llehouerou/vbplayer/internal/state"
	"github.com/llehouerou/vbplayer/internal/ui/kittyimg"
	"github.com/llehouerou/vbplayer/internal/ui/playerbar"
)

const (
	seekStep     = 5  // seconds, left/right
	seekStepLong = 30 // seconds, shift+left/right
	markInterval = 5  // seconds between time markers
	maxMarks     = 64
)

// Model is the root application model containing all state.
type Model struct {
	Session     *Session
	Player      player.Interface
	StateMgr    state.Interface
	Keys        *keymap.Resolver
	Popups      PopupManager
	DisplayMode playerbar.DisplayMode
	ExactSeeks  bool
	Resume      bool
	Width       int
	Height      int

	logger     hclog.Logger
	playerSub  *player.Subscription
	surface    *display.Surface
	surfaceSub *display.Subscription
	poster     *kittyimg.Image
	frame      display.Change

	markCh  chan mediatime.Time
	markObs *player.TimeObserver
	marks   []mediatime.Time

	lastMeta  string
	feedErr   string
	notice    string
	historyID int64
	ended     bool // history entry closed
	started   bool // ready once, history entry opened
}

// New creates the model playing sess. stateMgr may be nil.
func New(sess *Session, stateMgr state.Interface, cfg *config.Config, logger hclog.Logger) Model {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	bindings, err := keymap.Remap(keymap.All, cfg.Keys)
	if err != nil {
		logger.Warn(errmsg.Format(errmsg.OpConfig, err), "fallback", "default keys")
		bindings = keymap.All
	}
	keys := keymap.NewResolver(bindings)
	m := Model{
		Session:     sess,
		Player:      sess.Player,
		StateMgr:    stateMgr,
		Keys:        keys,
		Popups:      NewPopupManager(keys),
		DisplayMode: playerbar.ModeExpanded,
		Resume:      cfg.ResumeEnabled() && sess.Feeder == nil,
		logger:      logger.Named("app"),
		playerSub:   sess.Player.Subscribe(),
		markCh:      make(chan mediatime.Time, 16),
	}
	if len(sess.Poster) > 0 && kittyimg.Supported() {
		m.poster = kittyimg.Decode(sess.Poster)
	}
	if s, ok := sess.Player.(Surfacer); ok {
		m.surface = display.NewSurface()
		m.surfaceSub = m.surface.Subscribe()
		s.SetDisplaySurface(m.surface)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WatchPlayerEvents(m.playerSub),
		WatchSurface(m.surfaceSub),
		WatchMarkers(m.markCh),
		WatchFeed(m.Session.FeedDone),
		TickCmd(),
	)
}

// Marks returns the times recorded by the marker observer.
func (m Model) Marks() []mediatime.Time { return m.marks }

// MarkersActive reports whether the marker observer is running.
func (m Model) MarkersActive() bool { return m.markObs != nil }

// Notice returns the last one-line status message.
func (m Model) Notice() string { return m.notice }

func (m Model) attached() bool {
	s, ok := m.Player.(Surfacer)
	return ok && s.DisplaySurface() != nil
}
