package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.novel/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Novel is the player configuration every session starts from.
	Novel config.Config
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Novel:       config.DefaultConfig(),
	}
}

// SSHServer wraps a Wish SSH server for the novel player.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. A nil store disables recording.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dir := config.UserDir()
		if dir == "" {
			return nil, errors.New("cannot get home directory for the host key")
		}
		hostKeyPath = filepath.Join(dir, "host_key")
	}

	// Ensure host key directory exists
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	rc := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.Novel.UI.FPS,
	}

	logger := s.logger.With("user", sshSession.User())
	model := NewSessionModel(s.config.Novel, s.store, rc, sshSession.User(), logger)
	sshSession.Context().SetValue(sessionModelKey{}, model)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		// A reader who drops the connection mid-story leaves the
		// playthrough open; finish it here.
		if model, ok := sshSession.Context().Value(sessionModelKey{}).(SessionModel); ok {
			model.Close()
		}
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionModelKey struct{}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenPlay
	screenHistory
)

// SessionModel manages the full reading session: menu -> story -> menu,
// with the playthrough history reachable from the menu. This is the
// top-level model used for SSH sessions.
type SessionModel struct {
	cfg      config.Config
	store    *storage.Store
	rc       core.RuntimeConfig
	username string
	logger   *log.Logger

	screen   sessionScreen
	menu     MenuModel
	play     *Model
	history  HistoryModel
	recorder *sessionRecorder
	err      error
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg config.Config, store *storage.Store, rc core.RuntimeConfig, username string, logger *log.Logger) SessionModel {
	m := SessionModel{
		cfg:      cfg,
		store:    store,
		rc:       rc,
		username: username,
		logger:   logger,
		recorder: &sessionRecorder{},
	}
	m.menu = m.newMenu()
	return m
}

func (m *SessionModel) newMenu() MenuModel {
	stories, err := engine.Discover(m.cfg.Assets.Root)
	if err != nil {
		m.err = err
	}
	return NewMenuModel(stories, m.rc)
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.rc.ScreenW = wsm.Width
		m.rc.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenPlay:
		return m.updatePlay(msg)
	case screenHistory:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsHistory():
		m.history = NewHistoryModel(m.store, m.rc.ScreenW, m.rc.ScreenH)
		m.screen = screenHistory
		return m, m.history.Init()

	case m.menu.Selected() != nil:
		if err := m.startStory(*m.menu.Selected()); err != nil {
			m.logger.Error("cannot start story", "err", err)
			m.err = err
			m.menu = m.newMenu()
			return m, nil
		}
		m.err = nil
		m.screen = screenPlay
		return m, m.play.Init()
	}

	return m, cmd
}

// startStory loads the selected story with a recorder attached.
func (m *SessionModel) startStory(info engine.StoryInfo) error {
	cfg := m.cfg
	cfg.Story.Path = info.Path

	var opts []engine.Option
	if m.store != nil && !cfg.Storage.Disabled {
		rec, err := storage.NewRecorder(m.store, info.ID, m.username, m.logger)
		if err != nil {
			m.logger.Warn("playthrough will not be recorded", "err", err)
		} else {
			m.recorder.set(rec)
			opts = append(opts, engine.WithObserver(rec))
		}
	}

	game, err := engine.Load(cfg, m.logger, opts...)
	if err != nil {
		m.closeRecorder()
		return err
	}
	play := NewModel(game, cfg, m.rc, m.logger)
	m.play = &play
	return nil
}

func (m *SessionModel) closeRecorder() {
	if err := m.recorder.close(); err != nil {
		m.logger.Warn("cannot close playthrough", "err", err)
	}
}

// Close finishes the playthrough being recorded, if any. Every copy of the
// model shares the recorder, so closing any copy is enough.
func (m SessionModel) Close() {
	m.closeRecorder()
}

// sessionRecorder holds the recorder of the story being read.
type sessionRecorder struct {
	mu  sync.Mutex
	rec *storage.Recorder
}

func (r *sessionRecorder) set(rec *storage.Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec = rec
}

func (r *sessionRecorder) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec == nil {
		return nil
	}
	err := r.rec.Close()
	r.rec = nil
	return err
}

// updatePlay handles updates while reading.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if play, ok := newModel.(Model); ok {
		m.play = &play
	}

	// Back to menu after the end
	if m.play.BackToMenu() {
		m.closeRecorder()
		m.play = nil
		m.screen = screenMenu
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}

	if m.play.IsQuitting() {
		m.closeRecorder()
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateHistory handles updates on the history screen.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if history, ok := newModel.(HistoryModel); ok {
		m.history = history
	}

	if m.history.IsGoingBack() {
		m.screen = screenMenu
		m.menu = m.newMenu()
		return m, m.menu.Init()
	}
	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenPlay:
		return m.play.View()
	case screenHistory:
		return m.history.View()
	}

	view := m.menu.View()
	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		view = errStyle.Render(truncate(m.err.Error(), m.rc.ScreenW)) + "\n" + view
	}
	return view
}
