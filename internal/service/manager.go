package service

import (
	"context"
	"errors"

	"fishsense/internal/device"
	"fishsense/internal/logger"
	"fishsense/internal/model"
	"fishsense/internal/service/capture"
	"fishsense/internal/service/remote"
	"fishsense/internal/service/storage"
	"fishsense/internal/service/view"
	"fishsense/internal/service/websocket"
)

const (
	AlertSyncTitle     = "Sync"
	AlertRegisterTitle = "Remote Database"
)

// ErrCaptureAbandoned is returned when the caller stops waiting for a capture.
var ErrCaptureAbandoned = errors.New("capture abandoned before completion")

// Manager is what the HTTP and CLI surfaces talk to.
type Manager struct {
	controller *capture.Controller
	library    *storage.Library
	remote     *remote.Client
	view       *view.View
	hub        *websocket.HubService
	logger     *logger.Logger
}

func NewManager(controller *capture.Controller, library *storage.Library, remote *remote.Client,
	view *view.View, hub *websocket.HubService, logger *logger.Logger) *Manager {
	return &Manager{
		controller: controller,
		library:    library,
		remote:     remote,
		view:       view,
		hub:        hub,
		logger:     logger,
	}
}

// Start authorizes and configures the camera, then starts the session.
func (m *Manager) Start(ctx context.Context) {
	m.view.SetPhotoCount(m.library.NumPhotos())
	m.controller.Load(ctx)
	m.controller.Appear()
}

// Stop tears the session down and releases the store and viewers.
func (m *Manager) Stop() {
	m.controller.Teardown()
	m.view.Close()
	if m.hub != nil {
		m.hub.Stop()
	}
	if err := m.library.Close(); err != nil {
		m.logger.Error("Error closing photo library: %v", err)
	}
}

// Capture issues one capture and waits for its outcome or for ctx.
func (m *Manager) Capture(ctx context.Context) (capture.Outcome, error) {
	done := make(chan capture.Outcome, 1)
	if _, err := m.controller.CapturePhoto(func(o capture.Outcome) { done <- o }); err != nil {
		return capture.Outcome{}, err
	}
	select {
	case o := <-done:
		return o, nil
	case <-ctx.Done():
		return capture.Outcome{}, ErrCaptureAbandoned
	}
}

func (m *Manager) Focus(p device.Point) {
	m.controller.Focus(p)
}

func (m *Manager) Zoom(scale float64, phase capture.PinchPhase) {
	m.controller.Zoom(scale, phase)
}

func (m *Manager) SessionState() capture.State {
	return m.controller.State()
}

func (m *Manager) StartSession() capture.State {
	m.controller.Appear()
	return m.controller.State()
}

func (m *Manager) StopSession() capture.State {
	m.controller.Disappear()
	return m.controller.State()
}

// Photos lists stored records matching where; an empty where lists all.
func (m *Manager) Photos(where string) ([]model.PhotoProjection, error) {
	return m.library.Filter(where)
}

func (m *Manager) PhotoCount() int {
	return m.library.NumPhotos()
}

// ClearPhotos deletes every stored record.
func (m *Manager) ClearPhotos() error {
	if err := m.library.Clear(); err != nil {
		return err
	}
	m.view.SetPhotoCount(m.library.NumPhotos())
	return nil
}

// Sync uploads every stored record and shows the result to viewers.
func (m *Manager) Sync(ctx context.Context) remote.Result {
	res := m.remote.SyncPhotos(ctx)
	m.view.PresentAlert(AlertSyncTitle, res.Message)
	return res
}

// Register creates the remote table and shows the result to viewers.
func (m *Manager) Register(ctx context.Context) remote.Result {
	res := m.remote.Register(ctx)
	m.view.PresentAlert(AlertRegisterTitle, res.Message)
	return res
}

func (m *Manager) ViewState() view.State {
	return m.view.Snapshot()
}

// RefreshView resends the view state to every viewer.
func (m *Manager) RefreshView() {
	m.view.Refresh()
}

func (m *Manager) DismissAlert() {
	m.view.DismissAlert()
}

// GetWebsocketService returns the viewer hub.
func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.hub
}
