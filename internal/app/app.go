package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"fishsense/internal/config"
	"fishsense/internal/device"
	"fishsense/internal/device/simulated"
	"fishsense/internal/logger"
	"fishsense/internal/platform"
	"fishsense/internal/route"
	"fishsense/internal/service"
	"fishsense/internal/service/capture"
	"fishsense/internal/service/imaging"
	"fishsense/internal/service/remote"
	"fishsense/internal/service/storage"
	"fishsense/internal/service/view"
	"fishsense/internal/service/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	hubService *websocket.HubService
	hardware   *simulated.Hardware
	manager    *service.Manager
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	hub := websocket.NewHubService(log)
	v := view.New(hub, log)

	hw := simulated.New(simulated.Options{
		Authorization: device.ParseAuthorizationStatus(cfg.CameraAuthorization),
		GrantAccess:   cfg.CameraGrantAccess,
		Scene:         SceneFor(cfg),
	})
	hw.Camera.SetCaptureRotation(cfg.CaptureRotation)

	lib := OpenLibrary(cfg, log)
	writer, err := imaging.NewWriter(cfg.ImageDirectory, cfg.JPEGQuality, log)
	if err != nil {
		lib.Close()
		return nil, err
	}
	processor := capture.NewProcessor(simulated.Measurer{}, lib, writer, v, log, cfg.SaveDepthMaps)

	prefs, err := capture.LoadPreferences(filepath.Join(cfg.DataDirectory, "preferences.json"))
	if err != nil {
		// Unreadable preferences behave like a first launch.
		log.Warning("Using empty camera preferences: %v", err)
	}

	controller := capture.NewController(capture.Options{
		Hardware:    hw,
		Preferences: prefs,
		UI:          v,
		Processor:   processor,
		Logger:      log,
	})

	mng := service.NewManager(controller, lib, NewRemote(cfg, lib, log), v, hub, log)

	return &App{
		config:     cfg,
		logger:     log,
		hubService: hub,
		hardware:   hw,
		manager:    mng,
	}, nil
}

// OpenLibrary opens the photo database at its configured location. A failed
// open still returns a usable, empty Library.
func OpenLibrary(cfg *config.Config, log *logger.Logger) *storage.Library {
	if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
		log.Error("Failed to create data directory: %v", err)
	}
	return storage.OpenLibrary(cfg.DatabasePath(), log)
}

// NewRemote builds the sync client for this machine.
func NewRemote(cfg *config.Config, source remote.PhotoSource, log *logger.Logger) *remote.Client {
	return remote.NewClient(source, remote.Options{
		RegisterURL: cfg.RegisterURL,
		UploadURL:   cfg.UploadURL,
		APIKey:      cfg.APIKey,
		AppID:       cfg.AppID,
		DeviceID:    platform.VendorDeviceID(cfg.Vendor),
		Timeout:     cfg.SyncTimeout,
		Logger:      log,
	})
}

// SceneFor sizes the simulated scene to the configured frame, keeping the
// fish in the same relative place.
func SceneFor(cfg *config.Config) simulated.Scene {
	scene := simulated.DefaultScene()
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return scene
	}
	sx := float32(cfg.FrameWidth) / float32(scene.Width)
	scene.FishStartX = int(float32(scene.FishStartX) * sx)
	scene.FishEndX = int(float32(scene.FishEndX) * sx)
	scene.FishRow = cfg.FrameHeight / 2
	scene.FocalLength *= sx
	scene.Width = cfg.FrameWidth
	scene.Height = cfg.FrameHeight
	if cfg.DepthWidth > 0 && cfg.DepthHeight > 0 {
		scene.DepthWidth = cfg.DepthWidth
		scene.DepthHeight = cfg.DepthHeight
	}
	return scene
}

func (a *App) Run() error {
	go a.hubService.Run()

	a.manager.Start(context.Background())
	defer a.manager.Stop()

	router := route.SetupRoutes(a.manager, a.config, a.logger)

	fmt.Printf("🐟 FishSense Capture Server\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("📁 Images: %s\n", a.config.ImageDirectory)
	fmt.Printf("🗄️  Database: %s\n", a.config.DatabasePath())
	fmt.Printf("📷 Camera: %s (%s)\n", a.hardware.Camera.UniqueID(), a.config.CameraAuthorization)
	fmt.Printf("☁️  Upload: %s\n", a.config.UploadURL)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}
