package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultRegisterURL creates the remote photos table.
	DefaultRegisterURL = "https://2h11um1vw5.execute-api.us-west-1.amazonaws.com/default/fishSense"
	// DefaultUploadURL accepts photo batches.
	DefaultUploadURL = "https://t3qqcpry3a.execute-api.us-west-1.amazonaws.com/default/fishsense_add_photo"
	// DefaultAppID is sent as x-app-id and checked by the upload endpoint.
	DefaultAppID = "fishsense-ios-app"
)

type Config struct {
	Port         int
	Password     string
	PasswordHash string // bcrypt hash, takes precedence over Password

	DataDirectory  string
	DatabaseName   string
	ImageDirectory string
	LogDirectory   string
	JPEGQuality    int
	SaveDepthMaps  bool

	APIKey      string
	AppID       string
	Vendor      string
	RegisterURL string
	UploadURL   string
	SyncTimeout time.Duration

	// Simulated camera
	CameraAuthorization string // authorized, not_determined, denied, restricted
	CameraGrantAccess   bool
	FrameWidth          int
	FrameHeight         int
	DepthWidth          int
	DepthHeight         int
	CaptureRotation     float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", filepath.Join(".", "data"))

	return &Config{
		Port:                getEnvAsInt("PORT", 8080),
		Password:            getEnv("PASSWORD", "fishsense"),
		PasswordHash:        getEnv("PASSWORD_HASH", ""),
		DataDirectory:       dataDir,
		DatabaseName:        getEnv("DATABASE_NAME", "database.sqlite"),
		ImageDirectory:      getEnv("IMAGE_DIR", filepath.Join(dataDir, "images")),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		JPEGQuality:         getEnvAsInt("JPEG_QUALITY", 80),
		SaveDepthMaps:       getEnvAsBool("SAVE_DEPTH_MAPS", false),
		APIKey:              getEnv("API_KEY", ""),
		AppID:               getEnv("APP_ID", DefaultAppID),
		Vendor:              getEnv("APP_VENDOR", "edu.ucsd.e4e"),
		RegisterURL:         getEnv("REGISTER_URL", DefaultRegisterURL),
		UploadURL:           getEnv("UPLOAD_URL", DefaultUploadURL),
		SyncTimeout:         getEnvAsDuration("SYNC_TIMEOUT", 60*time.Second),
		CameraAuthorization: strings.ToLower(getEnv("CAMERA_AUTHORIZATION", "authorized")),
		CameraGrantAccess:   getEnvAsBool("CAMERA_GRANT_ACCESS", true),
		FrameWidth:          getEnvAsInt("FRAME_WIDTH", 640),
		FrameHeight:         getEnvAsInt("FRAME_HEIGHT", 480),
		DepthWidth:          getEnvAsInt("DEPTH_WIDTH", 256),
		DepthHeight:         getEnvAsInt("DEPTH_HEIGHT", 192),
		CaptureRotation:     getEnvAsFloat("CAPTURE_ROTATION", 90),
	}
}

// DatabasePath is the fixed location of the local photo database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDirectory, c.DatabaseName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
