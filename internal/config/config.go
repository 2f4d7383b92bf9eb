package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/nightdrive/showcase/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "showcase.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the SQLite storage backend. An empty Path
// keeps the database in memory and dumps it to DumpPath periodically.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds the Postgres connection settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`

	// line protocol goes here when the server is unreachable
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// RemoteConfig points the remote backend at a collector.
type RemoteConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// URL is the server address the client connects to.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// StorageConfig selects and configures the recording backend.
type StorageConfig struct {
	Type          string         `json:"type" mapstructure:"type"`
	FrameInterval int            `json:"frameInterval" mapstructure:"frameInterval"`
	FlushInterval time.Duration  `json:"flushInterval" mapstructure:"flushInterval"`
	QueueLimit    int            `json:"queueLimit" mapstructure:"queueLimit"`
	Memory        MemoryConfig   `json:"memory" mapstructure:"memory"`
	SQLite        SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres      PostgresConfig `json:"db" mapstructure:"db"`
	Influx        InfluxConfig   `json:"influx" mapstructure:"influx"`
	Remote        RemoteConfig   `json:"remote" mapstructure:"remote"`
}

// LoopConfig sets the frame loop's rates.
type LoopConfig struct {
	TargetFPS     float64       `json:"targetFps" mapstructure:"targetFps"`
	FixedStepHz   float64       `json:"fixedStepHz" mapstructure:"fixedStepHz"`
	MaxFrameDelta time.Duration `json:"maxFrameDelta" mapstructure:"maxFrameDelta"`
}

// ShowcaseConfig sets the automatic playlist.
type ShowcaseConfig struct {
	DurationPerMap float64 `json:"durationPerMap" mapstructure:"durationPerMap"`
	AutoStart      bool    `json:"autoStart" mapstructure:"autoStart"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// UploadConfig points at the archive finished recordings are sent to.
type UploadConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
	Tag     string `json:"tag" mapstructure:"tag"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./showcaselogs")
	viper.SetDefault("devMode", false)
	viper.SetDefault("startScene", "test")

	viper.SetDefault("http.addr", "localhost:8080")
	viper.SetDefault("http.streamInterval", 2)

	viper.SetDefault("loop.targetFps", 60.0)
	viper.SetDefault("loop.fixedStepHz", 60.0)
	viper.SetDefault("loop.maxFrameDelta", "100ms")

	cam := core.DefaultCameraConfig()
	viper.SetDefault("camera.distance", cam.Distance)
	viper.SetDefault("camera.height", cam.Height)
	viper.SetDefault("camera.lookAtY", cam.LookAtY)
	viper.SetDefault("camera.fov", cam.FOV)
	viper.SetDefault("camera.damping", cam.Damping)
	viper.SetDefault("camera.collisionEnabled", cam.CollisionEnabled)
	viper.SetDefault("camera.collisionOffset", cam.CollisionOffset)
	viper.SetDefault("camera.collisionRayHeight", cam.CollisionRayHeight)
	viper.SetDefault("camera.minDistance", cam.MinDistance)
	viper.SetDefault("camera.maxDistance", cam.MaxDistance)
	viper.SetDefault("camera.minPolarAngle", cam.MinPolarAngle)
	viper.SetDefault("camera.maxPolarAngle", cam.MaxPolarAngle)
	viper.SetDefault("camera.enablePan", cam.EnablePan)
	viper.SetDefault("camera.enableRotate", cam.EnableRotate)
	viper.SetDefault("camera.enableZoom", cam.EnableZoom)

	car := core.DefaultCarSettings()
	viper.SetDefault("car.maxSpeed", car.MaxSpeed)
	viper.SetDefault("car.acceleration", car.Acceleration)
	viper.SetDefault("car.friction", car.Friction)
	viper.SetDefault("car.turnSpeed", car.TurnSpeed)
	viper.SetDefault("car.followCamera", car.FollowCamera)
	viper.SetDefault("car.autoDrive", car.AutoDrive)

	viper.SetDefault("showcase.durationPerMap", 12.0)
	viper.SetDefault("showcase.autoStart", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.frameInterval", 6)
	viper.SetDefault("storage.flushInterval", "2s")
	viper.SetDefault("storage.queueLimit", 10000)
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/showcase.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.remote.url", "ws://localhost:5000/collect")
	viper.SetDefault("storage.remote.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "showcase")
	viper.SetDefault("db.sslMode", "disable")

	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "showcase")
	viper.SetDefault("influx.bucket", "showcase")
	viper.SetDefault("influx.backupPath", "./recordings/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("upload.enabled", false)
	viper.SetDefault("upload.url", "http://localhost:5000")
	viper.SetDefault("upload.secret", "")
	viper.SetDefault("upload.tag", "showcase")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "showcase")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. With allowMissing
// a missing file leaves the defaults in place.
func Load(configDir string, allowMissing bool) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if allowMissing && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// CameraConfig returns the follow camera settings.
func CameraConfig() core.CameraConfig {
	cfg := core.DefaultCameraConfig()
	cfg.Distance = viper.GetFloat64("camera.distance")
	cfg.Height = viper.GetFloat64("camera.height")
	cfg.LookAtY = viper.GetFloat64("camera.lookAtY")
	cfg.FOV = viper.GetFloat64("camera.fov")
	cfg.Damping = viper.GetFloat64("camera.damping")
	cfg.CollisionEnabled = viper.GetBool("camera.collisionEnabled")
	cfg.CollisionOffset = viper.GetFloat64("camera.collisionOffset")
	cfg.CollisionRayHeight = viper.GetFloat64("camera.collisionRayHeight")
	cfg.MinDistance = viper.GetFloat64("camera.minDistance")
	cfg.MaxDistance = viper.GetFloat64("camera.maxDistance")
	cfg.MinPolarAngle = viper.GetFloat64("camera.minPolarAngle")
	cfg.MaxPolarAngle = viper.GetFloat64("camera.maxPolarAngle")
	cfg.EnablePan = viper.GetBool("camera.enablePan")
	cfg.EnableRotate = viper.GetBool("camera.enableRotate")
	cfg.EnableZoom = viper.GetBool("camera.enableZoom")
	return cfg
}

// CarSettings returns the car's starting settings.
func CarSettings() core.CarSettings {
	return core.CarSettings{
		MaxSpeed:     viper.GetFloat64("car.maxSpeed"),
		Acceleration: viper.GetFloat64("car.acceleration"),
		Friction:     viper.GetFloat64("car.friction"),
		TurnSpeed:    viper.GetFloat64("car.turnSpeed"),
		FollowCamera: viper.GetBool("car.followCamera"),
		AutoDrive:    viper.GetBool("car.autoDrive"),
	}
}

// GetLoopConfig returns the frame loop settings.
func GetLoopConfig() LoopConfig {
	return LoopConfig{
		TargetFPS:     viper.GetFloat64("loop.targetFps"),
		FixedStepHz:   viper.GetFloat64("loop.fixedStepHz"),
		MaxFrameDelta: viper.GetDuration("loop.maxFrameDelta"),
	}
}

// GetShowcaseConfig returns the automatic playlist settings.
func GetShowcaseConfig() ShowcaseConfig {
	return ShowcaseConfig{
		DurationPerMap: viper.GetFloat64("showcase.durationPerMap"),
		AutoStart:      viper.GetBool("showcase.autoStart"),
	}
}

// GetStorageConfig returns the recording backend settings. Postgres and
// Influx connection settings live under their own top-level keys.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:          viper.GetString("storage.type"),
		FrameInterval: viper.GetInt("storage.frameInterval"),
		FlushInterval: viper.GetDuration("storage.flushInterval"),
		QueueLimit:    viper.GetInt("storage.queueLimit"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
			SSLMode:  viper.GetString("db.sslMode"),
		},
		Influx: InfluxConfig{
			Host:     viper.GetString("influx.host"),
			Port:     viper.GetString("influx.port"),
			Protocol: viper.GetString("influx.protocol"),
			Token:    viper.GetString("influx.token"),
			Org:      viper.GetString("influx.org"),
			Bucket:   viper.GetString("influx.bucket"),

			BackupPath: viper.GetString("influx.backupPath"),
		},
		Remote: RemoteConfig{
			URL:    viper.GetString("storage.remote.url"),
			Secret: viper.GetString("storage.remote.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetUploadConfig returns the archive upload settings.
func GetUploadConfig() UploadConfig {
	return UploadConfig{
		Enabled: viper.GetBool("upload.enabled"),
		URL:     viper.GetString("upload.url"),
		Secret:  viper.GetString("upload.secret"),
		Tag:     viper.GetString("upload.tag"),
	}
}
