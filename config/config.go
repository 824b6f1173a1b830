package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAuthPath is the login endpoint, relative to the backend URL.
const DefaultAuthPath = "/auth/login"

// DefaultRegisterPath is the sign-up endpoint, relative to the backend URL.
const DefaultRegisterPath = "/auth/register"

// DefaultSampleRate is the microphone capture rate in Hz.
const DefaultSampleRate = 16000

type Config struct {
	BackendURL   string
	AuthPath     string
	RegisterPath string
	StateDir     string // holds the local storage database
	InputFormat  string // ffmpeg input format for the microphone
	InputDevice  string // ffmpeg input device for the microphone
	SampleRate   int
	HTTPTimeout  time.Duration // zero means no timeout
	LogLevel     string
	LogFormat    string
}

type fileConfig struct {
	BackendURL   string `toml:"backend_url"`
	AuthPath     string `toml:"auth_path"`
	RegisterPath string `toml:"register_path"`
	StateDir     string `toml:"state_dir"`
	InputFormat  string `toml:"input_format"`
	InputDevice  string `toml:"input_device"`
	SampleRate   int    `toml:"sample_rate"`
	HTTPTimeout  string `toml:"http_timeout"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
}

func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	format, device := defaultInput()
	cfg := &Config{
		AuthPath:     DefaultAuthPath,
		RegisterPath: DefaultRegisterPath,
		StateDir:     defaultStateDir(),
		InputFormat:  format,
		InputDevice:  device,
		SampleRate:   DefaultSampleRate,
		LogLevel:     "warn",
		LogFormat:    "console",
	}

	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err == nil {
			applyFileConfig(cfg, &fc)
		}
	}

	applyEnvOverrides(cfg)
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.BackendURL != "" {
		cfg.BackendURL = fc.BackendURL
	}
	if fc.AuthPath != "" {
		cfg.AuthPath = fc.AuthPath
	}
	if fc.RegisterPath != "" {
		cfg.RegisterPath = fc.RegisterPath
	}
	if fc.StateDir != "" {
		cfg.StateDir = expandTilde(fc.StateDir)
	}
	if fc.InputFormat != "" {
		cfg.InputFormat = fc.InputFormat
	}
	if fc.InputDevice != "" {
		cfg.InputDevice = fc.InputDevice
	}
	if fc.SampleRate > 0 {
		cfg.SampleRate = fc.SampleRate
	}
	if d, err := time.ParseDuration(fc.HTTPTimeout); err == nil {
		cfg.HTTPTimeout = d
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STT_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("STT_AUTH_PATH"); v != "" {
		cfg.AuthPath = v
	}
	if v := os.Getenv("STT_REGISTER_PATH"); v != "" {
		cfg.RegisterPath = v
	}
	if v := os.Getenv("STT_STATE_DIR"); v != "" {
		cfg.StateDir = expandTilde(v)
	}
	if v := os.Getenv("STT_INPUT_FORMAT"); v != "" {
		cfg.InputFormat = v
	}
	if v := os.Getenv("STT_INPUT_DEVICE"); v != "" {
		cfg.InputDevice = v
	}
	if v := os.Getenv("STT_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SampleRate = n
		}
	}
	if v := os.Getenv("STT_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("STT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "stt")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "stt")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "stt")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "stt")
	}
	return filepath.Join(".", ".stt")
}

// defaultInput picks the ffmpeg capture backend for the running platform.
func defaultInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
