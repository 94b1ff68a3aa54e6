package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ProfileEnvVar names the environment variable pointing at a profile file.
const ProfileEnvVar = "WHISPER_BATCH_PROFILE"

// Profile holds tuning data that is not exposed in the settings UI.
type Profile struct {
	LogLevel      string             `toml:"log_level" yaml:"log_level"`
	ProbeTimeout  Duration           `toml:"probe_timeout" yaml:"probe_timeout"`
	PollInterval  Duration           `toml:"poll_interval" yaml:"poll_interval"`
	PauseInterval Duration           `toml:"pause_interval" yaml:"pause_interval"`
	Tools         ToolsConfig        `toml:"tools" yaml:"tools"`
	Compute       []ComputeRule      `toml:"compute" yaml:"compute"`
	Speeds        map[string]float64 `toml:"speeds" yaml:"speeds"`
}

// ToolsConfig holds executable names or paths for external tools.
type ToolsConfig struct {
	FFprobe string `toml:"ffprobe" yaml:"ffprobe"`
	FFmpeg  string `toml:"ffmpeg" yaml:"ffmpeg"`
	Whisper string `toml:"whisper" yaml:"whisper"`
}

// ComputeRule maps a platform to the device and compute type used for device "auto".
type ComputeRule struct {
	OS          string `toml:"os" yaml:"os"`
	Arch        string `toml:"arch" yaml:"arch"`
	Device      string `toml:"device" yaml:"device"`
	ComputeType string `toml:"compute_type" yaml:"compute_type"`
}

// Matches reports whether the rule applies to goos/goarch. Empty fields match anything.
func (r ComputeRule) Matches(goos, goarch string) bool {
	return (r.OS == "" || r.OS == goos) && (r.Arch == "" || r.Arch == goarch)
}

// Duration wraps time.Duration for TOML and YAML parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() Profile {
	var p Profile
	p.applyDefaults()
	return p
}

// LoadProfile reads a TOML or YAML profile, chosen by file extension.
func LoadProfile(path string) (Profile, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile format: %s", path)
	}

	p.applyDefaults()
	return p, nil
}

// ResolveProfile loads the profile at path, falling back to the environment
// variable and then to the built-in defaults.
func ResolveProfile(path string) (Profile, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(ProfileEnvVar))
	}
	if path == "" {
		for _, candidate := range []string{
			filepath.Join(AppDir(), "profile.toml"),
			filepath.Join(AppDir(), "profile.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return DefaultProfile(), nil
	}
	return LoadProfile(path)
}

// SpeedFactor returns the realtime multiplier configured for a model, or 1.
func (p Profile) SpeedFactor(model string) float64 {
	if f, ok := p.Speeds[model]; ok && f > 0 {
		return f
	}
	return 1
}

// applyDefaults sets default values for missing configuration.
func (p *Profile) applyDefaults() {
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.ProbeTimeout.Duration == 0 {
		p.ProbeTimeout.Duration = 15 * time.Second
	}
	if p.PollInterval.Duration == 0 {
		p.PollInterval.Duration = 500 * time.Millisecond
	}
	if p.PauseInterval.Duration == 0 {
		p.PauseInterval.Duration = 200 * time.Millisecond
	}

	if p.Tools.FFprobe == "" {
		p.Tools.FFprobe = "ffprobe"
	}
	if p.Tools.FFmpeg == "" {
		p.Tools.FFmpeg = "ffmpeg"
	}
	if p.Tools.Whisper == "" {
		p.Tools.Whisper = "whisper-cli"
	}

	if p.Compute == nil {
		p.Compute = []ComputeRule{
			{OS: "darwin", Arch: "arm64", Device: "cpu", ComputeType: "int8"},
		}
	}

	// Display estimates only; multiples of realtime.
	if p.Speeds == nil {
		p.Speeds = map[string]float64{
			"tiny":     2.5,
			"base":     2.0,
			"small":    1.5,
			"medium":   1.0,
			"large-v3": 0.6,
		}
	}
}
