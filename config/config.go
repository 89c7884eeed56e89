package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SCREENREC_FPS=25.
const EnvPrefix = "SCREENREC"

// Config holds runtime configuration for capture, encoding and app behavior.
// Fields may be loaded from a YAML file or the environment and overridden by
// command-line flags.
type Config struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// Capture parameters
	FPS        float64 `mapstructure:"fps" yaml:"fps"`
	SampleRate int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels   int     `mapstructure:"channels" yaml:"channels"`
	BlockMS    int     `mapstructure:"block_ms" yaml:"block_ms"`

	// Intermediate and final files
	VideoFile     string `mapstructure:"video_file" yaml:"video_file"`
	AudioFile     string `mapstructure:"audio_file" yaml:"audio_file"`
	TimestampFile string `mapstructure:"timestamp_file" yaml:"timestamp_file"`
	OutputFile    string `mapstructure:"output_file" yaml:"output_file"`

	// Encoder
	FFmpegPath          string `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	VideoCRF            int    `mapstructure:"video_crf" yaml:"video_crf"`
	VideoPreset         string `mapstructure:"video_preset" yaml:"video_preset"`
	AudioBitrate        string `mapstructure:"audio_bitrate" yaml:"audio_bitrate"`
	IntermediateQuality int    `mapstructure:"intermediate_quality" yaml:"intermediate_quality"`

	// Selection rectangle persistence
	SelectionX int `mapstructure:"selection_x" yaml:"selection_x"`
	SelectionY int `mapstructure:"selection_y" yaml:"selection_y"`
	SelectionW int `mapstructure:"selection_w" yaml:"selection_w"`
	SelectionH int `mapstructure:"selection_h" yaml:"selection_h"`

	StatsIntervalSeconds int `mapstructure:"stats_interval_seconds" yaml:"stats_interval_seconds"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                false,
		FPS:                  30,
		SampleRate:           44100,
		Channels:             2,
		BlockMS:              250,
		VideoFile:            "aufnahme.avi",
		AudioFile:            "aufnahme.wav",
		TimestampFile:        "timestamps.json",
		OutputFile:           "output.mp4",
		FFmpegPath:           "ffmpeg",
		VideoCRF:             23,
		VideoPreset:          "veryfast",
		AudioBitrate:         "192k",
		IntermediateQuality:  3,
		StatsIntervalSeconds: 5,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.FPS <= 0 || c.FPS > 240 {
		c.FPS = d.FPS
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		c.SampleRate = d.SampleRate
	}
	if c.Channels < 1 || c.Channels > 8 {
		c.Channels = d.Channels
	}
	if c.BlockMS < 10 || c.BlockMS > 2000 {
		c.BlockMS = d.BlockMS
	}
	if c.VideoCRF < 0 || c.VideoCRF > 51 {
		c.VideoCRF = d.VideoCRF
	}
	if c.IntermediateQuality < 2 || c.IntermediateQuality > 31 {
		c.IntermediateQuality = d.IntermediateQuality
	}
	if c.StatsIntervalSeconds <= 0 {
		c.StatsIntervalSeconds = d.StatsIntervalSeconds
	}
	for _, s := range []*string{&c.VideoFile, &c.AudioFile, &c.TimestampFile, &c.OutputFile, &c.FFmpegPath, &c.VideoPreset, &c.AudioBitrate} {
		*s = strings.TrimSpace(*s)
	}
	if c.VideoFile == "" {
		c.VideoFile = d.VideoFile
	}
	if c.AudioFile == "" {
		c.AudioFile = d.AudioFile
	}
	if c.TimestampFile == "" {
		c.TimestampFile = d.TimestampFile
	}
	if c.OutputFile == "" {
		c.OutputFile = d.OutputFile
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = d.FFmpegPath
	}
	if c.VideoPreset == "" {
		c.VideoPreset = d.VideoPreset
	}
	if c.AudioBitrate == "" {
		c.AudioBitrate = d.AudioBitrate
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	names := map[string]bool{}
	for _, p := range []string{c.VideoFile, c.AudioFile, c.TimestampFile, c.OutputFile} {
		if names[p] {
			return fmt.Errorf("config: file name %q used twice", p)
		}
		names[p] = true
	}
	return nil
}

// HasSelection reports whether a selection rectangle was persisted.
func (c *Config) HasSelection() bool { return c.SelectionW > 0 && c.SelectionH > 0 }

// Load reads configuration from path, or from screenrec.yaml in the working
// directory or the user config dir when path is empty. A .env file in the
// working directory is applied first; SCREENREC_* variables override file
// values. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("screenrec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: read: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to path in YAML format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir: %w", err)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Dir returns the per-user config directory, or "" when unknown.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "screenrec")
}

// DefaultPath is where Save stores the config when no file was given.
func DefaultPath() string {
	if dir := Dir(); dir != "" {
		return filepath.Join(dir, "screenrec.yaml")
	}
	return "screenrec.yaml"
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("debug", c.Debug)
	v.SetDefault("fps", c.FPS)
	v.SetDefault("sample_rate", c.SampleRate)
	v.SetDefault("channels", c.Channels)
	v.SetDefault("block_ms", c.BlockMS)
	v.SetDefault("video_file", c.VideoFile)
	v.SetDefault("audio_file", c.AudioFile)
	v.SetDefault("timestamp_file", c.TimestampFile)
	v.SetDefault("output_file", c.OutputFile)
	v.SetDefault("ffmpeg_path", c.FFmpegPath)
	v.SetDefault("video_crf", c.VideoCRF)
	v.SetDefault("video_preset", c.VideoPreset)
	v.SetDefault("audio_bitrate", c.AudioBitrate)
	v.SetDefault("intermediate_quality", c.IntermediateQuality)
	v.SetDefault("selection_x", c.SelectionX)
	v.SetDefault("selection_y", c.SelectionY)
	v.SetDefault("selection_w", c.SelectionW)
	v.SetDefault("selection_h", c.SelectionH)
	v.SetDefault("stats_interval_seconds", c.StatsIntervalSeconds)
}
