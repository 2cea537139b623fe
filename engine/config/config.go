// Package config loads viewer settings from ra2view.yaml and RA2VIEW_*
// environment variables and sets up logging from them.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FileName  = "ra2view"
	EnvPrefix = "RA2VIEW"
)

// Top-level archives opened from the game directory, base before patch.
var DefaultArchives = []string{"ra2.mix", "language.mix", "ra2md.mix", "langmd.mix"}

// Nested archives mounted from inside the top-level ones, in mount order.
var DefaultNested = []string{
	"local.mix", "cache.mix", "conquer.mix", "generic.mix", "isogen.mix",
	"temperat.mix", "isotemp.mix", "snow.mix", "isosnow.mix", "urban.mix", "isourb.mix",
	"audio.mix", "cameo.mix", "multi.mix", "neutral.mix",
	"localmd.mix", "cachemd.mix", "conqmd.mix", "genermd.mix", "isogenmd.mix",
	"isotemmd.mix", "isosnomd.mix", "isourbmd.mix", "audiomd.mix", "cameomd.mix", "multimd.mix",
}

// Log configures logrus.
type Log struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	File       string `mapstructure:"file"`   // empty logs to stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// View configures the interactive viewer.
type View struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Zoom   float64 `mapstructure:"zoom"`
}

// Config is the full settings tree.
type Config struct {
	GameDir    string   `mapstructure:"game_dir"`
	LooseDir   string   `mapstructure:"loose_dir"`
	Archives   []string `mapstructure:"archives"`
	Nested     []string `mapstructure:"nested"`
	Expansions string   `mapstructure:"expansions"` // glob of extra top-level archives
	Palette    string   `mapstructure:"palette"`
	CacheBytes int64    `mapstructure:"cache_bytes"`
	Workers    int      `mapstructure:"workers"`
	Log        Log      `mapstructure:"log"`
	View       View     `mapstructure:"view"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game_dir", ".")
	v.SetDefault("archives", DefaultArchives)
	v.SetDefault("nested", DefaultNested)
	v.SetDefault("expansions", "expandmd*.mix")
	v.SetDefault("palette", "unittem.pal")
	v.SetDefault("cache_bytes", 256<<20)
	v.SetDefault("workers", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("view.width", 1280)
	v.SetDefault("view.height", 800)
	v.SetDefault("view.zoom", 2.0)
}

// New returns a viper instance with defaults and environment binding. An
// explicit path overrides the search for ra2view.yaml in the working and
// home directories.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ra2view")
	}
	return v
}

// Load reads the config file, if any, and decodes the settings. A missing
// file in the search path is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, errors.Wrap(err, "config: read")
		}
		log.Debug("config: no ra2view.yaml, using defaults")
	}
	return Decode(v)
}

// Decode unmarshals a prepared viper instance.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return &c, nil
}

// Setup applies the log settings to the standard logrus logger.
func (l Log) Setup() error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return errors.Wrap(err, "config: log level")
	}
	log.SetLevel(level)
	if strings.EqualFold(l.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(l.Writer())
	return nil
}

// Writer is the log destination: a rotating file when File is set.
func (l Log) Writer() io.Writer {
	if l.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   l.File,
		MaxSize:    l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAgeDays,
	}
}
