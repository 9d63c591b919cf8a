package main

import (
	"fmt"

	ms "github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/wiless/coexist/station"
)

// AppConfig holds the parameters of a sweep
type AppConfig struct {
	Environments []string     `mapstructure:"environments"`
	FreqMHz      float64      `mapstructure:"freq_mhz"`
	UEHeight     float64      `mapstructure:"ue_height"`
	ESHeight     float64      `mapstructure:"es_height"`
	ESType       station.Type `mapstructure:"es_type"`
	MinDistance  float64      `mapstructure:"min_distance"`
	MaxDistance  float64      `mapstructure:"max_distance"`
	Step         float64      `mapstructure:"step"`
	IndoorRatio  float64      `mapstructure:"indoor_ratio"`
	Shadowing    bool         `mapstructure:"shadowing"`
	Seed         uint64       `mapstructure:"seed"`
	Sectors      int          `mapstructure:"sectors"`

	BeamPhi  float64                `mapstructure:"beam_phi"`
	BeamTilt float64                `mapstructure:"beam_tilt"` // down-tilt from the horizon
	Antenna  map[string]interface{} `mapstructure:"antenna"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environments", []string{"URBAN", "SUBURBAN"})
	v.SetDefault("freq_mhz", 3600.0)
	v.SetDefault("ue_height", 1.5)
	v.SetDefault("es_height", 6.0)
	v.SetDefault("es_type", "FSS_ES")
	v.SetDefault("min_distance", 10.0)
	v.SetDefault("max_distance", 1000.0)
	v.SetDefault("step", 10.0)
	v.SetDefault("indoor_ratio", 0.0)
	v.SetDefault("shadowing", false)
	v.SetDefault("seed", 101)
	v.SetDefault("sectors", 1)
	v.SetDefault("beam_phi", 0.0)
	v.SetDefault("beam_tilt", 0.0)
}

// ReadAppConfig reads coexist.{yaml,json,toml} from indir, then COEXIST_*
// environment variables, over the defaults.
func ReadAppConfig(indir string) (AppConfig, error) {
	var cfg AppConfig
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(indir)
	v.SetConfigName("coexist")
	v.SetEnvPrefix("coexist")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		log.Debugf("no config file in %s, using defaults", indir)
	} else {
		log.Infof("config from %s", v.ConfigFileUsed())
	}

	err := v.Unmarshal(&cfg, viper.DecodeHook(ms.ComposeDecodeHookFunc(
		station.StringToTypeHookFunc(),
		ms.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c AppConfig) Validate() error {
	switch {
	case len(c.Environments) == 0:
		return fmt.Errorf("config: no environments")
	case c.FreqMHz <= 0:
		return fmt.Errorf("config: freq_mhz must be positive, got %v", c.FreqMHz)
	case c.MinDistance <= 0 || c.MaxDistance < c.MinDistance:
		return fmt.Errorf("config: bad distance range %v..%v", c.MinDistance, c.MaxDistance)
	case c.Step <= 0:
		return fmt.Errorf("config: step must be positive, got %v", c.Step)
	case c.IndoorRatio < 0 || c.IndoorRatio > 1:
		return fmt.Errorf("config: indoor_ratio %v outside [0,1]", c.IndoorRatio)
	}
	return nil
}
