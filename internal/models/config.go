package models

import (
	"fmt"
	"time"

	"github.com/chrisdamba/campussim/internal/queue"
	"github.com/chrisdamba/campussim/internal/release"
	"github.com/chrisdamba/campussim/internal/schedule"
	"github.com/chrisdamba/campussim/internal/student"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres or sqlite
	URL    string `mapstructure:"url"`
}

// LocationConfig is one map location. Coordinates are metres on the map plane.
type LocationConfig struct {
	ID   string  `mapstructure:"id"`
	Name string  `mapstructure:"name"`
	X    float64 `mapstructure:"x"`
	Y    float64 `mapstructure:"y"`
}

// RouteConfig connects two locations. A zero length is replaced by the
// straight-line distance between them, and zero difficulty or capacity keep
// the graph defaults. A constrained route without a congestion factor uses 1.0.
type RouteConfig struct {
	From             string   `mapstructure:"from"`
	To               string   `mapstructure:"to"`
	Length           float64  `mapstructure:"length"`
	Difficulty       float64  `mapstructure:"difficulty"`
	Capacity         int      `mapstructure:"capacity"`
	Constrained      bool     `mapstructure:"constrained"`
	CongestionFactor *float64 `mapstructure:"congestion_factor"`
	OneWay           bool     `mapstructure:"one_way"`
}

type MapConfig struct {
	BaseSpeed float64          `mapstructure:"base_speed"`
	Locations []LocationConfig `mapstructure:"locations"`
	Routes    []RouteConfig    `mapstructure:"routes"`
}

type EventConfig struct {
	Time     string  `mapstructure:"time"`
	Location string  `mapstructure:"location"`
	Duration float64 `mapstructure:"duration"`
}

type ScheduleConfig struct {
	Class  string        `mapstructure:"class"`
	Home   string        `mapstructure:"home"`
	Events []EventConfig `mapstructure:"events"`
}

type Config struct {
	Seed             int64     `mapstructure:"seed"`
	Date             time.Time `mapstructure:"date"`
	StartTime        string    `mapstructure:"start_time"`
	EndTime          string    `mapstructure:"end_time"`
	TimeScale        float64   `mapstructure:"time_scale"`   // simulated minutes per real second
	TickSeconds      float64   `mapstructure:"tick_seconds"` // real seconds per step
	Realtime         bool      `mapstructure:"realtime"`
	StudentsPerClass int       `mapstructure:"students_per_class"`
	Queueing         bool      `mapstructure:"queueing"`
	Policy           string    `mapstructure:"policy"`

	Release release.Config  `mapstructure:"release"`
	Queue   queue.Config    `mapstructure:"queue"`
	Student student.Options `mapstructure:"student"`

	Map       *MapConfig       `mapstructure:"map"`
	Schedules []ScheduleConfig `mapstructure:"schedules"`

	OutputDestination string             `mapstructure:"output_destination"`
	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	Database DatabaseConfig `mapstructure:"database"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:              42,
		Date:              time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC),
		StartTime:         "07:00",
		EndTime:           "18:00",
		TimeScale:         1,
		TickSeconds:       0.1,
		StudentsPerClass:  30,
		Queueing:          true,
		Policy:            PolicyShortestPath,
		Release:           release.DefaultConfig(),
		Queue:             queue.DefaultConfig(),
		Student:           student.DefaultOptions(),
		OutputDestination: "local",
		OutputFormat:      OutputFormatConsole,
		KafkaBrokerList:   "localhost:9092",
	}
}

// SetDefaults registers DefaultConfig with viper so files only need to
// name what they change.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("seed", d.Seed)
	v.SetDefault("date", d.Date.Format(time.RFC3339))
	v.SetDefault("start_time", d.StartTime)
	v.SetDefault("end_time", d.EndTime)
	v.SetDefault("time_scale", d.TimeScale)
	v.SetDefault("tick_seconds", d.TickSeconds)
	v.SetDefault("students_per_class", d.StudentsPerClass)
	v.SetDefault("queueing", d.Queueing)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("release.batch_size", d.Release.BatchSize)
	v.SetDefault("release.interval", d.Release.Interval)
	v.SetDefault("release.enabled", d.Release.Enabled)
	v.SetDefault("queue.max_length", d.Queue.MaxLength)
	v.SetDefault("queue.crossing_time", d.Queue.CrossingTime)
	v.SetDefault("student.buffer", d.Student.Buffer)
	v.SetDefault("student.risk_threshold", d.Student.RiskThreshold)
	v.SetDefault("student.replan_cooldown", d.Student.ReplanCooldown)
	v.SetDefault("student.max_wait", d.Student.MaxWait)
	v.SetDefault("student.congestion_threshold", d.Student.CongestionThreshold)
	v.SetDefault("output_destination", d.OutputDestination)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("kafka_broker_list", d.KafkaBrokerList)
}

// LoadConfig reads the configuration using Viper. An empty cfgFile relies on
// whatever the global viper instance was already pointed at.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.GetViper()
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	v.AutomaticEnv()
	return Decode(v)
}

// Decode unmarshals a viper instance into a validated Config.
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	start, err := schedule.ParseClock(cfg.StartTime)
	if err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	end, err := schedule.ParseClock(cfg.EndTime)
	if err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end_time %s must be after start_time %s", cfg.EndTime, cfg.StartTime)
	}
	if cfg.TimeScale <= 0 {
		return fmt.Errorf("time_scale must be positive, got %v", cfg.TimeScale)
	}
	if cfg.TickSeconds <= 0 {
		return fmt.Errorf("tick_seconds must be positive, got %v", cfg.TickSeconds)
	}
	if cfg.StudentsPerClass < 0 {
		return fmt.Errorf("students_per_class must not be negative, got %d", cfg.StudentsPerClass)
	}
	if err := cfg.Release.Validate(); err != nil {
		return err
	}
	if cfg.Queue.MaxLength < 0 || cfg.Queue.CrossingTime < 0 {
		return fmt.Errorf("queue settings must not be negative: %+v", cfg.Queue)
	}
	switch cfg.Policy {
	case "", PolicyShortestPath, PolicyStepwise, PolicyGreedy:
	default:
		return fmt.Errorf("unknown policy %q", cfg.Policy)
	}
	switch cfg.OutputFormat {
	case "", OutputFormatConsole, OutputFormatJSON, OutputFormatCSV, OutputFormatParquet:
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
	switch cfg.Database.Driver {
	case "", DatabasePostgres, DatabaseSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	return nil
}

// Window returns the start and end of the simulated day in minutes.
func (cfg *Config) Window() (float64, float64) {
	start, _ := schedule.ParseClock(cfg.StartTime)
	end, _ := schedule.ParseClock(cfg.EndTime)
	return start, end
}

// Timestamp converts simulated minutes into wall time on the configured date.
func (cfg *Config) Timestamp(minutes float64) time.Time {
	return cfg.Date.Add(time.Duration(minutes * float64(time.Minute)))
}
