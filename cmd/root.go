package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/chrisdamba/campussim/internal/factories"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/chrisdamba/campussim/internal/repositories/postgres"
	"github.com/chrisdamba/campussim/internal/repositories/sqlite"
	"github.com/chrisdamba/campussim/internal/simulator"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// flag name -> config key
var flagKeys = map[string]string{
	"seed":               "seed",
	"start-time":         "start_time",
	"end-time":           "end_time",
	"time-scale":         "time_scale",
	"tick-seconds":       "tick_seconds",
	"realtime":           "realtime",
	"students-per-class": "students_per_class",
	"queueing":           "queueing",
	"policy":             "policy",
	"release-batch-size": "release.batch_size",
	"release-interval":   "release.interval",
	"output-format":      "output_format",
	"output-path":        "output_path",
	"output-folder":      "output_folder",
	"kafka-enabled":      "kafka_enabled",
	"kafka-broker-list":  "kafka_broker_list",
	"database-driver":    "database.driver",
	"database-url":       "database.url",
}

var rootCmd = &cobra.Command{
	Use:   "campussim",
	Short: "Simulates students moving across a campus",
	Long: `campussim runs a simulated day of students walking between lectures on a campus map.
Routes have limited capacity and slow down as they fill, students queue at full bridges,
replan when a deadline is at risk, and leave lectures in batches. Every movement is
written as an event to the console, files, S3 or Kafka.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig("")
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		sim, err := factories.NewSimulation(cfg)
		if err != nil {
			return fmt.Errorf("error building simulation: %w", err)
		}
		output, err := simulator.NewOutputDestination(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		store, err := openStore(ctx, cfg.Database)
		if err != nil {
			output.Close()
			return err
		}
		if store != nil {
			defer store.Close()
		}

		runner := simulator.NewRunner(cfg, sim, output)
		runner.Store = store
		runner.Progress = os.Stderr

		summary, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		log.Printf("Run %s: %d students, on-time rate %.2f, %d enqueued, max queue %d, %d released in %d batches",
			summary.RunID, summary.Students, summary.OnTimeRate, summary.Enqueued, summary.MaxQueueDepth,
			summary.Released, summary.ReleaseBatches)
		return nil
	},
}

func openStore(ctx context.Context, db models.DatabaseConfig) (*repositories.Store, error) {
	switch db.Driver {
	case "":
		return nil, nil
	case models.DatabasePostgres:
		return postgres.Open(ctx, db.URL)
	case models.DatabaseSQLite:
		return sqlite.Open(ctx, db.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", db.Driver)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.campussim.yaml)")

	d := models.DefaultConfig()
	flags := rootCmd.Flags()
	flags.Int64("seed", d.Seed, "Random seed for student names")
	flags.String("start-time", d.StartTime, "Simulated start time (HH:MM)")
	flags.String("end-time", d.EndTime, "Simulated end time (HH:MM)")
	flags.Float64("time-scale", d.TimeScale, "Simulated minutes per real second")
	flags.Float64("tick-seconds", d.TickSeconds, "Real seconds per simulation step")
	flags.Bool("realtime", false, "Pace steps in real time instead of running flat out")
	flags.Int("students-per-class", d.StudentsPerClass, "Number of students in each class")
	flags.Bool("queueing", d.Queueing, "Queue students at full edges instead of letting them wait alone")
	flags.String("policy", d.Policy, "Route policy: shortest_path, stepwise or greedy")
	flags.Int("release-batch-size", d.Release.BatchSize, "Students released per batch after an activity")
	flags.Float64("release-interval", d.Release.Interval, "Minutes between release batches")
	flags.String("output-format", d.OutputFormat, "Output format: console, json, csv or parquet")
	flags.String("output-path", "", "Output directory (if not using Kafka)")
	flags.String("output-folder", "", "Folder under the output path or bucket")
	flags.Bool("kafka-enabled", false, "Enable Kafka output")
	flags.String("kafka-broker-list", d.KafkaBrokerList, "Kafka broker list")
	flags.String("database-driver", "", "Store run summaries in postgres or sqlite")
	flags.String("database-url", "", "Database URL or sqlite file path")

	for name, key := range flagKeys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}
	rootCmd.AddCommand(routeCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".campussim")
	}

	viper.SetEnvPrefix("campussim")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
