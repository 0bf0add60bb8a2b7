package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/timepilot/internal/profile"
	"github.com/hrygo/timepilot/server"
	"github.com/hrygo/timepilot/server/service/resolver"
	"github.com/hrygo/timepilot/server/service/slot"
	"github.com/hrygo/timepilot/server/timezone"
	"github.com/hrygo/timepilot/store"
	"github.com/hrygo/timepilot/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "timepilot",
	Short: "timepilot is a natural language scheduling assistant",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		driver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return err
		}
		st := store.New(driver, instanceProfile)

		s, err := server.NewServer(ctx, instanceProfile, st)
		if err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		}()

		if err := s.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		s.Shutdown()
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [text]",
	Short: "Resolve a scheduling request against an empty calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}

		loc, err := timezone.ParseTimezone(instanceProfile.Timezone)
		if err != nil {
			return err
		}

		res := resolver.New(emptyCalendar{}, resolver.RuleExtractor{},
			resolver.WithBuffer(time.Duration(instanceProfile.BufferMinutes)*time.Minute),
			resolver.WithGranularity(time.Duration(instanceProfile.GranularityMinutes)*time.Minute),
			resolver.WithLocation(loc),
		)

		outcome, err := res.Resolve(cmd.Context(), resolver.Request{CalendarID: "0", Text: args[0]})
		if err != nil {
			return err
		}

		switch result := outcome.(type) {
		case resolver.ScheduledSlot:
			fmt.Printf("%s: %s (score %.2f)\n",
				result.Title,
				timezone.FormatSlotTime(result.Start, result.End, loc),
				result.Score)
		case resolver.ResolutionFailure:
			fmt.Printf("无法安排：%s，需要 %d 分钟，窗口 %s，最大空档 %d 分钟\n",
				result.Reason, result.DurationMinutes, result.Window, result.LargestGapMinutes)
		case resolver.NeedsClarification:
			fmt.Println(result.Hint)
		}
		return nil
	},
}

type emptyCalendar struct{}

func (emptyCalendar) BusyIntervals(_ context.Context, _ string, _ slot.Interval) ([]slot.Interval, error) {
	return nil, nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for interpreting requests")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("timepilot")
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:     viper.GetString("mode"),
		Addr:     viper.GetString("addr"),
		Port:     viper.GetInt("port"),
		Data:     viper.GetString("data"),
		Driver:   viper.GetString("driver"),
		DSN:      viper.GetString("dsn"),
		Timezone: viper.GetString("timezone"),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
