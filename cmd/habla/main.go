package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hablaai/habla/internal/clock"
	"github.com/hablaai/habla/internal/profile"
	"github.com/hablaai/habla/server/scheduler/reminder"
	"github.com/hablaai/habla/store"
	"github.com/hablaai/habla/store/db"
)

const (
	greetingBanner = `habla, backend de tutoria de espanhol`
)

var (
	rootCmd = &cobra.Command{
		Use:   "habla",
		Short: "Spanish tutoring backend",
	}

	dispatcherCmd = &cobra.Command{
		Use:   "dispatcher",
		Short: "Run the push reminder dispatch loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDispatcher(ctx)
		},
	}
)

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "memory")
	viper.SetDefault("data", "")
	viper.SetDefault("dsn", "")
	viper.SetDefault("tolerance-minutes", 75)
	viper.SetDefault("dispatch-interval-minutes", 5)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the backend, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("driver", "memory", `storage driver, can be "memory", "sqlite" or "firestore"`)
	rootCmd.PersistentFlags().String("data", "", "data directory for the sqlite driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name for the sqlite driver")
	rootCmd.PersistentFlags().Int("tolerance-minutes", 75, "schedule matching tolerance window in minutes")
	rootCmd.PersistentFlags().Int("dispatch-interval-minutes", 5, "reminder dispatch cadence in minutes")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("habla")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(dispatcherCmd)
}

func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:                    viper.GetString("mode"),
		Driver:                  viper.GetString("driver"),
		Data:                    viper.GetString("data"),
		DSN:                     viper.GetString("dsn"),
		ToleranceMinutes:        viper.GetInt("tolerance-minutes"),
		DispatchIntervalMinutes: viper.GetInt("dispatch-interval-minutes"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func runDispatcher(ctx context.Context) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	driver, err := db.NewDriver(ctx, p)
	if err != nil {
		return err
	}
	st := store.New(driver)
	defer st.Close()

	pusher := reminder.NewWebPusher(reminder.VAPIDConfig{
		Subject:    p.VAPIDSubject,
		PublicKey:  p.VAPIDPublicKey,
		PrivateKey: p.VAPIDPrivateKey,
	})
	service := reminder.NewService(st, pusher, clock.NewSystem(), reminder.DefaultConfig())
	scheduler := reminder.NewScheduler(service, time.Duration(p.DispatchIntervalMinutes)*time.Minute)

	fmt.Println(greetingBanner)
	slog.Info("dispatcher starting",
		"mode", p.Mode,
		"driver", p.Driver,
		"interval_minutes", p.DispatchIntervalMinutes,
	)

	scheduler.Start(ctx)
	<-ctx.Done()
	scheduler.Stop()

	slog.Info("dispatcher shut down")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
