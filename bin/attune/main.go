package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/useattune/attune/server"
	"github.com/useattune/attune/server/profile"
	"github.com/useattune/attune/store"
	"github.com/useattune/attune/store/db"
)

// version is stamped by -ldflags at release.
var version = "0.1.0"

const greeting = `attune %s
serving on http://%s:%d
`

var rootCmd = &cobra.Command{
	Use:   "attune",
	Short: "A self-hostable wellness companion",
	Long: `attune keeps your routines, daily check-ins, and a small circle of
supportive chat personas on a server you run yourself. Conversations are
proxied to an OpenAI-compatible inference endpoint; nothing leaves your
machine except the messages you send.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prof, err := loadProfile()
		if err != nil {
			return err
		}
		setupLogger(prof)

		driver, err := db.NewDriver(prof)
		if err != nil {
			return errors.Wrap(err, "open database")
		}
		st := store.New(driver)
		if err := st.Migrate(ctx); err != nil {
			return errors.Wrap(err, "migrate database")
		}

		s, err := server.NewServer(ctx, prof, st)
		if err != nil {
			return errors.Wrap(err, "create server")
		}

		fmt.Printf(greeting, prof.Version, prof.Addr, prof.Port)

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := s.Start(gCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			s.Shutdown(context.Background())
			return nil
		})
		return g.Wait()
	},
}

func init() {
	// A .env next to the binary is a self-hoster convenience; absence is
	// not an error.
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `"prod" or "dev"`)
	flags.String("addr", "", "address to bind, empty for all interfaces")
	flags.Int("port", 8484, "port to listen on")
	flags.String("data", "", "directory for local state")
	flags.String("driver", "sqlite", "database driver: sqlite, mysql or postgres")
	flags.String("dsn", "", "database connection string")
	flags.String("secret", "", "token signing secret, generated when empty")
	flags.String("inference-base-url", "", "OpenAI-compatible endpoint chat forwards to")
	flags.String("inference-api-key", "", "API key for the inference endpoint")
	flags.String("inference-model", "", "model identifier to request")
	flags.Int("chat-daily-quota", 0, "assistant turns per user per day, 0 for unlimited")

	viper.SetEnvPrefix("attune")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func loadProfile() (*profile.Profile, error) {
	prof := &profile.Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		Data:             viper.GetString("data"),
		Driver:           viper.GetString("driver"),
		DSN:              viper.GetString("dsn"),
		Secret:           viper.GetString("secret"),
		InferenceBaseURL: viper.GetString("inference-base-url"),
		InferenceAPIKey:  viper.GetString("inference-api-key"),
		InferenceModel:   viper.GetString("inference-model"),
		ChatDailyQuota:   viper.GetInt("chat-daily-quota"),
		Version:          version,
	}
	if err := prof.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	if prof.Secret == "" {
		prof.Secret = uuid.NewString()
		slog.Warn("no ATTUNE_SECRET set, sessions will not survive a restart")
	}
	return prof, nil
}

func setupLogger(prof *profile.Profile) {
	level := slog.LevelInfo
	if prof.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
