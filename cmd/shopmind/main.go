package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopmind/shopmind/ai/llm"
	"github.com/shopmind/shopmind/assistant"
	"github.com/shopmind/shopmind/catalog"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/internal/version"
	"github.com/shopmind/shopmind/metrics"
	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/server"
	"github.com/shopmind/shopmind/store"
	"github.com/shopmind/shopmind/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "shopmind",
	Short: `An e-commerce catalog backend with an LLM-driven conversational assistant.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Ignore error if no .env file exists.
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:     viper.GetString("mode"),
			Addr:     viper.GetString("addr"),
			Port:     viper.GetInt("port"),
			Data:     viper.GetString("data"),
			Driver:   viper.GetString("driver"),
			DSN:      viper.GetString("dsn"),
			SeedDemo: viper.GetBool("seed-demo"),
			Version:  version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			cancel()
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			cancel()
			slog.Error("failed to migrate", "error", err)
			return
		}
		if instanceProfile.SeedDemo {
			if err := storeInstance.SeedDemoData(ctx); err != nil {
				cancel()
				slog.Error("failed to seed demo data", "error", err)
				return
			}
		}

		var sink notifier.Notifier
		if instanceProfile.RedisAddr != "" {
			sink = notifier.NewRedisNotifier(instanceProfile.RedisAddr, instanceProfile.RedisPassword)
			slog.Info("redis notifier enabled", "addr", instanceProfile.RedisAddr)
		} else {
			sink = notifier.NewSlogNotifier()
		}

		exporter := metrics.NewExporter()
		productService := catalog.NewProductService(storeInstance, sink)
		categoryService := catalog.NewCategoryService(storeInstance)

		var assistantService *assistant.Service
		if instanceProfile.IsAssistantEnabled() {
			llmService, err := llm.NewService(&llm.Config{
				Provider: instanceProfile.LLMProvider,
				APIKey:   instanceProfile.LLMAPIKey,
				BaseURL:  instanceProfile.LLMBaseURL,
				Model:    instanceProfile.LLMModel,
				Timeout:  instanceProfile.LLMTimeout,
			})
			if err != nil {
				slog.Warn("failed to initialize LLM service, assistant endpoint disabled", "error", err)
			} else {
				registry := assistant.NewRegistry(productService)
				assistantService = assistant.NewService(instanceProfile, storeInstance, llmService, registry, sink, exporter)
				slog.Info("assistant enabled",
					"provider", instanceProfile.LLMProvider,
					"model", instanceProfile.LLMModel)
			}
		} else {
			slog.Warn("no LLM API key configured, assistant endpoint disabled")
		}

		s, err := server.NewServer(instanceProfile, storeInstance, assistantService, productService, categoryService, exporter)
		if err != nil {
			cancel()
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// SIGTERM is the graceful shutdown signal used by most process
		// managers.
		signal.Notify(c, terminationSignals...)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)
		if err := s.Start(ctx); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
			}
			cancel()
		}

		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().Bool("seed-demo", false, "seed demo catalog data on startup")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "seed-demo"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("shopmind")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("ShopMind %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
