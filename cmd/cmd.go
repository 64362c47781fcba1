package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:           "campus-resources",
	Short:         "Campus resource management",
	Long:          `Manage campus equipment, facilities, supplies and the requests and notifications around them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		return configFromEnv()
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", "NEXT_PUBLIC_API_URL")
	_ = v.BindEnv("baas.url", "NEXT_PUBLIC_SUPABASE_URL")
	_ = v.BindEnv("baas.anon_key", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	_ = v.BindEnv("database.source", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return configFromEnv()
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func configFromEnv() (*internal.Config, error) {
	cfg, err := internal.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config from environment: %w", err)
	}
	return cfg, nil
}

// describe prefers the readable backend message over the wrapped chain.
func describe(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		if details, ok := appErr.Details.(internal.ValidationErrors); ok && len(details.Errors) > 0 {
			msgs := make([]string, len(details.Errors))
			for i, e := range details.Errors {
				msgs[i] = e.Message
			}
			return strings.Join(msgs, "; ")
		}
		return appErr.Message
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yml")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(facilitiesCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(stubServerCmd)
}
