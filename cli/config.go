package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/viant/afs"
)

// loadEnv loads dotenv files when present so env-tagged options pick their
// values up during flag parsing.
func loadEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// decodeConfig loads a yaml document from URL into target; any afs-supported
// scheme works. DUPLEX_* environment variables override document values.
func decodeConfig(ctx context.Context, URL string, target any) error {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("duplex")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return nil
}

func newLogger(app string, verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).With().Timestamp().Str("app", app).Logger().Level(level)
}
