package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-go/internal/fxfeed"
	"github.com/finsight/finsight-go/pkg/finsight"
)

func main() {
	// Load .env if present; real deployments set env directly
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetOutput(os.Stderr) // stdout belongs to the MCP transport
	if os.Getenv("DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	dataDir := os.Getenv("FINSIGHT_DATA_DIR")
	if dataDir == "" {
		log.Fatal("FINSIGHT_DATA_DIR environment variable is required")
	}

	opts := &finsight.ClientOptions{
		DataDir:   dataDir,
		Logger:    &logrusAdapter{log: logger},
		SentryDSN: os.Getenv("SENTRY_DSN"),
	}

	// Optionally top up the static fx table from a live feed
	if feedURL := os.Getenv("FX_FEED_URL"); feedURL != "" {
		feed, err := fxfeed.New(fxfeed.Options{
			URL:    feedURL,
			Logger: &logrusAdapter{log: logger},
		})
		if err != nil {
			log.Fatalf("failed to initialize FX feed: %v", err)
		}

		rates, err := feed.Fetch(context.Background())
		if err != nil {
			// The static fx table still works without the feed
			logger.WithError(err).Warn("FX feed fetch failed, using static rates only")
		} else {
			opts.ExtraFX = rates
		}
	}

	client, err := finsight.NewClient(opts)
	if err != nil {
		log.Fatalf("failed to initialize finsight client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "cfo-insights",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)
	registerTools(server, client)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// logrusAdapter bridges logrus to the client's key/value Logger interface.
type logrusAdapter struct {
	log *logrus.Logger
}

func (a *logrusAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (a *logrusAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(toFields(keysAndValues)).Info(msg)
}

func (a *logrusAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(toFields(keysAndValues)).Warn(msg)
}

func (a *logrusAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.WithFields(toFields(keysAndValues)).Error(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
