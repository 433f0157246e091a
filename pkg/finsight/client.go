package finsight

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"github.com/finsight/finsight-go/internal/dataset"
)

const (
	// DefaultReferenceYear is assumed when a question names a month
	// without a year.
	DefaultReferenceYear = 2025

	// DefaultTrendMonths is the trend window used when a question asks
	// for a trend without a duration.
	DefaultTrendMonths = 3
)

// DataCache memoizes loaded data directories across clients.
type DataCache = dataset.Cache

// NewDataCache creates an empty data cache with manual invalidation.
func NewDataCache() *DataCache {
	return dataset.NewCache()
}

// defaultCache backs clients that do not bring their own cache, so repeated
// construction against the same directory does not re-read the tables.
var defaultCache = dataset.NewCache()

// Tables supplies the four datasets directly instead of a data directory.
type Tables struct {
	Actuals []LedgerRow
	Budget  []LedgerRow
	Cash    []CashRow
	FX      []FXRate
}

// Logger interface for advisory logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Client is the question-answering engine over the loaded datasets
type Client struct {
	// Service interfaces
	Revenue RevenueService
	Margins MarginService
	Opex    OpexService
	Ebitda  EbitdaService
	Cash    CashService
	Planner PlannerService

	// Internal fields
	store   *dataset.Store
	fx      *converter
	options *ClientOptions
}

// ClientOptions configures the client
type ClientOptions struct {
	// DataDir holds actuals.csv, budget.csv, cash.csv and fx.csv
	DataDir string

	// Tables supplies data directly, bypassing DataDir
	Tables *Tables

	// Cache overrides the shared dataset cache
	Cache *DataCache

	// ExtraFX appends rates (e.g. from a live feed) after the fx table,
	// so they become the latest-known fallback for their currencies
	ExtraFX []FXRate

	// Logger for advisory logging
	Logger Logger

	// ReferenceYear overrides the year assumed for bare month names
	ReferenceYear int

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// NewClient creates a new client, loading the datasets on first use of a
// data directory and reusing the cached tables afterwards.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	if opts.ReferenceYear == 0 {
		opts.ReferenceYear = DefaultReferenceYear
	}

	store, err := loadStore(opts)
	if err != nil {
		return nil, err
	}

	if len(opts.ExtraFX) > 0 {
		merged := *store
		merged.FX = append(append([]FXRate{}, store.FX...), opts.ExtraFX...)
		store = &merged
	}

	c := &Client{
		store:   store,
		fx:      newConverter(store.FX, opts.Logger),
		options: opts,
	}

	c.initServices()

	if opts.Logger != nil {
		opts.Logger.Info("datasets loaded",
			"actuals", len(store.Actuals),
			"budget", len(store.Budget),
			"cash", len(store.Cash),
			"fx", len(store.FX))
	}

	return c, nil
}

// NewClientWithData creates a client over a data directory.
func NewClientWithData(dir string) (*Client, error) {
	return NewClient(&ClientOptions{DataDir: dir})
}

func loadStore(opts *ClientOptions) (*dataset.Store, error) {
	if opts.Tables != nil {
		return &dataset.Store{
			Actuals: opts.Tables.Actuals,
			Budget:  opts.Tables.Budget,
			Cash:    opts.Tables.Cash,
			FX:      opts.Tables.FX,
		}, nil
	}

	if opts.DataDir == "" {
		return nil, errors.New("either DataDir or Tables must be provided")
	}

	cache := opts.Cache
	if cache == nil {
		cache = defaultCache
	}
	return cache.Load(opts.DataDir)
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Revenue = &revenueService{client: c}
	c.Margins = &marginService{client: c}
	c.Opex = &opexService{client: c}
	c.Ebitda = &ebitdaService{client: c}
	c.Cash = &cashService{client: c}
	c.Planner = newPlannerService(c)
}

// InvalidateData drops the cached tables for the client's data directory so
// the next client construction re-reads them.
func (c *Client) InvalidateData() {
	if c.options.DataDir == "" {
		return
	}
	cache := c.options.Cache
	if cache == nil {
		cache = defaultCache
	}
	cache.Invalidate(c.options.DataDir)
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	sentry.Flush(2 * time.Second)
}

func (c *Client) logger() Logger {
	return c.options.Logger
}

func (c *Client) referenceYear() int {
	return c.options.ReferenceYear
}
