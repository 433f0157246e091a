// Package fxfeed fetches currency-to-USD rates from an HTTP XML feed so a
// deployment can top up the static fx table with fresher rates.
package fxfeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-go/internal/dataset"
)

// Logger is the subset of logging the feed client needs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Options configures a feed client.
type Options struct {
	// URL of the XML rates document.
	URL string

	// HTTPClient overrides the underlying client.
	HTTPClient *http.Client

	// MaxRetries for transient failures. Defaults to 3.
	MaxRetries int

	// Timeout per attempt. Defaults to 10s.
	Timeout time.Duration

	Logger Logger
}

// Client fetches and parses the rates document.
type Client struct {
	url    string
	client *retryablehttp.Client
	log    Logger
}

// New creates a feed client.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("fxfeed: URL is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	if opts.HTTPClient != nil {
		retryClient.HTTPClient = opts.HTTPClient
	}
	if opts.Timeout > 0 {
		retryClient.HTTPClient.Timeout = opts.Timeout
	} else {
		retryClient.HTTPClient.Timeout = 10 * time.Second
	}
	retryClient.RetryMax = 3
	if opts.MaxRetries > 0 {
		retryClient.RetryMax = opts.MaxRetries
	}

	return &Client{
		url:    opts.URL,
		client: retryClient,
		log:    opts.Logger,
	}, nil
}

// Fetch downloads the rates document and returns its rows. The expected
// shape is:
//
//	<rates>
//	  <rate month="2025-06" currency="EUR" to_usd="1.0870"/>
//	</rates>
//
// Rows with a missing or malformed attribute are skipped with a warning
// rather than failing the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]dataset.FXRate, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "fxfeed: failed to create request")
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fxfeed: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fxfeed: unexpected status code %d", resp.StatusCode)
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, errors.Wrap(err, "fxfeed: failed to parse XML")
	}

	return c.parse(doc)
}

func (c *Client) parse(doc *etree.Document) ([]dataset.FXRate, error) {
	elements := doc.FindElements("//rates/rate")
	if len(elements) == 0 {
		return nil, errors.New("fxfeed: no rate elements found")
	}

	var rates []dataset.FXRate
	for _, el := range elements {
		rate, err := parseRateElement(el)
		if err != nil {
			c.logWarn("skipping malformed rate element", "error", err.Error())
			continue
		}
		rates = append(rates, rate)
	}

	if len(rates) == 0 {
		return nil, errors.New("fxfeed: all rate elements were malformed")
	}

	c.logDebug("fetched FX rates", "count", len(rates))
	return rates, nil
}

func parseRateElement(el *etree.Element) (dataset.FXRate, error) {
	month, err := dataset.ParseMonth(el.SelectAttrValue("month", ""))
	if err != nil {
		return dataset.FXRate{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(el.SelectAttrValue("currency", "")))
	if currency == "" {
		return dataset.FXRate{}, fmt.Errorf("missing currency attribute")
	}

	toUSD, err := decimal.NewFromString(strings.TrimSpace(el.SelectAttrValue("to_usd", "")))
	if err != nil {
		return dataset.FXRate{}, fmt.Errorf("invalid to_usd attribute: %v", err)
	}
	if toUSD.Sign() <= 0 {
		return dataset.FXRate{}, fmt.Errorf("non-positive rate %s for %s", toUSD, currency)
	}

	return dataset.FXRate{
		Month:     month,
		Currency:  currency,
		RateToUSD: toUSD,
	}, nil
}

func (c *Client) logWarn(msg string, keysAndValues ...interface{}) {
	if c.log != nil {
		c.log.Warn(msg, keysAndValues...)
	}
}

func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.log != nil {
		c.log.Debug(msg, keysAndValues...)
	}
}
