package iex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stockstreamer/src/helpers"
	"stockstreamer/src/interfaces"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"
	"stockstreamer/src/network"
	"stockstreamer/src/retry"

	"github.com/shopspring/decimal"
)

// URL suffix per data kind
var suffixes = map[models.DataKind]string{
	models.KindPrice:   "price",
	models.KindLogo:    "logo",
	models.KindHighLow: "quote",
}

// IEXSource fetches from an IEX style API rooted at BaseURL:
// <base>/<symbol>/price, <base>/<symbol>/logo and <base>/<symbol>/quote.
type IEXSource struct {
	SourceName string
	BaseURL    string
	Network    interfaces.INetworkManager
	Retry      *retry.Policy
	Logger     *logger.Logger
}

var _ interfaces.IStockFetcher = (*IEXSource)(nil)

// -----------------------------------------------------------------------------

func NewIEXSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, policy *retry.Policy, log *logger.Logger) *IEXSource {
	return &IEXSource{
		SourceName: cfg.DataSource.Name,
		BaseURL:    strings.TrimRight(cfg.DataSource.BaseURL, "/"),
		Network:    netMgr,
		Retry:      policy,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *IEXSource) Name() string {
	return s.SourceName
}

// -----------------------------------------------------------------------------

// URL builds the request URL of one kind for one symbol.
func (s *IEXSource) URL(symbol string, kind models.DataKind) string {
	return fmt.Sprintf("%s/%s/%s", s.BaseURL, symbol, suffixes[kind])
}

// -----------------------------------------------------------------------------

func (s *IEXSource) FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return fetch(ctx, s, symbol, models.KindPrice, parsePrice)
}

// -----------------------------------------------------------------------------

func (s *IEXSource) FetchLogoURL(ctx context.Context, symbol string) (string, error) {
	return fetch(ctx, s, symbol, models.KindLogo, parseLogo)
}

// -----------------------------------------------------------------------------

func (s *IEXSource) FetchHighLow(ctx context.Context, symbol string) (models.HighLow, error) {
	return fetch(ctx, s, symbol, models.KindHighLow, parseQuote)
}

// -----------------------------------------------------------------------------

// fetch runs GET + parse under the retry policy. Transport failures, bad
// statuses and malformed bodies all count as one failed attempt.
func fetch[T any](ctx context.Context, s *IEXSource, symbol string, kind models.DataKind, parse func([]byte) (T, error)) (T, error) {
	url := s.URL(symbol, kind)
	operation := fmt.Sprintf("fetch %s %s", kind, symbol)

	res, err := retry.Execute(ctx, s.Retry, operation, func(ctx context.Context) (T, error) {
		var zero T
		body, err := s.Network.Get(ctx, url, nil)
		if err != nil {
			status := 0
			var statusErr *network.StatusError
			if errors.As(err, &statusErr) {
				status = statusErr.StatusCode
			}
			return zero, helpers.NewTransientFetchError(symbol, kind, status, err)
		}

		v, err := parse(body)
		if err != nil {
			return zero, helpers.NewTransientFetchError(symbol, kind, 0, err)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, helpers.NewFetchFailedError(symbol, kind, err)
	}

	s.Logger.Debug("Fetched %s for %s", kind, symbol)
	return res, nil
}

// -----------------------------------------------------------------------------
// Response parsing
// -----------------------------------------------------------------------------

func parsePrice(body []byte) (decimal.Decimal, error) {
	text := string(bytes.TrimSpace(body))
	if text == "" {
		return decimal.Decimal{}, errors.New("empty price body")
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return price, nil
}

type logoResponse struct {
	URL string `json:"url"`
}

func parseLogo(body []byte) (string, error) {
	var resp logoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("json unmarshal failed: %w", err)
	}
	if resp.URL == "" {
		return "", errors.New("logo response has no url")
	}
	return resp.URL, nil
}

type quoteResponse struct {
	Week52High *decimal.Decimal `json:"week52High"`
	Week52Low  *decimal.Decimal `json:"week52Low"`
}

func parseQuote(body []byte) (models.HighLow, error) {
	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.HighLow{}, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if resp.Week52High == nil || resp.Week52Low == nil {
		return models.HighLow{}, errors.New("quote response lacks week52High/week52Low")
	}
	return models.HighLow{High: *resp.Week52High, Low: *resp.Week52Low}, nil
}
