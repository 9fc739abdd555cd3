package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kissncome-byte/stock-app/internal/platform/httpx"
	"github.com/kissncome-byte/stock-app/pkg/model"
)

const twseQuoteURL = "https://mis.twse.com.tw/stock/api/getStockInfo.jsp"

// TWSEQuoteProvider fetches live quotes from the TWSE MIS feed. The feed
// needs no API key; it answers both TSE and OTC channels in one request.
type TWSEQuoteProvider struct {
	client *httpx.Client
	logger zerolog.Logger
}

// NewTWSEQuoteProvider creates a new TWSE MIS quote provider.
func NewTWSEQuoteProvider(perMinute int, timeout time.Duration) *TWSEQuoteProvider {
	return &TWSEQuoteProvider{
		client: httpx.NewClient(httpx.Options{
			Name:      "twse-mis",
			PerMinute: perMinute,
			Timeout:   timeout,
		}),
		logger: log.With().Str("component", "twse_quote").Logger(),
	}
}

// Name returns the provider name
func (p *TWSEQuoteProvider) Name() string {
	return "twse-mis"
}

type misResponse struct {
	MsgArray []struct {
		Symbol string `json:"c"`
		Name   string `json:"n"`
		Market string `json:"ex"`
		Last   string `json:"z"` // "-" when no trade has printed
		Volume string `json:"v"` // cumulative lots
		Date   string `json:"d"` // 20060102
		Time   string `json:"t"` // 15:04:05
	} `json:"msgArray"`
}

// GetQuote fetches the current quote for a symbol, trying the TSE channel
// with an OTC fallback in one call. A market without a printed trade
// yields a quote with Price 0; the caller falls back to the last close.
func (p *TWSEQuoteProvider) GetQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	url := fmt.Sprintf("%s?ex_ch=tse_%s.tw|otc_%s.tw&json=1&delay=0", twseQuoteURL, symbol, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, &Error{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	var body misResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Provider: p.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(body.MsgArray) == 0 {
		return nil, &Error{Provider: p.Name(), Err: fmt.Errorf("no quote data for %s", symbol)}
	}

	info := body.MsgArray[0]
	quote := &model.Quote{Symbol: symbol}

	if price, err := strconv.ParseFloat(info.Last, 64); err == nil {
		quote.Price = price
	} else {
		// "z" is "-" before the first trade of the session
		p.logger.Debug().Str("symbol", symbol).Str("last", info.Last).Msg("no traded price in quote")
	}
	if vol, err := strconv.ParseInt(info.Volume, 10, 64); err == nil {
		quote.Volume = vol
	}

	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	if ts, err := time.ParseInLocation("20060102 15:04:05", info.Date+" "+info.Time, loc); err == nil {
		quote.Time = ts
	}

	return quote, nil
}
