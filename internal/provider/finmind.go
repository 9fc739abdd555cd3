package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kissncome-byte/stock-app/internal/platform/httpx"
	"github.com/kissncome-byte/stock-app/pkg/model"
)

const finmindBaseURL = "https://api.finmindtrade.com/api/v4/data"

// FinMindProvider fetches Taiwan daily bars from the FinMind dataset API.
// FinMind reports volume in shares and names high/low "max"/"min"; both
// are normalized here, at the boundary.
type FinMindProvider struct {
	token        string
	client       *httpx.Client
	sharesPerLot int
	logger       zerolog.Logger
}

// NewFinMindProvider creates a new FinMind provider. sharesPerLot converts
// FinMind's share-count volume into board lots.
func NewFinMindProvider(token string, perMinute, sharesPerLot int) *FinMindProvider {
	return &FinMindProvider{
		token: token,
		client: httpx.NewClient(httpx.Options{
			Name:      "finmind",
			PerMinute: perMinute,
		}),
		sharesPerLot: sharesPerLot,
		logger:       log.With().Str("component", "finmind").Logger(),
	}
}

// Name returns the provider name
func (p *FinMindProvider) Name() string {
	return "finmind"
}

// IsAvailable reports whether a token is configured.
func (p *FinMindProvider) IsAvailable() bool {
	return p.token != ""
}

type finmindResponse struct {
	Msg    string `json:"msg"`
	Status int    `json:"status"`
	Data   []struct {
		Date          string  `json:"date"`
		StockID       string  `json:"stock_id"`
		TradingVolume float64 `json:"Trading_Volume"` // shares
		TradingMoney  float64 `json:"Trading_money"`  // TWD notional
		Open          float64 `json:"open"`
		Max           float64 `json:"max"`
		Min           float64 `json:"min"`
		Close         float64 `json:"close"`
	} `json:"data"`
}

// GetDailyBars fetches the TaiwanStockPrice dataset for one symbol.
func (p *FinMindProvider) GetDailyBars(ctx context.Context, symbol string, start time.Time) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("dataset", "TaiwanStockPrice")
	q.Set("data_id", symbol)
	q.Set("start_date", start.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finmindBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, &Error{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	var body finmindResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Provider: p.Name(), Err: fmt.Errorf("decoding response: %w", err)}
	}
	if body.Status != 200 {
		return nil, &Error{Provider: p.Name(), Err: fmt.Errorf("api status %d: %s", body.Status, body.Msg)}
	}

	bars := make([]model.Bar, 0, len(body.Data))
	for _, d := range body.Data {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			p.logger.Warn().Str("symbol", symbol).Str("date", d.Date).Msg("skipping bar with unparsable date")
			continue
		}
		bars = append(bars, model.Bar{
			Date:     date,
			Open:     d.Open,
			High:     d.Max,
			Low:      d.Min,
			Close:    d.Close,
			Volume:   int64(d.TradingVolume) / int64(p.sharesPerLot),
			Turnover: d.TradingMoney,
		})
	}

	p.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched daily bars")
	return bars, nil
}
