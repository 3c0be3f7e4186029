package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	metaculusBase     = "https://www.metaculus.com"
	metaculusMaxLimit = 100
)

// Metaculus es una plataforma de forecasting sin dinero: solo mercados y resoluciones.
type Metaculus struct {
	client *httpx.Client
	base   string
}

func NewMetaculus(client *httpx.Client, base string) *Metaculus {
	if base == "" {
		base = metaculusBase
	}
	return &Metaculus{client: client, base: strings.TrimRight(base, "/")}
}

func (m *Metaculus) Platform() domain.Platform { return domain.PlatformMetaculus }

func (m *Metaculus) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, metaculusMaxLimit)
	u := fmt.Sprintf("%s/api2/questions/?status=open&type=binary&order_by=-activity&limit=%d", m.base, limit)

	var page metaculusPage
	if err := m.client.GetJSON(ctx, u, &page); err != nil {
		return nil, fmt.Errorf("metaculus.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(page.Results))
	for _, q := range page.Results {
		markets = append(markets, q.toDomain(m.base))
	}
	return markets, nil
}

// ResolveMarket interpreta resolution: 1/"yes" → YES, 0/"no" → NO,
// negativos o "annulled"/"ambiguous" → devolución del stake.
func (m *Metaculus) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	u := fmt.Sprintf("%s/api2/questions/%s/", m.base, url.PathEscape(strings.TrimSpace(marketID)))

	var q metaculusQuestion
	if err := m.client.GetJSON(ctx, u, &q); err != nil {
		return domain.Resolution{}, fmt.Errorf("metaculus.ResolveMarket: %w", err)
	}

	res := domain.Resolution{MarketID: marketID}
	outcome, refund, ok := parseMetaculusResolution(q.Resolution)
	if !ok {
		return res, nil
	}
	res.Resolved = true
	res.WinningOutcome = outcome
	res.Refund = refund
	return res, nil
}

func parseMetaculusResolution(raw json.RawMessage) (outcome int, refund, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		switch {
		case num == 1:
			return 0, false, true
		case num == 0:
			return 1, false, true
		case num < 0:
			return 0, true, true
		}
		return 0, false, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, false
	}
	switch strings.ToLower(s) {
	case "yes":
		return 0, false, true
	case "no":
		return 1, false, true
	case "annulled", "ambiguous":
		return 0, true, true
	}
	return 0, false, false
}

func (q metaculusQuestion) toDomain(base string) domain.MarketData {
	p := q.Community.Full.Q2
	status := domain.MarketOpen
	if q.Status != "" && q.Status != "open" {
		status = domain.MarketClosed
	}
	u := q.PageURL
	if u != "" && strings.HasPrefix(u, "/") {
		u = base + u
	}
	m := domain.MarketData{
		Platform: domain.PlatformMetaculus,
		ID:       fmt.Sprintf("%d", q.ID),
		Question: q.Title,
		URL:      u,
		Outcomes: []string{"YES", "NO"},
		EndDate:  parseTime(q.CloseTime),
		Volume:   float64(q.Forecasters),
		Status:   status,
	}
	if p > 0 && p < 1 {
		m.Prices = []float64{p, 1 - p}
	}
	return m
}
