package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tripsplit/internal/apperr"
)

const (
	// fxWindowDays is how many days of rates a weekly view covers.
	fxWindowDays = 7

	// fxFallbackDays is how far back a single day's lookup may step when
	// the provider publishes nothing for that date (weekends, holidays).
	fxFallbackDays = 5

	// fxCacheTTLDays is how long cached per-date rate tables are kept
	// before the sweep drops them.
	fxCacheTTLDays = 7
)

// DailyRate is one day's base exchange rate for a currency.
type DailyRate struct {
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// fxQuote is one row of the provider's per-date rate table.
type fxQuote struct {
	CurrencyUnit string `json:"cur_unit"`
	BaseRate     string `json:"deal_bas_r"`
}

// FxService fetches daily exchange rates from an external provider and
// caches the per-date rate tables. Rate tables are immutable once
// published, so cached entries never go stale, only old.
type FxService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]map[string]decimal.Decimal
}

// NewFxService creates a new FxService talking to the provider at
// baseURL. The client may carry its own timeout; pass nil for the
// default client.
func NewFxService(client *http.Client, baseURL, apiKey string) *FxService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FxService{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		now:     time.Now,
		cache:   make(map[string]map[string]decimal.Decimal),
	}
}

// WeeklyRates returns the base rate of a currency for each of the
// seven days ending at end, oldest first. A zero end means today. Days
// the provider skipped fall back to the most recent published table
// within five days; a day with no table in that window is omitted.
func (s *FxService) WeeklyRates(ctx context.Context, end time.Time, currency string) ([]DailyRate, error) {
	currency = strings.ToUpper(currency)
	if end.IsZero() {
		end = s.now()
	}
	end = end.Truncate(24 * time.Hour)

	rates := make([]DailyRate, 0, fxWindowDays)
	for i := fxWindowDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		rate, ok, err := s.rateFor(ctx, day, currency)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rates = append(rates, DailyRate{Date: day.Format("2006-01-02"), Rate: rate})
	}

	if len(rates) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("no rates published for %s", currency))
	}
	return rates, nil
}

// rateFor resolves the rate for one calendar day, stepping back through
// earlier days when the provider has no table for it.
func (s *FxService) rateFor(ctx context.Context, day time.Time, currency string) (decimal.Decimal, bool, error) {
	for back := 0; back <= fxFallbackDays; back++ {
		date := day.AddDate(0, 0, -back)
		table, err := s.tableFor(ctx, date)
		if err != nil {
			return decimal.Zero, false, err
		}
		if len(table) == 0 {
			continue
		}
		rate, ok := table[currency]
		if !ok {
			return decimal.Zero, false, apperr.NotFound(fmt.Sprintf("currency %s not quoted", currency))
		}
		return rate, true, nil
	}
	return decimal.Zero, false, nil
}

// tableFor returns the cached rate table for a date, fetching it from
// the provider on a miss. An empty table is cached too so holiday dates
// are not refetched.
func (s *FxService) tableFor(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	key := date.Format("2006-01-02")

	s.mu.Lock()
	table, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return table, nil
	}

	table, err := s.fetch(ctx, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = table
	s.sweepLocked()
	s.mu.Unlock()

	return table, nil
}

func (s *FxService) fetch(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("authkey", s.apiKey)
	q.Set("searchdate", date.Format("20060102"))
	q.Set("data", "AP01")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("FX fetch failed", "date", date.Format("2006-01-02"), "error", err)
		return nil, apperr.Internal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fx provider returned status %d", resp.StatusCode)
		slog.Error("FX fetch failed", "date", date.Format("2006-01-02"), "error", err)
		return nil, apperr.Internal(err)
	}

	var quotes []fxQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		slog.Error("FX decode failed", "date", date.Format("2006-01-02"), "error", err)
		return nil, apperr.Internal(err)
	}

	table := make(map[string]decimal.Decimal, len(quotes))
	for _, quote := range quotes {
		// The provider quotes some currencies per 100 units, e.g.
		// "JPY(100)". Strip the qualifier so lookups use the bare code.
		unit := quote.CurrencyUnit
		if idx := strings.IndexByte(unit, '('); idx >= 0 {
			unit = unit[:idx]
		}

		rate, err := decimal.NewFromString(strings.ReplaceAll(quote.BaseRate, ",", ""))
		if err != nil {
			slog.Warn("FX quote unparsable", "currency", quote.CurrencyUnit, "rate", quote.BaseRate)
			continue
		}
		table[strings.ToUpper(unit)] = rate
	}
	return table, nil
}

// sweepLocked drops cached tables older than the TTL. Caller holds mu.
func (s *FxService) sweepLocked() {
	cutoff := s.now().AddDate(0, 0, -fxCacheTTLDays).Format("2006-01-02")
	for key := range s.cache {
		if key < cutoff {
			delete(s.cache, key)
		}
	}
}
