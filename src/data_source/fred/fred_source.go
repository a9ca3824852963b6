package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"macro-observer/src/catalog"
	"macro-observer/src/helpers"
	"macro-observer/src/interfaces"
	"macro-observer/src/logger"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------
// FREDSource fetches observation series from the St. Louis Fed FRED API.
// One HTTP call per series code; there is no batch endpoint.
// -----------------------------------------------------------------------------

type FREDSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFREDSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *FREDSource {
	return &FREDSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(nil, "FREDSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *FREDSource) Name() string {
	return "fred"
}

// -----------------------------------------------------------------------------

type fredObservationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// -----------------------------------------------------------------------------

// FetchSeries fetches and parses one series from its start date onward.
func (s *FREDSource) FetchSeries(ctx context.Context, code string, start time.Time) (models.MSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.MSeries{}, err
	}

	params := map[string]string{
		"series_id":         code,
		"api_key":           s.Config.Provider.APIKey,
		"file_type":         "json",
		"observation_start": start.Format("2006-01-02"),
	}

	url := fmt.Sprintf("%s/series/observations", s.Config.Provider.BaseURL)

	respBytes, err := s.Network.Get(url, params)
	if err != nil {
		return models.MSeries{}, helpers.NewSeriesError(code, err)
	}

	return s.parseObservations(code, respBytes)
}

// -----------------------------------------------------------------------------

func (s *FREDSource) parseObservations(code string, data []byte) (models.MSeries, error) {
	var resp fredObservationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MSeries{}, fmt.Errorf("json unmarshal failed for %s: %w", code, err)
	}

	if resp.ErrorCode != 0 {
		return models.MSeries{}, helpers.NewSeriesError(code,
			fmt.Errorf("fred api error %d: %s", resp.ErrorCode, resp.ErrorMessage))
	}

	if len(resp.Observations) == 0 {
		return models.MSeries{}, helpers.NewSeriesError(code, fmt.Errorf("no observations in response"))
	}

	name := code
	if spec, ok := catalog.ByCode(code); ok {
		name = spec.Name
	}

	series := models.MSeries{Code: code, Name: name}
	skipped := 0

	for _, obs := range resp.Observations {
		// FRED encodes a missing observation as the literal "."
		if obs.Value == "." {
			skipped++
			continue
		}

		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			s.Logger.Info("Unparseable value %q for %s at %s, skipping", obs.Value, code, obs.Date)
			skipped++
			continue
		}

		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			s.Logger.Info("Unparseable date %q for %s, skipping", obs.Date, code)
			skipped++
			continue
		}

		series.Obs = append(series.Obs, models.MObservation{Date: date, Value: value})
	}

	if len(series.Obs) == 0 {
		return models.MSeries{}, helpers.NewSeriesError(code, fmt.Errorf("no valid observations (%d skipped)", skipped))
	}

	// The pipeline assumes ascending dates; FRED usually returns them
	// sorted but does not document it.
	sort.Slice(series.Obs, func(i, j int) bool {
		return series.Obs[i].Date.Before(series.Obs[j].Date)
	})

	s.Logger.Info("Fetched %s: %d valid points [%s -> %s]",
		code, len(series.Obs),
		series.Obs[0].Date.Format("2006-01-02"),
		series.Obs[len(series.Obs)-1].Date.Format("2006-01-02"))

	return series, nil
}

// -----------------------------------------------------------------------------

// FetchBatch fetches a set of codes with bounded concurrency. Every code
// produces exactly one result; a failed code is reported in its result and
// never aborts the rest of the batch.
func (s *FREDSource) FetchBatch(ctx context.Context, codes []string, start time.Time) []models.MFetchResult {
	results := make([]models.MFetchResult, len(codes))
	if len(codes) == 0 {
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for i, code := range codes {
		wg.Add(1)
		go func(idx int, c string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Small delay to stay well under the provider rate limit
			time.Sleep(10 * time.Millisecond)

			name := c
			if spec, ok := catalog.ByCode(c); ok {
				name = spec.Name
			}

			series, err := s.FetchSeries(ctx, c, start)
			if err != nil {
				s.Logger.Info("Error fetching series %s: %v", c, err)
				results[idx] = models.MFetchResult{Code: c, Name: name, Err: err}
				return
			}

			results[idx] = models.MFetchResult{Code: c, Name: name, Series: series}
		}(i, code)
	}

	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if !r.Failed() {
			succeeded++
		}
	}
	s.Logger.Info("FRED: Fetched %d/%d series successfully", succeeded, len(codes))

	return results
}
