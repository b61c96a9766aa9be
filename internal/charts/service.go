// Package charts mirrors aeronautical chart PDFs published on the SACAA
// website into a Store.
package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/bjaus/invoke/logger"
)

// DefaultDelay is the pause between document downloads.
const DefaultDelay = 500 * time.Millisecond

// Logger is the subset of *logger.Logger used by Service.
type Logger interface {
	Debug(msg string, fields logger.Fields)
	Info(msg string, fields logger.Fields)
	Warn(msg string, fields logger.Fields)
}

// Options configures a Service.
type Options struct {
	BaseURL string
	// Pages are index page paths relative to BaseURL.
	Pages []string
	// Airports limits the run to these ICAO codes. Empty means all.
	Airports []string
	// SkipAirports are never fetched, even when listed in Airports.
	SkipAirports []string
	// Delay between downloads. Zero disables the pause.
	Delay  time.Duration
	Client *http.Client
	Store  Store
	Logger Logger
}

// Report summarizes a Run.
type Report struct {
	Airports   int `json:"airports"`
	Skipped    int `json:"skipped"`
	Documents  int `json:"documents"`
	Downloaded int `json:"downloaded"`
	Existing   int `json:"existing"`
}

// Service downloads every chart of every wanted airport once.
type Service struct {
	base   *url.URL
	opts   Options
	client *http.Client
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("charts: store is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("charts: logger is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("charts: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("charts: base url %q must be absolute", opts.BaseURL)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{base: base, opts: opts, client: client}, nil
}

// Run walks the index pages, then each wanted airport page, storing every
// linked PDF that the store does not already hold. It stops at the first
// error and returns the counts gathered so far.
func (s *Service) Run(ctx context.Context) (Report, error) {
	var report Report

	airports, err := s.airports(ctx)
	if err != nil {
		return report, err
	}
	report.Airports = len(airports)
	s.opts.Logger.Info("Airports found", logger.Fields{"count": len(airports)})

	for _, airport := range airports {
		if !s.wanted(airport.ICAO) {
			report.Skipped++
			continue
		}

		page, err := s.get(ctx, airport.Route)
		if err != nil {
			return report, fmt.Errorf("airport %s: %w", airport.ICAO, err)
		}

		docs, err := ExtractDocuments(string(page))
		if err != nil {
			return report, fmt.Errorf("airport %s: %w", airport.ICAO, err)
		}
		report.Documents += len(docs)
		s.opts.Logger.Debug("Airport documents", logger.Fields{
			"icao":      airport.ICAO,
			"route":     airport.Name,
			"documents": len(docs),
		})

		for _, doc := range docs {
			stored, err := s.download(ctx, airport, doc)
			if err != nil {
				return report, err
			}
			if !stored {
				report.Existing++
				continue
			}
			report.Downloaded++
			if err := sleep(ctx, s.opts.Delay); err != nil {
				return report, err
			}
		}
	}

	s.opts.Logger.Info("Charts synced", logger.Fields{"report": report})
	return report, nil
}

func (s *Service) airports(ctx context.Context) ([]Airport, error) {
	var airports []Airport
	seen := make(map[string]struct{})

	for _, p := range s.opts.Pages {
		page, err := s.get(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("index page: %w", err)
		}
		found, err := ExtractAirports(string(page))
		if err != nil {
			return nil, fmt.Errorf("index page: %w", err)
		}
		for _, a := range found {
			if _, ok := seen[a.Route]; ok {
				continue
			}
			seen[a.Route] = struct{}{}
			airports = append(airports, a)
		}
	}
	return airports, nil
}

func (s *Service) wanted(icao string) bool {
	if len(s.opts.Airports) > 0 && !slices.Contains(s.opts.Airports, icao) {
		return false
	}
	return !slices.Contains(s.opts.SkipAirports, icao)
}

// download stores doc and reports false when it was already present.
func (s *Service) download(ctx context.Context, airport Airport, doc string) (bool, error) {
	icao := airport.ICAO
	if icao == "" {
		icao = "UNKNOWN"
	}
	key := icao + "/" + FileName(doc, airport.ICAO)

	exists, err := s.opts.Store.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	data, err := s.get(ctx, doc)
	if err != nil {
		s.opts.Logger.Warn("Write error", logger.Fields{"document": doc, "error": err})
		return false, fmt.Errorf("document %s: %w", doc, err)
	}
	if err := s.opts.Store.Put(ctx, key, data); err != nil {
		s.opts.Logger.Warn("Write error", logger.Fields{"document": doc, "error": err})
		return false, err
	}

	s.opts.Logger.Debug("Chart stored", logger.Fields{"key": key, "bytes": len(data)})
	return true, nil
}

func (s *Service) get(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", ref, err)
	}
	target := s.base.ResolveReference(u).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
