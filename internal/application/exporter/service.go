// Package exporter drives a full export run: discover years, page through
// each year's order history, dedupe and collect orders, backfill item
// prices, and hand the rendered file to a sink. All progress is checkpointed
// to the state store so a run survives restarts.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/orderexport/amazon-order-exporter/internal/domain/adfilter"
	"github.com/orderexport/amazon-order-exporter/internal/domain/dates"
	"github.com/orderexport/amazon-order-exporter/internal/domain/export"
	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
	"github.com/orderexport/amazon-order-exporter/internal/domain/urlutil"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/statestore"
)

// ErrNoYears is returned by Start when the requested date range excludes
// every year the account has orders in.
var ErrNoYears = errors.New("exporter: no years match the requested date range")

// ordersPerPage is Amazon's page size; startIndex advances by this much.
const ordersPerPage = 10

// Progress is one progress report of a running export.
type Progress struct {
	RunID   string `json:"runId"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc receives progress reports. Implementations must not block.
type ProgressFunc func(Progress)

// FileSink receives the finished export file.
type FileSink func(export.File) error

// PageFetcher fetches rendered HTML for a URL.
type PageFetcher interface {
	GetHTML(ctx context.Context, url string) (string, error)
}

// Extractor is the page-parsing surface the service depends on.
type Extractor interface {
	ExtractOrders(doc *goquery.Document) []model.Order
	AvailableYears(doc *goquery.Document, now time.Time) []string
	HasNextPage(doc *goquery.Document) bool
	ItemPrices(doc *goquery.Document) map[string]float64
}

// Config holds the service's tunables.
type Config struct {
	// StateKey is the state store key the run is checkpointed under.
	StateKey string
	// RequestDelay is the pause between order-details fetches during price
	// backfill.
	RequestDelay time.Duration
}

// Service runs exports.
type Service struct {
	store     statestore.Store
	fetcher   PageFetcher
	extractor Extractor
	sink      FileSink
	progress  ProgressFunc
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

// NewService wires an export service. A nil progress func is allowed.
func NewService(store statestore.Store, fetcher PageFetcher, extractor Extractor,
	sink FileSink, progress ProgressFunc, logger *slog.Logger, cfg Config) *Service {
	if cfg.StateKey == "" {
		cfg.StateKey = "amazonExporter"
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = 200 * time.Millisecond
	}
	if progress == nil {
		progress = func(Progress) {}
	}
	return &Service{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		sink:      sink,
		progress:  progress,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Status returns the checkpointed state of the current run, or nil when no
// run is in progress.
func (s *Service) Status() (*model.ExportState, error) {
	state, err := s.store.Load(s.cfg.StateKey)
	if errors.Is(err, statestore.ErrNotFound) {
		return nil, nil
	}
	return state, err
}

// Start begins a new export run from an order-history page the caller is
// already on. pageHTML is that page's rendered markup, used to discover the
// available years. Returns an error when a run is already in progress.
func (s *Service) Start(ctx context.Context, opts model.ExportOptions, pageURL, pageHTML string) error {
	if existing, err := s.Status(); err != nil {
		return err
	} else if existing != nil && existing.InProgress {
		return fmt.Errorf("exporter: run %s already in progress", existing.RunID)
	}

	if !urlutil.IsOrderHistoryPage(pageURL) {
		return fmt.Errorf("exporter: %s is not an order history page", pageURL)
	}
	baseURL, err := urlutil.OrderHistoryBaseURL(pageURL)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}

	years := s.extractor.AvailableYears(doc, s.now())
	if !opts.ExportAll {
		years = dates.FilterYearsByRange(years, opts.StartDate, opts.EndDate)
	}
	if len(years) == 0 {
		return ErrNoYears
	}

	state := &model.ExportState{
		RunID:          uuid.NewString(),
		InProgress:     true,
		Format:         opts.Format,
		StartDate:      opts.StartDate,
		EndDate:        opts.EndDate,
		ExportAll:      opts.ExportAll,
		YearsToProcess: years,
		BaseURL:        baseURL,
	}

	s.logger.InfoContext(ctx, "starting export run",
		"run_id", state.RunID, "format", state.Format, "years", len(years))
	s.report(state, 5, "Starting export...")

	// When the caller is already looking at the first year's first page,
	// consume it directly instead of refetching. Unrelated query
	// parameters like ref markers do not matter here.
	if onFirstPage(pageURL, years[0]) {
		if _, err := s.processPage(ctx, state, doc); err != nil {
			return err
		}
		return nil
	}

	return s.store.Save(s.cfg.StateKey, state)
}

// onFirstPage reports whether a URL already shows the given year's first
// page: its timeFilter matches and startIndex is absent or zero.
func onFirstPage(pageURL, year string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	q := u.Query()
	if q.Get("timeFilter") != "year-"+year {
		return false
	}
	start := q.Get("startIndex")
	return start == "" || start == "0"
}

// Step performs one unit of work: fetch the page the checkpoint points at
// and process it. It reloads state from the store every time, so a process
// restart between steps loses nothing. done is true when no run is in
// progress anymore.
func (s *Service) Step(ctx context.Context) (done bool, err error) {
	state, err := s.store.Load(s.cfg.StateKey)
	if errors.Is(err, statestore.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !state.InProgress {
		return true, nil
	}

	year, ok := state.CurrentYear()
	if !ok {
		return true, s.finalize(ctx, state)
	}

	pageURL, err := urlutil.BuildOrderPageURL(state.BaseURL, year, state.CurrentStartIndex)
	if err != nil {
		return false, err
	}

	s.report(state, s.paginationProgress(state),
		fmt.Sprintf("Processing %s (page %d)...", year, state.CurrentStartIndex/ordersPerPage+1))

	pageHTML, err := s.fetcher.GetHTML(ctx, pageURL)
	if err != nil {
		return false, fmt.Errorf("fetching order page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return false, fmt.Errorf("parsing order page: %w", err)
	}

	return s.processPage(ctx, state, doc)
}

// Run drives Step in a loop until the export finishes or fails.
func (s *Service) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// processPage collects a page's orders into the state and advances the
// cursor: next page of the same year while the page is full and has a next
// control, otherwise the next year. When every year is consumed the run is
// finalized.
func (s *Service) processPage(ctx context.Context, state *model.ExportState, doc *goquery.Document) (bool, error) {
	orders := s.extractor.ExtractOrders(doc)

	added := 0
	for _, order := range orders {
		if !state.ExportAll && !s.inRange(state, order) {
			continue
		}
		if state.AddOrder(order) {
			added++
		}
	}

	year, _ := state.CurrentYear()
	s.logger.DebugContext(ctx, "processed order page",
		"year", year, "start_index", state.CurrentStartIndex, "found", len(orders), "added", added)

	if s.extractor.HasNextPage(doc) && added > 0 {
		state.CurrentStartIndex += ordersPerPage
	} else {
		state.CurrentYearIndex++
		state.CurrentStartIndex = 0
	}

	if _, ok := state.CurrentYear(); ok {
		return false, s.store.Save(s.cfg.StateKey, state)
	}
	return true, s.finalize(ctx, state)
}

// inRange reports whether an order's date falls inside the run's date
// range. Undated orders are kept; the range was already applied per year.
func (s *Service) inRange(state *model.ExportState, order model.Order) bool {
	if order.OrderDate == "" {
		return true
	}
	if state.StartDate != "" && order.OrderDate < state.StartDate {
		return false
	}
	if state.EndDate != "" && order.OrderDate > state.EndDate {
		return false
	}
	return true
}

// finalize backfills item prices, filters ads, renders the file, hands it to
// the sink, and clears the checkpoint.
func (s *Service) finalize(ctx context.Context, state *model.ExportState) error {
	s.report(state, 80, "Fetching item prices...")
	s.backfillPrices(ctx, state)

	s.report(state, 95, "Generating export file...")
	orders := adfilter.Filter(state.CollectedOrders)

	file, err := export.BuildFile(orders, state.Format, s.now())
	if err != nil {
		return err
	}
	if err := s.sink(file); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	s.logger.InfoContext(ctx, "export finished",
		"run_id", state.RunID, "orders", len(orders), "file", file.FileName)
	s.report(state, 100, "Export complete")

	return s.store.Clear(s.cfg.StateKey)
}

// backfillPrices fills in per-item prices. Single-item orders take the order
// total directly; multi-item orders need a details page fetch. Fetch
// failures degrade to zero prices rather than failing the run.
func (s *Service) backfillPrices(ctx context.Context, state *model.ExportState) {
	var needy []int
	for i := range state.CollectedOrders {
		order := &state.CollectedOrders[i]
		if len(order.Items) == 1 {
			order.Items[0].Price = order.TotalAmount
			continue
		}
		if len(order.Items) > 1 && order.DetailsURL != "" && hasZeroPrice(order.Items) {
			needy = append(needy, i)
		}
	}

	for n, i := range needy {
		order := &state.CollectedOrders[i]
		s.report(state, 80+n*10/len(needy),
			fmt.Sprintf("Fetching item prices (%d/%d)...", n+1, len(needy)))

		pageHTML, err := s.fetcher.GetHTML(ctx, order.DetailsURL)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping price backfill for order",
				"order_id", order.OrderID, "error", err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unparseable details page",
				"order_id", order.OrderID, "error", err)
			continue
		}

		prices := s.extractor.ItemPrices(doc)
		for j := range order.Items {
			if order.Items[j].Price == 0 {
				order.Items[j].Price = prices[order.Items[j].ASIN]
			}
		}

		if n < len(needy)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.RequestDelay):
			}
		}
	}
}

func hasZeroPrice(items []model.OrderItem) bool {
	for _, item := range items {
		if item.Price == 0 {
			return true
		}
	}
	return false
}

// paginationProgress maps the year/page cursor onto the 5..80 band of the
// progress scale; backfill and rendering own the rest.
func (s *Service) paginationProgress(state *model.ExportState) int {
	total := len(state.YearsToProcess)
	if total == 0 {
		return 5
	}
	pageFrac := float64(state.CurrentStartIndex) / 100
	if pageFrac > 0.9 {
		pageFrac = 0.9
	}
	frac := (float64(state.CurrentYearIndex) + pageFrac) / float64(total)
	return int(frac*75) + 5
}

func (s *Service) report(state *model.ExportState, percent int, message string) {
	s.progress(Progress{RunID: state.RunID, Percent: percent, Message: message})
}
