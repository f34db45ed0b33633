package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mtrev/fossawatch/internal/models"
	"github.com/mtrev/fossawatch/internal/parser"
)

// PortalClient fetches and parses the portal's schedule page. Fetch and
// parse are separate so the caller can hash the raw body in between.
type PortalClient interface {
	GetScheduleResponse(ctx context.Context) (*http.Response, error)
	ParseScheduleResponse(ctx context.Context, inp io.ReadCloser) ([]models.WorkOrder, error)
}

type Scraper struct {
	log       *slog.Logger
	client    *http.Client
	portalURL string
}

func NewScraper(log *slog.Logger, portalURL string) *Scraper {
	return &Scraper{log: log, portalURL: portalURL, client: http.DefaultClient}
}

// FetchSchedule retrieves and parses the full work-order schedule.
func (s *Scraper) FetchSchedule(ctx context.Context) ([]models.WorkOrder, error) {
	resp, err := s.GetScheduleResponse(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule response: %w", err)
	}
	defer resp.Body.Close()

	return s.ParseScheduleResponse(ctx, resp.Body)
}

func (s *Scraper) GetScheduleResponse(ctx context.Context) (*http.Response, error) {
	reqURL, err := url.Parse(s.portalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal URL %s: %w", s.portalURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL.String(), err)
	}

	req.Header.Add("User-Agent", "Mozilla/5.0 (compatible; GoHttpClient/1.0)")

	s.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", s.portalURL, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code error: [%d] %s", res.StatusCode, res.Status)
	}

	s.log.InfoContext(ctx, "Successfully received schedule response", "status code", res.StatusCode)

	return res, nil
}

// ParseScheduleResponse extracts work-order rows from the schedule table.
// Rows with an unexpected cell count are logged and skipped; a malformed
// ID or date fails the whole parse.
func (s *Scraper) ParseScheduleResponse(ctx context.Context, inp io.ReadCloser) ([]models.WorkOrder, error) {
	doc, err := goquery.NewDocumentFromReader(inp)
	if err != nil {
		return nil, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	const numberOfCells = 6
	const (
		idIdx = iota
		customerIdx
		storeIdx
		cityStateIdx
		dateIdx
		servicesIdx
	)

	var (
		orders   []models.WorkOrder
		parseErr error
	)

	doc.Find(".workorder-table tbody tr").Each(func(idx int, sel *goquery.Selection) {
		if parseErr != nil {
			return
		}

		cells := sel.Find("td")
		if cells.Length() != numberOfCells {
			s.log.WarnContext(ctx, "table row has unexpected cell count", "index", idx, "length", cells.Length())
			return
		}

		id := strings.TrimSpace(cells.Eq(idIdx).Text())
		if id == "" {
			parseErr = fmt.Errorf("schedule row %d has no work order id: %w", idx, models.ErrInvalidInput)
			return
		}

		visitDate, derr := parser.ParseVisitDate(cells.Eq(dateIdx).Text())
		if derr != nil {
			parseErr = fmt.Errorf("schedule row %d: %w", idx, derr)
			return
		}

		order := models.WorkOrder{
			ID:             id,
			CustomerName:   strings.TrimSpace(cells.Eq(customerIdx).Text()),
			StoreNumber:    strings.TrimSpace(cells.Eq(storeIdx).Text()),
			CityState:      strings.TrimSpace(cells.Eq(cityStateIdx).Text()),
			VisitDate:      visitDate,
			EquipmentCount: countEquipment(cells.Eq(servicesIdx).Text()),
		}
		s.log.DebugContext(ctx, "Parsed work order",
			"ID", order.ID,
			"Customer", order.CustomerName,
			"EquipmentCount", order.EquipmentCount,
		)
		orders = append(orders, order)
	})

	if parseErr != nil {
		return nil, parseErr
	}

	if err = parser.ValidateOrders(orders); err != nil {
		return nil, fmt.Errorf("schedule table: %w", err)
	}

	return orders, nil
}

// countEquipment sums billable calibration quantities from a services cell,
// formatted as "Meter Calibration x2; Pump Repair x1". A service entry
// without a quantity suffix counts as one unit.
func countEquipment(cell string) int {
	total := 0
	for _, entry := range strings.Split(cell, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, qty := entry, 1
		if pos := strings.LastIndex(entry, " x"); pos >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(entry[pos+2:])); err == nil {
				name, qty = entry[:pos], n
			}
		}
		if parser.IsCalibrationService(name, "") {
			total += qty
		}
	}
	return total
}
