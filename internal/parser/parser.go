package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mtrev/fossawatch/internal/models"
)

// rawDocument mirrors the snapshot JSON the portal collaborators hand over:
// { "workOrders": [ ... ] }.
type rawDocument struct {
	WorkOrders []rawWorkOrder `json:"workOrders"`
}

type rawWorkOrder struct {
	ID       string `json:"id"`
	Customer struct {
		Name        string `json:"name"`
		StoreNumber string `json:"storeNumber"`
		Address     struct {
			CityState string `json:"cityState"`
		} `json:"address"`
	} `json:"customer"`
	Visits struct {
		NextVisit struct {
			Date string `json:"date"`
		} `json:"nextVisit"`
	} `json:"visits"`
	Services []rawService `json:"services"`
}

type rawService struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// ParseSnapshot decodes and validates a snapshot JSON document. The raw
// shape is converted into the typed model exactly once, here; malformed
// records fail the whole call with models.ErrInvalidInput rather than being
// skipped.
func ParseSnapshot(r io.Reader) ([]models.WorkOrder, error) {
	const opn = "parser.ParseSnapshot"

	if r == nil {
		return nil, fmt.Errorf("%s: nil reader: %w", opn, models.ErrInvalidInput)
	}

	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: malformed snapshot document: %w", opn, models.ErrInvalidInput)
	}

	orders := make([]models.WorkOrder, 0, len(doc.WorkOrders))
	for i, raw := range doc.WorkOrders {
		wo, err := raw.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: work order at index %d: %w", opn, i, err)
		}
		orders = append(orders, wo)
	}

	if err := ValidateOrders(orders); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return orders, nil
}

func (r rawWorkOrder) toModel() (models.WorkOrder, error) {
	if strings.TrimSpace(r.ID) == "" {
		return models.WorkOrder{}, fmt.Errorf("missing id: %w", models.ErrInvalidInput)
	}

	visitDate, err := ParseVisitDate(r.Visits.NextVisit.Date)
	if err != nil {
		return models.WorkOrder{}, err
	}

	count := 0
	for _, svc := range r.Services {
		if IsCalibrationService(svc.Type, svc.Description) {
			count += svc.Quantity
		}
	}

	return models.WorkOrder{
		ID:             strings.TrimSpace(r.ID),
		CustomerName:   strings.TrimSpace(r.Customer.Name),
		StoreNumber:    strings.TrimSpace(r.Customer.StoreNumber),
		CityState:      strings.TrimSpace(r.Customer.Address.CityState),
		VisitDate:      visitDate,
		EquipmentCount: count,
	}, nil
}

// ValidateOrders enforces the per-snapshot invariants: every order has an
// ID, and IDs are unique.
func ValidateOrders(orders []models.WorkOrder) error {
	seen := make(map[string]struct{}, len(orders))
	for _, wo := range orders {
		if wo.ID == "" {
			return fmt.Errorf("work order without id: %w", models.ErrInvalidInput)
		}
		if _, dup := seen[wo.ID]; dup {
			return fmt.Errorf("duplicate work order id %s: %w", wo.ID, models.ErrInvalidInput)
		}
		seen[wo.ID] = struct{}{}
	}
	return nil
}

// ParseVisitDate parses the portal's date strings. An empty string means
// the job is unscheduled and yields nil.
func ParseVisitDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil //nolint:nilnil // absent date is a valid state, not an error
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unparseable visit date %q: %w", s, models.ErrInvalidInput)
}

// IsCalibrationService reports whether a service entry counts toward the
// billable dispenser/meter-calibration equipment total.
func IsCalibrationService(svcType, description string) bool {
	for _, s := range []string{svcType, description} {
		s = strings.ToLower(s)
		if strings.Contains(s, "calibration") || strings.Contains(s, "dispenser") || strings.Contains(s, "meter") {
			return true
		}
	}
	return false
}
