package mocks

import (
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/mtrev/fossawatch/internal/models"
)

// PortalClient is a mock type for the scraper.PortalClient interface.
type PortalClient struct {
	mock.Mock
}

func (m *PortalClient) GetScheduleResponse(ctx context.Context) (*http.Response, error) {
	args := m.Called(ctx)

	var resp *http.Response
	if args.Get(0) != nil {
		resp = args.Get(0).(*http.Response)
	}
	return resp, args.Error(1)
}

func (m *PortalClient) ParseScheduleResponse(ctx context.Context, inp io.ReadCloser) ([]models.WorkOrder, error) {
	args := m.Called(ctx, inp)

	var orders []models.WorkOrder
	if args.Get(0) != nil {
		orders = args.Get(0).([]models.WorkOrder)
	}
	return orders, args.Error(1)
}
