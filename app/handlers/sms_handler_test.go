package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/dto"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingDeliveryFlow struct {
	last *dto.DeliveryReportRequest
}

func (f *capturingDeliveryFlow) ProcessDeliveryReport(ctx context.Context, req *dto.DeliveryReportRequest, metadata *businessflow.ClientMetadata) (*dto.DeliveryReportResponse, error) {
	f.last = req
	return &dto.DeliveryReportResponse{Acknowledged: true, Result: "delivered"}, nil
}

func newDeliveryTestApp(flow businessflow.DeliveryReportFlow) *fiber.App {
	app := fiber.New()
	handler := NewSMSHandler(nil, flow)
	app.Get("/delivery-report", handler.DeliveryReport)
	app.Post("/delivery-report", handler.DeliveryReport)
	return app
}

func TestDeliveryReportBinding(t *testing.T) {
	tests := []struct {
		name    string
		request func() *http.Request
	}{
		{
			name: "PostJSON",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/delivery-report",
					strings.NewReader(`{"message_id":"prov-1","status":"delivered","reason":"ok"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
		},
		{
			name: "PostForm",
			request: func() *http.Request {
				form := url.Values{}
				form.Set("message_id", "prov-1")
				form.Set("status", "delivered")
				form.Set("reason", "ok")
				req := httptest.NewRequest(http.MethodPost, "/delivery-report",
					strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			},
		},
		{
			name: "PostWithQueryOnly",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost,
					"/delivery-report?message_id=prov-1&status=delivered&reason=ok", nil)
			},
		},
		{
			name: "GetQuery",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet,
					"/delivery-report?message_id=prov-1&status=delivered&reason=ok", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := &capturingDeliveryFlow{}
			app := newDeliveryTestApp(flow)

			resp, err := app.Test(tt.request())
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			require.NotNil(t, flow.last)
			assert.Equal(t, "prov-1", flow.last.ResolveMessageID())
			assert.Equal(t, "delivered", flow.last.Status)
			assert.Equal(t, "ok", flow.last.Reason)
		})
	}
}
