package server

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/oracle-dashboard/webhooks/internal/validator"
)

type (
	// Endpoints is a collection of all the endpoints that comprise a server.
	Endpoints struct {
		GetAppInfo     endpoint.Endpoint
		ReceiveWebhook endpoint.Endpoint
	}

	Config struct {
		AppName string // AppName is the name of the application reported by the info endpoint.
		Version string // Version is the build version, usually the commit hash.
	}

	webhookService interface {
		Receive(ctx context.Context, provider string, body []byte, header http.Header) (interface{}, error)
		Providers() []string
	}
)

// MakeEndpoints returns an Endpoints struct where each field is an endpoint
// that comprises the server.
func MakeEndpoints(ws webhookService, cfg Config) Endpoints {
	return Endpoints{
		GetAppInfo:     makeGetAppInfoEndpoint(ws, cfg),
		ReceiveWebhook: makeReceiveWebhookEndpoint(ws),
	}
}

// GetAppInfoResponse is the response type for the GetAppInfo method.
type GetAppInfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version,omitempty"`
	Providers []string `json:"providers"`
}

// makeGetAppInfoEndpoint returns an endpoint function for the GetAppInfo method.
func makeGetAppInfoEndpoint(ws webhookService, cfg Config) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return GetAppInfoResponse{
			Name:      cfg.AppName,
			Version:   cfg.Version,
			Providers: ws.Providers(),
		}, nil
	}
}

// ReceiveWebhookRequest is the request type for the ReceiveWebhook method.
// Body is kept raw: the signature covers the exact bytes sent by the provider.
type ReceiveWebhookRequest struct {
	Provider string      `json:"-" validate:"required" label:"Provider"`
	Body     []byte      `json:"-"`
	Header   http.Header `json:"-"`
}

// makeReceiveWebhookEndpoint returns an endpoint function for the ReceiveWebhook method.
func makeReceiveWebhookEndpoint(ws webhookService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(ReceiveWebhookRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}
		if v := validator.ValidateStruct(&req); len(v) > 0 {
			return nil, validator.NewValidationError(v)
		}

		return ws.Receive(ctx, req.Provider, req.Body, req.Header)
	}
}
