package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/oracle-dashboard/webhooks/internal/httpencoder"
	"github.com/oracle-dashboard/webhooks/internal/validator"
)

type (
	logger interface {
		Log(keyvals ...interface{}) error
	}

	middlewareFunc func(http.Handler) http.Handler
)

// MakeHTTPHandler returns an http.Handler that can be used to serve the webhook API.
// Webhook routes can't sit behind bearer auth, the providers authenticate by signature,
// so mdw is applied to every route as is.
func MakeHTTPHandler(e Endpoints, log logger, mdw ...middlewareFunc) http.Handler {
	r := chi.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(log)),
		httptransport.ServerErrorEncoder(httpencoder.EncodeError(log, codeAndMessageFrom)),
	}

	r.Group(func(r chi.Router) {
		for _, m := range mdw {
			r.Use(m)
		}

		r.Get("/", httptransport.NewServer(
			e.GetAppInfo,
			decodeGetAppInfoRequest,
			httpencoder.EncodeResponse,
			options...,
		).ServeHTTP)

		r.Post("/{provider}", httptransport.NewServer(
			e.ReceiveWebhook,
			decodeReceiveWebhookRequest,
			httpencoder.EncodeResponse,
			options...,
		).ServeHTTP)
	})

	return r
}

// returns http error code by error type
func codeAndMessageFrom(err error) (int, interface{}) {
	// Decode errors may wrap a validation error and must stay 500.
	if resp := NewError(err); resp != nil {
		return resp.Code, resp.Message
	}
	if errors.Is(err, validator.ErrValidation) {
		return http.StatusPreconditionFailed, err
	}

	return httpencoder.CodeAndMessageFrom(err)
}

// decodeGetAppInfoRequest is a transport/http.DecodeRequestFunc for the GetAppInfo method.
func decodeGetAppInfoRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return nil, nil
}

// decodeReceiveWebhookRequest is a transport/http.DecodeRequestFunc that keeps
// the HTTP request body unparsed, it's decoded after the signature check.
func decodeReceiveWebhookRequest(_ context.Context, r *http.Request) (interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, mbe.Limit)
		}
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrInvalidRequest, err)
	}

	return ReceiveWebhookRequest{
		Provider: chi.URLParam(r, "provider"),
		Body:     body,
		Header:   r.Header,
	}, nil
}
