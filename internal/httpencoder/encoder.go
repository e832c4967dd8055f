package httpencoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
)

type (
	logger interface {
		Log(keyvals ...interface{}) error
	}

	// ErrorResponse is the body of every error response.
	ErrorResponse struct {
		Code  int         `json:"code"`
		Error interface{} `json:"error"`
	}

	codeAndMessageFunc func(err error) (int, interface{})
)

// EncodeResponse is a transport/http.EncodeResponseFunc that encodes
// the response as JSON to the response writer.
func EncodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if response == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(response)
}

// EncodeError returns a transport/http.ErrorEncoder which writes the error
// as JSON with the status code resolved by fn.
func EncodeError(l logger, fn codeAndMessageFunc) httptransport.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			err = errors.New("unknown error")
		}
		if fn == nil {
			fn = CodeAndMessageFrom
		}

		code, msg := fn(err)
		if code >= http.StatusInternalServerError && l != nil {
			l.Log("msg", "internal error", "code", code, "error", err.Error())
		}

		if e, ok := msg.(error); ok {
			msg = e.Error()
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Code: code, Error: msg})
	}
}

// CodeAndMessageFrom is the fallback mapping: unknown errors are internal.
func CodeAndMessageFrom(err error) (int, interface{}) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, err
	}

	return http.StatusInternalServerError, err
}
