package metrics

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Transport wraps an http.RoundTripper to record request metrics and log
// each request at debug level. A nil base uses http.DefaultTransport.
func Transport(reg *Registry, logger *zap.Logger, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumentedTransport{reg: reg, logger: logger, base: base}
}

type instrumentedTransport struct {
	reg    *Registry
	logger *zap.Logger
	base   http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if t.reg != nil {
		t.reg.RecordRequest(req.URL.Host, status, duration.Seconds())
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	}
	if err != nil {
		t.logger.Debug("http request failed", append(fields, zap.Error(err))...)
	} else {
		t.logger.Debug("http request", fields...)
	}

	return resp, err
}
