package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/errors"
	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/logger"
)

const (
	PathMetrics = "metrics"
	PathLogs    = "logs"

	HeaderApiKey = "Api-Key"
)

// HTTP posts metric and log payloads as JSON to an ingestion endpoint:
// *types.PutMetricDataRequest goes to <endpoint>/metrics and
// *types.PutLogEventsRequest goes to <endpoint>/logs.
//
// Any non-2xx response is reported as *errors.SendError. HTTP is safe for
// concurrent use.
type HTTP struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

var _ dispatch.Sink = &HTTP{}

func NewHTTP(endpoint string, apiKey string, opts ...Option) (*HTTP, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_INVALID_SETUP,
			SourceErr: err,
		}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_INVALID_SETUP,
			SourceErr: fmt.Errorf("endpoint %q is not an http(s) URL", endpoint),
		}
	}

	return &HTTP{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Transport: cfg.transport,
			Timeout:   cfg.timeout,
		},
		logger: cfg.logger,
	}, nil
}

// NewHTTPFactory defers NewHTTP until the dispatcher needs a sink.
func NewHTTPFactory(endpoint string, apiKey string, opts ...Option) dispatch.SinkFactory {
	return func() (dispatch.Sink, error) {
		s, err := NewHTTP(endpoint, apiKey, opts...)
		if err != nil {
			// keep the interface nil, see https://go.dev/doc/faq#nil_error
			return nil, err
		}
		return s, nil
	}
}

func (s *HTTP) Send(ctx context.Context, req dispatch.Request) error {
	f := format.FromContext(ctx)

	payload, path, err := encodePayload(f, req.Data)
	if err != nil {
		return err
	}

	body, sendErr := s.postJson(ctx, path, payload)
	if sendErr != nil {
		return sendErr
	}
	s.logger.Debugf("sink.HTTP: %s accepted %d bytes, response: %s", path, len(body), body)
	return nil
}

func (s *HTTP) postJson(ctx context.Context, path string, reqData any) ([]byte, *errors.SendError) {
	endpoint := s.endpoint + "/" + path

	data, err := json.Marshal(reqData)
	if err != nil {
		return nil, &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_JSON_ENCODE,
			SourceErr: err,
		}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewBuffer(data),
	)
	if err != nil {
		return nil, &errors.SendError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_REQUEST_PREP,
			SourceErr: err,
		}
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add(HeaderApiKey, s.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		errType := errors.TYPE_IO
		if ctx.Err() != nil {
			errType = errors.TYPE_CANCELED
		}
		return nil, &errors.SendError{
			Stage:     errors.STAGE_REQUEST,
			Type:      errType,
			SourceErr: err,
		}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return body, &errors.SendError{
			Stage:          errors.STAGE_AFTER_REQUEST,
			Type:           errors.TYPE_HTTP_STATUS,
			Body:           body,
			HttpStatusCode: res.StatusCode,
			SourceErr:      err,
		}
	}
	if err != nil {
		return body, &errors.SendError{
			Stage:          errors.STAGE_AFTER_REQUEST,
			Type:           errors.TYPE_IO,
			Body:           body,
			HttpStatusCode: res.StatusCode,
			SourceErr:      err,
		}
	}

	return body, nil
}

func errUnsupported(data any) error {
	return &errors.SendError{
		Stage:     errors.STAGE_BEFORE_REQUEST,
		Type:      errors.TYPE_UNSUPPORTED,
		SourceErr: fmt.Errorf("payload of type %T cannot be delivered", data),
	}
}
