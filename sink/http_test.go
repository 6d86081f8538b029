package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/block/eventship-go/dispatch"
	"github.com/block/eventship-go/errors"
	"github.com/block/eventship-go/format"
	"github.com/block/eventship-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testApiKey   = "test-api-key"
	testEndpoint = "https://ingest.example.com/v1"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func metricReq() *types.PutMetricDataRequest {
	return &types.PutMetricDataRequest{
		Namespace: "checkout",
		MetricData: []types.MetricDatum{
			{
				MetricName: "latency",
				Unit:       types.UnitMilliseconds,
				Value:      1234.5678,
				Timestamp:  t0,
				Dimensions: []types.Dimension{{Name: "host", Value: "web-1"}},
			},
		},
	}
}

func TestNewHTTP(t *testing.T) {
	testCases := []struct {
		endpoint  string
		expectErr bool
	}{
		{endpoint: "https://ingest.example.com"},
		{endpoint: "http://localhost:8080/api/"},
		{endpoint: "us-east-1", expectErr: true},
		{endpoint: "ftp://example.com", expectErr: true},
		{endpoint: "https://", expectErr: true},
		{endpoint: "://bad", expectErr: true},
		{endpoint: "", expectErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.endpoint, func(t *testing.T) {
			s, err := NewHTTP(tt.endpoint, testApiKey)
			if !tt.expectErr {
				require.NoError(t, err)
				assert.NotNil(t, s)
				return
			}
			var sendErr *errors.SendError
			require.ErrorAs(t, err, &sendErr)
			assert.Equal(t, errors.TYPE_INVALID_SETUP, sendErr.Type)
			assert.Nil(t, s)
		})
	}
}

func TestNewHTTPFactory(t *testing.T) {
	s, err := NewHTTPFactory("not a url", testApiKey)()
	assert.Error(t, err)
	assert.True(t, s == nil, "sink must be a true nil interface")

	s, err = NewHTTPFactory(testEndpoint, testApiKey)()
	assert.NoError(t, err)
	assert.IsType(t, &HTTP{}, s)
}

func TestHTTP_Send_metrics(t *testing.T) {
	var gotPath, gotKey, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get(HeaderApiKey)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"requestId":"abc"}`))
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL+"/v1/", testApiKey)
	require.NoError(t, err)

	ctx := format.NewContext(context.Background(), format.Format{Precision: 3, TimeLayout: time.RFC3339})
	err = s.Send(ctx, dispatch.Request{Data: metricReq()})
	require.NoError(t, err)

	assert.Equal(t, "/v1/metrics", gotPath)
	assert.Equal(t, testApiKey, gotKey)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{
		"namespace": "checkout",
		"metricData": [{
			"metricName": "latency",
			"unit": "Milliseconds",
			"value": 1.23e+03,
			"timestamp": "2024-03-01T12:00:00Z",
			"dimensions": [{"name": "host", "value": "web-1"}]
		}]
	}`, string(gotBody))
	assert.Contains(t, string(gotBody), `"value":1.23e+03`)
}

func TestHTTP_Send_logs(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL, testApiKey)
	require.NoError(t, err)

	req := types.NewLogEventsRequest("orders", "worker-1", t0, "order 42 shipped")
	require.NoError(t, s.Send(context.Background(), dispatch.Request{Data: *req}))

	assert.Equal(t, "/logs", gotPath)
	assert.JSONEq(t, fmt.Sprintf(`{
		"logGroupName": "orders",
		"logStreamName": "worker-1",
		"logEvents": [{"timestamp": %d, "message": "order 42 shipped"}]
	}`, t0.UnixMilli()), string(gotBody))
}

func TestHTTP_Send_invariant_format(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL, testApiKey)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), dispatch.Request{Data: metricReq()}))

	var decoded struct {
		MetricData []struct {
			Value     json.Number `json:"value"`
			Timestamp string      `json:"timestamp"`
		} `json:"metricData"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, json.Number("1234.5678"), decoded.MetricData[0].Value)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", decoded.MetricData[0].Timestamp)
}

func TestHTTP_Send_errors(t *testing.T) {
	testCases := []struct {
		name       string
		data       any
		resBody    []byte
		resCode    int
		resErr     error
		expectType string
		expectCode int
		retryable  bool
		noRequest  bool
	}{
		{
			name:       "500",
			data:       metricReq(),
			resBody:    []byte(`{"message":"boom"}`),
			resCode:    500,
			expectType: errors.TYPE_HTTP_STATUS,
			expectCode: 500,
			retryable:  true,
		},
		{
			name:       "400",
			data:       metricReq(),
			resBody:    []byte(`{"message":"bad"}`),
			resCode:    400,
			expectType: errors.TYPE_HTTP_STATUS,
			expectCode: 400,
		},
		{
			name:       "429",
			data:       metricReq(),
			resBody:    []byte(`{}`),
			resCode:    429,
			expectType: errors.TYPE_HTTP_STATUS,
			expectCode: 429,
			retryable:  true,
		},
		{
			name:       "failed to send the request",
			data:       metricReq(),
			resErr:     fmt.Errorf("connection reset"),
			expectType: errors.TYPE_IO,
			retryable:  true,
		},
		{
			name:       "unsupported payload",
			data:       "just a string",
			expectType: errors.TYPE_UNSUPPORTED,
			noRequest:  true,
		},
		{
			name:       "invalid payload",
			data:       &types.PutMetricDataRequest{Namespace: "x"},
			expectType: errors.TYPE_INVALID_DATA,
			noRequest:  true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newTestTransport(tt.resBody, tt.resCode, tt.resErr)
			s, err := NewHTTP(testEndpoint, testApiKey, WithTransport(tr))
			require.NoError(t, err)

			err = s.Send(context.Background(), dispatch.Request{Data: tt.data})
			var sendErr *errors.SendError
			require.ErrorAs(t, err, &sendErr)
			assert.Equal(t, tt.expectType, sendErr.Type)
			assert.Equal(t, tt.expectCode, sendErr.HttpStatusCode)
			assert.Equal(t, tt.retryable, sendErr.Retryable())
			assert.Equal(t, tt.resBody, sendErr.Body)

			if tt.noRequest {
				assert.Nil(t, tr.req)
				return
			}
			assert.Equal(t, testEndpoint+"/metrics", tr.Url())
			assert.Equal(t, http.MethodPost, tr.Method())
			assert.Equal(t, testApiKey, tr.ApiKey())
			if cl, ok := tr.res.Body.(*testReader); ok && tt.resErr == nil {
				assert.True(t, cl.isClosed)
			}
		})
	}
}

func TestHTTP_Send_invalid_data_wraps_cause(t *testing.T) {
	s, err := NewHTTP(testEndpoint, testApiKey, WithTransport(newTestTransport(nil, 200, nil)))
	require.NoError(t, err)

	err = s.Send(context.Background(), dispatch.Request{Data: &types.PutLogEventsRequest{}})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
	assert.ErrorIs(t, err, &errors.SendError{})
}

func TestHTTP_Send_canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s, err := NewHTTP(srv.URL, testApiKey)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = s.Send(ctx, dispatch.Request{Data: metricReq()})
	var sendErr *errors.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, errors.TYPE_CANCELED, sendErr.Type)
	assert.Equal(t, errors.STAGE_REQUEST, sendErr.Stage)
	assert.ErrorIs(t, err, context.Canceled)
}

// The dispatcher's timeout cancels the HTTP request in flight.
func TestHTTP_with_dispatcher_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	results := make(chan dispatch.Result, 1)
	d := dispatch.NewDispatcher(nil, NewHTTPFactory(srv.URL, testApiKey), dispatch.Config{
		SendTimeout: 50 * time.Millisecond,
		Results:     results,
	})
	d.Submit(dispatch.Request{Data: metricReq()})

	select {
	case res := <-results:
		assert.Equal(t, dispatch.StateTimedOut, res.State)
		assert.ErrorIs(t, res.Error, dispatch.ErrSendTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
	assert.False(t, d.Registry().HasPending())
}

func newTestTransport(body []byte, code int, err error) *testTransport {
	res := &http.Response{
		StatusCode: code,
		Body:       &testReader{Reader: bytes.NewBuffer(body)},
	}
	return &testTransport{res: res, err: err}
}

type testTransport struct {
	req *http.Request
	res *http.Response
	err error
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.req = req
	if t.err != nil {
		return nil, t.err
	}
	return t.res, nil
}

func (t *testTransport) Method() string {
	return t.req.Method
}

func (t *testTransport) Url() string {
	return t.req.URL.String()
}

func (t *testTransport) ApiKey() string {
	return t.req.Header.Get(HeaderApiKey)
}

type testReader struct {
	isClosed bool
	isRead   bool
	io.Reader
}

func (c *testReader) Close() error {
	c.isClosed = true
	return nil
}

func (c *testReader) Read(p []byte) (n int, err error) {
	c.isRead = true
	return c.Reader.Read(p)
}
