package alphavantage_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketdash/internal/domain/apierr"
	alphavantage "marketdash/internal/provider/alphavantage"
)

func jsonResponse(t *testing.T, status int, body any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(body))
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(buffer),
	}
}

func TestGetQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method with the numbered-key payload and check
	// the request carries function, symbol and apikey.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "GLOBAL_QUOTE", req.URL.Query().Get("function"))
			require.Equal(t, "IBM", req.URL.Query().Get("symbol"))
			require.Equal(t, "test", req.URL.Query().Get("apikey"))

			return jsonResponse(t, http.StatusOK, map[string]any{
				"Global Quote": map[string]string{
					"01. symbol":             "IBM",
					"02. open":               "170.0000",
					"03. high":               "172.5000",
					"04. low":                "169.2500",
					"05. price":              "171.3300",
					"06. volume":             "3512893",
					"07. latest trading day": "2024-05-10",
					"08. previous close":     "170.1200",
					"09. change":             "1.2100",
					"10. change percent":     "0.7113%",
				},
			}), nil
		}).
		Times(1)

	// Arrange: create a new client with the mocked HTTP client.
	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	quote, err := client.GetQuote(t.Context(), "IBM")

	// Assert: quote strings pass through untouched.
	require.NoError(t, err)
	require.NotNil(t, quote)
	require.Equal(t, "IBM", quote.Symbol)
	require.Equal(t, "171.3300", quote.Price)
	require.Equal(t, "0.7113%", quote.ChangePercent)
	require.Equal(t, "2024-05-10", quote.LatestTradingDay)
	require.Equal(t, "AlphaVantage", quote.Source)
}

func TestGetQuoteTransportError(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)
	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	quote, err := client.GetQuote(t.Context(), "IBM")

	// Assert: transport failures classify as network errors.
	require.Nil(t, quote)
	require.Equal(t, apierr.KindNetwork, apierr.KindOf(err))
}

func TestGetQuoteHTTPStatusError(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil).
		Times(1)
	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	quote, err := client.GetQuote(t.Context(), "IBM")

	// Assert
	require.Nil(t, quote)
	require.Equal(t, apierr.KindHTTPStatus, apierr.KindOf(err))

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestGetQuoteRateLimitNote(t *testing.T) {
	t.Parallel()

	// Arrange: a 200 response whose body carries the throttle note.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]string{
				"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day.",
			}), nil
		}).
		Times(1)
	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	quote, err := client.GetQuote(t.Context(), "IBM")

	// Assert: in-body failures classify as application errors.
	require.Nil(t, quote)
	require.Equal(t, apierr.KindApplication, apierr.KindOf(err))
	require.Contains(t, err.Error(), "rate limit")
}

func TestGetQuoteEmptyBody(t *testing.T) {
	t.Parallel()

	// Arrange: a 200 response with no quote object at all.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(t, http.StatusOK, map[string]any{}), nil
		}).
		Times(1)
	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	quote, err := client.GetQuote(t.Context(), "IBM")

	// Assert
	require.Nil(t, quote)
	require.Equal(t, apierr.KindApplication, apierr.KindOf(err))
}

func TestGetQuoteEmptySymbol(t *testing.T) {
	t.Parallel()

	// Arrange
	client := alphavantage.NewClient("test")

	// Act
	quote, err := client.GetQuote(t.Context(), "")

	// Assert: rejected before any request is made.
	require.Nil(t, quote)
	require.Equal(t, apierr.KindApplication, apierr.KindOf(err))
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	baseURL := "http://localhost:8080"
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			return jsonResponse(t, http.StatusOK, map[string]any{}), nil
		}).
		Times(1)
	client := alphavantage.NewClient("test",
		alphavantage.WithHTTPClient(httpClient),
		alphavantage.WithBaseURL(baseURL),
	)

	// Act
	client.GetQuote(t.Context(), "IBM")
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			return jsonResponse(t, http.StatusOK, map[string]any{}), nil
		}).
		Times(1)
	client := alphavantage.NewClient("test",
		alphavantage.WithHTTPClient(httpClient),
		alphavantage.WithHeader(http.Header{"foo": []string{"bar"}}),
	)

	// Act
	client.GetQuote(t.Context(), "IBM")
}
