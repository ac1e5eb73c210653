package apierr_test

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash/internal/domain/apierr"
)

func TestNetworkWrapsCause(t *testing.T) {
	t.Parallel()
	cause := &net.OpError{Op: "dial", Err: errors.New("connection refused")}

	err := apierr.Network("CoinGecko", cause)
	assert.Equal(t, apierr.KindNetwork, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "CoinGecko: unable to connect")

	var opErr *net.OpError
	require.ErrorAs(t, err, &opErr)
}

func TestHTTPStatusMessage(t *testing.T) {
	t.Parallel()
	err := apierr.HTTPStatus("Finnhub", http.StatusTooManyRequests)
	assert.Equal(t, apierr.KindHTTPStatus, apierr.KindOf(err))
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "Finnhub: HTTP 429 Too Many Requests", err.Error())
}

func TestApplication(t *testing.T) {
	t.Parallel()
	err := apierr.Application("AlphaVantage", "invalid symbol")
	assert.Equal(t, apierr.KindApplication, apierr.KindOf(err))
	assert.Equal(t, "AlphaVantage: invalid symbol", err.Error())
}

func TestKindOfForeignError(t *testing.T) {
	t.Parallel()
	assert.Zero(t, apierr.KindOf(errors.New("plain")))
	assert.Zero(t, apierr.KindOf(nil))
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	t.Parallel()
	inner := apierr.HTTPStatus("GNews", http.StatusForbidden)
	wrapped := fmt.Errorf("fetch news: %w", inner)
	assert.Equal(t, apierr.KindHTTPStatus, apierr.KindOf(wrapped))
}
