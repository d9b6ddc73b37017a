package digitransit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nysselive/nysselive/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.DigitransitConfig{
		URL:    server.URL,
		APIKey: "test-key",
		FeedID: "tampere",
	}, nil, nil)
}

func TestSanitizeStopID(t *testing.T) {
	assert.Equal(t, "tampere:0001", SanitizeStopID("tampere:0001"))
	assert.Equal(t, "tampere:0001", SanitizeStopID(`tampere:0001"){}`))
	assert.Equal(t, "stops  gtfsId ", SanitizeStopID("stops { gtfsId }"))
	assert.Equal(t, "", SanitizeStopID(`"'(){}`))
}

func TestQuerySendsGraphQLRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/graphql", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("Digitransit-Subscription-Key"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `stops(feeds: "tampere")`)

		w.Write([]byte(`{"data": {"stops": [{"gtfsId": "tampere:0001", "name": "Keskustori", "lat": 61.508, "lon": 23.76}]}}`))
	})

	stops, err := client.AllStops(context.Background())
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "Keskustori", stops[0].Name)
	assert.Equal(t, 61.508, stops[0].Latitude)
}

func TestQueryEnvelopeErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "rate limited"}]}`))
	})

	_, err := client.AllRoutes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestStopsDeparturesAliasing(t *testing.T) {
	var requestBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requestBody = string(body)

		w.Write([]byte(`{
			"data": {
				"tampere_0001": {"gtfsId": "tampere:0001", "name": "Keskustori", "stoptimesWithoutPatterns": []},
				"tampere_0002": null
			}
		}`))
	})

	boards, err := client.StopsDepartures(context.Background(), []string{
		"tampere:0001",
		"tampere:0001",
		"tampere:0002",
		`tampere:0002"}`,
	})
	require.NoError(t, err)

	// duplicates collapse into one aliased section
	assert.Equal(t, 1, strings.Count(requestBody, `tampere_0001: stop(id: "tampere:0001")`))
	assert.Equal(t, 1, strings.Count(requestBody, `tampere_0002: stop(id: "tampere:0002")`))

	// aliases map back to real stop identifiers, missing stops are dropped
	require.Len(t, boards, 1)
	assert.Equal(t, "Keskustori", boards["tampere:0001"].Name)
}

func TestStopsDeparturesNoUsableIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called")
	})

	boards, err := client.StopsDepartures(context.Background(), []string{`"'{}`})
	require.NoError(t, err)
	assert.Empty(t, boards)
}
