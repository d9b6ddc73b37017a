package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nysselive/nysselive/pkg/config"
	"github.com/nysselive/nysselive/pkg/nysse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedDocument(activities ...string) string {
	joined := ""
	for i, activity := range activities {
		if i > 0 {
			joined += ","
		}
		joined += activity
	}

	return fmt.Sprintf(`{
		"Siri": {
			"ServiceDelivery": {
				"VehicleMonitoringDelivery": [
					{ "VehicleActivity": [%s] }
				]
			}
		}
	}`, joined)
}

func vehicleActivity(vehicleRef, line, delay string, bearing float64) string {
	return fmt.Sprintf(`{
		"MonitoredVehicleJourney": {
			"LineRef": {"value": %q},
			"DirectionRef": {"value": "1"},
			"FramedVehicleJourneyRef": {
				"DataFrameRef": {"value": "2023-05-14"},
				"DatedVehicleJourneyRef": "1435"
			},
			"OriginName": {"value": "Keskustori"},
			"DestinationName": {"value": "Vehmainen"},
			"VehicleLocation": {"Latitude": 61.4981, "Longitude": 23.7610},
			"Bearing": %v,
			"Delay": %q,
			"VehicleRef": {"value": %q}
		}
	}`, line, bearing, delay, vehicleRef)
}

func newTestPoller(url string) *Poller {
	return New(config.RealtimeConfig{
		URL:             url,
		IntervalSeconds: 1,
		TimeoutSeconds:  2,
	}, nil)
}

func TestPollCommitsSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedDocument(vehicleActivity("TKL_123", "70", "PT2M15S", 90)))
	}))
	defer server.Close()

	p := newTestPoller(server.URL)
	require.NoError(t, p.poll(context.Background()))

	snapshots := p.Snapshots()
	require.Len(t, snapshots, 1)

	v := snapshots[0]
	assert.Equal(t, "TKL_123", v.VehicleRef)
	assert.Equal(t, "70", v.Headsign)
	assert.Equal(t, 1, v.Direction)
	assert.Equal(t, "Keskustori", v.Origin)
	assert.Equal(t, "Vehmainen", v.Destination)
	assert.Equal(t, [2]float64{61.4981, 23.7610}, v.Location)
	assert.Equal(t, 90.0, v.Bearing)
	assert.Equal(t, int64(135), v.DelaySeconds)
	assert.Equal(t, "2023-05-14", v.TripDate)
	assert.Equal(t, "1435", v.TripTime)

	assert.Equal(t, "2.3 min myöhässä", nysse.FormatDelay(v.DelaySeconds))
}

func TestPollRetainsSnapshotsOnMissingDelivery(t *testing.T) {
	good := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if good {
			fmt.Fprint(w, feedDocument(vehicleActivity("TKL_1", "1", "PT0S", 0)))
		} else {
			fmt.Fprint(w, `{"Siri": {"ServiceDelivery": {}}}`)
		}
	}))
	defer server.Close()

	p := newTestPoller(server.URL)
	require.NoError(t, p.poll(context.Background()))

	before := p.Snapshots()
	require.Len(t, before, 1)

	good = false
	require.Error(t, p.poll(context.Background()))

	assert.Equal(t, before, p.Snapshots())
}

func TestPollRetainsSnapshotsOnServerError(t *testing.T) {
	fail := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, feedDocument(vehicleActivity("TKL_1", "1", "PT0S", 0)))
	}))
	defer server.Close()

	p := newTestPoller(server.URL)
	require.NoError(t, p.poll(context.Background()))

	fail = true
	require.Error(t, p.poll(context.Background()))

	assert.Len(t, p.Snapshots(), 1)
}

func TestPollDropsMalformedRecordOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedDocument(
			vehicleActivity("TKL_1", "1", "garbage", 0),
			vehicleActivity("TKL_2", "3", "-PT1M", 180),
		))
	}))
	defer server.Close()

	p := newTestPoller(server.URL)
	require.NoError(t, p.poll(context.Background()))

	snapshots := p.Snapshots()
	require.Len(t, snapshots, 1)
	assert.Equal(t, "TKL_2", snapshots[0].VehicleRef)
	assert.Equal(t, int64(-60), snapshots[0].DelaySeconds)
}

func TestSnapshotsEmptyBeforeFirstPoll(t *testing.T) {
	p := newTestPoller("http://127.0.0.1:0")
	assert.Empty(t, p.Snapshots())
}
