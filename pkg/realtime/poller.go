// Package realtime polls the SIRI vehicle monitoring feed on a fixed
// interval and keeps the latest committed snapshot set in memory. A failed
// poll never replaces the previous set; consumers always see the last good
// batch.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nysselive/nysselive/pkg/config"
	"github.com/nysselive/nysselive/pkg/nysse"
	"github.com/nysselive/nysselive/pkg/siri"
	"github.com/nysselive/nysselive/pkg/stats"
	"github.com/rs/zerolog/log"
)

const maxFailureBackoff = time.Minute

var errMissingDelivery = errors.New("response has no vehicle monitoring delivery")

type Poller struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	collector  *stats.Collector

	mu        sync.RWMutex
	snapshots []nysse.VehicleSnapshot

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New builds a poller. collector may be nil.
func New(cfg config.RealtimeConfig, collector *stats.Collector) *Poller {
	return &Poller{
		url:        cfg.URL,
		interval:   cfg.Interval(),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		collector:  collector,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the poll loop. The first poll happens immediately.
func (p *Poller) Start() {
	go p.run()
}

// Stop terminates the poll loop and waits for it to finish.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

// Snapshots returns the most recently committed batch, empty before the
// first successful poll. The returned slice is shared; callers must not
// mutate it.
func (p *Poller) Snapshots() []nysse.VehicleSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.snapshots
}

func (p *Poller) run() {
	defer close(p.done)

	failureBackoff := backoff.NewExponentialBackOff()
	failureBackoff.InitialInterval = p.interval
	failureBackoff.MaxInterval = maxFailureBackoff
	failureBackoff.MaxElapsedTime = 0

	for {
		wait := p.interval

		if err := p.poll(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error while fetching realtime data")

			if p.collector != nil {
				p.collector.PollFailures.Inc()
			}

			// Transient upstream trouble: keep the previous snapshot set and
			// keep polling, just not as eagerly.
			wait = failureBackoff.NextBackOff()
		} else {
			failureBackoff.Reset()
		}

		select {
		case <-p.stop:
			return
		case <-time.After(wait):
		}
	}
}

func (p *Poller) poll(ctx context.Context) error {
	if p.collector != nil {
		p.collector.PollCycles.Inc()
		p.collector.UpstreamRequests.WithLabelValues("siri").Inc()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if p.collector != nil {
			p.collector.UpstreamFailures.WithLabelValues("siri").Inc()
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if p.collector != nil {
			p.collector.UpstreamFailures.WithLabelValues("siri").Inc()
		}
		return fmt.Errorf("realtime feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var document siri.Document
	if err := json.Unmarshal(raw, &document); err != nil {
		return err
	}

	deliveries := document.Siri.ServiceDelivery.VehicleMonitoringDelivery
	if len(deliveries) == 0 {
		// Data format changed, or error?
		return errMissingDelivery
	}

	snapshots := make([]nysse.VehicleSnapshot, 0, len(deliveries[0].VehicleActivity))
	for _, activity := range deliveries[0].VehicleActivity {
		snapshot, err := convertActivity(activity)
		if err != nil {
			// One bad record must not take the batch down with it
			log.Warn().
				Err(err).
				Str("vehicle", activity.MonitoredVehicleJourney.VehicleRef.Value).
				Msg("Dropping malformed vehicle record")

			if p.collector != nil {
				p.collector.RecordsDropped.Inc()
			}
			continue
		}

		snapshots = append(snapshots, snapshot)
	}

	p.mu.Lock()
	p.snapshots = snapshots
	p.mu.Unlock()

	if p.collector != nil {
		p.collector.TrackedVehicles.Set(float64(len(snapshots)))
	}

	return nil
}

func convertActivity(activity siri.VehicleActivity) (nysse.VehicleSnapshot, error) {
	journey := activity.MonitoredVehicleJourney

	delayMs, err := siri.ParseDelay(journey.Delay)
	if err != nil {
		return nysse.VehicleSnapshot{}, err
	}

	direction, err := strconv.Atoi(journey.DirectionRef.Value)
	if err != nil {
		direction = 0
	}

	return nysse.VehicleSnapshot{
		VehicleRef:   journey.VehicleRef.Value,
		Headsign:     journey.LineRef.Value,
		Direction:    direction,
		Origin:       journey.OriginName.Value,
		Destination:  journey.DestinationName.Value,
		Location:     [2]float64{journey.VehicleLocation.Latitude, journey.VehicleLocation.Longitude},
		Bearing:      journey.Bearing,
		DelaySeconds: delayMs / 1000,
		TripDate:     journey.FramedVehicleJourneyRef.DataFrameRef.Value,
		TripTime:     journey.FramedVehicleJourneyRef.DatedVehicleJourneyRef,
	}, nil
}
