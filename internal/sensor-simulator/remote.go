package sensor_simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/ecogarden/internal/model"
)

// Remote lets a standalone simulator feed a running dashboard service: it
// lists sensors from GET /api/sensors and posts batches to POST /api/telemetry.
// Both calls go through one circuit breaker; posts are retried with backoff.
type Remote struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *zap.SugaredLogger
	cb      *gobreaker.CircuitBreaker
	retries uint64

	mu   sync.Mutex
	last []model.Sensor // served when the dashboard is unreachable
}

func NewRemote(logger *zap.SugaredLogger, baseURL string, timeout time.Duration) *Remote {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Remote{
		base:    baseURL,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
		cb:      mkCB("dashboard", 5, 10*time.Second),
		retries: 2,
	}
}

// errRejected marks a 4xx reply: the dashboard is up but refused the request.
var errRejected = errors.New("rejected by dashboard")

func mkCB(name string, fails uint32, open time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		// a rejected request still proves the dashboard is reachable
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected)
		},
	})
}

// Breaker exposes the breaker state for logging.
func (r *Remote) Breaker() gobreaker.State { return r.cb.State() }

func (r *Remote) ActiveSensors() []model.Sensor {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	var all []model.Sensor
	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.getJSON(ctx, r.base+"/api/sensors", &all)
	})
	if err != nil {
		r.logger.Warnw("list sensors failed, using last known set", "error", err, "breaker", r.cb.State().String())
		r.mu.Lock()
		defer r.mu.Unlock()
		return append([]model.Sensor(nil), r.last...)
	}
	active := make([]model.Sensor, 0, len(all))
	for _, sn := range all {
		if sn.Active() {
			active = append(active, sn)
		}
	}
	r.mu.Lock()
	r.last = active
	r.mu.Unlock()
	return active
}

// Ingest posts the batch. The dashboard reports changed plant ids in its reply.
func (r *Remote) Ingest(batch model.Batch) []int64 {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	payload, err := json.Marshal(batch)
	if err != nil {
		r.logger.Errorw("encode batch", "error", err)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = r.timeout

	var changed []int64
	err = backoff.Retry(func() error {
		_, err := r.cb.Execute(func() (any, error) {
			out, err := r.post(ctx, payload)
			changed = out
			return nil, err
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, r.retries), ctx))
	if err != nil {
		r.logger.Warnw("publish telemetry", "error", err, "breaker", r.cb.State().String())
		return nil
	}
	return changed
}

func (r *Remote) post(ctx context.Context, payload []byte) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/api/telemetry", bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("POST /api/telemetry -> %s", res.Status)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		// rejected payloads are not retried
		return nil, backoff.Permanent(fmt.Errorf("%w: POST /api/telemetry -> %s", errRejected, res.Status))
	}
	var out struct {
		Changed []int64 `json:"changed"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode telemetry reply: %w", err))
	}
	return out.Changed, nil
}

func (r *Remote) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode >= 400 && res.StatusCode < 500:
		return fmt.Errorf("%w: GET %s -> %s", errRejected, url, res.Status)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return fmt.Errorf("GET %s -> %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
