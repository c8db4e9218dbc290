// Package nfc polls the NFC reader's HTTP status endpoint and fans the
// resulting snapshots out to interested clients.
package nfc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hose_installation/internal/logger"
	"hose_installation/internal/models"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
	DefaultInterval   = 2 * time.Second

	// FallbackMessage is reported when every attempt of a poll failed.
	FallbackMessage = "Connection to NFC reader timed out"

	maxStatusBody = 64 << 10
)

var (
	errEmptyBody  = errors.New("empty response body")
	errMissingTag = errors.New("response has no tag_detected field")
)

type Options struct {
	Endpoint   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
	Logger     *logger.Logger
}

// Poller reads the reader's status. It keeps no state between polls.
type Poller struct {
	endpoint string
	timeout  time.Duration
	retries  int
	delay    time.Duration
	client   *http.Client
	log      *logger.Logger
}

func NewPoller(opts Options) *Poller {
	p := &Poller{
		endpoint: opts.Endpoint,
		timeout:  opts.Timeout,
		retries:  opts.Retries,
		delay:    opts.RetryDelay,
		client:   opts.Client,
		log:      opts.Logger,
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.retries < 0 {
		p.retries = DefaultRetries
	}
	if p.delay <= 0 {
		p.delay = DefaultRetryDelay
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	return p
}

// Fallback is the snapshot reported when the reader could not be reached.
func Fallback(now time.Time) models.StatusSnapshot {
	return models.StatusSnapshot{
		TagDetected: false,
		Timestamp:   unixMillis(now),
		Error:       true,
		Message:     FallbackMessage,
	}
}

func unixMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Poll fetches the current status, retrying failed attempts after a fixed
// delay. It never fails: when all attempts are spent, or ctx ends first, it
// returns the Fallback snapshot.
func (p *Poller) Poll(ctx context.Context) models.StatusSnapshot {
	var (
		snap    models.StatusSnapshot
		attempt int
	)
	op := func() error {
		attempt++
		s, err := p.fetch(ctx)
		if err != nil {
			if p.log != nil {
				p.log.Warnw("nfc_poll_attempt_failed", "attempt", attempt, "endpoint", p.endpoint, "err", err)
			}
			return err
		}
		snap = s
		return nil
	}

	// The retry budget belongs to this call only.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.delay), uint64(p.retries)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		if p.log != nil {
			p.log.Errorw("nfc_poll_failed", "attempts", attempt, "err", err)
		}
		return Fallback(time.Now())
	}
	return snap
}

func (p *Poller) fetch(ctx context.Context) (models.StatusSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return models.StatusSnapshot{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.StatusSnapshot{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	if err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("read body: %w", err)
	}
	return decodeStatus(body, time.Now())
}

// deviceStatus is the reader's wire format. error may be a bool or a text.
type deviceStatus struct {
	TagDetected *bool           `json:"tag_detected"`
	Timestamp   *float64        `json:"timestamp"`
	Error       json.RawMessage `json:"error"`
	Message     string          `json:"message"`
}

func decodeStatus(body []byte, now time.Time) (models.StatusSnapshot, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return models.StatusSnapshot{}, errEmptyBody
	}

	var ds deviceStatus
	if err := json.Unmarshal(body, &ds); err != nil {
		return models.StatusSnapshot{}, fmt.Errorf("decode status: %w", err)
	}
	if ds.TagDetected == nil {
		return models.StatusSnapshot{}, errMissingTag
	}

	snap := models.StatusSnapshot{
		TagDetected: *ds.TagDetected,
		Message:     ds.Message,
	}
	if ds.Timestamp != nil {
		snap.Timestamp = *ds.Timestamp
	} else {
		snap.Timestamp = unixMillis(now)
	}

	if len(ds.Error) > 0 {
		var flag bool
		var text string
		switch {
		case json.Unmarshal(ds.Error, &flag) == nil:
			snap.Error = flag
		case json.Unmarshal(ds.Error, &text) == nil:
			snap.Error = text != ""
			if snap.Message == "" {
				snap.Message = text
			}
		}
	}
	return snap, nil
}
