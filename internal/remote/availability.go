package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog/log"
)

// ID is an opaque remote identifier. The server emits integers; strings are
// accepted too.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("remote id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Availability is one persisted time range as the resource reports it.
type Availability struct {
	ID        ID     `json:"id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateAvailability is the POST body. Times are zero-padded 24-hour "HH:MM".
type CreateAvailability struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// List fetches every stored range. Transient failures are retried with
// jittered backoff since the call has no side effects.
func (c *Client) List(ctx context.Context) ([]Availability, error) {
	var out []Availability
	err := retry.Do(
		func() error {
			out = nil
			err := c.Call(ctx, c.resource, Options{Method: http.MethodGet}, &out)
			if err != nil && !Retryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.listAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n+1).Str("resource", c.resource).Msg("retrying availability list")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return out, nil
}

// Create stores one range. idempotencyKey lets the server replay the first
// response if the same create is sent twice.
func (c *Client) Create(ctx context.Context, in CreateAvailability, idempotencyKey string) (Availability, error) {
	var out Availability
	h := http.Header{}
	if idempotencyKey != "" {
		h.Set("Idempotency-Key", idempotencyKey)
	}
	err := c.Call(ctx, c.resource, Options{Method: http.MethodPost, Body: in, Header: h}, &out)
	if err != nil {
		return Availability{}, fmt.Errorf("creating availability: %w", err)
	}
	if out.ID == "" {
		return Availability{}, errors.New("creating availability: response carried no id")
	}
	return out, nil
}

// Delete removes one range. A range that is already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := c.resource + "/" + url.PathEscape(id)
	err := c.Call(ctx, path, Options{Method: http.MethodDelete}, nil)
	if errors.Is(err, ErrNotFound) {
		log.Debug().Str("id", id).Msg("availability already deleted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting availability %s: %w", id, err)
	}
	return nil
}

// Calendar downloads the iCalendar export.
func (c *Client) Calendar(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.resource+"/calendar.ics", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	return buf.Bytes(), nil
}
