package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FieldNames maps event fields onto whatever column names the logging sink
// expects. The values are opaque pass-through configuration.
type FieldNames struct {
	Email     string
	Message   string
	Session   string
	Timestamp string
}

// Forwarder posts audit events to the external logging sink (a spreadsheet
// appender behind a webhook, as deployed). One POST per event and no retries
// here; redelivery is the queue's job.
type Forwarder struct {
	SinkURL string
	Fields  FieldNames
	HTTP    *http.Client
}

func NewForwarder(sinkURL string, fields FieldNames) *Forwarder {
	return &Forwarder{
		SinkURL: sinkURL,
		Fields:  fields,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Forward sends one event, renaming fields per the sink configuration.
func (f *Forwarder) Forward(ctx context.Context, ev Event) error {
	row := map[string]any{
		"kind":             string(ev.Kind),
		f.Fields.Session:   ev.SessionID,
		f.Fields.Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
	}
	if ev.Email != "" {
		row[f.Fields.Email] = ev.Email
	}
	if ev.Message != "" {
		row[f.Fields.Message] = ev.Message
	}

	body, err := json.Marshal(row)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.SinkURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("audit: sink rejected event: status %d", resp.StatusCode)
	}
	return nil
}
