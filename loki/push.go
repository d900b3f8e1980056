package loki

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	loghttp "github.com/motemen/go-loghttp"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds every push, including connect and reading the
	// response.
	DefaultTimeout = 5 * time.Second

	previewLength = 60
)

// PushRequest is the JSON body accepted by /loki/api/v1/push
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a label set plus its [timestamp_ns, line] pairs
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// NewPushRequest wraps a single line in a single stream
func NewPushRequest(labels map[string]string, timestamp int64, line string) *PushRequest {
	return &PushRequest{
		Streams: []Stream{{
			Stream: labels,
			Values: [][2]string{{strconv.FormatInt(timestamp, 10), line}},
		}},
	}
}

// Outcome is what happened to one push
type Outcome int

const (
	Delivered Outcome = iota // 204 from Loki
	Rejected                 // any other status
	Failed                   // never got a response
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// NewHTTPClient returns a clean client with the push timeout applied. When
// debug is set, every request and response is logged.
func NewHTTPClient(timeout time.Duration, debug bool) *http.Client {
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout

	if debug {
		client.Transport = &loghttp.Transport{
			LogRequest: func(req *http.Request) {
				log.Infof("--> %s %s", req.Method, req.URL)
			},
			LogResponse: func(resp *http.Response) {
				log.Infof("<-- %d %s", resp.StatusCode, resp.Request.URL)
			},
			Transport: client.Transport,
		}
	}

	return client
}

// A Pusher ships single log lines to Loki. Delivery is best effort: nothing is
// retried and failures are only logged.
type Pusher struct {
	URL string

	client        *http.Client
	now           func() time.Time
	lastTimestamp int64
}

// NewPusher returns a Pusher posting to url through client
func NewPusher(url string, client *http.Client) *Pusher {
	return &Pusher{
		URL:    url,
		client: client,
		now:    time.Now,
	}
}

// Push sends line with the given labels and reports what happened. It never
// returns an error; the caller only gets the Outcome.
func (p *Pusher) Push(line string, labels map[string]string) Outcome {
	body, err := json.Marshal(NewPushRequest(labels, p.timestamp(), line))
	if err != nil {
		log.Errorf("Unable to encode push for %s: %s", p.URL, err)
		return Failed
	}

	status, err := p.send(body)
	if err != nil {
		log.Errorf("Failed to send to Loki (%s): %s", p.URL, err)
		return Failed
	}

	if status != http.StatusNoContent {
		log.Warnf("Loki error (%d) sending to %s", status, p.URL)
		return Rejected
	}

	log.Infof("Sent: %s...", preview(line))
	return Delivered
}

// Close drops any idle connections held by the client
func (p *Pusher) Close() {
	p.client.CloseIdleConnections()
}

func (p *Pusher) send(body []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("unable to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// timestamp is wall clock nanoseconds, held back to the previous value if the
// clock steps backwards so a stream never goes out of order.
func (p *Pusher) timestamp() int64 {
	ts := p.now().UnixNano()
	if ts < p.lastTimestamp {
		ts = p.lastTimestamp
	}
	p.lastTimestamp = ts

	return ts
}

func preview(line string) string {
	runes := []rune(line)
	if len(runes) <= previewLength {
		return line
	}
	return string(runes[:previewLength])
}
