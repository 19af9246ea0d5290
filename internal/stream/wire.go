package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/watchfire-io/launchpad/internal/models"
)

// Event names carried in the "event" field of a frame.
const (
	EventCommandOutput   = "commandOutput"
	EventCommandFinished = "commandFinished"
)

var errUnknownEvent = errors.New("unknown event")

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outputPayload struct {
	CommandID   string `json:"commandId"`
	Output      string `json:"output"`
	OutputType  string `json:"outputType"`
	IsProgress  bool   `json:"isProgress"`
	ReplaceLast bool   `json:"replaceLast"`
}

type finishedPayload struct {
	CommandID string `json:"commandId"`
	ExitCode  *int   `json:"exitCode"`
}

// decode parses one text frame. It returns exactly one of the two events,
// or errUnknownEvent for names this client does not handle.
func decode(data []byte) (*models.OutputEvent, *models.FinishedEvent, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse frame: %w", err)
	}

	switch f.Event {
	case EventCommandOutput:
		var p outputPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", f.Event, err)
		}
		return &models.OutputEvent{
			CommandID:   p.CommandID,
			Text:        p.Output,
			Kind:        models.ParseOutputKind(p.OutputType),
			IsProgress:  p.IsProgress,
			ReplaceLast: p.ReplaceLast,
		}, nil, nil
	case EventCommandFinished:
		var p finishedPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", f.Event, err)
		}
		return nil, &models.FinishedEvent{CommandID: p.CommandID, ExitCode: p.ExitCode}, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", errUnknownEvent, f.Event)
	}
}

// URL derives the websocket endpoint from the REST origin: http becomes ws,
// https becomes wss, and streamPath replaces the path.
func URL(base *url.URL, streamPath string) (string, error) {
	u := *base
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	if streamPath == "" {
		streamPath = "/"
	}
	u.Path = path.Join("/", streamPath)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Origin is the REST client a stream connection borrows its endpoint and
// credentials from.
type Origin interface {
	BaseURL() *url.URL
	Header() http.Header
	Jar() http.CookieJar
}

// OptionsFor builds dial options that share the origin's cookies and headers.
func OptionsFor(o Origin, streamPath string) (Options, error) {
	u, err := URL(o.BaseURL(), streamPath)
	if err != nil {
		return Options{}, err
	}
	return Options{URL: u, Header: o.Header(), Jar: o.Jar()}, nil
}
