package controllers

import (
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/logger"
	"github.com/shashiranjanraj/bgfixture/pkg/metrics"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
	"github.com/shashiranjanraj/bgfixture/pkg/sse"
	"github.com/shashiranjanraj/bgfixture/pkg/validate"
	"github.com/shashiranjanraj/bgfixture/pkg/ws"
)

const (
	streamBuffer = 64
	heartbeat    = 15 * time.Second
)

// EventError is sent to a WebSocket client whose command failed.
const EventError = "error"

// StreamController pushes notifier events and page messages to UI pages
// over SSE and WebSocket. Each connection holds one listener while open.
type StreamController struct {
	bg  *background.Background
	hub *ws.Hub
}

// NewStreamController handles inbound WebSocket commands on hub.
func NewStreamController(bg *background.Background, hub *ws.Hub) *StreamController {
	ctl := &StreamController{bg: bg, hub: hub}
	hub.OnMessage = ctl.handleCommand
	return ctl
}

func dropped(transport string) func(notifier.Event) {
	return func(e notifier.Event) {
		metrics.StreamDropped.WithLabelValues(transport).Inc()
		logger.Debug("stream: dropped event", "transport", transport, "event", e.Name)
	}
}

// Events streams over SSE until the client goes away.
func (ctl *StreamController) Events(c *ctx.Context) {
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	clients := metrics.StreamClients.WithLabelValues("sse")
	clients.Inc()
	defer clients.Dec()

	ch := make(chan notifier.Event, streamBuffer)
	stop := ctl.bg.Subscribe(c.Context(), view(ctl.bg, c), notifier.Chan(ch, dropped("sse")))
	defer stop()

	if err := sse.Pump(c.Context(), stream, ch, heartbeat); err != nil && !errors.Is(err, c.Context().Err()) {
		logger.WithCtx(c.Context()).Debug("sse: stream ended", "error", err)
	}
}

// Socket upgrades to WebSocket. The subscription lives until the client
// disconnects or the hub stops.
func (ctl *StreamController) Socket(c *ctx.Context) {
	client, err := ws.Upgrade(c.W, c.R, ctl.hub)
	if err != nil {
		return
	}

	clients := metrics.StreamClients.WithLabelValues("ws")
	clients.Inc()

	onDrop := dropped("ws")
	stop := ctl.bg.Subscribe(client.Context(), ctl.bg.View(url.Values(client.Query())), notifier.Func(func(e notifier.Event) error {
		ok, err := client.SendJSON(e)
		if !ok && err == nil {
			onDrop(e)
		}
		return err
	}))

	go func() {
		<-client.Context().Done()
		stop()
		clients.Dec()
	}()
}

// Command is an inbound WebSocket frame asking for a storage change.
type Command struct {
	Action string `json:"action" validate:"required,in=addSubscription|removeSubscription|addFilter|removeFilter"`
	URL    string `json:"url,omitempty"`
	Text   string `json:"text,omitempty"`
}

// payload is the per-action input a command must satisfy.
func (cmd Command) payload() any {
	switch cmd.Action {
	case "addSubscription", "removeSubscription":
		return filters.SubscriptionInput{URL: cmd.URL}
	default:
		return filters.FilterInput{Text: cmd.Text}
	}
}

func (ctl *StreamController) handleCommand(_ *ws.Hub, msg ws.Message) {
	reply := func(text string) {
		_, _ = msg.Client.SendJSON(notifier.Event{Name: EventError, Args: []any{text}})
	}

	var cmd Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		reply("invalid command: " + err.Error())
		return
	}
	if errs := validate.Struct(cmd); validate.HasErrors(errs) {
		reply(validate.First(errs))
		return
	}
	if errs := validate.Struct(cmd.payload()); validate.HasErrors(errs) {
		reply(validate.First(errs))
		return
	}

	v := ctl.bg.View(url.Values(msg.Client.Query()))
	var err error
	switch cmd.Action {
	case "addSubscription":
		_, err = v.Storage.AddSubscription(filters.SubscriptionFromURL(cmd.URL, nil))
	case "removeSubscription":
		sub, ok := v.Storage.Known(cmd.URL)
		if !ok {
			reply("subscription " + cmd.URL + " not found")
			return
		}
		_, err = v.Storage.RemoveSubscription(sub)
	case "addFilter":
		res := v.Validator.ParseFilter(cmd.Text)
		if res.Error != "" {
			reply(res.Error)
			return
		}
		_, err = v.Storage.AddFilter(res.Filter)
	case "removeFilter":
		_, err = v.Storage.RemoveFilter(filters.FromText(cmd.Text))
	}
	if err != nil {
		logger.Warn("listener failed", "op", cmd.Action, "error", err)
	}
}
