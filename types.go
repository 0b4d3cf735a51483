package goAuthClient

import (
	"io"

	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/internal/observe"
	"github.com/MrEthical07/goAuthClient/store"
)

// Result is returned by every flow method of [Client].
type Result = flows.Result

// Status is the terminal outcome of a flow.
type Status = flows.Status

const (
	StatusSucceeded        = flows.StatusSucceeded
	StatusFailed           = flows.StatusFailed
	StatusRedirectRequired = flows.StatusRedirectRequired
	StatusSkipped          = flows.StatusSkipped
)

// Channel selects the magic-link delivery channel.
type Channel = flows.Channel

const (
	ChannelAuto  = flows.ChannelAuto
	ChannelEmail = flows.ChannelEmail
	ChannelSMS   = flows.ChannelSMS
)

// State is the client state reduced from dispatched actions.
type State = store.State

// Listener is notified synchronously after every dispatched action.
type Listener = store.Listener

// ActionEvent is a dispatched action with its sequence number, as delivered
// to an [ActionSink].
type ActionEvent = observe.Event

// ActionSink receives dispatched actions asynchronously.
type ActionSink = observe.Sink

// NoOpSink discards every event.
type NoOpSink = observe.NoOpSink

// ChannelSink forwards events to a buffered channel.
type ChannelSink = observe.ChannelSink

// JSONWriterSink writes one JSON object per event.
type JSONWriterSink = observe.JSONWriterSink

// FuncSink adapts a function to [ActionSink].
type FuncSink = observe.FuncSink

// NewChannelSink returns a sink buffering up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return observe.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return observe.NewJSONWriterSink(w)
}
