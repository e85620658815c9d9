package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
)

const errRateLimited = "too many requests, slow down"

// handleRequest dispatches the request to the appropriate handler.
func (d *Daemon) handleRequest(_ context.Context, req *Request) Response {
	if d.engine == nil {
		return Response{Error: "no session available"}
	}

	if req.Method == MethodStatus {
		return d.handleStatus()
	}
	if !d.limiter.Allow() {
		d.logger.Warn("control request rate limited", "method", req.Method)
		return Response{Error: errRateLimited}
	}

	switch req.Method {
	case MethodStart:
		return d.control(d.engine.Start)
	case MethodPause:
		return d.control(d.engine.Pause)
	case MethodResume:
		return d.control(d.engine.Resume)
	case MethodSkip:
		return d.control(d.engine.Skip)
	case MethodStop:
		return d.control(d.engine.Stop)
	case MethodReset:
		return d.control(d.engine.Reset)
	case MethodAddRound:
		return d.control(d.engine.AddRound)
	case MethodRemoveRound:
		return d.control(d.engine.RemoveRound)
	case MethodPublish:
		return d.handlePublish(req)
	default:
		return Response{Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// handleStatus returns the hosted session and its current state.
func (d *Daemon) handleStatus() Response {
	startTime := d.StartTime()

	return Response{
		Result: StatusResponse{
			SessionID: d.session.ID,
			HostID:    d.session.HostID,
			ShareURL:  d.session.ShareURL,
			State:     d.engine.State(),
			Devices:   d.hub.Devices(d.session.ID),
			Uptime:    time.Since(startTime).Truncate(time.Second).String(),
			StartTime: startTime.Format(time.RFC3339),
		},
	}
}

// control runs one engine operation and returns the resulting state.
func (d *Daemon) control(op func()) Response {
	op()
	return Response{Result: d.engine.State()}
}

// handlePublish overwrites the hosted state with a remote snapshot and
// rebroadcasts it to every subscriber under the sender's origin.
func (d *Daemon) handlePublish(req *Request) Response {
	var params PublishParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{Error: err.Error()}
	}

	d.engine.Apply(params.State)
	state := d.engine.State()
	d.hub.Publish(d.session.ID, share.NewStateUpdate(state, params.Origin))

	d.emit(&events.SyncReceivedEvent{
		BaseEvent: events.NewSyncEvent(events.EventSyncReceived),
		SessionID: d.session.ID,
		Origin:    params.Origin,
		Phase:     state.Phase,
		Round:     state.CurrentRound,
	})
	return Response{Result: state}
}

// decodeParams converts loosely typed request params into v.
func decodeParams(params any, v any) error {
	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
