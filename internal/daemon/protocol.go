package daemon

import "github.com/npratt/hiit/internal/timer"

// RPC method names.
const (
	MethodStatus      = "status"
	MethodStart       = "start"
	MethodPause       = "pause"
	MethodResume      = "resume"
	MethodSkip        = "skip"
	MethodStop        = "stop"
	MethodReset       = "reset"
	MethodAddRound    = "add_round"
	MethodRemoveRound = "remove_round"
	MethodPublish     = "publish"
	MethodSubscribe   = "subscribe"
)

// Request represents a JSON-RPC request from a client.
type Request struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// Response represents a JSON-RPC response to a client.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// StatusResponse describes the hosted session.
type StatusResponse struct {
	SessionID string      `json:"session_id"`
	HostID    string      `json:"host_id"`
	ShareURL  string      `json:"share_url,omitempty"`
	State     timer.State `json:"state"`
	Devices   int         `json:"devices"`
	Uptime    string      `json:"uptime"`
	StartTime string      `json:"start_time"`
}

// PublishParams carries a remote snapshot to overwrite the hosted state.
type PublishParams struct {
	State  timer.State `json:"state"`
	Origin string      `json:"origin"`
}

// SubscribeParams identifies the device opening a state stream.
type SubscribeParams struct {
	DeviceID string `json:"device_id"`
}
