package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the kiosk daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the kiosk status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Foyer.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start asks the kiosk to begin serving visitors.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Foyer.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the kiosk to stop serving visitors.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Foyer.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MembersList returns the loaded member directory.
func (c *Client) MembersList() (*MembersListResponse, error) {
	var resp MembersListResponse
	if err := c.client.Call("Foyer.MembersList", MembersListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MembersReload forces a directory refresh.
func (c *Client) MembersReload() (*MembersReloadResponse, error) {
	var resp MembersReloadResponse
	if err := c.client.Call("Foyer.MembersReload", MembersReloadRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MembersStats returns derived directory counts.
func (c *Client) MembersStats() (*MembersStatsResponse, error) {
	var resp MembersStatsResponse
	if err := c.client.Call("Foyer.MembersStats", MembersStatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resolve looks up an identifier without opening a session.
func (c *Client) Resolve(identifier string) (*ResolveResponse, error) {
	var resp ResolveResponse
	if err := c.client.Call("Foyer.Resolve", ResolveRequest{Identifier: identifier}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Checkin opens a session for a typed or scanned identifier.
func (c *Client) Checkin(identifier string) (*CheckinResponse, error) {
	var resp CheckinResponse
	if err := c.client.Call("Foyer.Checkin", CheckinRequest{Identifier: identifier}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionStatus returns the workflow state.
func (c *Client) SessionStatus() (*SessionStatusResponse, error) {
	var resp SessionStatusResponse
	if err := c.client.Call("Foyer.SessionStatus", SessionStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDetails moves the workflow to or out of the detail capture step.
func (c *Client) SessionDetails(cancel bool) (*SessionDetailsResponse, error) {
	var resp SessionDetailsResponse
	if err := c.client.Call("Foyer.SessionDetails", SessionDetailsRequest{Cancel: cancel}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionBegin starts the timed visit.
func (c *Client) SessionBegin(purpose, topic string) (*SessionBeginResponse, error) {
	var resp SessionBeginResponse
	req := SessionBeginRequest{Purpose: purpose, Topic: topic}
	if err := c.client.Call("Foyer.SessionBegin", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionCancel discards the identified session.
func (c *Client) SessionCancel() (*SessionCancelResponse, error) {
	var resp SessionCancelResponse
	if err := c.client.Call("Foyer.SessionCancel", SessionCancelRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionEnd closes the active session.
func (c *Client) SessionEnd(confirm bool) (*SessionEndResponse, error) {
	var resp SessionEndResponse
	if err := c.client.Call("Foyer.SessionEnd", SessionEndRequest{Confirm: confirm}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttendanceList returns the stored log, newest first.
func (c *Client) AttendanceList() (*AttendanceListResponse, error) {
	var resp AttendanceListResponse
	if err := c.client.Call("Foyer.AttendanceList", AttendanceListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttendanceStats returns derived log counts.
func (c *Client) AttendanceStats() (*AttendanceStatsResponse, error) {
	var resp AttendanceStatsResponse
	if err := c.client.Call("Foyer.AttendanceStats", AttendanceStatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttendanceClear wipes the stored log.
func (c *Client) AttendanceClear() (*AttendanceClearResponse, error) {
	var resp AttendanceClearResponse
	if err := c.client.Call("Foyer.AttendanceClear", AttendanceClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScannerStart brings the scanner up.
func (c *Client) ScannerStart() (*ScannerStartResponse, error) {
	var resp ScannerStartResponse
	if err := c.client.Call("Foyer.ScannerStart", ScannerStartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScannerStop tears the scanner down.
func (c *Client) ScannerStop() (*ScannerStopResponse, error) {
	var resp ScannerStopResponse
	if err := c.client.Call("Foyer.ScannerStop", ScannerStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the kiosk daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Foyer.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the kiosk daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Foyer.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
