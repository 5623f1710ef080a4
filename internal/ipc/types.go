package ipc

import (
	"foyer/internal/attendance"
	"foyer/internal/member"
	"foyer/internal/scanner"
	"foyer/internal/session"
)

// StatusRequest fetches kiosk status.
type StatusRequest struct{}

// StatusResponse represents combined kiosk status information.
type StatusResponse struct {
	Running         bool             `json:"running"`
	DemoMode        bool             `json:"demo_mode"`
	Scanner         scanner.Snapshot `json:"scanner"`
	Session         session.Snapshot `json:"session"`
	MemberStats     member.Stats     `json:"member_stats"`
	AttendanceStats attendance.Stats `json:"attendance_stats"`
	DBPath          string           `json:"db_path"`
	LockPath        string           `json:"lock_path"`
	PID             int              `json:"pid"`
}

// StartRequest asks the kiosk to begin serving visitors.
type StartRequest struct{}

// StartResponse reports whether the kiosk lifecycle was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// StopRequest asks the kiosk to stop serving visitors.
type StopRequest struct{}

// StopResponse reports whether the kiosk lifecycle was stopped.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// MembersListRequest fetches the loaded directory.
type MembersListRequest struct{}

// MembersListResponse contains directory entries in load order.
type MembersListResponse struct {
	Members  []member.Member `json:"members"`
	DemoMode bool            `json:"demo_mode"`
}

// MembersReloadRequest forces a directory refresh.
type MembersReloadRequest struct{}

// MembersReloadResponse reports the refreshed directory size.
type MembersReloadResponse struct {
	Count    int  `json:"count"`
	DemoMode bool `json:"demo_mode"`
}

// MembersStatsRequest fetches derived directory counts.
type MembersStatsRequest struct{}

// MembersStatsResponse reports derived directory counts.
type MembersStatsResponse struct {
	Stats member.Stats `json:"stats"`
}

// ResolveRequest looks up an identifier without opening a session.
type ResolveRequest struct {
	Identifier string `json:"identifier"`
}

// ResolveResponse contains the resolved member.
type ResolveResponse struct {
	Member member.Member `json:"member"`
}

// CheckinRequest opens a session for an identifier, as scanned or typed.
type CheckinRequest struct {
	Identifier string `json:"identifier"`
}

// CheckinResponse reports the identified member.
type CheckinResponse struct {
	Member member.Member `json:"member"`
}

// SessionStatusRequest fetches the workflow state.
type SessionStatusRequest struct{}

// SessionStatusResponse reports the workflow state.
type SessionStatusResponse struct {
	Snapshot session.Snapshot `json:"snapshot"`
}

// SessionDetailsRequest moves the workflow to or out of the detail capture step.
type SessionDetailsRequest struct {
	Cancel bool `json:"cancel"`
}

// SessionDetailsResponse reports the resulting workflow state.
type SessionDetailsResponse struct {
	State string `json:"state"`
}

// SessionBeginRequest starts the timed visit.
type SessionBeginRequest struct {
	Purpose string `json:"purpose"`
	Topic   string `json:"topic"`
}

// SessionBeginResponse reports the started session.
type SessionBeginResponse struct {
	Snapshot session.Snapshot `json:"snapshot"`
}

// SessionCancelRequest discards the identified session.
type SessionCancelRequest struct{}

// SessionCancelResponse indicates cancel result.
type SessionCancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// SessionEndRequest closes the active session. Confirm must be true.
type SessionEndRequest struct {
	Confirm bool `json:"confirm"`
}

// SessionEndResponse contains the persisted record.
type SessionEndResponse struct {
	Record attendance.Record `json:"record"`
}

// AttendanceListRequest fetches the stored log.
type AttendanceListRequest struct{}

// AttendanceListResponse contains the log, newest first.
type AttendanceListResponse struct {
	Records []attendance.Record `json:"records"`
}

// AttendanceStatsRequest fetches derived log counts.
type AttendanceStatsRequest struct{}

// AttendanceStatsResponse reports derived log counts.
type AttendanceStatsResponse struct {
	Stats attendance.Stats `json:"stats"`
}

// AttendanceClearRequest wipes the stored log.
type AttendanceClearRequest struct{}

// AttendanceClearResponse reports how many records were removed.
type AttendanceClearResponse struct {
	Cleared int `json:"cleared"`
}

// ScannerStartRequest brings the scanner up.
type ScannerStartRequest struct{}

// ScannerStartResponse reports the scanner state after the start attempt.
type ScannerStartResponse struct {
	Snapshot scanner.Snapshot `json:"snapshot"`
	Message  string           `json:"message,omitempty"`
}

// ScannerStopRequest tears the scanner down.
type ScannerStopRequest struct{}

// ScannerStopResponse reports the scanner state after teardown.
type ScannerStopResponse struct {
	Snapshot scanner.Snapshot `json:"snapshot"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
