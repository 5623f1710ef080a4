package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for suggested operator action.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID is the standardized structured logging key for check-in session identifiers.
	FieldSessionID = "session_id"
	// FieldMemberID is the standardized structured logging key for canonical registration numbers.
	FieldMemberID = "member_id"
	// FieldDevice is the standardized structured logging key for camera device paths.
	FieldDevice = "device"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)
