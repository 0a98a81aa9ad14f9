package model

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	Open     bool     `json:"open"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func Notify(severity Severity, message string) Notification {
	return Notification{
		Open:     true,
		Message:  message,
		Severity: severity,
	}
}
