package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportedMessage announces that a monthly report was written to a
// sink. It carries only the summary; the rows stay in the sink.
type ReportExportedMessage struct {
	Month     string    `json:"month"`
	Sink      string    `json:"sink"`
	Name      string    `json:"name"`
	Ref       string    `json:"ref,omitempty"`
	Rows      int       `json:"rows"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportExportedMessage(month, sink, name, ref string, rows int, total string) *ReportExportedMessage {
	return &ReportExportedMessage{
		Month:     month,
		Sink:      sink,
		Name:      name,
		Ref:       ref,
		Rows:      rows,
		Total:     total,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
