package domain

import (
	"encoding/json"
	"time"
)

// HistoryVersion es la version actual del documento persistido.
const HistoryVersion = 1

// HistoryDocument es el documento por candidato: registros en orden y ultimo plan.
// Los campos desconocidos se conservan al releer y reescribir.
type HistoryDocument struct {
	Version     int                        `json:"version"`
	CandidateID string                     `json:"candidate_id"`
	Records     []PerformanceRecord        `json:"records"`
	LastPlanID  string                     `json:"last_plan_id,omitempty"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Extra       map[string]json.RawMessage `json:"-"`
}

var historyKnownFields = []string{"version", "candidate_id", "records", "last_plan_id", "updated_at"}

func NewHistoryDocument(candidateID string) HistoryDocument {
	return HistoryDocument{
		Version:     HistoryVersion,
		CandidateID: candidateID,
		Records:     []PerformanceRecord{},
	}
}

// Append agrega un registro al final; la historia es append-only.
func (d *HistoryDocument) Append(record PerformanceRecord, now time.Time) {
	d.Records = append(d.Records, record)
	d.UpdatedAt = now.UTC()
	if d.Version < HistoryVersion {
		d.Version = HistoryVersion
	}
}

func (d HistoryDocument) MarshalJSON() ([]byte, error) {
	type plain HistoryDocument
	known, err := json.Marshal(plain(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage, len(d.Extra)+len(historyKnownFields))
	for k, v := range d.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (d *HistoryDocument) UnmarshalJSON(data []byte) error {
	type plain HistoryDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range historyKnownFields {
		delete(raw, k)
	}
	*d = HistoryDocument(p)
	if len(raw) > 0 {
		d.Extra = raw
	} else {
		d.Extra = nil
	}
	if d.Records == nil {
		d.Records = []PerformanceRecord{}
	}
	return nil
}
