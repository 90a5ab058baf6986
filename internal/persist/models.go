package persist

import (
	"encoding/json"
	"time"
)

// Attempt is the metadata of one generation attempt. It never holds the prompt, the key or the scene body.
type Attempt struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Duration   int       `json:"duration_minutes"`
	SceneType  string    `json:"scene_type"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"` // "ok" or the error kind
	Message    string    `json:"message,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	TotalShots int       `json:"total_shots"`
	Flags      []string  `json:"flags,omitempty"` // request options such as "strict" or "json_schema"
}

// Succeeded reports whether the attempt produced a scene.
func (a *Attempt) Succeeded() bool {
	return a.Outcome == OutcomeOK
}

const OutcomeOK = "ok"

// OutcomeCount is one row of Stats.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// scanner interface for both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// toJSON converts an object to JSON string
func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// fromJSON parses JSON string into an object
func fromJSON(data string, v interface{}) error {
	if data == "" || data == "[]" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
