// Package ingest holds what every import source reports back.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int   `json:"sessions_received"`
	SessionsInserted int   `json:"sessions_inserted"`
	SessionsSkipped  int   `json:"sessions_skipped"`
	SetsReceived     int   `json:"sets_received"`
	SetsInserted     int64 `json:"sets_inserted"`
	WarmupsDropped   int   `json:"warmups_dropped"`

	Message string `json:"message,omitempty"`
}

// Add folds another result into r.
func (r *Result) Add(o *Result) {
	r.SessionsReceived += o.SessionsReceived
	r.SessionsInserted += o.SessionsInserted
	r.SessionsSkipped += o.SessionsSkipped
	r.SetsReceived += o.SetsReceived
	r.SetsInserted += o.SetsInserted
	r.WarmupsDropped += o.WarmupsDropped
}
