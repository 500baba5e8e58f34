package models

import "time"

// RunSummary aggregates one simulated day.
type RunSummary struct {
	RunID            string    `json:"runId"`
	StartedAt        time.Time `json:"startedAt"`
	StartClock       string    `json:"startClock"`
	EndClock         string    `json:"endClock"`
	SimulatedMinutes float64   `json:"simulatedMinutes"`
	Students         int       `json:"students"`
	Arrivals         int       `json:"arrivals"`
	LateArrivals     int       `json:"lateArrivals"`
	OnTimeRate       float64   `json:"onTimeRate"`
	Replans          int       `json:"replans"`
	Reroutes         int       `json:"reroutes"`
	RouteFailures    int       `json:"routeFailures"`
	TotalWait        float64   `json:"totalWait"`
	Enqueued         int       `json:"enqueued"`
	Dequeued         int       `json:"dequeued"`
	Overflow         int       `json:"overflow"`
	MaxQueueDepth    int       `json:"maxQueueDepth"`
	AverageQueueWait float64   `json:"averageQueueWait"`
	Released         int       `json:"released"`
	ReleaseBatches   int       `json:"releaseBatches"`
}

// EdgeQueueStats is the queue record of one edge for one run.
type EdgeQueueStats struct {
	RunID       string  `json:"runId"`
	EdgeID      int     `json:"edgeId"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Enqueued    int     `json:"enqueued"`
	Dequeued    int     `json:"dequeued"`
	MaxDepth    int     `json:"maxDepth"`
	TotalWait   float64 `json:"totalWait"`
	AverageWait float64 `json:"averageWait"`
	Overflow    int     `json:"overflow"`
}

// EventMessage is a serialised event ready for an output destination.
type EventMessage struct {
	Topic   string
	Message []byte
}

// EventRow is a persisted event log entry.
type EventRow struct {
	RunID       string  `json:"runId"`
	Seq         int     `json:"seq"`
	Minutes     float64 `json:"minutes"`
	Clock       string  `json:"clock"`
	Topic       string  `json:"topic"`
	Kind        string  `json:"kind"`
	StudentID   string  `json:"studentId"`
	Class       string  `json:"class"`
	Location    string  `json:"location"`
	EdgeID      int     `json:"edgeId"`
	Description string  `json:"description"`
}
