package models

const (
	EventDeparture   = "departure"
	EventArrival     = "arrival"
	EventActivityEnd = "activity_end"
	EventReplan      = "replan"
	EventReroute     = "reroute"
	EventQueueJoin   = "queue_join"
	EventQueueAdmit  = "queue_admit"
	EventReleased    = "released"

	TopicMovement = "movement_events"
	TopicActivity = "activity_events"
	TopicQueue    = "queue_events"

	OutputFormatConsole = "console"
	OutputFormatJSON    = "json"
	OutputFormatCSV     = "csv"
	OutputFormatParquet = "parquet"

	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"

	PolicyShortestPath = "shortest_path"
	PolicyStepwise     = "stepwise"
	PolicyGreedy       = "greedy"
)

// TopicFor maps an event kind to the topic it is published on.
func TopicFor(kind string) string {
	switch kind {
	case EventArrival, EventActivityEnd, EventReleased:
		return TopicActivity
	case EventQueueJoin, EventQueueAdmit:
		return TopicQueue
	default:
		return TopicMovement
	}
}
