package repositories

import "github.com/chrisdamba/campussim/internal/models"

var (
	runFixture   = models.RunSummary{RunID: "r1"}
	edgeFixture  = models.EdgeQueueStats{RunID: "r1"}
	eventFixture = models.EventRow{RunID: "r1"}
)
