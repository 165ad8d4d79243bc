package sarif

// Stats aggregates results of a SARIF document.
type Stats struct {
	Total  int
	ByRule map[string]int
	ByFile map[string]int
}

// ComputeStats counts results per rule and per first location.
func ComputeStats(doc *Document) Stats {
	stats := Stats{
		ByRule: make(map[string]int),
		ByFile: make(map[string]int),
	}
	for _, run := range doc.Runs {
		for _, result := range run.Results {
			stats.Total++
			stats.ByRule[result.RuleID]++
			if len(result.Locations) > 0 {
				stats.ByFile[result.Locations[0].PhysicalLocation.ArtifactLocation.URI]++
			}
		}
	}
	return stats
}
