package result

// GroupByKind splits broken resources by kind. Each group keeps the order the
// resources were discovered in.
func GroupByKind(broken []Resource) map[Kind][]Resource {
	grouped := make(map[Kind][]Resource)
	for _, res := range broken {
		grouped[res.Kind] = append(grouped[res.Kind], res)
	}
	return grouped
}

// ComputeStats summarises the resources observed during a crawl. visited is
// the number of pages fetched and totalChecks the number of
// resource checks performed.
func ComputeStats(all map[string]Resource, visited int, totalChecks int) CrawlStats {
	stats := CrawlStats{
		PagesVisited:   visited,
		TotalResources: len(all),
		TotalChecks:    totalChecks,
		ByKind:         make(map[Kind]int),
		BrokenByKind:   make(map[Kind]int),
	}

	for _, res := range all {
		stats.ByKind[res.Kind]++
		if res.Broken {
			stats.BrokenCount++
			stats.BrokenByKind[res.Kind]++
		}
	}

	if stats.TotalResources > 0 {
		stats.BrokenPercentage = float64(stats.BrokenCount) / float64(stats.TotalResources) * 100
	}

	return stats
}
