package result

import (
	"math"
	"testing"
)

func TestGroupByKind(t *testing.T) {
	broken := []Resource{
		{URL: "http://a.test/x", Kind: KindLink},
		{URL: "http://a.test/logo.png", Kind: KindImage},
		{URL: "http://a.test/y", Kind: KindLink},
	}

	grouped := GroupByKind(broken)

	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	links := grouped[KindLink]
	if len(links) != 2 || links[0].URL != "http://a.test/x" || links[1].URL != "http://a.test/y" {
		t.Errorf("link group lost discovery order: %+v", links)
	}
	if len(grouped[KindImage]) != 1 {
		t.Errorf("expected 1 image, got %d", len(grouped[KindImage]))
	}
	if _, ok := grouped[KindScript]; ok {
		t.Error("kinds without broken resources should be absent")
	}
}

func TestGroupByKind_Empty(t *testing.T) {
	if got := GroupByKind(nil); len(got) != 0 {
		t.Errorf("expected empty grouping, got %v", got)
	}
}

func TestComputeStats(t *testing.T) {
	all := map[string]Resource{
		"http://a.test/":          {URL: "http://a.test/", Kind: KindLink},
		"http://a.test/dead":      {URL: "http://a.test/dead", Kind: KindLink, Broken: true, StatusCode: 404},
		"http://a.test/logo.png":  {URL: "http://a.test/logo.png", Kind: KindImage},
		"http://a.test/style.css": {URL: "http://a.test/style.css", Kind: KindStylesheet, Broken: true},
	}

	stats := ComputeStats(all, 3, 7)

	if stats.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", stats.PagesVisited)
	}
	if stats.TotalResources != 4 {
		t.Errorf("TotalResources = %d, want 4", stats.TotalResources)
	}
	if stats.TotalChecks != 7 {
		t.Errorf("TotalChecks = %d, want 7", stats.TotalChecks)
	}
	if stats.BrokenCount != 2 {
		t.Errorf("BrokenCount = %d, want 2", stats.BrokenCount)
	}
	if math.Abs(stats.BrokenPercentage-50) > 1e-9 {
		t.Errorf("BrokenPercentage = %f, want 50", stats.BrokenPercentage)
	}
	if stats.ByKind[KindLink] != 2 || stats.ByKind[KindImage] != 1 || stats.ByKind[KindStylesheet] != 1 {
		t.Errorf("unexpected ByKind: %v", stats.ByKind)
	}
	if stats.BrokenByKind[KindLink] != 1 || stats.BrokenByKind[KindStylesheet] != 1 || stats.BrokenByKind[KindImage] != 0 {
		t.Errorf("unexpected BrokenByKind: %v", stats.BrokenByKind)
	}
}

func TestComputeStats_NoResources(t *testing.T) {
	stats := ComputeStats(map[string]Resource{}, 1, 0)
	if stats.BrokenPercentage != 0 {
		t.Errorf("BrokenPercentage = %f, want 0", stats.BrokenPercentage)
	}
	if stats.TotalResources != 0 || stats.BrokenCount != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
}
