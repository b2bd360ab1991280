package cache

import (
	"context"
	"testing"
	"time"

	"appscore-lab/internal/domain/models"
)

func testReport(hash string, score int) *models.Report {
	return &models.Report{
		ContentHash:   hash,
		Summary:       models.NewSummary(),
		Findings:      []models.Finding{{Tool: models.ToolMobSF, Category: "code", Title: "T1", Severity: models.SeverityHigh}},
		SecurityScore: score,
		ScoreMode:     models.ScoreModeRich,
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	got, err := c.GetReport(ctx, "abc")
	if err != nil || got != nil {
		t.Fatalf("GetReport on empty cache = %v, %v; want nil, nil", got, err)
	}

	if err := c.SetReport(ctx, "abc", testReport("abc", 70), time.Hour); err != nil {
		t.Fatalf("SetReport: %v", err)
	}

	got, err = c.GetReport(ctx, "abc")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got == nil || got.SecurityScore != 70 || len(got.Findings) != 1 {
		t.Fatalf("GetReport = %+v, want cached report with score 70", got)
	}

	// returned copies are independent of the cache
	got.Findings[0].Title = "mutated"
	again, _ := c.GetReport(ctx, "abc")
	if again.Findings[0].Title != "T1" {
		t.Errorf("cache entry was mutated through a returned report")
	}

	if err := c.DeleteReport(ctx, "abc"); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if got, _ := c.GetReport(ctx, "abc"); got != nil {
		t.Errorf("report still cached after delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	if err := c.SetReport(ctx, "abc", testReport("abc", 50), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.SetReport(ctx, "forever", testReport("forever", 90), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Second)
	if got, _ := c.GetReport(ctx, "abc"); got == nil {
		t.Error("entry expired early")
	}

	now = now.Add(time.Second)
	if got, _ := c.GetReport(ctx, "abc"); got != nil {
		t.Error("entry served after ttl")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after expiry eviction", c.Len())
	}

	now = now.Add(24 * time.Hour)
	if got, _ := c.GetReport(ctx, "forever"); got == nil {
		t.Error("zero ttl entry expired")
	}
}

func TestMemoryCacheLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	ok, _ := c.AcquireLock(ctx, "abc", 30*time.Second)
	if !ok {
		t.Fatal("first AcquireLock failed")
	}
	if ok, _ := c.AcquireLock(ctx, "abc", 30*time.Second); ok {
		t.Error("second AcquireLock succeeded while held")
	}

	now = now.Add(31 * time.Second)
	if ok, _ := c.AcquireLock(ctx, "abc", 30*time.Second); !ok {
		t.Error("expired lock was not reclaimable")
	}

	if err := c.ReleaseLock(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.AcquireLock(ctx, "abc", 30*time.Second); !ok {
		t.Error("AcquireLock failed after release")
	}
}

func TestMemoryCacheRateLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		allowed, remaining, _, err := c.CheckRateLimit(ctx, "ip:1", 2, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		wantAllowed := i <= 2
		if allowed != wantAllowed {
			t.Errorf("request %d allowed = %v, want %v", i, allowed, wantAllowed)
		}
		if wantRemaining := int64(max(2-i, 0)); remaining != wantRemaining {
			t.Errorf("request %d remaining = %d, want %d", i, remaining, wantRemaining)
		}
	}

	if allowed, _, _, _ := c.CheckRateLimit(ctx, "ip:2", 2, time.Minute); !allowed {
		t.Error("limit leaked across clients")
	}

	now = now.Add(time.Minute)
	if allowed, _, _, _ := c.CheckRateLimit(ctx, "ip:1", 2, time.Minute); !allowed {
		t.Error("counter did not reset in the next window")
	}
}

func TestMemoryCacheExpiryKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	c.now = func() time.Time { return clock }
	if err := c.SetReport(ctx, "abc", testReport("abc", 10), time.Minute); err != nil {
		t.Fatal(err)
	}

	clock = base.Add(2 * time.Minute)
	pending := true
	c.now = func() time.Time {
		if pending {
			pending = false
			// lands between the expiry check and the delete
			if err := c.SetReport(ctx, "abc", testReport("abc", 90), time.Minute); err != nil {
				t.Fatal(err)
			}
		}
		return clock
	}

	got, err := c.GetReport(ctx, "abc")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got == nil || got.SecurityScore != 90 {
		t.Fatalf("GetReport = %+v, want the fresh report with score 90", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want the fresh entry kept", c.Len())
	}
}
