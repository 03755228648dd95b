package metrics

import (
	"sync"
	"testing"
	"time"
)

// ====
// Collector Tests
// ====

func TestCounters(t *testing.T) {
	c := New()

	c.RecordRequest()
	c.RecordRequest()
	c.RecordPageFetched()
	c.RecordPageDiscovered()
	c.RecordPageDiscovered()
	c.RecordPageDiscovered()
	c.RecordPageAdmitted()
	c.RecordLinksExtracted(5)
	c.RecordBytes(1024)

	s := c.Snapshot()
	if s.RequestsTotal != 2 {
		t.Errorf("RequestsTotal = %d, want 2", s.RequestsTotal)
	}
	if s.PagesFetched != 1 {
		t.Errorf("PagesFetched = %d, want 1", s.PagesFetched)
	}
	if s.PagesDiscovered != 3 {
		t.Errorf("PagesDiscovered = %d, want 3", s.PagesDiscovered)
	}
	if s.LinksExtracted != 5 {
		t.Errorf("LinksExtracted = %d, want 5", s.LinksExtracted)
	}
	if s.BytesTotal != 1024 {
		t.Errorf("BytesTotal = %d, want 1024", s.BytesTotal)
	}
}

func TestErrorBreakdown(t *testing.T) {
	c := New()

	c.RecordError("timeout")
	c.RecordError("timeout")
	c.RecordError("network")

	s := c.Snapshot()
	if s.ErrorsTotal != 3 {
		t.Errorf("ErrorsTotal = %d, want 3", s.ErrorsTotal)
	}
	if s.ErrorCounts["timeout"] != 2 {
		t.Errorf("ErrorCounts[timeout] = %d, want 2", s.ErrorCounts["timeout"])
	}
	if s.ErrorCounts["network"] != 1 {
		t.Errorf("ErrorCounts[network] = %d, want 1", s.ErrorCounts["network"])
	}
}

func TestStatusCodeBreakdown(t *testing.T) {
	c := New()

	c.RecordStatusCode(200)
	c.RecordStatusCode(200)
	c.RecordStatusCode(404)

	s := c.Snapshot()
	if s.StatusCodes[200] != 2 {
		t.Errorf("StatusCodes[200] = %d, want 2", s.StatusCodes[200])
	}
	if s.StatusCodes[404] != 1 {
		t.Errorf("StatusCodes[404] = %d, want 1", s.StatusCodes[404])
	}
}

func TestResponseTimeHistogram(t *testing.T) {
	c := New()

	c.RecordResponseTime(5 * time.Millisecond)    // bucket 0
	c.RecordResponseTime(75 * time.Millisecond)   // bucket 2
	c.RecordResponseTime(3 * time.Second)         // bucket 7
	c.RecordResponseTime(20 * time.Second)        // bucket 9

	s := c.Snapshot()
	want := map[int]int64{0: 1, 2: 1, 7: 1, 9: 1}
	for bucket, n := range want {
		if s.ResponseTimeHist[bucket] != n {
			t.Errorf("bucket %d = %d, want %d", bucket, s.ResponseTimeHist[bucket], n)
		}
	}
}

func TestAverageResponseTime(t *testing.T) {
	c := New()

	if got := c.GetAverageResponseTime(); got != 0 {
		t.Errorf("empty average = %v, want 0", got)
	}

	c.RecordResponseTime(100 * time.Millisecond)
	c.RecordResponseTime(300 * time.Millisecond)

	if got := c.GetAverageResponseTime(); got != 200*time.Millisecond {
		t.Errorf("average = %v, want 200ms", got)
	}
}

func TestGauges(t *testing.T) {
	c := New()

	c.SetFrontierDepth(12)
	c.AddInFlight(3)
	c.AddInFlight(-1)

	s := c.Snapshot()
	if s.FrontierDepth != 12 {
		t.Errorf("FrontierDepth = %d, want 12", s.FrontierDepth)
	}
	if s.InFlight != 2 {
		t.Errorf("InFlight = %d, want 2", s.InFlight)
	}
}

func TestSnapshotRates(t *testing.T) {
	c := New()

	c.RecordRequest()
	c.RecordError("network")

	s := c.Snapshot()
	if got := s.ErrorRate(); got != 1.0 {
		t.Errorf("ErrorRate = %f, want 1.0", got)
	}

	c.RecordPageDiscovered()
	c.RecordPageDiscovered()
	c.RecordPageAdmitted()
	s = c.Snapshot()
	if got := s.AdmissionRate(); got != 0.5 {
		t.Errorf("AdmissionRate = %f, want 0.5", got)
	}
}

func TestReset(t *testing.T) {
	c := New()

	c.RecordRequest()
	c.RecordError("timeout")
	c.RecordStatusCode(500)
	c.RecordResponseTime(time.Second)
	c.Reset()

	s := c.Snapshot()
	if s.RequestsTotal != 0 || s.ErrorsTotal != 0 {
		t.Errorf("counters not reset: requests=%d errors=%d", s.RequestsTotal, s.ErrorsTotal)
	}
	if len(s.ErrorCounts) != 0 || len(s.StatusCodes) != 0 {
		t.Errorf("breakdowns not reset")
	}
	for i, n := range s.ResponseTimeHist {
		if n != 0 {
			t.Errorf("histogram bucket %d not reset: %d", i, n)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordRequest()
				c.RecordError("network")
				c.RecordStatusCode(200)
				c.RecordResponseTime(10 * time.Millisecond)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.RequestsTotal != 1000 {
		t.Errorf("RequestsTotal = %d, want 1000", s.RequestsTotal)
	}
	if s.ErrorCounts["network"] != 1000 {
		t.Errorf("ErrorCounts[network] = %d, want 1000", s.ErrorCounts["network"])
	}
	if s.StatusCodes[200] != 1000 {
		t.Errorf("StatusCodes[200] = %d, want 1000", s.StatusCodes[200])
	}
}
