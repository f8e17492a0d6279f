package health

import (
	"context"
	"errors"
	"testing"

	"github.com/treadline/tiredex/internal/domain/catalog"
)

type mockCatalog struct {
	err error
}

func (m *mockCatalog) Snapshot(_ context.Context) (catalog.Snapshot, error) {
	return catalog.Snapshot{}, m.err
}

type mockRanking struct {
	err error
}

func (m *mockRanking) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalog{}, &mockRanking{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q, want %q", report.Status, Healthy)
	}
	if report.Checks["catalog"] != CheckOK || report.Checks["ranking"] != CheckOK {
		t.Errorf("Checks = %v", report.Checks)
	}
}

func TestCheck_CatalogBroken(t *testing.T) {
	svc := New(&mockCatalog{err: errors.New("missing file")}, &mockRanking{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["catalog"] != CheckError {
		t.Errorf("Checks = %v", report.Checks)
	}
}

func TestCheck_RankingBroken(t *testing.T) {
	svc := New(&mockCatalog{}, &mockRanking{err: errors.New("api down")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %q, want %q", report.Status, Degraded)
	}
}

func TestCheck_NilRankingSkipped(t *testing.T) {
	svc := New(&mockCatalog{}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %q, want %q", report.Status, Healthy)
	}
	if _, ok := report.Checks["ranking"]; ok {
		t.Error("ranking check should be skipped when nil")
	}
}
