package health

import (
	"context"
	"errors"
	"testing"
)

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockQuota struct {
	remaining int64
}

func (m *mockQuota) RemainingDaily() int64 { return m.remaining }

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		db     DBPinger
		quota  QuotaReporter
		status Status
		checks map[string]CheckResult
	}{
		{
			name:   "all healthy",
			db:     &mockDBPinger{},
			quota:  &mockQuota{remaining: 9900},
			status: Healthy,
			checks: map[string]CheckResult{"database": CheckOK, "quota": CheckOK},
		},
		{
			name:   "unlimited quota",
			quota:  &mockQuota{remaining: -1},
			status: Healthy,
			checks: map[string]CheckResult{"quota": CheckOK},
		},
		{
			name:   "db down",
			db:     &mockDBPinger{err: errors.New("conn refused")},
			quota:  &mockQuota{remaining: 100},
			status: Degraded,
			checks: map[string]CheckResult{"database": CheckError, "quota": CheckOK},
		},
		{
			name:   "quota spent",
			db:     &mockDBPinger{},
			quota:  &mockQuota{remaining: 0},
			status: Degraded,
			checks: map[string]CheckResult{"database": CheckOK, "quota": CheckExhausted},
		},
		{
			name:   "nothing configured",
			status: Healthy,
			checks: map[string]CheckResult{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.db, tt.quota).Check(context.Background())
			if r.Status != tt.status {
				t.Errorf("Status = %q, want %q", r.Status, tt.status)
			}
			if len(r.Checks) != len(tt.checks) {
				t.Fatalf("Checks = %v, want %v", r.Checks, tt.checks)
			}
			for k, want := range tt.checks {
				if r.Checks[k] != want {
					t.Errorf("Checks[%s] = %q, want %q", k, r.Checks[k], want)
				}
			}
		})
	}
}
