package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{entity.VehicleReady, false},
		{entity.VehicleOnTour, false},
		{entity.VehicleMaintenanceRequired, false},
		{entity.VehicleIssue, false},
		{entity.VehicleOutOfService, true},
		{entity.VehicleDecommissioned, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := IsTerminal(tt.state); got != tt.expected {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.state, got, tt.expected)
			}
		})
	}
}

func TestVehicleMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{"ready to on_tour", entity.VehicleReady, TriggerStartTour, entity.VehicleOnTour, false},
		{"on_tour back to ready", entity.VehicleOnTour, TriggerEndTour, entity.VehicleReady, false},
		{"ready to maintenance", entity.VehicleReady, TriggerFlagMaintenance, entity.VehicleMaintenanceRequired, false},
		{"maintenance back to ready", entity.VehicleMaintenanceRequired, TriggerServiceCompleted, entity.VehicleReady, false},
		{"ready to issue", entity.VehicleReady, TriggerReportIssue, entity.VehicleIssue, false},
		{"on_tour to issue", entity.VehicleOnTour, TriggerReportIssue, entity.VehicleIssue, false},
		{"maintenance to issue", entity.VehicleMaintenanceRequired, TriggerReportIssue, entity.VehicleIssue, false},
		{"issue resolved", entity.VehicleIssue, TriggerResolveIssue, entity.VehicleReady, false},
		{"ready retired", entity.VehicleReady, TriggerRetire, entity.VehicleOutOfService, false},
		{"on_tour retired", entity.VehicleOnTour, TriggerRetire, entity.VehicleOutOfService, false},
		{"ready decommissioned", entity.VehicleReady, TriggerDecommission, entity.VehicleDecommissioned, false},
		{"on_tour cannot decommission", entity.VehicleOnTour, TriggerDecommission, entity.VehicleOnTour, true},
		{"ready cannot end tour", entity.VehicleReady, TriggerEndTour, entity.VehicleReady, true},
		{"maintenance cannot start tour", entity.VehicleMaintenanceRequired, TriggerStartTour, entity.VehicleMaintenanceRequired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewVehicleMachine(tt.from)
			if err != nil {
				t.Fatalf("NewVehicleMachine(%s) error: %v", tt.from, err)
			}

			err = m.Fire(context.Background(), tt.trigger)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Fire(%s) from %s succeeded, want error", tt.trigger, tt.from)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Fire(%s) error = %v, want ErrInvalidTransition", tt.trigger, err)
				}
			} else if err != nil {
				t.Fatalf("Fire(%s) from %s error: %v", tt.trigger, tt.from, err)
			}

			if got := m.State(); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVehicleMachine_TerminalStatesPermitNothing(t *testing.T) {
	triggers := []Trigger{
		TriggerStartTour, TriggerEndTour, TriggerFlagMaintenance,
		TriggerServiceCompleted, TriggerReportIssue, TriggerResolveIssue,
		TriggerRetire, TriggerDecommission,
	}

	for _, state := range []State{entity.VehicleOutOfService, entity.VehicleDecommissioned} {
		m, err := NewVehicleMachine(state)
		if err != nil {
			t.Fatalf("NewVehicleMachine(%s) error: %v", state, err)
		}
		for _, trigger := range triggers {
			if m.CanFire(trigger) {
				t.Errorf("CanFire(%s) from %s = true, want false", trigger, state)
			}
			if err := m.Fire(context.Background(), trigger); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%s) from %s error = %v, want ErrInvalidTransition", trigger, state, err)
			}
		}
	}
}

func TestBuilder_GuardedTransition(t *testing.T) {
	allow := false
	b := NewBuilder()
	b.Configure(entity.VehicleReady).
		PermitIf(TriggerStartTour, entity.VehicleOnTour, func(ctx context.Context) bool { return allow })

	m, err := b.Build(entity.VehicleReady)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if err := m.Fire(context.Background(), TriggerStartTour); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire with failing guard error = %v, want ErrGuardFailed", err)
	}
	if got := m.State(); got != entity.VehicleReady {
		t.Fatalf("State() after failed guard = %s, want ready", got)
	}

	allow = true
	if err := m.Fire(context.Background(), TriggerStartTour); err != nil {
		t.Fatalf("Fire with passing guard error: %v", err)
	}
	if got := m.State(); got != entity.VehicleOnTour {
		t.Fatalf("State() = %s, want on_tour", got)
	}
}

func TestBuilder_MachinesAreIndependent(t *testing.T) {
	b := NewBuilder()
	b.Configure(entity.VehicleReady).Permit(TriggerStartTour, entity.VehicleOnTour)

	first, err := b.Build(entity.VehicleReady)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	// Later configuration must not leak into already-built machines.
	b.Configure(entity.VehicleReady).Permit(TriggerRetire, entity.VehicleOutOfService)

	if first.CanFire(TriggerRetire) {
		t.Error("machine built before Configure sees the new transition")
	}
}
