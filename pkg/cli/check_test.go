package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/sortie/pkg/cli"
	"github.com/secmon-lab/sortie/pkg/usecase"
)

const readyMission = `
[mission]
id = "MSN-2026-000001"
name = "Survey"
planned_start = 2026-07-02T08:00:00Z
planned_end = 2026-07-02T17:00:00Z

[[risk]]
hazard = "Bird strike"
initial_likelihood = 3
initial_consequence = "C"
residual_likelihood = 2
residual_consequence = "D"
review_due_date = 2026-08-01T00:00:00Z
accepted_by = "chief-1"
accepted_level = "chief_remote_pilot"

[jsa]
operation_class = "soc"
airspace_class = "G"
flight_types = ["VLOS"]
max_height_agl_ft = 120
sop_adequate = true
flight_authorized = true

[jsa.primary_signature]
signer = "chief-1"
date = 2026-07-01T08:00:00Z

[[drone]]
drone_id = "RPA-01"
remote_pilot = "pilot-1"
operation = "line_of_sight"
planned_departure = 2026-07-02T09:00:00Z
planned_arrival = 2026-07-02T09:30:00Z
max_altitude_agl_ft = 100
max_range_from_pilot_m = 300

[[drone]]
drone_id = "RPA-02"
remote_pilot = "pilot-2"
operation = "line_of_sight"
planned_departure = 2026-07-02T10:00:00Z
planned_arrival = 2026-07-02T10:30:00Z
max_altitude_agl_ft = 100
max_range_from_pilot_m = 300
`

const conflictingMission = `
[mission]
name = "Double booked"
require_risk_assessment = false
require_jsa = false

[[drone]]
drone_id = "RPA-01"
remote_pilot = "pilot-1"
operation = "line_of_sight"
planned_departure = 2026-07-02T09:00:00Z
planned_arrival = 2026-07-02T09:30:00Z
max_altitude_agl_ft = 100
max_range_from_pilot_m = 300

[[drone]]
drone_id = "RPA-01"
remote_pilot = "pilot-2"
operation = "line_of_sight"
planned_departure = 2026-07-02T09:15:00Z
planned_arrival = 2026-07-02T09:45:00Z
max_altitude_agl_ft = 100
max_range_from_pilot_m = 300
`

func runCheck(t *testing.T, mission string) error {
	t.Helper()
	path := writeFile(t, "mission.toml", mission)
	return cli.Run(context.Background(), []string{
		"sortie", "check",
		"--mission", path,
		"--at", "2026-07-01T09:00:00Z",
		"--no-color",
	}, "test")
}

func TestRun_CheckCommand_Ready(t *testing.T) {
	gt.NoError(t, runCheck(t, readyMission))
}

func TestRun_CheckCommand_Conflict(t *testing.T) {
	err := runCheck(t, conflictingMission)
	gt.Error(t, err).Is(usecase.ErrMissionNotReady)
}

func TestRun_CheckCommand_MissingJSA(t *testing.T) {
	err := runCheck(t, `
[mission]
name = "No JSA"
require_risk_assessment = false
`)
	gt.Error(t, err).Is(usecase.ErrMissionNotReady)
}

func TestRun_CheckCommand_InvalidRecord(t *testing.T) {
	err := runCheck(t, `
[mission]
name = "Too high"
require_risk_assessment = false
require_jsa = false

[[drone]]
drone_id = "RPA-01"
remote_pilot = "pilot-1"
operation = "beyond_vlos"
max_altitude_agl_ft = 450
`)
	gt.Value(t, err).NotNil()
}

func TestRun_CheckCommand_MissingFile(t *testing.T) {
	err := cli.Run(context.Background(), []string{"sortie", "check", "--mission", "/nonexistent/mission.toml"}, "test")
	gt.Value(t, err).NotNil()
}
