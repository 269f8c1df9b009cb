package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Identifiers are assigned by the persistence layer and treated as opaque values.

type (
	MissionID    string
	FlightPlanID string
	RiskEntryID  string
	JSAID        string
	PersonID     string
	AssetID      string
)

func (id MissionID) String() string    { return string(id) }
func (id FlightPlanID) String() string { return string(id) }
func (id RiskEntryID) String() string  { return string(id) }
func (id JSAID) String() string        { return string(id) }
func (id PersonID) String() string     { return string(id) }
func (id AssetID) String() string      { return string(id) }

// Validate checks if the MissionID is set
func (id MissionID) Validate() error {
	if id == "" {
		return goerr.New("mission ID cannot be empty")
	}
	return nil
}

// Validate checks if the FlightPlanID is set
func (id FlightPlanID) Validate() error {
	if id == "" {
		return goerr.New("flight plan ID cannot be empty")
	}
	return nil
}
