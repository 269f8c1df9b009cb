package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Consequence is the severity axis of the risk matrix. A is catastrophic and E is negligible.
type Consequence string

const (
	ConsequenceCatastrophic Consequence = "A"
	ConsequenceHazardous    Consequence = "B"
	ConsequenceModerate     Consequence = "C"
	ConsequenceMinor        Consequence = "D"
	ConsequenceNegligible   Consequence = "E"
)

// SeverityBand describes the impact band attached to a consequence letter
type SeverityBand struct {
	Name        string
	Cost        string
	Description string
}

var severityBands = map[Consequence]SeverityBand{
	ConsequenceCatastrophic: {
		Name:        "Catastrophic",
		Cost:        "More than $100,000",
		Description: "Fatality, equipment destroyed, threatens the ongoing existence of the organisation",
	},
	ConsequenceHazardous: {
		Name:        "Hazardous",
		Cost:        "$50,000-$100,000",
		Description: "Major incident, serious injury, major equipment damage, major impact to organisation ability",
	},
	ConsequenceModerate: {
		Name:        "Moderate",
		Cost:        "$10,000-$50,000",
		Description: "Serious incident, injury to persons, significant reduction in safety margins",
	},
	ConsequenceMinor: {
		Name:        "Minor",
		Cost:        "$2,000-$10,000",
		Description: "Minor injury, operating limitations required, use of emergency procedures",
	},
	ConsequenceNegligible: {
		Name:        "Negligible",
		Cost:        "Less than $2,000",
		Description: "Few consequences, managed through normal procedures",
	},
}

// AllConsequences returns every consequence letter from A to E
func AllConsequences() []Consequence {
	return []Consequence{
		ConsequenceCatastrophic,
		ConsequenceHazardous,
		ConsequenceModerate,
		ConsequenceMinor,
		ConsequenceNegligible,
	}
}

// IsValid checks if the letter belongs to the closed A-E domain
func (c Consequence) IsValid() bool {
	_, ok := severityBands[c]
	return ok
}

// Validate checks if the Consequence is valid
func (c Consequence) Validate() error {
	if !c.IsValid() {
		return goerr.New("consequence must be one of A, B, C, D, E", goerr.V("consequence", string(c)))
	}
	return nil
}

// Severity returns the severity band of the consequence
func (c Consequence) Severity() SeverityBand {
	return severityBands[c]
}

// String returns the letter of the consequence
func (c Consequence) String() string {
	return string(c)
}

// ParseConsequence parses a letter into a Consequence. Lowercase input is accepted.
func ParseConsequence(s string) (Consequence, error) {
	c := Consequence(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
