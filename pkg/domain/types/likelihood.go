package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Likelihood is the probability axis of the risk matrix, ordered ascending from 1 to 5
type Likelihood int

const (
	LikelihoodExtremelyImprobable Likelihood = 1
	LikelihoodImprobable          Likelihood = 2
	LikelihoodRemote              Likelihood = 3
	LikelihoodOccasional          Likelihood = 4
	LikelihoodFrequent            Likelihood = 5
)

var likelihoodNames = map[Likelihood]string{
	LikelihoodExtremelyImprobable: "Extremely Improbable",
	LikelihoodImprobable:          "Improbable",
	LikelihoodRemote:              "Remote",
	LikelihoodOccasional:          "Occasional",
	LikelihoodFrequent:            "Frequent",
}

var likelihoodDescriptions = map[Likelihood]string{
	LikelihoodExtremelyImprobable: "Almost inconceivable that this event will occur",
	LikelihoodImprobable:          "Very unlikely to occur (not known to have occurred)",
	LikelihoodRemote:              "Unlikely to occur, but possible (has occurred rarely)",
	LikelihoodOccasional:          "Likely to occur sometimes (has occurred infrequently)",
	LikelihoodFrequent:            "Likely to occur many times (has occurred frequently)",
}

// AllLikelihoods returns every likelihood level in ascending order
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodExtremelyImprobable,
		LikelihoodImprobable,
		LikelihoodRemote,
		LikelihoodOccasional,
		LikelihoodFrequent,
	}
}

// IsValid checks if the likelihood is within 1..5
func (l Likelihood) IsValid() bool {
	return l >= LikelihoodExtremelyImprobable && l <= LikelihoodFrequent
}

// Validate checks if the Likelihood is valid
func (l Likelihood) Validate() error {
	if !l.IsValid() {
		return goerr.New("likelihood must be between 1 and 5", goerr.V("likelihood", int(l)))
	}
	return nil
}

// Name returns the short label such as "Remote"
func (l Likelihood) Name() string {
	if name, ok := likelihoodNames[l]; ok {
		return name
	}
	return "Unknown"
}

// Description returns the qualitative description of the level
func (l Likelihood) Description() string {
	return likelihoodDescriptions[l]
}

// String returns the label of the likelihood
func (l Likelihood) String() string {
	return l.Name()
}

// ParseLikelihood converts an integer rating into a Likelihood
func ParseLikelihood(v int) (Likelihood, error) {
	l := Likelihood(v)
	if err := l.Validate(); err != nil {
		return 0, err
	}
	return l, nil
}
