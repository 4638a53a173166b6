package simulation

import (
	"github.com/sarchlab/greenwave/ga"
	"github.com/sarchlab/greenwave/timing"
)

// A CandidateRunner scores timing candidates for the optimizer by running
// the configured scenario under each one. Every call builds a fresh
// simulation from the same configuration and seed, so a candidate's score
// depends on nothing but the candidate.
type CandidateRunner struct {
	cfg Config
}

var _ ga.Runner = (*CandidateRunner)(nil)

// NewCandidateRunner creates a runner for the given scenario. The
// configuration is validated here, once, so that scoring runs can treat
// build failures as programmer errors.
func NewCandidateRunner(cfg Config) (*CandidateRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &CandidateRunner{cfg: cfg}, nil
}

// MeanWait runs the scenario under the candidate's timings and returns the
// mean wait time over the completed and still-queued vehicles.
func (r *CandidateRunner) MeanWait(c timing.Candidate) float64 {
	s, err := MakeBuilder().
		WithConfig(r.cfg).
		WithCandidate(c).
		Build()
	if err != nil {
		log.Panicf("building scoring run: %v", err)
	}

	result, err := s.Run()
	if err != nil {
		log.Panicf("scoring run: %v", err)
	}

	return result.MeanWait()
}
