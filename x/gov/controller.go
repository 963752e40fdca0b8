package gov

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
)

// Reader answers read queries that need the derived proposal state, which
// the stored models alone do not carry.
type Reader struct {
	b       buckets
	weights cash.WeightProvider
}

// NewReader returns a reader using the given weight provider for supply
// snapshots.
func NewReader(weights cash.WeightProvider) Reader {
	return Reader{b: newBuckets(), weights: weights}
}

// Governor returns the governor with the given id.
func (r Reader) Governor(db custody.ReadOnlyKVStore, id []byte) (*Governor, error) {
	return r.b.loadGovernor(db, id)
}

// Proposal returns the proposal with the given id and its state at now.
func (r Reader) Proposal(db custody.ReadOnlyKVStore, id []byte, now custody.UnixTime) (*Proposal, ProposalState, error) {
	p, g, err := r.b.loadProposal(db, id)
	if err != nil {
		return nil, 0, err
	}
	state, _, err := resolve(db, r.weights, p, g, now)
	if err != nil {
		return nil, 0, err
	}
	return p, state, nil
}

// Votes returns all votes cast on a proposal.
func (r Reader) Votes(db custody.ReadOnlyKVStore, proposalID []byte) ([]*Vote, error) {
	var votes []*Vote
	if _, err := r.b.votes.ByIndex(db, "proposal", proposalID, &votes); err != nil {
		return nil, errors.Wrap(err, "load votes")
	}
	return votes, nil
}

// Timelock returns the timelock entries of a proposal in action order.
func (r Reader) Timelock(db custody.ReadOnlyKVStore, proposalID []byte) ([]*TimelockEntry, error) {
	p, _, err := r.b.loadProposal(db, proposalID)
	if err != nil {
		return nil, err
	}
	entries := make([]*TimelockEntry, 0, len(p.Actions))
	for i, a := range p.Actions {
		var e TimelockEntry
		switch err := r.b.timelock.One(db, ActionHash(proposalID, int32(i), a), &e); {
		case errors.ErrNotFound.Is(err):
			return nil, nil
		case err != nil:
			return nil, errors.Wrap(err, "load timelock entry")
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
