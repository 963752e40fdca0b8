package gov

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

// Condition returns the condition a governor acts with. Its address is
// the treasury account.
func Condition(governorID []byte) custody.Condition {
	return custody.NewCondition("gov", "treasury", governorID)
}

// Rules are the parameters of the governance process. A proposal keeps a
// copy of the rules it was created under.
type Rules struct {
	// ProposalThreshold is the weight a proposer must exceed.
	ProposalThreshold int64 `json:"proposal_threshold"`
	// Quorum is the part of the token supply that must take part in a vote.
	Quorum custody.Fraction `json:"quorum"`
	// VotingDelay is the time between proposing and the start of voting.
	VotingDelay custody.UnixDuration `json:"voting_delay"`
	// VotingPeriod is how long voting lasts.
	VotingPeriod custody.UnixDuration `json:"voting_period"`
	// TimelockDelay is the time between queuing and the earliest execution.
	TimelockDelay custody.UnixDuration `json:"timelock_delay"`
	// GracePeriod is how long a queued proposal may be executed after its eta.
	GracePeriod custody.UnixDuration `json:"grace_period"`
}

func (r Rules) Validate() error {
	var errs error
	if r.ProposalThreshold < 0 {
		errs = errors.AppendField(errs, "ProposalThreshold", errors.Wrap(errors.ErrInput, "must not be negative"))
	}
	errs = errors.AppendField(errs, "Quorum", r.Quorum.ValidateRatio())
	errs = errors.AppendField(errs, "VotingDelay", r.VotingDelay.Validate())
	// Voting is open strictly between start and end.
	if r.VotingPeriod < 2 {
		errs = errors.AppendField(errs, "VotingPeriod", errors.Wrap(errors.ErrInput, "must be at least 2s"))
	}
	errs = errors.AppendField(errs, "TimelockDelay", r.TimelockDelay.Validate())
	if r.GracePeriod <= 0 {
		errs = errors.AppendField(errs, "GracePeriod", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	return errs
}

// Governor is a governance instance. Voting weight is the balance of Token.
type Governor struct {
	// Admin may change the rules. It is usually the governor itself, so
	// that rule changes go through a proposal.
	Admin     custody.Address  `json:"admin"`
	Token     string           `json:"token"`
	Rules     Rules            `json:"rules"`
	Address   custody.Address  `json:"address"`
	CreatedAt custody.UnixTime `json:"created_at"`
}

var _ orm.Model = (*Governor)(nil)

func (g *Governor) Marshal() ([]byte, error) { return custody.MarshalBinary(g) }

func (g *Governor) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, g) }

func (g *Governor) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Admin", g.Admin.Validate())
	if !coin.IsCC(g.Token) {
		errs = errors.AppendField(errs, "Token", errors.Wrapf(errors.ErrCurrency, "invalid token %q", g.Token))
	}
	errs = errors.AppendField(errs, "Rules", g.Rules.Validate())
	errs = errors.AppendField(errs, "Address", g.Address.Validate())
	errs = errors.AppendField(errs, "CreatedAt", g.CreatedAt.Validate())
	return errs
}

// ProposalStatus is what is stored for a proposal. The state callers see
// is derived with Resolve.
type ProposalStatus int32

const (
	StatusOpen      ProposalStatus = 1
	StatusQueued    ProposalStatus = 2
	StatusExecuted  ProposalStatus = 3
	StatusCancelled ProposalStatus = 4
)

// ProposalState is the derived state of a proposal at a given time.
type ProposalState int32

const (
	StatePending   ProposalState = 1
	StateActive    ProposalState = 2
	StateSucceeded ProposalState = 3
	StateDefeated  ProposalState = 4
	StateQueued    ProposalState = 5
	StateExecuted  ProposalState = 6
	StateExpired   ProposalState = 7
	StateCancelled ProposalState = 8
)

var stateNames = map[ProposalState]string{
	StatePending:   "pending",
	StateActive:    "active",
	StateSucceeded: "succeeded",
	StateDefeated:  "defeated",
	StateQueued:    "queued",
	StateExecuted:  "executed",
	StateExpired:   "expired",
	StateCancelled: "cancelled",
}

func (s ProposalState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsTerminal returns true for states a proposal never leaves.
func (s ProposalState) IsTerminal() bool {
	switch s {
	case StateDefeated, StateExecuted, StateExpired, StateCancelled:
		return true
	}
	return false
}

// VoteChoice is the option a voter picked.
type VoteChoice int32

const (
	VoteFor     VoteChoice = 1
	VoteAgainst VoteChoice = 2
	VoteAbstain VoteChoice = 3
)

func (c VoteChoice) String() string {
	switch c {
	case VoteFor:
		return "for"
	case VoteAgainst:
		return "against"
	case VoteAbstain:
		return "abstain"
	}
	return "unknown"
}

func (c VoteChoice) Validate() error {
	if c < VoteFor || c > VoteAbstain {
		return errors.Wrapf(errors.ErrInput, "unknown choice %d", c)
	}
	return nil
}

// Tally is the sum of vote weights per choice.
type Tally struct {
	For     int64 `json:"for"`
	Against int64 `json:"against"`
	Abstain int64 `json:"abstain"`
}

// Add counts a vote.
func (t *Tally) Add(c VoteChoice, weight int64) error {
	if weight <= 0 {
		return errors.Wrap(errors.ErrInput, "vote weight must be positive")
	}
	if t.Total() > coin.MaxInt-weight {
		return errors.Wrap(errors.ErrOverflow, "tally")
	}
	switch c {
	case VoteFor:
		t.For += weight
	case VoteAgainst:
		t.Against += weight
	case VoteAbstain:
		t.Abstain += weight
	default:
		return errors.Wrapf(errors.ErrInput, "unknown choice %d", c)
	}
	return nil
}

// Total returns the weight of all votes cast.
func (t Tally) Total() int64 {
	return t.For + t.Against + t.Abstain
}

// ProposalAction is a single step of a proposal. A Value is transferred
// from the treasury to Target, and a Path is invoked with Payload as the
// governor. An action may do both, the transfer goes first.
type ProposalAction struct {
	Target  custody.Address `json:"target,omitempty"`
	Value   *coin.Coin      `json:"value,omitempty"`
	Path    string          `json:"path,omitempty"`
	Payload []byte          `json:"payload,omitempty"`
}

func (a ProposalAction) Validate() error {
	if a.Value == nil && a.Path == "" {
		return errors.Wrap(errors.ErrEmpty, "action does nothing")
	}
	if a.Value == nil {
		if len(a.Target) != 0 {
			return errors.Wrap(errors.ErrInput, "target without value")
		}
		return nil
	}
	if err := a.Target.Validate(); err != nil {
		return errors.Wrap(err, "target")
	}
	if err := a.Value.Validate(); err != nil {
		return errors.Wrap(err, "value")
	}
	if !a.Value.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "value must be positive")
	}
	return nil
}

// Proposal is a list of actions voted on by token holders.
type Proposal struct {
	GovernorID  []byte           `json:"governor_id"`
	Proposer    custody.Address  `json:"proposer"`
	Description string           `json:"description"`
	Actions     []ProposalAction `json:"actions"`
	// Rules the proposal was created under.
	Rules       Rules            `json:"rules"`
	VotingStart custody.UnixTime `json:"voting_start"`
	VotingEnd   custody.UnixTime `json:"voting_end"`
	Tally       Tally            `json:"tally"`
	Status      ProposalStatus   `json:"status"`
	QueuedEta   custody.UnixTime `json:"queued_eta,omitempty"`
	CreatedAt   custody.UnixTime `json:"created_at"`
	ExecutedAt  custody.UnixTime `json:"executed_at,omitempty"`
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) { return custody.MarshalBinary(p) }

func (p *Proposal) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, p) }

func (p *Proposal) Validate() error {
	var errs error
	if len(p.GovernorID) == 0 {
		errs = errors.AppendField(errs, "GovernorID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	if p.Description == "" {
		errs = errors.AppendField(errs, "Description", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Actions", validateActions(p.Actions))
	errs = errors.AppendField(errs, "Rules", p.Rules.Validate())
	if p.VotingEnd <= p.VotingStart {
		errs = errors.AppendField(errs, "VotingEnd", errors.Wrap(errors.ErrInput, "must be after start"))
	}
	if p.Status < StatusOpen || p.Status > StatusCancelled {
		errs = errors.AppendField(errs, "Status", errors.ErrState)
	}
	if p.Status == StatusQueued {
		errs = errors.AppendField(errs, "QueuedEta", p.QueuedEta.Validate())
	}
	errs = errors.AppendField(errs, "CreatedAt", p.CreatedAt.Validate())
	return errs
}

func validateActions(actions []ProposalAction) error {
	if len(actions) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no actions")
	}
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "action %d", i)
		}
	}
	return nil
}

// QuorumReached returns true if the cast votes are at least the quorum
// part of supply.
func (p *Proposal) QuorumReached(supply int64) bool {
	return p.Rules.Quorum.Reached(p.Tally.Total(), supply)
}

// Resolve returns the state of a proposal at time now. Supply is the token
// supply at the start of voting. Resolve is a pure function of its
// arguments.
func Resolve(p *Proposal, now custody.UnixTime, supply int64) ProposalState {
	switch p.Status {
	case StatusCancelled:
		return StateCancelled
	case StatusExecuted:
		return StateExecuted
	case StatusQueued:
		if now >= p.QueuedEta.Add(p.Rules.GracePeriod) {
			return StateExpired
		}
		return StateQueued
	}
	switch {
	case now <= p.VotingStart:
		return StatePending
	case now < p.VotingEnd:
		return StateActive
	case p.QuorumReached(supply) && p.Tally.For > p.Tally.Against:
		return StateSucceeded
	default:
		return StateDefeated
	}
}

// Vote is the single vote of a voter on a proposal.
type Vote struct {
	ProposalID []byte           `json:"proposal_id"`
	Voter      custody.Address  `json:"voter"`
	Choice     VoteChoice       `json:"choice"`
	Weight     int64            `json:"weight"`
	Reason     string           `json:"reason,omitempty"`
	Time       custody.UnixTime `json:"time"`
}

var _ orm.Model = (*Vote)(nil)

func (v *Vote) Marshal() ([]byte, error) { return custody.MarshalBinary(v) }

func (v *Vote) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, v) }

func (v *Vote) Validate() error {
	var errs error
	if len(v.ProposalID) == 0 {
		errs = errors.AppendField(errs, "ProposalID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Voter", v.Voter.Validate())
	errs = errors.AppendField(errs, "Choice", v.Choice.Validate())
	if v.Weight <= 0 {
		errs = errors.AppendField(errs, "Weight", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	errs = errors.AppendField(errs, "Time", v.Time.Validate())
	return errs
}

// voteKey is unique per proposal and voter.
func voteKey(proposalID []byte, voter custody.Address) []byte {
	key := make([]byte, 0, len(proposalID)+len(voter))
	return append(append(key, proposalID...), voter...)
}

// TimelockEntry tracks a queued action. It is keyed by the action hash and
// is marked executed before the action runs, so every queued action runs
// at most once.
type TimelockEntry struct {
	Hash       []byte           `json:"hash"`
	ProposalID []byte           `json:"proposal_id"`
	Index      int32            `json:"index"`
	Eta        custody.UnixTime `json:"eta"`
	Executed   bool             `json:"executed"`
	Cancelled  bool             `json:"cancelled"`
}

var _ orm.Model = (*TimelockEntry)(nil)

func (e *TimelockEntry) Marshal() ([]byte, error) { return custody.MarshalBinary(e) }

func (e *TimelockEntry) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, e) }

func (e *TimelockEntry) Validate() error {
	var errs error
	if len(e.Hash) != sha256.Size {
		errs = errors.AppendField(errs, "Hash", errors.Wrap(errors.ErrInput, "invalid hash"))
	}
	if len(e.ProposalID) == 0 {
		errs = errors.AppendField(errs, "ProposalID", errors.ErrEmpty)
	}
	if e.Index < 0 {
		errs = errors.AppendField(errs, "Index", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Eta", e.Eta.Validate())
	if e.Executed && e.Cancelled {
		errs = errors.AppendField(errs, "Cancelled", errors.Wrap(errors.ErrState, "executed entry cannot be cancelled"))
	}
	return errs
}

// ActionHash identifies the action at the given index of a proposal.
func ActionHash(proposalID []byte, index int32, a ProposalAction) []byte {
	h := sha256.New()
	writeField(h, proposalID)
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(index))
	h.Write(n[:])
	writeField(h, a.Target)
	if a.Value != nil {
		writeField(h, []byte(a.Value.String()))
	} else {
		writeField(h, nil)
	}
	writeField(h, []byte(a.Path))
	writeField(h, a.Payload)
	return h.Sum(nil)
}

// writeField writes a length prefixed value, so that adjacent fields
// cannot be shifted into each other.
func writeField(h hash.Hash, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// NewGovernorBucket returns a bucket for storing governors.
func NewGovernorBucket() orm.ModelBucket {
	return orm.NewModelBucket("governors", &Governor{})
}

// NewProposalBucket returns a bucket for storing proposals, indexed by
// governor.
func NewProposalBucket() orm.ModelBucket {
	return orm.NewModelBucket("proposals", &Proposal{},
		orm.WithIndex("governor", proposalGovernorIndexer, false))
}

func proposalGovernorIndexer(m orm.Model) ([]byte, error) {
	p, ok := m.(*Proposal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return p.GovernorID, nil
}

// NewVoteBucket returns a bucket for storing votes, indexed by proposal
// and by voter.
func NewVoteBucket() orm.ModelBucket {
	return orm.NewModelBucket("votes", &Vote{},
		orm.WithIndex("proposal", voteProposalIndexer, false),
		orm.WithIndex("voter", voteVoterIndexer, false))
}

func voteProposalIndexer(m orm.Model) ([]byte, error) {
	v, ok := m.(*Vote)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return v.ProposalID, nil
}

func voteVoterIndexer(m orm.Model) ([]byte, error) {
	v, ok := m.(*Vote)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return v.Voter, nil
}

// NewTimelockBucket returns a bucket for storing timelock entries, indexed
// by proposal.
func NewTimelockBucket() orm.ModelBucket {
	return orm.NewModelBucket("timelock", &TimelockEntry{},
		orm.WithIndex("proposal", timelockProposalIndexer, false))
}

func timelockProposalIndexer(m orm.Model) ([]byte, error) {
	e, ok := m.(*TimelockEntry)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e.ProposalID, nil
}
