package escrow

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

const maxMilestoneLength = 64

// Condition returns the condition of the account holding the funds of the
// agreement.
func Condition(agreementID []byte) custody.Condition {
	return custody.NewCondition("escrow", "agreement", agreementID)
}

// State of an agreement.
type State int32

const (
	stateNone       State = 0
	StateCreated    State = 1
	StateFunded     State = 2
	StateInProgress State = 3
	StateCompleted  State = 4
	StateReleased   State = 5
	StateDisputed   State = 6
	StateResolved   State = 7
	StateCancelled  State = 8
)

var stateNames = map[State]string{
	StateCreated:    "created",
	StateFunded:     "funded",
	StateInProgress: "in_progress",
	StateCompleted:  "completed",
	StateReleased:   "released",
	StateDisputed:   "disputed",
	StateResolved:   "resolved",
	StateCancelled:  "cancelled",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsTerminal returns true for states an agreement never leaves.
func (s State) IsTerminal() bool {
	return s == StateReleased || s == StateResolved || s == StateCancelled
}

// transitions lists every allowed state change. States only move forward,
// dispute resolution being the only way out of a dispute.
var transitions = map[State][]State{
	stateNone:       {StateCreated},
	StateCreated:    {StateFunded, StateCancelled},
	StateFunded:     {StateInProgress, StateCompleted, StateReleased, StateDisputed},
	StateInProgress: {StateCompleted, StateDisputed},
	StateCompleted:  {StateReleased, StateDisputed},
	StateDisputed:   {StateResolved},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReleasePolicy defines who may release the funds of a completed
// agreement. The payer may always release, from Funded or Completed.
type ReleasePolicy int32

const (
	// PayerOnly allows only the payer to release.
	PayerOnly ReleasePolicy = 1
	// ArbiterOnCompletion additionally allows the arbiter to release once
	// all milestones are completed.
	ArbiterOnCompletion ReleasePolicy = 2
	// PayeeOnCompletion additionally allows the payee and the arbiter to
	// release once all milestones are completed.
	PayeeOnCompletion ReleasePolicy = 3
)

func (p ReleasePolicy) Validate() error {
	if p < PayerOnly || p > PayeeOnCompletion {
		return errors.Wrapf(errors.ErrInput, "unknown release policy %d", p)
	}
	return nil
}

// Outcome records how the funds of an agreement were paid out.
type Outcome int32

const (
	OutcomeNone          Outcome = 0
	OutcomePaidPayee     Outcome = 1
	OutcomeRefundedPayer Outcome = 2
)

// Agreement is a single counterparty payment held in escrow.
type Agreement struct {
	Payer         custody.Address  `json:"payer"`
	Payee         custody.Address  `json:"payee"`
	Arbiter       custody.Address  `json:"arbiter"`
	Amount        coin.Coin        `json:"amount"`
	Deadline      custody.UnixTime `json:"deadline"`
	Milestones    []string         `json:"milestones"`
	Completed     []string         `json:"completed"`
	State         State            `json:"state"`
	ReleasePolicy ReleasePolicy    `json:"release_policy"`
	// FeeRate and FeeSink are copied from the configuration when the
	// agreement is created.
	FeeRate   custody.Fraction `json:"fee_rate"`
	FeeSink   custody.Address  `json:"fee_sink"`
	Outcome   Outcome          `json:"outcome"`
	Address   custody.Address  `json:"address"`
	CreatedAt custody.UnixTime `json:"created_at"`
}

var _ orm.Model = (*Agreement)(nil)

func (a *Agreement) Marshal() ([]byte, error) { return custody.MarshalBinary(a) }

func (a *Agreement) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, a) }

func (a *Agreement) Validate() error {
	var errs error
	errs = errors.Append(errs, validateParties(a.Payer, a.Payee, a.Arbiter))
	if !a.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", a.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Deadline", a.Deadline.Validate())
	errs = errors.Append(errs, validateMilestones(a.Milestones))
	for i, c := range a.Completed {
		if !contains(a.Milestones, c) {
			errs = errors.Append(errs, errors.Field("Completed", errors.ErrInput, "completed %d is not a milestone", i))
		}
		if contains(a.Completed[:i], c) {
			errs = errors.Append(errs, errors.Field("Completed", errors.ErrDuplicate, "completed %d", i))
		}
	}
	if _, ok := stateNames[a.State]; !ok {
		errs = errors.AppendField(errs, "State", errors.ErrState)
	}
	errs = errors.AppendField(errs, "ReleasePolicy", a.ReleasePolicy.Validate())
	errs = errors.AppendField(errs, "FeeRate", a.FeeRate.ValidateRatio())
	errs = errors.AppendField(errs, "FeeSink", a.FeeSink.Validate())
	errs = errors.AppendField(errs, "Address", a.Address.Validate())
	errs = errors.AppendField(errs, "CreatedAt", a.CreatedAt.Validate())
	return errs
}

// IsParty returns true if addr is the payer, the payee or the arbiter.
func (a *Agreement) IsParty(addr custody.Address) bool {
	return a.Payer.Equals(addr) || a.Payee.Equals(addr) || a.Arbiter.Equals(addr)
}

// CanRelease returns true if the release policy allows addr to release
// funds in the current state. Release is possible from Funded and
// Completed only.
func (a *Agreement) CanRelease(addr custody.Address) bool {
	switch a.State {
	case StateFunded:
		return a.Payer.Equals(addr)
	case StateCompleted:
		switch {
		case a.Payer.Equals(addr):
			return true
		case a.Arbiter.Equals(addr):
			return a.ReleasePolicy == ArbiterOnCompletion || a.ReleasePolicy == PayeeOnCompletion
		case a.Payee.Equals(addr):
			return a.ReleasePolicy == PayeeOnCompletion
		}
	}
	return false
}

func validateParties(payer, payee, arbiter custody.Address) error {
	var errs error
	errs = errors.AppendField(errs, "Payer", payer.Validate())
	errs = errors.AppendField(errs, "Payee", payee.Validate())
	errs = errors.AppendField(errs, "Arbiter", arbiter.Validate())
	if errs != nil {
		return errs
	}
	if payer.Equals(payee) || payer.Equals(arbiter) || payee.Equals(arbiter) {
		return errors.Wrap(errors.ErrInput, "payer, payee and arbiter must be distinct")
	}
	return nil
}

func validateMilestones(ms []string) error {
	if len(ms) == 0 {
		return errors.Field("Milestones", errors.ErrEmpty, "at least one milestone required")
	}
	for i, m := range ms {
		if len(m) == 0 || len(m) > maxMilestoneLength {
			return errors.Field("Milestones", errors.ErrInput, "milestone %d must be 1 to %d characters", i, maxMilestoneLength)
		}
		if contains(ms[:i], m) {
			return errors.Field("Milestones", errors.ErrDuplicate, "milestone %q", m)
		}
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// MilestoneRecord is an entry of the append only log of completed
// milestones.
type MilestoneRecord struct {
	AgreementID []byte           `json:"agreement_id"`
	Milestone   string           `json:"milestone"`
	CompletedBy custody.Address  `json:"completed_by"`
	Time        custody.UnixTime `json:"time"`
}

var _ orm.Model = (*MilestoneRecord)(nil)

func (r *MilestoneRecord) Marshal() ([]byte, error) { return custody.MarshalBinary(r) }

func (r *MilestoneRecord) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, r) }

func (r *MilestoneRecord) Validate() error {
	var errs error
	if len(r.AgreementID) == 0 {
		errs = errors.AppendField(errs, "AgreementID", errors.ErrEmpty)
	}
	if r.Milestone == "" {
		errs = errors.AppendField(errs, "Milestone", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "CompletedBy", r.CompletedBy.Validate())
	return errs
}

// Transition is an entry of the append only state history of an agreement.
// The first entry of every agreement has no From state.
type Transition struct {
	AgreementID []byte           `json:"agreement_id"`
	From        State            `json:"from"`
	To          State            `json:"to"`
	Actor       custody.Address  `json:"actor"`
	Time        custody.UnixTime `json:"time"`
}

var _ orm.Model = (*Transition)(nil)

func (t *Transition) Marshal() ([]byte, error) { return custody.MarshalBinary(t) }

func (t *Transition) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, t) }

func (t *Transition) Validate() error {
	var errs error
	if len(t.AgreementID) == 0 {
		errs = errors.AppendField(errs, "AgreementID", errors.ErrEmpty)
	}
	if !canTransition(t.From, t.To) {
		errs = errors.AppendField(errs, "To", errors.Wrapf(errors.ErrState, "%s to %s", t.From, t.To))
	}
	errs = errors.AppendField(errs, "Actor", t.Actor.Validate())
	return errs
}

// NewAgreementBucket returns a bucket for agreements, indexed by each of
// the parties.
func NewAgreementBucket() orm.ModelBucket {
	return orm.NewModelBucket("agreements", &Agreement{},
		orm.WithIndex("payer", partyIndexer(func(a *Agreement) custody.Address { return a.Payer }), false),
		orm.WithIndex("payee", partyIndexer(func(a *Agreement) custody.Address { return a.Payee }), false),
		orm.WithIndex("arbiter", partyIndexer(func(a *Agreement) custody.Address { return a.Arbiter }), false),
	)
}

func partyIndexer(party func(*Agreement) custody.Address) orm.Indexer {
	return func(m orm.Model) ([]byte, error) {
		a, ok := m.(*Agreement)
		if !ok {
			return nil, errors.Wrapf(errors.ErrType, "%T", m)
		}
		return party(a), nil
	}
}

// NewMilestoneBucket returns a bucket for the milestone log.
func NewMilestoneBucket() orm.ModelBucket {
	return orm.NewModelBucket("milestones", &MilestoneRecord{},
		orm.WithIndex("agreement", func(m orm.Model) ([]byte, error) {
			r, ok := m.(*MilestoneRecord)
			if !ok {
				return nil, errors.Wrapf(errors.ErrType, "%T", m)
			}
			return r.AgreementID, nil
		}, false))
}

// NewTransitionBucket returns a bucket for the state history.
func NewTransitionBucket() orm.ModelBucket {
	return orm.NewModelBucket("transitions", &Transition{},
		orm.WithIndex("agreement", func(m orm.Model) ([]byte, error) {
			t, ok := m.(*Transition)
			if !ok {
				return nil, errors.Wrapf(errors.ErrType, "%T", m)
			}
			return t.AgreementID, nil
		}, false))
}
