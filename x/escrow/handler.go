package escrow

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	// pay escrow cost up-front
	createAgreementCost int64 = 300
	fundAgreementCost   int64 = 100
	updateAgreementCost int64 = 50
	payoutAgreementCost int64 = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, mover cash.CoinMover) {
	b := newBuckets()
	r.Handle(&CreateMsg{}, createHandler{auth: auth, b: b})
	r.Handle(&FundMsg{}, fundHandler{auth: auth, b: b, mover: mover})
	r.Handle(&CompleteMilestoneMsg{}, completeMilestoneHandler{auth: auth, b: b})
	r.Handle(&ReleaseMsg{}, releaseHandler{auth: auth, b: b, mover: mover})
	r.Handle(&DisputeMsg{}, disputeHandler{auth: auth, b: b})
	r.Handle(&ResolveMsg{}, resolveHandler{auth: auth, b: b, mover: mover})
	r.Handle(&CancelMsg{}, cancelHandler{auth: auth, b: b})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(configPkg, &Configuration{}, auth))
}

// RegisterQuery registers agreements under "/agreements" and both logs
// under "/milestones" and "/transitions".
func RegisterQuery(qr custody.QueryRouter) {
	NewAgreementBucket().Register("agreements", qr)
	NewMilestoneBucket().Register("milestones", qr)
	NewTransitionBucket().Register("transitions", qr)
}

type buckets struct {
	agreements  orm.ModelBucket
	milestones  orm.ModelBucket
	transitions orm.ModelBucket
}

func newBuckets() buckets {
	return buckets{
		agreements:  NewAgreementBucket(),
		milestones:  NewMilestoneBucket(),
		transitions: NewTransitionBucket(),
	}
}

func (b buckets) load(db custody.ReadOnlyKVStore, id []byte) (*Agreement, error) {
	var a Agreement
	if err := b.agreements.One(db, id, &a); err != nil {
		return nil, errors.Wrap(err, "load agreement")
	}
	return &a, nil
}

// transition moves the agreement to the given state and saves it. Every
// state change is appended to the history.
func (b buckets) transition(ctx custody.Context, db custody.KVStore, id []byte, a *Agreement, to State, actor custody.Address) error {
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return err
	}
	from := a.State
	if from != to {
		if !canTransition(from, to) {
			return errors.Wrapf(errors.ErrState, "agreement cannot move from %s to %s", from, to)
		}
		t := Transition{AgreementID: id, From: from, To: to, Actor: actor, Time: now}
		if _, err := b.transitions.Put(db, nil, &t); err != nil {
			return errors.Wrap(err, "log transition")
		}
	}
	a.State = to
	if _, err := b.agreements.Put(db, id, a); err != nil {
		return errors.Wrap(err, "save agreement")
	}
	custody.GetLogger(ctx).Info("escrow transition",
		"agreement", common.HexBytes(id), "from", from, "to", to, "actor", actor)
	return nil
}

// payPayee sends the amount minus the fee to the payee and the fee to the
// fee sink. Zero transfers are skipped.
func payPayee(ctx custody.Context, db custody.KVStore, mover cash.CoinMover, a *Agreement) error {
	payout, fee, err := a.Amount.SplitFee(a.FeeRate)
	if err != nil {
		return errors.Wrap(err, "fee")
	}
	if payout.IsPositive() {
		if err := mover.MoveCoins(ctx, db, a.Address, a.Payee, payout); err != nil {
			return errors.Wrap(err, "pay payee")
		}
	}
	if fee.IsPositive() {
		if err := mover.MoveCoins(ctx, db, a.Address, a.FeeSink, fee); err != nil {
			return errors.Wrap(err, "pay fee")
		}
	}
	return nil
}

type createHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = createHandler{}

func (h createHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createAgreementCost}, nil
}

func (h createHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, payer, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}

	id := h.b.agreements.Sequence().NextVal(db)
	a := Agreement{
		Payer:         payer,
		Payee:         msg.Payee,
		Arbiter:       msg.Arbiter,
		Amount:        *msg.Amount,
		Deadline:      msg.Deadline,
		Milestones:    msg.Milestones,
		ReleasePolicy: msg.ReleasePolicy,
		FeeRate:       conf.FeeRate,
		FeeSink:       conf.FeeSink,
		Address:       Condition(id).Address(),
		CreatedAt:     now,
	}
	if err := h.b.transition(ctx, db, id, &a, StateCreated, payer); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{Data: id}
	res.Tag("escrow.id", id)
	return res, nil
}

func (h createHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateMsg, custody.Address, *Configuration, error) {
	var msg CreateMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	// apply a default for payer
	payer := msg.Payer
	if payer == nil {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
		payer = signer.Address()
	} else if !h.auth.HasAddress(ctx, payer) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	if err := validateParties(payer, msg.Payee, msg.Arbiter); err != nil {
		return nil, nil, nil, err
	}

	if custody.IsExpired(ctx, msg.Deadline) {
		return nil, nil, nil, errors.Field("Deadline", errors.ErrInput, "deadline %s is not in the future", msg.Deadline)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(msg.Milestones) > int(conf.MaxMilestones) {
		return nil, nil, nil, errors.Field("Milestones", errors.ErrInput, "at most %d milestones allowed", conf.MaxMilestones)
	}
	return &msg, payer, conf, nil
}

type fundHandler struct {
	auth  x.Authenticator
	b     buckets
	mover cash.CoinMover
}

var _ custody.Handler = fundHandler{}

func (h fundHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: fundAgreementCost}, nil
}

func (h fundHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.b.transition(ctx, db, msg.AgreementID, a, StateFunded, a.Payer); err != nil {
		return nil, err
	}
	if err := h.mover.MoveCoins(ctx, db, a.Payer, a.Address, a.Amount); err != nil {
		return nil, errors.Wrap(err, "fund")
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h fundHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*FundMsg, *Agreement, error) {
	var msg FundMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, a.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the payer can fund")
	}
	if a.State != StateCreated {
		return nil, nil, errors.Wrapf(errors.ErrState, "cannot fund %s agreement", a.State)
	}
	return &msg, a, nil
}

type completeMilestoneHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = completeMilestoneHandler{}

func (h completeMilestoneHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: updateAgreementCost}, nil
}

func (h completeMilestoneHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, actor, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	rec := MilestoneRecord{
		AgreementID: msg.AgreementID,
		Milestone:   msg.Milestone,
		CompletedBy: actor,
		Time:        now,
	}
	if _, err := h.b.milestones.Put(db, nil, &rec); err != nil {
		return nil, errors.Wrap(err, "log milestone")
	}
	a.Completed = append(a.Completed, msg.Milestone)
	next := StateInProgress
	if len(a.Completed) == len(a.Milestones) {
		next = StateCompleted
	}
	if err := h.b.transition(ctx, db, msg.AgreementID, a, next, actor); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h completeMilestoneHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CompleteMilestoneMsg, *Agreement, custody.Address, error) {
	var msg CompleteMilestoneMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, nil, err
	}
	actor := x.AnySigner(ctx, h.auth, a.Payee, a.Arbiter)
	if actor == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the payee or the arbiter can complete milestones")
	}
	if a.State != StateFunded && a.State != StateInProgress {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "cannot complete milestones of %s agreement", a.State)
	}
	if custody.IsExpired(ctx, a.Deadline) {
		return nil, nil, nil, errors.Wrapf(ErrDeadlinePassed, "deadline %s", a.Deadline)
	}
	if !contains(a.Milestones, msg.Milestone) {
		return nil, nil, nil, errors.Wrapf(errors.ErrInput, "unknown milestone %q", msg.Milestone)
	}
	if contains(a.Completed, msg.Milestone) {
		return nil, nil, nil, errors.Wrapf(ErrMilestoneCompleted, "milestone %q", msg.Milestone)
	}
	return &msg, a, actor, nil
}

type releaseHandler struct {
	auth  x.Authenticator
	b     buckets
	mover cash.CoinMover
}

var _ custody.Handler = releaseHandler{}

func (h releaseHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: payoutAgreementCost}, nil
}

// Deliver marks the agreement released before any value moves.
func (h releaseHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, actor, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	a.Outcome = OutcomePaidPayee
	if err := h.b.transition(ctx, db, msg.AgreementID, a, StateReleased, actor); err != nil {
		return nil, err
	}
	if err := payPayee(ctx, db, h.mover, a); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h releaseHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ReleaseMsg, *Agreement, custody.Address, error) {
	var msg ReleaseMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, nil, err
	}
	if x.AnySigner(ctx, h.auth, a.Payer, a.Payee, a.Arbiter) == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "only a party can release")
	}
	switch a.State {
	case StateFunded, StateCompleted:
	case StateReleased:
		return nil, nil, nil, errors.Wrap(errors.ErrAlreadyDone, "already released")
	default:
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "cannot release %s agreement", a.State)
	}
	for _, party := range []custody.Address{a.Payer, a.Arbiter, a.Payee} {
		if h.auth.HasAddress(ctx, party) && a.CanRelease(party) {
			return &msg, a, party, nil
		}
	}
	return nil, nil, nil, errors.Wrapf(errors.ErrUnauthorized, "release policy does not allow release of %s agreement", a.State)
}

type disputeHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = disputeHandler{}

func (h disputeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: updateAgreementCost}, nil
}

func (h disputeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, actor, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.b.transition(ctx, db, msg.AgreementID, a, StateDisputed, actor); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h disputeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*DisputeMsg, *Agreement, custody.Address, error) {
	var msg DisputeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, nil, err
	}
	actor := x.AnySigner(ctx, h.auth, a.Payer, a.Payee)
	if actor == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the payer or the payee can dispute")
	}
	switch a.State {
	case StateFunded, StateInProgress, StateCompleted:
	default:
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "cannot dispute %s agreement", a.State)
	}
	return &msg, a, actor, nil
}

type resolveHandler struct {
	auth  x.Authenticator
	b     buckets
	mover cash.CoinMover
}

var _ custody.Handler = resolveHandler{}

func (h resolveHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: payoutAgreementCost}, nil
}

// Deliver pays either the full amount back to the payer, without a fee, or
// the amount minus the fee to the payee, exactly as a release does.
func (h resolveHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if msg.WinnerIsPayer {
		a.Outcome = OutcomeRefundedPayer
	} else {
		a.Outcome = OutcomePaidPayee
	}
	if err := h.b.transition(ctx, db, msg.AgreementID, a, StateResolved, a.Arbiter); err != nil {
		return nil, err
	}
	if msg.WinnerIsPayer {
		if err := h.mover.MoveCoins(ctx, db, a.Address, a.Payer, a.Amount); err != nil {
			return nil, errors.Wrap(err, "refund payer")
		}
	} else if err := payPayee(ctx, db, h.mover, a); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h resolveHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ResolveMsg, *Agreement, error) {
	var msg ResolveMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, a.Arbiter) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the arbiter can resolve")
	}
	if a.State != StateDisputed {
		return nil, nil, errors.Wrapf(ErrNotDisputed, "agreement is %s", a.State)
	}
	return &msg, a, nil
}

type cancelHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = cancelHandler{}

func (h cancelHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: updateAgreementCost}, nil
}

func (h cancelHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, a, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.b.transition(ctx, db, msg.AgreementID, a, StateCancelled, a.Payer); err != nil {
		return nil, err
	}
	res := &custody.DeliverResult{}
	res.Tag("escrow.id", msg.AgreementID)
	return res, nil
}

func (h cancelHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CancelMsg, *Agreement, error) {
	var msg CancelMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	a, err := h.b.load(db, msg.AgreementID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, a.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the payer can cancel")
	}
	if a.State != StateCreated {
		return nil, nil, errors.Wrapf(errors.ErrState, "cannot cancel %s agreement", a.State)
	}
	return &msg, a, nil
}
