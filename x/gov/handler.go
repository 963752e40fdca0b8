package gov

import (
	"bytes"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/gconf"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
	"github.com/chidioffor/crypto-hybrid-sub000/x/cash"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createGovernorCost  int64 = 300
	updateRulesCost     int64 = 50
	proposeCost         int64 = 200
	voteCost            int64 = 50
	queueCost           int64 = 100
	executeProposalCost int64 = 300
	cancelProposalCost  int64 = 50
)

// Bank moves treasury funds and provides the voting weights.
type Bank interface {
	cash.CoinMover
	cash.WeightProvider
}

// RegisterQuery registers governors, proposals, votes and timelock entries
// under "/governors", "/proposals", "/votes" and "/timelock".
func RegisterQuery(qr custody.QueryRouter) {
	NewGovernorBucket().Register("governors", qr)
	NewProposalBucket().Register("proposals", qr)
	NewVoteBucket().Register("votes", qr)
	NewTimelockBucket().Register("timelock", qr)
}

// RegisterRoutes registers handlers for all governance messages. The
// invoker runs the invoke part of proposal actions and may be nil, in
// which case such proposals fail on execution.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, bank Bank, invoker x.Invoker) {
	b := newBuckets()
	r.Handle(&CreateGovernorMsg{}, createGovernorHandler{b: b})
	r.Handle(&UpdateRulesMsg{}, updateRulesHandler{auth: auth, b: b})
	r.Handle(&ProposeMsg{}, proposeHandler{auth: auth, b: b, bank: bank})
	r.Handle(&VoteMsg{}, voteHandler{auth: auth, b: b, bank: bank})
	r.Handle(&QueueMsg{}, queueHandler{b: b, bank: bank})
	r.Handle(&ExecuteMsg{}, executeHandler{b: b, bank: bank, invoker: invoker})
	r.Handle(&CancelMsg{}, cancelHandler{auth: auth, b: b, bank: bank})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(configPkg, &Configuration{}, auth))
}

type buckets struct {
	governors orm.ModelBucket
	proposals orm.ModelBucket
	votes     orm.ModelBucket
	timelock  orm.ModelBucket
}

func newBuckets() buckets {
	return buckets{
		governors: NewGovernorBucket(),
		proposals: NewProposalBucket(),
		votes:     NewVoteBucket(),
		timelock:  NewTimelockBucket(),
	}
}

func (b buckets) loadGovernor(db custody.ReadOnlyKVStore, id []byte) (*Governor, error) {
	var g Governor
	if err := b.governors.One(db, id, &g); err != nil {
		return nil, errors.Wrap(err, "load governor")
	}
	return &g, nil
}

func (b buckets) loadProposal(db custody.ReadOnlyKVStore, id []byte) (*Proposal, *Governor, error) {
	var p Proposal
	if err := b.proposals.One(db, id, &p); err != nil {
		return nil, nil, errors.Wrap(err, "load proposal")
	}
	g, err := b.loadGovernor(db, p.GovernorID)
	if err != nil {
		return nil, nil, err
	}
	return &p, g, nil
}

// resolve returns the state of the proposal at now, using the supply at
// the start of voting.
func resolve(db custody.ReadOnlyKVStore, w cash.WeightProvider, p *Proposal, g *Governor, now custody.UnixTime) (ProposalState, int64, error) {
	supply, err := w.SupplyAt(db, g.Token, p.VotingStart)
	if err != nil {
		return 0, 0, errors.Wrap(err, "supply")
	}
	return Resolve(p, now, supply), supply, nil
}

type createGovernorHandler struct {
	b buckets
}

var _ custody.Handler = createGovernorHandler{}

func (h createGovernorHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createGovernorCost}, nil
}

func (h createGovernorHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	id := h.b.governors.Sequence().NextVal(db)
	g := Governor{
		Admin:     msg.Admin,
		Token:     msg.Token,
		Rules:     msg.Rules,
		Address:   Condition(id).Address(),
		CreatedAt: now,
	}
	if len(g.Admin) == 0 {
		g.Admin = g.Address
	}
	if _, err := h.b.governors.Put(db, id, &g); err != nil {
		return nil, errors.Wrap(err, "save governor")
	}
	custody.GetLogger(ctx).Info("governor created",
		"governor", common.HexBytes(id), "token", g.Token, "treasury", g.Address)
	res := &custody.DeliverResult{Data: id}
	res.Tag("gov.governor", id)
	return res, nil
}

func (h createGovernorHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateGovernorMsg, error) {
	var msg CreateGovernorMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &msg, nil
}

type updateRulesHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = updateRulesHandler{}

func (h updateRulesHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: updateRulesCost}, nil
}

func (h updateRulesHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g.Rules = msg.Rules
	if _, err := h.b.governors.Put(db, msg.GovernorID, g); err != nil {
		return nil, errors.Wrap(err, "save governor")
	}
	custody.GetLogger(ctx).Info("governor rules updated", "governor", common.HexBytes(msg.GovernorID))
	res := &custody.DeliverResult{}
	res.Tag("gov.governor", msg.GovernorID)
	return res, nil
}

func (h updateRulesHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*UpdateRulesMsg, *Governor, error) {
	var msg UpdateRulesMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	g, err := h.b.loadGovernor(db, msg.GovernorID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, g.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the admin can update rules")
	}
	return &msg, g, nil
}

type proposeHandler struct {
	auth x.Authenticator
	b    buckets
	bank Bank
}

var _ custody.Handler = proposeHandler{}

func (h proposeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: proposeCost}, nil
}

func (h proposeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, g, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	start := now.Add(g.Rules.VotingDelay)
	p := Proposal{
		GovernorID:  msg.GovernorID,
		Proposer:    proposer,
		Description: msg.Description,
		Actions:     msg.Actions,
		Rules:       g.Rules,
		VotingStart: start,
		VotingEnd:   start.Add(g.Rules.VotingPeriod),
		Status:      StatusOpen,
		CreatedAt:   now,
	}
	id, err := h.b.proposals.Put(db, nil, &p)
	if err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	custody.GetLogger(ctx).Info("proposal created",
		"governor", common.HexBytes(msg.GovernorID), "proposal", common.HexBytes(id),
		"actions", len(p.Actions), "voting_start", p.VotingStart, "voting_end", p.VotingEnd)
	res := &custody.DeliverResult{Data: id}
	res.Tag("gov.governor", msg.GovernorID)
	res.Tag("gov.proposal", id)
	return res, nil
}

func (h proposeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ProposeMsg, *Governor, custody.Address, error) {
	var msg ProposeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(msg.Actions) > int(conf.MaxActions) {
		return nil, nil, nil, errors.Field("Actions", errors.ErrInput, "at most %d actions allowed", conf.MaxActions)
	}
	if len(msg.Description) > int(conf.MaxDescriptionLength) {
		return nil, nil, nil, errors.Field("Description", errors.ErrInput, "at most %d characters allowed", conf.MaxDescriptionLength)
	}
	g, err := h.b.loadGovernor(db, msg.GovernorID)
	if err != nil {
		return nil, nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "proposal must be signed")
	}
	proposer := signer.Address()
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	// Weight of the previous second, so that it cannot be raised within
	// the proposing block.
	weight, err := h.bank.WeightAt(db, g.Token, proposer, now.Add(-1))
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "proposer weight")
	}
	if weight <= g.Rules.ProposalThreshold {
		return nil, nil, nil, errors.Wrapf(ErrBelowProposalThreshold, "weight %d, threshold %d", weight, g.Rules.ProposalThreshold)
	}
	return &msg, g, proposer, nil
}

type voteHandler struct {
	auth x.Authenticator
	b    buckets
	bank Bank
}

var _ custody.Handler = voteHandler{}

func (h voteHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: voteCost}, nil
}

func (h voteHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	var p Proposal
	if err := h.b.proposals.One(db, v.ProposalID, &p); err != nil {
		return nil, errors.Wrap(err, "load proposal")
	}
	if err := p.Tally.Add(v.Choice, v.Weight); err != nil {
		return nil, err
	}
	if _, err := h.b.proposals.Put(db, v.ProposalID, &p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	if _, err := h.b.votes.Put(db, voteKey(v.ProposalID, v.Voter), v); err != nil {
		return nil, errors.Wrap(err, "save vote")
	}
	custody.GetLogger(ctx).Debug("vote cast",
		"proposal", common.HexBytes(v.ProposalID), "voter", v.Voter, "choice", v.Choice, "weight", v.Weight)
	res := &custody.DeliverResult{}
	res.Tag("gov.proposal", v.ProposalID)
	res.Tag("gov.voter", v.Voter)
	return res, nil
}

// validate returns the vote to be cast.
func (h voteHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Vote, error) {
	var msg VoteMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if len(msg.Reason) > int(conf.MaxDescriptionLength) {
		return nil, errors.Field("Reason", errors.ErrInput, "at most %d characters allowed", conf.MaxDescriptionLength)
	}
	p, g, err := h.b.loadProposal(db, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	// Pending and Active do not depend on the supply.
	if s := Resolve(p, now, 0); s != StateActive {
		return nil, errors.Wrapf(errors.ErrState, "proposal is %s", s)
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "vote must be signed")
	}
	voter := signer.Address()
	switch err := h.b.votes.Has(db, voteKey(msg.ProposalID, voter)); {
	case err == nil:
		return nil, errors.Wrapf(ErrAlreadyVoted, "voter %s", voter)
	case !errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(err, "load vote")
	}
	weight, err := h.bank.WeightAt(db, g.Token, voter, p.VotingStart)
	if err != nil {
		return nil, errors.Wrap(err, "voter weight")
	}
	if weight <= 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no voting weight at the start of voting")
	}
	return &Vote{
		ProposalID: msg.ProposalID,
		Voter:      voter,
		Choice:     msg.Choice,
		Weight:     weight,
		Reason:     msg.Reason,
		Time:       now,
	}, nil
}

type queueHandler struct {
	b    buckets
	bank Bank
}

var _ custody.Handler = queueHandler{}

func (h queueHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: queueCost}, nil
}

func (h queueHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	eta := now.Add(p.Rules.TimelockDelay)
	for i, a := range p.Actions {
		hash := ActionHash(msg.ProposalID, int32(i), a)
		switch err := h.b.timelock.Has(db, hash); {
		case err == nil:
			return nil, errors.Wrapf(errors.ErrDuplicate, "action %d already scheduled", i)
		case !errors.ErrNotFound.Is(err):
			return nil, errors.Wrap(err, "load timelock entry")
		}
		entry := TimelockEntry{
			Hash:       hash,
			ProposalID: msg.ProposalID,
			Index:      int32(i),
			Eta:        eta,
		}
		if _, err := h.b.timelock.Put(db, hash, &entry); err != nil {
			return nil, errors.Wrap(err, "save timelock entry")
		}
	}
	p.Status = StatusQueued
	p.QueuedEta = eta
	if _, err := h.b.proposals.Put(db, msg.ProposalID, p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	custody.GetLogger(ctx).Info("proposal queued",
		"proposal", common.HexBytes(msg.ProposalID), "eta", eta, "actions", len(p.Actions))
	res := &custody.DeliverResult{}
	res.Tag("gov.proposal", msg.ProposalID)
	return res, nil
}

func (h queueHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*QueueMsg, *Proposal, error) {
	var msg QueueMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	p, g, err := h.b.loadProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	state, supply, err := resolve(db, h.bank, p, g, now)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case state == StateSucceeded:
		return &msg, p, nil
	case state == StateDefeated && !p.QuorumReached(supply):
		return nil, nil, errors.Wrapf(ErrQuorum, "%d votes of %d supply", p.Tally.Total(), supply)
	default:
		return nil, nil, errors.Wrapf(errors.ErrState, "proposal is %s", state)
	}
}

type executeHandler struct {
	b       buckets
	bank    Bank
	invoker x.Invoker
}

var _ custody.Handler = executeHandler{}

func (h executeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: executeProposalCost}, nil
}

// Deliver marks every timelock entry and the proposal executed before any
// action runs. An action that reenters the governor finds the proposal
// executed.
func (h executeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, p, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}

	hashes := make([][]byte, len(p.Actions))
	for i, a := range p.Actions {
		hashes[i] = ActionHash(msg.ProposalID, int32(i), a)
		entry, err := h.entry(db, msg.ProposalID, hashes[i])
		if err != nil {
			return nil, errors.Wrapf(err, "action %d", i)
		}
		entry.Executed = true
		if _, err := h.b.timelock.Put(db, hashes[i], entry); err != nil {
			return nil, errors.Wrap(err, "save timelock entry")
		}
	}
	p.Status = StatusExecuted
	p.ExecutedAt = now
	if _, err := h.b.proposals.Put(db, msg.ProposalID, p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}

	res := &custody.DeliverResult{}
	for i, a := range p.Actions {
		if a.Value != nil {
			if err := h.bank.MoveCoins(ctx, db, g.Address, a.Target, *a.Value); err != nil {
				return nil, errors.Wrapf(err, "action %d transfer", i)
			}
		}
		if a.Path != "" {
			if h.invoker == nil {
				return nil, errors.Wrap(errors.ErrHuman, "governor has no invoker")
			}
			ictx, err := x.WithAuthority(ctx, Condition(p.GovernorID))
			if err != nil {
				return nil, err
			}
			ires, err := h.invoker.Invoke(ictx, db, a.Path, a.Payload)
			if err != nil {
				return nil, errors.Wrapf(err, "action %d invoke %s", i, a.Path)
			}
			if ires != nil {
				res.Tags = append(res.Tags, ires.Tags...)
			}
		}
		if err := h.verifyExecuted(db, msg.ProposalID, hashes[i]); err != nil {
			return nil, errors.Wrapf(err, "action %d", i)
		}
	}

	custody.GetLogger(ctx).Info("proposal executed",
		"governor", common.HexBytes(p.GovernorID), "proposal", common.HexBytes(msg.ProposalID), "actions", len(p.Actions))
	res.Tag("gov.proposal", msg.ProposalID)
	return res, nil
}

// entry loads a timelock entry that can still be executed.
func (h executeHandler) entry(db custody.ReadOnlyKVStore, proposalID, hash []byte) (*TimelockEntry, error) {
	var e TimelockEntry
	if err := h.b.timelock.One(db, hash, &e); err != nil {
		return nil, errors.Wrap(err, "load timelock entry")
	}
	if !bytes.Equal(e.ProposalID, proposalID) {
		return nil, errors.Wrap(errors.ErrState, "timelock entry of another proposal")
	}
	if e.Executed {
		return nil, errors.Wrap(ErrActionExecuted, "timelock entry")
	}
	if e.Cancelled {
		return nil, errors.Wrap(errors.ErrState, "timelock entry cancelled")
	}
	return &e, nil
}

// verifyExecuted requires the entry to still be the executed entry of the
// proposal.
func (h executeHandler) verifyExecuted(db custody.ReadOnlyKVStore, proposalID, hash []byte) error {
	var e TimelockEntry
	if err := h.b.timelock.One(db, hash, &e); err != nil {
		return errors.Wrap(err, "reload timelock entry")
	}
	if !e.Executed || e.Cancelled || !bytes.Equal(e.ProposalID, proposalID) {
		return errors.Wrap(errors.ErrState, "timelock entry changed during execution")
	}
	return nil
}

func (h executeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ExecuteMsg, *Proposal, *Governor, error) {
	var msg ExecuteMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	p, g, err := h.b.loadProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	switch p.Status {
	case StatusQueued:
	case StatusExecuted:
		return nil, nil, nil, errors.Wrapf(ErrActionExecuted, "executed at %s", p.ExecutedAt)
	case StatusCancelled:
		return nil, nil, nil, errors.Wrap(errors.ErrState, "proposal is cancelled")
	default:
		return nil, nil, nil, errors.Wrap(errors.ErrState, "proposal is not queued")
	}
	if now < p.QueuedEta {
		return nil, nil, nil, errors.Wrapf(ErrTimelock, "eta %s", p.QueuedEta)
	}
	if Resolve(p, now, 0) == StateExpired {
		return nil, nil, nil, errors.Wrapf(ErrGraceElapsed, "expired at %s", p.QueuedEta.Add(p.Rules.GracePeriod))
	}
	return &msg, p, g, nil
}

type cancelHandler struct {
	auth x.Authenticator
	b    buckets
	bank Bank
}

var _ custody.Handler = cancelHandler{}

func (h cancelHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: cancelProposalCost}, nil
}

func (h cancelHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusQueued {
		for i, a := range p.Actions {
			hash := ActionHash(msg.ProposalID, int32(i), a)
			var e TimelockEntry
			if err := h.b.timelock.One(db, hash, &e); err != nil {
				return nil, errors.Wrapf(err, "action %d", i)
			}
			e.Cancelled = true
			if _, err := h.b.timelock.Put(db, hash, &e); err != nil {
				return nil, errors.Wrap(err, "save timelock entry")
			}
		}
	}
	p.Status = StatusCancelled
	if _, err := h.b.proposals.Put(db, msg.ProposalID, p); err != nil {
		return nil, errors.Wrap(err, "save proposal")
	}
	custody.GetLogger(ctx).Info("proposal cancelled", "proposal", common.HexBytes(msg.ProposalID))
	res := &custody.DeliverResult{}
	res.Tag("gov.proposal", msg.ProposalID)
	return res, nil
}

func (h cancelHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CancelMsg, *Proposal, error) {
	var msg CancelMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	p, g, err := h.b.loadProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	state, _, err := resolve(db, h.bank, p, g, now)
	if err != nil {
		return nil, nil, err
	}
	if state.IsTerminal() {
		return nil, nil, errors.Wrapf(errors.ErrState, "proposal is %s", state)
	}
	if x.AnySigner(ctx, h.auth, p.Proposer) != nil {
		return &msg, p, nil
	}
	weight, err := h.bank.WeightAt(db, g.Token, p.Proposer, now.Add(-1))
	if err != nil {
		return nil, nil, errors.Wrap(err, "proposer weight")
	}
	if weight > p.Rules.ProposalThreshold {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "proposer still holds the proposal threshold")
	}
	return &msg, p, nil
}
