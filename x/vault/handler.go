package vault

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
	createVaultCost   = 300
	submitActionCost  = 100
	approveActionCost = 50
	executeActionCost = 200
)

// RegisterQuery registers the vault, action and approval buckets under
// "/vaults", "/actions" and "/approvals".
func RegisterQuery(qr custody.QueryRouter) {
	NewVaultBucket().Register("vaults", qr)
	NewActionBucket().Register("actions", qr)
	NewApprovalBucket().Register("approvals", qr)
}

// RegisterRoutes registers handlers for all vault messages. The invoker is
// used by invoke actions and may be nil, in which case such actions fail
// on execution.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, mover cash.CoinMover, invoker x.Invoker) {
	b := newBuckets()
	r.Handle(&CreateMsg{}, createHandler{auth: auth, b: b})
	r.Handle(&SubmitMsg{}, submitHandler{auth: auth, b: b})
	r.Handle(&ApproveMsg{}, approveHandler{auth: auth, b: b})
	r.Handle(&RevokeMsg{}, revokeHandler{auth: auth, b: b})
	r.Handle(&ExecuteMsg{}, executeHandler{auth: auth, b: b, mover: mover, invoker: invoker})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(configPkg, &Configuration{}, auth))
}

type buckets struct {
	vaults    orm.ModelBucket
	actions   orm.ModelBucket
	approvals orm.ModelBucket
}

func newBuckets() buckets {
	return buckets{
		vaults:    NewVaultBucket(),
		actions:   NewActionBucket(),
		approvals: NewApprovalBucket(),
	}
}

func (b buckets) loadAction(db custody.ReadOnlyKVStore, actionID []byte) (*Action, *Vault, error) {
	var action Action
	if err := b.actions.One(db, actionID, &action); err != nil {
		return nil, nil, errors.Wrap(err, "load action")
	}
	var vault Vault
	if err := b.vaults.One(db, action.VaultID, &vault); err != nil {
		return nil, nil, errors.Wrap(err, "load vault")
	}
	return &action, &vault, nil
}

// restate recomputes the state of the pending actions of a vault after
// its signers or threshold changed. skip is the action being executed.
func (b buckets) restate(db custody.KVStore, vault *Vault, vaultID, skip []byte) error {
	var actions []*Action
	keys, err := b.actions.ByIndex(db, "vault", vaultID, &actions)
	if err != nil {
		return errors.Wrap(err, "load vault actions")
	}
	for i, a := range actions {
		if a.State == ActionExecuted || bytes.Equal(keys[i], skip) {
			continue
		}
		state := vault.pendingState(a.Approvals)
		if state == a.State {
			continue
		}
		a.State = state
		if _, err := b.actions.Put(db, keys[i], a); err != nil {
			return errors.Wrap(err, "save action")
		}
	}
	return nil
}

func (b buckets) logApproval(db custody.KVStore, actionID []byte, signer custody.Address, approved bool, now custody.UnixTime) error {
	rec := ApprovalRecord{
		ActionID: actionID,
		Signer:   signer,
		Approved: approved,
		Time:     now,
	}
	if _, err := b.approvals.Put(db, nil, &rec); err != nil {
		return errors.Wrap(err, "log approval")
	}
	return nil
}

type createHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = createHandler{}

func (h createHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: createVaultCost}, nil
}

func (h createHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	id := h.b.vaults.Sequence().NextVal(db)
	vault := Vault{
		Signers:   msg.Signers,
		Threshold: msg.Threshold,
		Address:   Condition(id).Address(),
		CreatedAt: now,
	}
	if _, err := h.b.vaults.Put(db, id, &vault); err != nil {
		return nil, errors.Wrap(err, "save vault")
	}
	custody.GetLogger(ctx).Info("vault created",
		"vault", common.HexBytes(id), "signers", len(vault.Signers), "threshold", vault.Threshold)
	res := &custody.DeliverResult{Data: id}
	res.Tag("vault.id", id)
	return res, nil
}

func (h createHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if len(msg.Signers) > int(conf.MaxSigners) {
		return nil, errors.Field("Signers", errors.ErrInput, "at most %d signers allowed", conf.MaxSigners)
	}
	return &msg, nil
}

type submitHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = submitHandler{}

func (h submitHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: submitActionCost}, nil
}

func (h submitHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, vault, submitter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	action := Action{
		VaultID:      msg.VaultID,
		Kind:         msg.Kind,
		Target:       msg.Target,
		Value:        msg.Value,
		Path:         msg.InvokePath,
		Payload:      msg.Payload,
		NewSigner:    msg.NewSigner,
		NewThreshold: msg.NewThreshold,
		Submitter:    submitter,
		State:        ActionSubmitted,
		SubmittedAt:  now,
	}
	id, err := h.b.actions.Put(db, nil, &action)
	if err != nil {
		return nil, errors.Wrap(err, "save action")
	}
	custody.GetLogger(ctx).Info("vault action submitted",
		"vault", common.HexBytes(msg.VaultID), "action", common.HexBytes(id), "kind", action.Kind, "signers", len(vault.Signers))
	res := &custody.DeliverResult{Data: id}
	res.Tag("vault.id", msg.VaultID)
	res.Tag("vault.action", id)
	return res, nil
}

func (h submitHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*SubmitMsg, *Vault, custody.Address, error) {
	var msg SubmitMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	var vault Vault
	if err := h.b.vaults.One(db, msg.VaultID, &vault); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load vault")
	}
	submitter := x.AnySigner(ctx, h.auth, vault.Signers...)
	if submitter == nil {
		return nil, nil, nil, errors.Wrap(ErrNotSigner, "only vault signers can submit")
	}
	if isMembership(msg.Kind) {
		conf, err := loadConf(db)
		if err != nil {
			return nil, nil, nil, err
		}
		if _, err := vault.withMembership(msg.Kind, msg.NewSigner, msg.NewThreshold, conf.MaxSigners); err != nil {
			return nil, nil, nil, err
		}
	}
	return &msg, &vault, submitter, nil
}

type approveHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = approveHandler{}

func (h approveHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: approveActionCost}, nil
}

func (h approveHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, action, vault, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	action.Approvals = append(action.Approvals, signer)
	action.State = vault.pendingState(action.Approvals)
	if _, err := h.b.actions.Put(db, msg.ActionID, action); err != nil {
		return nil, errors.Wrap(err, "save action")
	}
	if err := h.b.logApproval(db, msg.ActionID, signer, true, now); err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Debug("vault action approved",
		"action", common.HexBytes(msg.ActionID), "signer", signer, "state", action.State)
	res := &custody.DeliverResult{}
	res.Tag("vault.action", msg.ActionID)
	return res, nil
}

func (h approveHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ApproveMsg, *Action, *Vault, custody.Address, error) {
	var msg ApproveMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "load msg")
	}
	action, vault, err := h.b.loadAction(db, msg.ActionID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if action.State == ActionExecuted {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrState, "action already executed")
	}
	signer := x.AnySigner(ctx, h.auth, vault.Signers...)
	if signer == nil {
		return nil, nil, nil, nil, errors.Wrap(ErrNotSigner, "only vault signers can approve")
	}
	if indexOf(action.Approvals, signer) >= 0 {
		return nil, nil, nil, nil, errors.Wrapf(ErrAlreadyApproved, "signer %s", signer)
	}
	return &msg, action, vault, signer, nil
}

type revokeHandler struct {
	auth x.Authenticator
	b    buckets
}

var _ custody.Handler = revokeHandler{}

func (h revokeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: approveActionCost}, nil
}

func (h revokeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, action, vault, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(action.Approvals, signer)
	action.Approvals = append(action.Approvals[:i], action.Approvals[i+1:]...)
	action.State = vault.pendingState(action.Approvals)
	if _, err := h.b.actions.Put(db, msg.ActionID, action); err != nil {
		return nil, errors.Wrap(err, "save action")
	}
	if err := h.b.logApproval(db, msg.ActionID, signer, false, now); err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Debug("vault approval revoked",
		"action", common.HexBytes(msg.ActionID), "signer", signer, "state", action.State)
	res := &custody.DeliverResult{}
	res.Tag("vault.action", msg.ActionID)
	return res, nil
}

func (h revokeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*RevokeMsg, *Action, *Vault, custody.Address, error) {
	var msg RevokeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, nil, errors.Wrap(err, "load msg")
	}
	action, vault, err := h.b.loadAction(db, msg.ActionID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if action.State == ActionExecuted {
		return nil, nil, nil, nil, errors.Wrap(errors.ErrState, "action already executed")
	}
	// A signer removed after approving may still withdraw the approval.
	signer := x.AnySigner(ctx, h.auth, action.Approvals...)
	if signer == nil {
		return nil, nil, nil, nil, errors.Wrap(ErrNotApproved, "no approval of the caller")
	}
	return &msg, action, vault, signer, nil
}

type executeHandler struct {
	auth    x.Authenticator
	b       buckets
	mover   cash.CoinMover
	invoker x.Invoker
}

var _ custody.Handler = executeHandler{}

func (h executeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: executeActionCost}, nil
}

// Deliver marks the action executed and saves it before running its
// effect. Anything the effect does, including invoking a message that
// reaches back into this vault, observes the action as executed.
func (h executeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, action, vault, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custody.UnixNow(ctx)
	if err != nil {
		return nil, err
	}

	action.State = ActionExecuted
	action.ExecutedAt = now
	if _, err := h.b.actions.Put(db, msg.ActionID, action); err != nil {
		return nil, errors.Wrap(err, "save action")
	}

	res := &custody.DeliverResult{}
	switch action.Kind {
	case ActionTransfer:
		if err := h.mover.MoveCoins(ctx, db, vault.Address, action.Target, *action.Value); err != nil {
			return nil, errors.Wrap(err, "transfer")
		}
	case ActionInvoke:
		if h.invoker == nil {
			return nil, errors.Wrap(errors.ErrHuman, "vault has no invoker")
		}
		ictx, err := x.WithAuthority(ctx, Condition(action.VaultID))
		if err != nil {
			return nil, err
		}
		ires, err := h.invoker.Invoke(ictx, db, action.Path, action.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "invoke %s", action.Path)
		}
		if ires != nil {
			res.Data = ires.Data
			res.Tags = append(res.Tags, ires.Tags...)
		}
	default:
		conf, err := loadConf(db)
		if err != nil {
			return nil, err
		}
		updated, err := vault.withMembership(action.Kind, action.NewSigner, action.NewThreshold, conf.MaxSigners)
		if err != nil {
			return nil, err
		}
		if _, err := h.b.vaults.Put(db, action.VaultID, updated); err != nil {
			return nil, errors.Wrap(err, "save vault")
		}
		if err := h.b.restate(db, updated, action.VaultID, msg.ActionID); err != nil {
			return nil, err
		}
	}

	custody.GetLogger(ctx).Info("vault action executed",
		"vault", common.HexBytes(action.VaultID), "action", common.HexBytes(msg.ActionID), "kind", action.Kind)
	res.Tag("vault.id", action.VaultID)
	res.Tag("vault.action", msg.ActionID)
	return res, nil
}

func (h executeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ExecuteMsg, *Action, *Vault, error) {
	var msg ExecuteMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	action, vault, err := h.b.loadAction(db, msg.ActionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if action.State == ActionExecuted {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyExecuted, "executed at %s", action.ExecutedAt)
	}
	if x.AnySigner(ctx, h.auth, vault.Signers...) == nil {
		return nil, nil, nil, errors.Wrap(ErrNotSigner, "only vault signers can execute")
	}
	if n := vault.CountApprovals(action.Approvals); n < int(vault.Threshold) {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientApprovals, "%d of %d", n, vault.Threshold)
	}
	return &msg, action, vault, nil
}

func isMembership(k ActionKind) bool {
	return k == ActionAddSigner || k == ActionRemoveSigner || k == ActionSetThreshold
}

// withMembership returns a copy of the vault with the membership change
// applied. The result must be a valid signer set.
func (v *Vault) withMembership(kind ActionKind, signer custody.Address, threshold uint32, maxSigners int32) (*Vault, error) {
	res := *v
	res.Signers = append([]custody.Address(nil), v.Signers...)
	switch kind {
	case ActionAddSigner:
		if v.IsSigner(signer) {
			return nil, errors.Wrapf(errors.ErrDuplicate, "%s is already a signer", signer)
		}
		res.Signers = append(res.Signers, signer)
	case ActionRemoveSigner:
		i := indexOf(res.Signers, signer)
		if i < 0 {
			return nil, errors.Wrapf(errors.ErrNotFound, "%s is not a signer", signer)
		}
		res.Signers = append(res.Signers[:i], res.Signers[i+1:]...)
	case ActionSetThreshold:
	default:
		return nil, errors.Wrapf(errors.ErrInput, "%s is not a membership change", kind)
	}
	if threshold != 0 {
		res.Threshold = threshold
	}
	if len(res.Signers) > int(maxSigners) {
		return nil, errors.Wrapf(errors.ErrInput, "at most %d signers allowed", maxSigners)
	}
	if err := validateSigners(res.Signers, res.Threshold); err != nil {
		return nil, err
	}
	return &res, nil
}
