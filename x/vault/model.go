package vault

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/orm"
)

// Condition returns the condition a vault acts with. Its address is the
// account holding the vault funds.
func Condition(vaultID []byte) custody.Condition {
	return custody.NewCondition("vault", "vault", vaultID)
}

// Vault is an N of M signer set.
type Vault struct {
	Signers   []custody.Address `json:"signers"`
	Threshold uint32            `json:"threshold"`
	Address   custody.Address   `json:"address"`
	CreatedAt custody.UnixTime  `json:"created_at"`
}

var _ orm.Model = (*Vault)(nil)

func (v *Vault) Marshal() ([]byte, error) { return custody.MarshalBinary(v) }

func (v *Vault) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, v) }

func (v *Vault) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Signers", validateSigners(v.Signers, v.Threshold))
	errs = errors.AppendField(errs, "Address", v.Address.Validate())
	errs = errors.AppendField(errs, "CreatedAt", v.CreatedAt.Validate())
	return errs
}

// validateSigners requires a non empty set of unique valid addresses with
// 1 <= threshold <= len(signers).
func validateSigners(signers []custody.Address, threshold uint32) error {
	if len(signers) == 0 {
		return errors.Wrap(errors.ErrInput, "no signers")
	}
	for i, s := range signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		for _, prev := range signers[:i] {
			if prev.Equals(s) {
				return errors.Wrapf(errors.ErrInput, "duplicated signer %s", s)
			}
		}
	}
	if threshold == 0 || int(threshold) > len(signers) {
		return errors.Wrapf(errors.ErrInput, "threshold %d out of range 1..%d", threshold, len(signers))
	}
	return nil
}

// IsSigner returns true if addr is in the current signer set.
func (v *Vault) IsSigner(addr custody.Address) bool {
	return indexOf(v.Signers, addr) >= 0
}

// CountApprovals returns how many of the given approvals belong to current
// signers. Approvals of removed signers are not counted.
func (v *Vault) CountApprovals(approvals []custody.Address) int {
	var n int
	for _, a := range approvals {
		if v.IsSigner(a) {
			n++
		}
	}
	return n
}

// pendingState is the state of a not yet executed action with the given
// approvals.
func (v *Vault) pendingState(approvals []custody.Address) ActionState {
	if v.CountApprovals(approvals) >= int(v.Threshold) {
		return ActionConfirmed
	}
	return ActionSubmitted
}

func indexOf(addrs []custody.Address, addr custody.Address) int {
	for i, a := range addrs {
		if a.Equals(addr) {
			return i
		}
	}
	return -1
}

// ActionKind is what an action does when executed.
type ActionKind int32

const (
	ActionTransfer     ActionKind = 1
	ActionInvoke       ActionKind = 2
	ActionAddSigner    ActionKind = 3
	ActionRemoveSigner ActionKind = 4
	ActionSetThreshold ActionKind = 5
)

var actionKindNames = map[ActionKind]string{
	ActionTransfer:     "transfer",
	ActionInvoke:       "invoke",
	ActionAddSigner:    "add_signer",
	ActionRemoveSigner: "remove_signer",
	ActionSetThreshold: "set_threshold",
}

func (k ActionKind) String() string {
	if n, ok := actionKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ActionState is the lifecycle state of an action.
type ActionState int32

const (
	ActionSubmitted ActionState = 1
	ActionConfirmed ActionState = 2
	ActionExecuted  ActionState = 3
)

func (s ActionState) String() string {
	switch s {
	case ActionSubmitted:
		return "submitted"
	case ActionConfirmed:
		return "confirmed"
	case ActionExecuted:
		return "executed"
	}
	return "unknown"
}

// Action is an operation proposed to a vault. Depending on the kind, only
// some of the fields are used:
//
//	transfer       Target, Value
//	invoke         Path, Payload
//	add_signer     NewSigner, NewThreshold (optional)
//	remove_signer  NewSigner, NewThreshold (optional)
//	set_threshold  NewThreshold
type Action struct {
	VaultID      []byte            `json:"vault_id"`
	Kind         ActionKind        `json:"kind"`
	Target       custody.Address   `json:"target,omitempty"`
	Value        *coin.Coin        `json:"value,omitempty"`
	Path         string            `json:"path,omitempty"`
	Payload      []byte            `json:"payload,omitempty"`
	NewSigner    custody.Address   `json:"new_signer,omitempty"`
	NewThreshold uint32            `json:"new_threshold,omitempty"`
	Submitter    custody.Address   `json:"submitter"`
	Approvals    []custody.Address `json:"approvals"`
	State        ActionState       `json:"state"`
	SubmittedAt  custody.UnixTime  `json:"submitted_at"`
	ExecutedAt   custody.UnixTime  `json:"executed_at,omitempty"`
}

var _ orm.Model = (*Action)(nil)

func (a *Action) Marshal() ([]byte, error) { return custody.MarshalBinary(a) }

func (a *Action) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, a) }

func (a *Action) Validate() error {
	var errs error
	if len(a.VaultID) == 0 {
		errs = errors.AppendField(errs, "VaultID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Kind", validateKind(a.Kind, a.Target, a.Value, a.Path, a.NewSigner, a.NewThreshold))
	errs = errors.AppendField(errs, "Submitter", a.Submitter.Validate())
	for i, ap := range a.Approvals {
		if err := ap.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("Approvals", err, "approval %d", i))
		}
		if indexOf(a.Approvals[:i], ap) >= 0 {
			errs = errors.Append(errs, errors.Field("Approvals", errors.ErrDuplicate, "approval %d", i))
		}
	}
	if a.State < ActionSubmitted || a.State > ActionExecuted {
		errs = errors.AppendField(errs, "State", errors.ErrState)
	}
	errs = errors.AppendField(errs, "SubmittedAt", a.SubmittedAt.Validate())
	if a.State == ActionExecuted {
		errs = errors.AppendField(errs, "ExecutedAt", a.ExecutedAt.Validate())
	}
	return errs
}

// validateKind checks that the fields required by the kind are present.
func validateKind(kind ActionKind, target custody.Address, value *coin.Coin, path string, signer custody.Address, threshold uint32) error {
	switch kind {
	case ActionTransfer:
		if err := target.Validate(); err != nil {
			return errors.Wrap(err, "transfer target")
		}
		if value == nil {
			return errors.Wrap(errors.ErrEmpty, "transfer value")
		}
		if err := value.Validate(); err != nil {
			return errors.Wrap(err, "transfer value")
		}
		if !value.IsPositive() {
			return errors.Wrap(errors.ErrAmount, "transfer value must be positive")
		}
	case ActionInvoke:
		if path == "" {
			return errors.Wrap(errors.ErrEmpty, "invoke path")
		}
	case ActionAddSigner, ActionRemoveSigner:
		if err := signer.Validate(); err != nil {
			return errors.Wrap(err, "signer")
		}
	case ActionSetThreshold:
		if threshold == 0 {
			return errors.Wrap(errors.ErrInput, "threshold must be positive")
		}
	default:
		return errors.Wrapf(errors.ErrInput, "unknown action kind %d", kind)
	}
	return nil
}

// ApprovalRecord is an entry of the append only log of approvals and
// revocations of an action.
type ApprovalRecord struct {
	ActionID []byte           `json:"action_id"`
	Signer   custody.Address  `json:"signer"`
	Approved bool             `json:"approved"`
	Time     custody.UnixTime `json:"time"`
}

var _ orm.Model = (*ApprovalRecord)(nil)

func (r *ApprovalRecord) Marshal() ([]byte, error) { return custody.MarshalBinary(r) }

func (r *ApprovalRecord) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, r) }

func (r *ApprovalRecord) Validate() error {
	var errs error
	if len(r.ActionID) == 0 {
		errs = errors.AppendField(errs, "ActionID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Signer", r.Signer.Validate())
	errs = errors.AppendField(errs, "Time", r.Time.Validate())
	return errs
}

// NewVaultBucket returns a bucket for storing vaults.
func NewVaultBucket() orm.ModelBucket {
	return orm.NewModelBucket("vaults", &Vault{})
}

// NewActionBucket returns a bucket for storing actions, indexed by the
// vault they belong to.
func NewActionBucket() orm.ModelBucket {
	return orm.NewModelBucket("actions", &Action{},
		orm.WithIndex("vault", actionVaultIndexer, false))
}

func actionVaultIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Action)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.VaultID, nil
}

// NewApprovalBucket returns a bucket for the approval log, indexed by
// action. Records are keyed by a sequence, so index order is log order.
func NewApprovalBucket() orm.ModelBucket {
	return orm.NewModelBucket("approvals", &ApprovalRecord{},
		orm.WithIndex("action", approvalActionIndexer, false))
}

func approvalActionIndexer(m orm.Model) ([]byte, error) {
	r, ok := m.(*ApprovalRecord)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return r.ActionID, nil
}
