package vault

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// CreateMsg creates a vault. Anyone may create a vault, the creator gets
// no special rights unless listed as a signer.
type CreateMsg struct {
	Signers   []custody.Address `json:"signers"`
	Threshold uint32            `json:"threshold"`
}

var _ custody.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string { return "vault/create" }

func (m *CreateMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CreateMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CreateMsg) Validate() error {
	return errors.Field("Signers", validateSigners(m.Signers, m.Threshold), "invalid signer set")
}

// SubmitMsg proposes an action to a vault. The fields used depend on the
// kind, as documented on Action.
type SubmitMsg struct {
	VaultID      []byte          `json:"vault_id"`
	Kind         ActionKind      `json:"kind"`
	Target       custody.Address `json:"target,omitempty"`
	Value        *coin.Coin      `json:"value,omitempty"`
	InvokePath   string          `json:"path,omitempty"`
	Payload      []byte          `json:"payload,omitempty"`
	NewSigner    custody.Address `json:"new_signer,omitempty"`
	NewThreshold uint32          `json:"new_threshold,omitempty"`
}

var _ custody.Msg = (*SubmitMsg)(nil)

func (SubmitMsg) Path() string { return "vault/submit" }

func (m *SubmitMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *SubmitMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *SubmitMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "VaultID", validID(m.VaultID))
	errs = errors.AppendField(errs, "Kind", validateKind(m.Kind, m.Target, m.Value, m.InvokePath, m.NewSigner, m.NewThreshold))
	return errs
}

// ApproveMsg adds the signature of the caller to an action.
type ApproveMsg struct {
	ActionID []byte `json:"action_id"`
}

var _ custody.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string { return "vault/approve" }

func (m *ApproveMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ApproveMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ApproveMsg) Validate() error {
	return errors.AppendField(nil, "ActionID", validID(m.ActionID))
}

// RevokeMsg withdraws a previously given approval.
type RevokeMsg struct {
	ActionID []byte `json:"action_id"`
}

var _ custody.Msg = (*RevokeMsg)(nil)

func (RevokeMsg) Path() string { return "vault/revoke" }

func (m *RevokeMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *RevokeMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *RevokeMsg) Validate() error {
	return errors.AppendField(nil, "ActionID", validID(m.ActionID))
}

// ExecuteMsg runs an action that collected enough approvals.
type ExecuteMsg struct {
	ActionID []byte `json:"action_id"`
}

var _ custody.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string { return "vault/execute" }

func (m *ExecuteMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ExecuteMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ExecuteMsg) Validate() error {
	return errors.AppendField(nil, "ActionID", validID(m.ActionID))
}

// UpdateConfigurationMsg patches the vault module configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string { return "vault/update_configuration" }

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "patch is required")
	}
	return nil
}

// validID returns an error if this is not a valid sequence key.
func validID(id []byte) error {
	if len(id) == 0 {
		return errors.ErrEmpty
	}
	if len(id) != 8 {
		return errors.Wrapf(errors.ErrInput, "id must be 8 bytes, got %d", len(id))
	}
	return nil
}
