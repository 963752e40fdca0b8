package gov

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

// CreateGovernorMsg creates a governor. When Admin is empty the governor
// administers itself.
type CreateGovernorMsg struct {
	Admin custody.Address `json:"admin,omitempty"`
	Token string          `json:"token"`
	Rules Rules           `json:"rules"`
}

var _ custody.Msg = (*CreateGovernorMsg)(nil)

func (CreateGovernorMsg) Path() string { return "gov/create_governor" }

func (m *CreateGovernorMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CreateGovernorMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CreateGovernorMsg) Validate() error {
	var errs error
	if len(m.Admin) != 0 {
		errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	}
	if !coin.IsCC(m.Token) {
		errs = errors.AppendField(errs, "Token", errors.Wrapf(errors.ErrCurrency, "invalid token %q", m.Token))
	}
	errs = errors.AppendField(errs, "Rules", m.Rules.Validate())
	return errs
}

// UpdateRulesMsg replaces the rules of a governor. Proposals created
// before keep the rules they were created under.
type UpdateRulesMsg struct {
	GovernorID []byte `json:"governor_id"`
	Rules      Rules  `json:"rules"`
}

var _ custody.Msg = (*UpdateRulesMsg)(nil)

func (UpdateRulesMsg) Path() string { return "gov/update_rules" }

func (m *UpdateRulesMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *UpdateRulesMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *UpdateRulesMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "GovernorID", validID(m.GovernorID))
	errs = errors.AppendField(errs, "Rules", m.Rules.Validate())
	return errs
}

// ProposeMsg creates a proposal.
type ProposeMsg struct {
	GovernorID  []byte           `json:"governor_id"`
	Description string           `json:"description"`
	Actions     []ProposalAction `json:"actions"`
}

var _ custody.Msg = (*ProposeMsg)(nil)

func (ProposeMsg) Path() string { return "gov/propose" }

func (m *ProposeMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ProposeMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ProposeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "GovernorID", validID(m.GovernorID))
	if m.Description == "" {
		errs = errors.AppendField(errs, "Description", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Actions", validateActions(m.Actions))
	return errs
}

// VoteMsg casts the vote of the signer.
type VoteMsg struct {
	ProposalID []byte     `json:"proposal_id"`
	Choice     VoteChoice `json:"choice"`
	Reason     string     `json:"reason,omitempty"`
}

var _ custody.Msg = (*VoteMsg)(nil)

func (VoteMsg) Path() string { return "gov/vote" }

func (m *VoteMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *VoteMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *VoteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "ProposalID", validID(m.ProposalID))
	errs = errors.AppendField(errs, "Choice", m.Choice.Validate())
	return errs
}

// QueueMsg schedules the actions of a succeeded proposal.
type QueueMsg struct {
	ProposalID []byte `json:"proposal_id"`
}

var _ custody.Msg = (*QueueMsg)(nil)

func (QueueMsg) Path() string { return "gov/queue" }

func (m *QueueMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *QueueMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *QueueMsg) Validate() error {
	return errors.AppendField(nil, "ProposalID", validID(m.ProposalID))
}

// ExecuteMsg runs the actions of a queued proposal.
type ExecuteMsg struct {
	ProposalID []byte `json:"proposal_id"`
}

var _ custody.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string { return "gov/execute" }

func (m *ExecuteMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ExecuteMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ExecuteMsg) Validate() error {
	return errors.AppendField(nil, "ProposalID", validID(m.ProposalID))
}

// CancelMsg cancels a proposal that did not reach a final state.
type CancelMsg struct {
	ProposalID []byte `json:"proposal_id"`
}

var _ custody.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string { return "gov/cancel" }

func (m *CancelMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CancelMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CancelMsg) Validate() error {
	return errors.AppendField(nil, "ProposalID", validID(m.ProposalID))
}

// UpdateConfigurationMsg patches the governance module configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string { return "gov/update_configuration" }

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "patch is required")
	}
	return nil
}

func validID(id []byte) error {
	if len(id) == 0 {
		return errors.ErrEmpty
	}
	if len(id) != 8 {
		return errors.Wrapf(errors.ErrInput, "id must be 8 bytes, got %d", len(id))
	}
	return nil
}
