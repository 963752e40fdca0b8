package escrow

import (
	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/coin"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
)

var (
	_ custody.Msg = (*CreateMsg)(nil)
	_ custody.Msg = (*FundMsg)(nil)
	_ custody.Msg = (*CompleteMilestoneMsg)(nil)
	_ custody.Msg = (*ReleaseMsg)(nil)
	_ custody.Msg = (*DisputeMsg)(nil)
	_ custody.Msg = (*ResolveMsg)(nil)
	_ custody.Msg = (*CancelMsg)(nil)
	_ custody.Msg = (*UpdateConfigurationMsg)(nil)
)

// CreateMsg creates an agreement. Payer defaults to the main signer.
type CreateMsg struct {
	Payer         custody.Address  `json:"payer,omitempty"`
	Payee         custody.Address  `json:"payee"`
	Arbiter       custody.Address  `json:"arbiter"`
	Amount        *coin.Coin       `json:"amount"`
	Deadline      custody.UnixTime `json:"deadline"`
	Milestones    []string         `json:"milestones"`
	ReleasePolicy ReleasePolicy    `json:"release_policy"`
}

func (CreateMsg) Path() string { return "escrow/create" }

func (m *CreateMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CreateMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CreateMsg) Validate() error {
	var errs error
	if m.Payer != nil {
		errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
		if m.Payer.Equals(m.Payee) || m.Payer.Equals(m.Arbiter) {
			errs = errors.AppendField(errs, "Payer", errors.Wrap(errors.ErrInput, "payer must not be payee or arbiter"))
		}
	}
	errs = errors.AppendField(errs, "Payee", m.Payee.Validate())
	errs = errors.AppendField(errs, "Arbiter", m.Arbiter.Validate())
	if m.Payee.Equals(m.Arbiter) {
		errs = errors.AppendField(errs, "Arbiter", errors.Wrap(errors.ErrInput, "arbiter must not be payee"))
	}
	switch {
	case m.Amount == nil:
		errs = errors.AppendField(errs, "Amount", errors.ErrEmpty)
	case !m.Amount.IsPositive():
		errs = errors.AppendField(errs, "Amount", errors.Wrapf(errors.ErrAmount, "non-positive %s", m.Amount))
	default:
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if m.Deadline == 0 {
		errs = errors.AppendField(errs, "Deadline", errors.Wrap(errors.ErrInput, "deadline is required"))
	}
	errs = errors.Append(errs, validateMilestones(m.Milestones))
	errs = errors.AppendField(errs, "ReleasePolicy", m.ReleasePolicy.Validate())
	return errs
}

// FundMsg moves the agreed amount from the payer to the agreement.
type FundMsg struct {
	AgreementID []byte `json:"agreement_id"`
}

func (FundMsg) Path() string { return "escrow/fund" }

func (m *FundMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *FundMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *FundMsg) Validate() error {
	return errors.AppendField(nil, "AgreementID", validID(m.AgreementID))
}

// CompleteMilestoneMsg marks a single milestone as done.
type CompleteMilestoneMsg struct {
	AgreementID []byte `json:"agreement_id"`
	Milestone   string `json:"milestone"`
}

func (CompleteMilestoneMsg) Path() string { return "escrow/complete_milestone" }

func (m *CompleteMilestoneMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CompleteMilestoneMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CompleteMilestoneMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AgreementID", validID(m.AgreementID))
	if m.Milestone == "" {
		errs = errors.AppendField(errs, "Milestone", errors.ErrEmpty)
	}
	return errs
}

// ReleaseMsg pays the agreement out to the payee.
type ReleaseMsg struct {
	AgreementID []byte `json:"agreement_id"`
}

func (ReleaseMsg) Path() string { return "escrow/release" }

func (m *ReleaseMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ReleaseMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ReleaseMsg) Validate() error {
	return errors.AppendField(nil, "AgreementID", validID(m.AgreementID))
}

// DisputeMsg freezes the agreement until the arbiter resolves it.
type DisputeMsg struct {
	AgreementID []byte `json:"agreement_id"`
}

func (DisputeMsg) Path() string { return "escrow/dispute" }

func (m *DisputeMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *DisputeMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *DisputeMsg) Validate() error {
	return errors.AppendField(nil, "AgreementID", validID(m.AgreementID))
}

// ResolveMsg is the decision of the arbiter on a dispute.
type ResolveMsg struct {
	AgreementID   []byte `json:"agreement_id"`
	WinnerIsPayer bool   `json:"winner_is_payer"`
}

func (ResolveMsg) Path() string { return "escrow/resolve" }

func (m *ResolveMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *ResolveMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *ResolveMsg) Validate() error {
	return errors.AppendField(nil, "AgreementID", validID(m.AgreementID))
}

// CancelMsg withdraws an agreement that was never funded.
type CancelMsg struct {
	AgreementID []byte `json:"agreement_id"`
}

func (CancelMsg) Path() string { return "escrow/cancel" }

func (m *CancelMsg) Marshal() ([]byte, error) { return custody.MarshalBinary(m) }

func (m *CancelMsg) Unmarshal(raw []byte) error { return custody.UnmarshalBinary(raw, m) }

func (m *CancelMsg) Validate() error {
	return errors.AppendField(nil, "AgreementID", validID(m.AgreementID))
}

// UpdateConfigurationMsg patches the escrow module configuration.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string { return "escrow/update_configuration" }

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
