package gconf

import (
	"reflect"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/chidioffor/crypto-hybrid-sub000/x"
)

// OwnedConfig is a configuration that names who may change it.
type OwnedConfig interface {
	Configuration
	GetOwner() custody.Address
}

// UpdateConfigurationHandler applies configuration patches of one module.
type UpdateConfigurationHandler struct {
	pkg string
	// proto is only used for its type.
	proto OwnedConfig
	auth  x.Authenticator
}

var _ custody.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler handles messages with a Patch field of
// the same pointer type as config. Every non zero field of the patch
// replaces the stored value and the result must still validate. The
// configuration must exist and the transaction must be signed by its
// current owner.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{pkg: pkg, proto: config, auth: auth}
}

func (h UpdateConfigurationHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	owner, err := h.update(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg, "owner", owner)
	return &custody.DeliverResult{}, nil
}

// update returns the owner after the patch was applied.
func (h UpdateConfigurationHandler) update(ctx custody.Context, db custody.KVStore, tx custody.Tx) (custody.Address, error) {
	current := reflect.New(reflect.TypeOf(h.proto).Elem()).Interface().(OwnedConfig)
	if err := Load(db, h.pkg, current); err != nil {
		return nil, err
	}
	owner := current.GetOwner()
	if len(owner) == 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s configuration has no owner", h.pkg)
	}
	if !h.auth.HasAddress(ctx, owner) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s configuration owner must sign", h.pkg)
	}

	p, err := loadPatch(tx)
	if err != nil {
		return nil, err
	}
	if reflect.TypeOf(p) != reflect.TypeOf(current) {
		return nil, errors.Wrapf(errors.ErrMsg, "patch %T for %T configuration", p, current)
	}
	applyPatch(reflect.ValueOf(current).Elem(), reflect.ValueOf(p).Elem())
	if err := Save(db, h.pkg, current); err != nil {
		return nil, err
	}
	return current.GetOwner(), nil
}

// applyPatch copies every non zero field of patch into dst.
func applyPatch(dst, patch reflect.Value) {
	for i := 0; i < dst.NumField(); i++ {
		f := patch.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dst.Field(i).Set(f)
	}
}

// loadPatch returns the Patch field of the validated message.
func loadPatch(tx custody.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrMsg, "unexpected message %T", msg)
	}
	f := v.Elem().FieldByName("Patch")
	if !f.IsValid() || f.Kind() != reflect.Ptr || f.IsNil() {
		return nil, errors.Wrap(errors.ErrMsg, "patch is required")
	}
	p, ok := f.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "patch of %s is not a configuration", f.Type())
	}
	return p, nil
}
