package service

import "context"

// CodeSource reads the currently active event access code. "" means
// no code is set.
type CodeSource interface {
	Current(ctx context.Context) (string, error)
}

// AccessGate decides whether a join request may proceed. Admission
// requires an active code and an exact, case-sensitive match with the
// submitted one.
type AccessGate struct {
	Codes CodeSource
}

// NewAccessGate returns a gate backed by the given code source.
func NewAccessGate(codes CodeSource) *AccessGate { return &AccessGate{Codes: codes} }

// Admit reports whether the submitted code matches the active one.
// When the lookup fails the gate fails closed: (false,
// ErrVerifyUnavailable), never a silent admit. An unset active code
// denies everyone.
func (g *AccessGate) Admit(ctx context.Context, submitted string) (bool, error) {
	current, err := g.Codes.Current(ctx)
	if err != nil {
		return false, ErrVerifyUnavailable
	}
	if current == "" || submitted == "" {
		return false, nil
	}
	return submitted == current, nil
}
