package types

// Address identifies an account on the ledger. Authentication of the caller
// behind an address is the surrounding runtime's responsibility; the core
// treats addresses as opaque identifiers.
type Address string

// ZeroAddress is the null sentinel. It is never a valid transfer recipient
// and is the owner value after ownership has been renounced.
const ZeroAddress Address = ""

// IsZero reports whether the address is the null sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}
