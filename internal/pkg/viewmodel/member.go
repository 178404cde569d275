package viewmodel

// NavStatus is the contribution snapshot rendered in the navbar: the current
// pledge and, when applicable, the scheduled cancellation date.
type NavStatus struct {
	PledgeDisplay string
	NextBilling   string
	CancelAt      string
	HasPledge     bool
}

// ActivityRow is one rendered feed row.
type ActivityRow struct {
	Type   string
	Title  string
	Amount string
	Right  string
	Href   string
}

// MemberRow is one line of the admin member table.
type MemberRow struct {
	PublicID      string
	Name          string
	Email         string
	Status        string
	PledgeDisplay string
	CancelAt      string
	MemberRef     string
}

// LedgerRow is one line of a member's capital ledger.
type LedgerRow struct {
	Date          string
	AmountDisplay string
	Note          string
}
