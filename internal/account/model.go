package account

// Account is one stored bank account record. Login is unique and immutable
// after creation; Balance is held in the smallest currency unit and never
// goes negative.
type Account struct {
	Login   string
	Digest  []byte
	Balance int64
}
