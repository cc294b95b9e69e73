package account

// Seed is a test helper that sets the balance for an account when using the
// in-memory repository.
func Seed(r Repository, login string, balance int64) {
	if mem, ok := r.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acc := mem.accounts[login]
		acc.Login = login
		acc.Balance = balance
		mem.accounts[login] = acc
	}
}
