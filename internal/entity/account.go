package entity

// Account is one registered player. The password travels with the record in
// the users collection; the session copy is always sanitized first.
type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Draws     int    `json:"draws"`
	CreatedAt string `json:"createdAt"`
}

// Sanitized returns a copy without the password, safe to hand to a session
// or a transport payload.
func (that *Account) Sanitized() *Account {
	account := *that
	account.Password = ""

	return &account
}

func (that *Account) TotalGames() int {
	return that.Wins + that.Losses + that.Draws
}
