package domain

// Channel is a chat channel that opted into protection.
// It is enforced against only while present in the joined registry.
type Channel struct {
	Name      string `json:"name"`
	AccountID string `json:"account_id"`
}
