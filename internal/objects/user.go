package objects

// EclipseUser is an account of the foundation directory.
type EclipseUser struct {
	UID         int    `json:"uid,omitempty"`
	Name        string `json:"name"`
	Mail        string `json:"mail"`
	ECA         ECA    `json:"eca"`
	IsCommitter bool   `json:"is_committer"`
	IsBot       bool   `json:"is_bot"`
}

// ECA is the contributor agreement state of an account.
type ECA struct {
	Signed                   bool `json:"signed"`
	CanContributeSpecProject bool `json:"can_contribute_spec_project"`
}

// NewBotStub synthesizes an account for an automated or allow-listed identity.
// The stub never comes from the directory.
func NewBotStub(user GitUser) *EclipseUser {
	return &EclipseUser{
		Name:  user.Name,
		Mail:  user.Mail,
		IsBot: true,
		ECA: ECA{
			Signed: true,
		},
	}
}
