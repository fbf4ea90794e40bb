package models

// ImportResult is the backend's answer to a statement import.
type ImportResult struct {
	Message        string `json:"message" yaml:"message"`
	ImportedCount  int    `json:"imported_count" yaml:"imported_count"`
	DuplicateCount int    `json:"duplicate_count" yaml:"duplicate_count"`
}

// BulkDeleteResult reports how many transactions the backend deleted. The
// count is trusted as-is.
type BulkDeleteResult struct {
	DeletedCount int `json:"deleted_count" yaml:"deleted_count"`
}

// User is the authenticated account.
type User struct {
	ID       ID     `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Registration is the payload of a new account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}
