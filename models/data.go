package models

// Account is one source account the user linked in the companion application.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ServiceID   uint   `json:"serviceId"`
	ServiceName string `json:"serviceName"`
}

// Accounts is the decrypted answer of the session accounts endpoint.
type Accounts struct {
	Accounts []Account `json:"accounts"`
}

// FileInfo describes one data file available in the session.
type FileInfo struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updatedAt"`
}

// FileList is the decrypted answer of the session file list endpoint.
type FileList struct {
	Files []FileInfo `json:"files"`
}

// File is one downloaded, decrypted data file.
type File struct {
	ID      string
	Content Payload
}
