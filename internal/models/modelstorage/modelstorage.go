package modelstorage

type UserStorageEntry struct {
	UserID       string `json:"user_id"`
	Login        string `json:"login"`
	Email        string `json:"email"`
	Pfp          string `json:"pfp"`
	RegisteredAt string `json:"registered_at"`
}

type CodeStorageEntry struct {
	Code     string
	UserID   string
	IssuedAt string
}
