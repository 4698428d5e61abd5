package models

// AdminAccount holds the single administrator's credentials
type AdminAccount struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"` // bcrypt hash, never plaintext
}

// AppConfig is the single global configuration record persisted in config.json
type AppConfig struct {
	Initialized bool         `json:"initialized"`
	Admin       AdminAccount `json:"admin"`
	JWTSecret   string       `json:"jwtSecret"` // generated once at first read
	CreatedAt   int64        `json:"createdAt"`
}
