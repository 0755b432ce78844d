package domain

// BootstrapAdmin describes the administrator created on an empty database.
type BootstrapAdmin struct {
	NationalCode string `toml:"national_code"`
	PhoneNumber  string `toml:"phone_number"`
	FullName     string `toml:"full_name"`
	Password     string `toml:"password"` // generated when empty
}
