package model

import "time"

type Address struct {
	ID           int64     `json:"id"`
	AddressLine1 string    `json:"address_line_1"`
	ZipCode      string    `json:"zip_code"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FirstName     string    `json:"first_name"`
	Telephone     *string   `json:"telephone,omitempty"`
	IsNewbie      bool      `json:"is_newbie"`
	RaisonSociale *string   `json:"raison_sociale,omitempty"`
	Siret         *string   `json:"siret,omitempty"`
	UserID        int64     `json:"user_id"`
	AddressID     int64     `json:"address_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileView joins a profile with its address and professions for the
// session view.
type ProfileView struct {
	Profile
	Address     *Address     `json:"address,omitempty"`
	Professions []Profession `json:"professions,omitempty"`
}

type Profession struct {
	ID             int64     `json:"id"`
	ProfessionName string    `json:"profession_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
