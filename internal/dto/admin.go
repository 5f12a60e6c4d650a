package dto

// CreateUserRequest is the admin payload for adding a portal user.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"fullName" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string  `json:"role" validate:"required"`
}

// UpdateUserRequest updates profile fields and optionally the role.
type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	IsActive *bool   `json:"isActive,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// CreateSectionRequest adds a catalog section.
type CreateSectionRequest struct {
	Key        string `json:"key" validate:"required"`
	Label      string `json:"label" validate:"required"`
	OrderIndex int    `json:"orderIndex"`
}

// UpdateSectionRequest edits a catalog section.
type UpdateSectionRequest struct {
	Label      string `json:"label" validate:"required"`
	OrderIndex int    `json:"orderIndex"`
	IsActive   bool   `json:"isActive"`
}

// CreateCountryRequest adds a country.
type CreateCountryRequest struct {
	NameEN string `json:"nameEn" validate:"required"`
	Code   string `json:"code" validate:"required,len=2"`
}

// UpdateCountryRequest edits a country.
type UpdateCountryRequest struct {
	NameEN   string `json:"nameEn" validate:"required"`
	Code     string `json:"code" validate:"required,len=2"`
	IsActive bool   `json:"isActive"`
}

// CreateSectionAssignmentRequest grants one section to one collaborator.
type CreateSectionAssignmentRequest struct {
	UserID    int64 `json:"userId" validate:"required"`
	SectionID int64 `json:"sectionId" validate:"required"`
}

// ReplaceCountryAssignmentsRequest swaps a collaborator's country set.
type ReplaceCountryAssignmentsRequest struct {
	UserID     int64   `json:"userId" validate:"required"`
	CountryIDs []int64 `json:"countryIds"`
}
