package dto

import "time"

// CreateVacancyRequest - тело запроса создания вакансии
type CreateVacancyRequest struct {
	Volume    int       `json:"volume" binding:"required,min=1" validate:"required,min=1"`
	ExpiresOn time.Time `json:"expiresOn" binding:"required" validate:"required"`
}

// UpdateVacancyRequest - тело запроса обновления вакансии
type UpdateVacancyRequest struct {
	Volume    int       `json:"volume" binding:"min=0" validate:"min=0"`
	ExpiresOn time.Time `json:"expiresOn" binding:"required" validate:"required"`
}

// ApplicantView - представление отклика в составе вакансии
type ApplicantView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	AppliedDate  time.Time `json:"appliedDate"`
	TimesApplied int       `json:"timesApplied"`
}

// VacancyView - публичное представление вакансии со списком откликнувшихся
type VacancyView struct {
	ID         string          `json:"id"`
	EmployerID string          `json:"employerId"`
	Volume     int             `json:"volume"`
	ExpiresOn  time.Time       `json:"expiresOn"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Applicants []ApplicantView `json:"applicants"`
}

// VacancyDeletedView - пустой результат удаления вакансии
type VacancyDeletedView struct{}
