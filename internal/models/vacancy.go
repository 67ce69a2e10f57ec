package models

import "time"

// ReapplyCooldown - минимальный интервал между подачами одного
// пользователя на одну вакансию
const ReapplyCooldown = 24 * time.Hour

type Vacancy struct {
	BaseModel
	EmployerID string `gorm:"index"`
	// Volume - оставшаяся емкость; инвариант: никогда не уходит в минус.
	// Декремент выполняется только условным UPDATE ... WHERE volume > 0.
	Volume    int       `gorm:"not null;check:volume >= 0"`
	ExpiresOn time.Time `gorm:"not null"`

	// Relations (Vacancy владеет списком откликнувшихся)
	Applicants []Applicant `gorm:"foreignKey:VacancyID;constraint:OnDelete:CASCADE"`
}

// Expired - принимает ли вакансия новые отклики по дате
func (v *Vacancy) Expired(now time.Time) bool {
	return v.ExpiresOn.Before(now)
}

type Applicant struct {
	BaseModel
	UserID    string `gorm:"not null;uniqueIndex:idx_applicant_user_vacancy"`
	VacancyID string `gorm:"not null;uniqueIndex:idx_applicant_user_vacancy"`
	// AppliedDate - момент последней подачи; от него считается 24-часовой кулдаун
	AppliedDate time.Time `gorm:"not null"`
	// TimesApplied - сколько раз пользователь подавался на эту вакансию (>= 1)
	TimesApplied int `gorm:"not null;default:1"`
}

// OnCooldown - действует ли 24-часовой кулдаун повторной подачи
func (a *Applicant) OnCooldown(now time.Time) bool {
	return a.AppliedDate.After(now.Add(-ReapplyCooldown))
}
