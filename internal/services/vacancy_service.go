package services

import (
	"errors"
	"time"

	"hirepoint_backend/internal/logger"
	"hirepoint_backend/internal/models"
	"hirepoint_backend/internal/repositories"
	"hirepoint_backend/internal/services/dto"
	"hirepoint_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VacancyService управляет вакансиями и распределением их объема
type VacancyService interface {
	// GetVacancies возвращает все вакансии со списками откликнувшихся
	GetVacancies(db *gorm.DB) *Result[[]dto.VacancyView]

	// GetVacancy возвращает вакансию по ID
	GetVacancy(db *gorm.DB, id string) *Result[dto.VacancyView]

	// CreateVacancy создает вакансию от имени работодателя
	CreateVacancy(db *gorm.DB, authorization string, req *dto.CreateVacancyRequest) *Result[dto.VacancyView]

	// UpdateVacancy изменяет объем и дату истечения вакансии
	UpdateVacancy(db *gorm.DB, authorization, id string, req *dto.UpdateVacancyRequest) *Result[dto.VacancyView]

	// DeleteVacancy удаляет вакансию вместе с откликами
	DeleteVacancy(db *gorm.DB, authorization, id string) *Result[dto.VacancyDeletedView]

	// Apply подает отклик на вакансию от имени аутентифицированного
	// пользователя
	Apply(db *gorm.DB, authorization, vacancyID string) *Result[dto.VacancyView]
}

type vacancyService struct {
	vacancies repositories.VacancyRepository
	sessions  TokenAuthenticator
}

// NewVacancyService создает новый экземпляр VacancyService.
// Проверка токена делегируется сессионному сервису: правило
// аутентификации одно на все защищенные операции.
func NewVacancyService(vacancies repositories.VacancyRepository, sessions TokenAuthenticator) VacancyService {
	return &vacancyService{
		vacancies: vacancies,
		sessions:  sessions,
	}
}

// GetVacancies возвращает все вакансии
func (s *vacancyService) GetVacancies(db *gorm.DB) *Result[[]dto.VacancyView] {
	vacancies, err := s.vacancies.List(db)
	if err != nil {
		return failStore[[]dto.VacancyView](err)
	}

	views := make([]dto.VacancyView, 0, len(vacancies))
	for i := range vacancies {
		views = append(views, vacancyView(&vacancies[i]))
	}
	return Ok(views, "Vacancies retrieved successfully.")
}

// GetVacancy возвращает вакансию по ID
func (s *vacancyService) GetVacancy(db *gorm.DB, id string) *Result[dto.VacancyView] {
	vacancy, err := s.vacancies.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyView](err)
	}
	return Ok(vacancyView(vacancy), "Vacancy retrieved successfully.")
}

// CreateVacancy создает вакансию. Доступно работодателям и администраторам.
func (s *vacancyService) CreateVacancy(db *gorm.DB, authorization string, req *dto.CreateVacancyRequest) *Result[dto.VacancyView] {
	user, err := s.sessions.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.VacancyView](err)
	}
	if !canManageVacancies(user) {
		return Rejected[dto.VacancyView](apperrors.NewForbiddenError("Only employers can manage vacancies."))
	}

	now := time.Now()
	vacancy := &models.Vacancy{
		BaseModel: models.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		EmployerID: user.ID,
		Volume:     req.Volume,
		ExpiresOn:  req.ExpiresOn,
	}
	if err := s.vacancies.Create(db, vacancy); err != nil {
		return failStore[dto.VacancyView](err)
	}

	stored, err := s.vacancies.FindByID(db, vacancy.ID)
	if err != nil {
		return failStore[dto.VacancyView](err)
	}
	if stored.Volume != req.Volume || stored.EmployerID != user.ID {
		return Rejected[dto.VacancyView](apperrors.ErrPersistenceFailed("vacancy", "Vacancy was not persisted correctly."))
	}

	logger.Info("vacancy created", "vacancy_id", vacancy.ID, "employer_id", user.ID, "volume", req.Volume)
	return Ok(vacancyView(stored), "Vacancy created successfully.")
}

// UpdateVacancy изменяет объем и дату истечения. Доступно владельцу
// вакансии и администраторам.
func (s *vacancyService) UpdateVacancy(db *gorm.DB, authorization, id string, req *dto.UpdateVacancyRequest) *Result[dto.VacancyView] {
	user, err := s.sessions.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.VacancyView](err)
	}

	vacancy, err := s.vacancies.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyView](err)
	}
	if !canEditVacancy(user, vacancy) {
		return Rejected[dto.VacancyView](apperrors.NewForbiddenError("Only the vacancy owner can manage it."))
	}

	vacancy.Volume = req.Volume
	vacancy.ExpiresOn = req.ExpiresOn
	if err := s.vacancies.Update(db, vacancy); err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyView](err)
	}

	stored, err := s.vacancies.FindByID(db, id)
	if err != nil {
		return failStore[dto.VacancyView](err)
	}
	// Дата сравнивается с точностью до секунды: БД усекает наносекунды
	if stored.Volume != req.Volume || stored.ExpiresOn.Unix() != req.ExpiresOn.Unix() {
		return Rejected[dto.VacancyView](apperrors.ErrPersistenceFailed("vacancy", "Vacancy changes were not persisted."))
	}

	return Ok(vacancyView(stored), "Vacancy updated successfully.")
}

// DeleteVacancy удаляет вакансию вместе с откликами
func (s *vacancyService) DeleteVacancy(db *gorm.DB, authorization, id string) *Result[dto.VacancyDeletedView] {
	user, err := s.sessions.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.VacancyDeletedView](err)
	}

	vacancy, err := s.vacancies.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyDeletedView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyDeletedView](err)
	}
	if !canEditVacancy(user, vacancy) {
		return Rejected[dto.VacancyDeletedView](apperrors.NewForbiddenError("Only the vacancy owner can manage it."))
	}

	if err := s.vacancies.DeleteWithApplicants(db, id); err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyDeletedView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyDeletedView](err)
	}

	// Контрольное чтение: вакансии больше не должно быть видно
	if _, err := s.vacancies.FindByID(db, id); err == nil {
		return Rejected[dto.VacancyDeletedView](apperrors.ErrPersistenceFailed("vacancy", "Vacancy was not deleted."))
	} else if !errors.Is(err, repositories.ErrVacancyNotFound) {
		return failStore[dto.VacancyDeletedView](err)
	}

	logger.Info("vacancy deleted", "vacancy_id", id, "user_id", user.ID)
	return Ok(dto.VacancyDeletedView{}, "Vacancy deleted successfully.")
}

// Apply подает отклик на вакансию. Проверка "объем еще есть" и сам
// декремент выполняются в хранилище одним условным UPDATE, поэтому
// конкурентные отклики не могут увести объем в минус; предварительные
// проверки здесь дают только точные сообщения об отказе.
func (s *vacancyService) Apply(db *gorm.DB, authorization, vacancyID string) *Result[dto.VacancyView] {
	user, err := s.sessions.TokenCheck(db, authorization)
	if err != nil {
		return authFail[dto.VacancyView](err)
	}

	vacancy, err := s.vacancies.FindByID(db, vacancyID)
	if err != nil {
		if errors.Is(err, repositories.ErrVacancyNotFound) {
			return Rejected[dto.VacancyView](apperrors.ErrNotFound(err, "vacancy", "Vacancy not found."))
		}
		return failStore[dto.VacancyView](err)
	}

	now := time.Now()
	if vacancy.Expired(now) {
		return Rejected[dto.VacancyView](apperrors.ErrVacancyExpired)
	}
	if vacancy.Volume == 0 {
		return Rejected[dto.VacancyView](apperrors.ErrVacancyFull)
	}

	applicant, err := s.vacancies.FindApplicant(db, user.ID, vacancyID)
	switch {
	case err == nil:
		if applicant.OnCooldown(now) {
			return Rejected[dto.VacancyView](apperrors.ErrCooldownActive)
		}
		if err := s.vacancies.ApplyAgain(db, user.ID, vacancyID, now); err != nil {
			return applyFail(err)
		}
	case errors.Is(err, repositories.ErrApplicantNotFound):
		fresh := &models.Applicant{
			BaseModel: models.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:       user.ID,
			VacancyID:    vacancyID,
			AppliedDate:  now,
			TimesApplied: 1,
		}
		if err := s.vacancies.ApplyNew(db, fresh); err != nil {
			return applyFail(err)
		}
	default:
		return failStore[dto.VacancyView](err)
	}

	stored, err := s.vacancies.FindByID(db, vacancyID)
	if err != nil {
		return failStore[dto.VacancyView](err)
	}

	logger.Info("vacancy application recorded", "vacancy_id", vacancyID, "user_id", user.ID)
	return Ok(vacancyView(stored), "You have successfully applied for this vacancy.")
}

// applyFail переводит ошибку транзакции отклика в отказ
func applyFail(err error) *Result[dto.VacancyView] {
	switch {
	case errors.Is(err, repositories.ErrVacancyFull):
		return Rejected[dto.VacancyView](apperrors.ErrVacancyFull)
	case errors.Is(err, repositories.ErrCooldownActive):
		return Rejected[dto.VacancyView](apperrors.ErrCooldownActive)
	default:
		return failStore[dto.VacancyView](err)
	}
}

// canManageVacancies - может ли пользователь создавать вакансии
func canManageVacancies(user *models.User) bool {
	return user.Role == models.UserRoleEmployer || user.Role == models.UserRoleAdmin
}

// canEditVacancy - может ли пользователь изменять конкретную вакансию
func canEditVacancy(user *models.User, vacancy *models.Vacancy) bool {
	if user.Role == models.UserRoleAdmin {
		return true
	}
	return user.Role == models.UserRoleEmployer && vacancy.EmployerID == user.ID
}

func vacancyView(v *models.Vacancy) dto.VacancyView {
	applicants := make([]dto.ApplicantView, 0, len(v.Applicants))
	for i := range v.Applicants {
		a := &v.Applicants[i]
		applicants = append(applicants, dto.ApplicantView{
			ID:           a.ID,
			UserID:       a.UserID,
			AppliedDate:  a.AppliedDate,
			TimesApplied: a.TimesApplied,
		})
	}
	return dto.VacancyView{
		ID:         v.ID,
		EmployerID: v.EmployerID,
		Volume:     v.Volume,
		ExpiresOn:  v.ExpiresOn,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		Applicants: applicants,
	}
}
