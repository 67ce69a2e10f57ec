package repositories

import (
	"context"
	"errors"
	"time"

	"hirepoint_backend/internal/models"

	"gorm.io/gorm"
)

// VacancyRepository определяет интерфейс для операций с агрегатом вакансии.
// Агрегат включает список откликнувшихся (Applicant принадлежит Vacancy).
type VacancyRepository interface {
	// Create создает новую вакансию
	Create(db *gorm.DB, vacancy *models.Vacancy) error

	// FindByID находит вакансию по ID вместе со списком откликнувшихся
	FindByID(db *gorm.DB, id string) (*models.Vacancy, error)

	// List возвращает все вакансии со списками откликнувшихся
	List(db *gorm.DB) ([]models.Vacancy, error)

	// Update сохраняет объем и дату истечения вакансии
	Update(db *gorm.DB, vacancy *models.Vacancy) error

	// DeleteWithApplicants удаляет вакансию, предварительно удалив отклики:
	// Applicant не может пережить свою Vacancy
	DeleteWithApplicants(db *gorm.DB, id string) error

	// FindApplicant находит отклик пары (userID, vacancyID)
	FindApplicant(db *gorm.DB, userID, vacancyID string) (*models.Applicant, error)

	// ApplyNew вставляет новый отклик и декрементирует объем одной
	// транзакцией; проигрыш гонки за уникальный индекс (userID, vacancyID)
	// возвращается как ErrCooldownActive
	ApplyNew(db *gorm.DB, applicant *models.Applicant) error

	// ApplyAgain обновляет существующий отклик (applied_date = now,
	// times_applied + 1) и декрементирует объем одной транзакцией.
	// Отклик обновляется только если кулдаун истек; иначе ErrCooldownActive
	ApplyAgain(db *gorm.DB, userID, vacancyID string, now time.Time) error
}

type vacancyRepository struct {
	queryTimeout time.Duration
}

// NewVacancyRepository создает новый экземпляр VacancyRepository
func NewVacancyRepository(queryTimeout time.Duration) VacancyRepository {
	return &vacancyRepository{queryTimeout: queryTimeout}
}

func (r *vacancyRepository) withTimeout(db *gorm.DB) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout)
	return db.WithContext(ctx), cancel
}

// Create создает новую вакансию
func (r *vacancyRepository) Create(db *gorm.DB, vacancy *models.Vacancy) error {
	db, cancel := r.withTimeout(db)
	defer cancel()
	return classify(db.Create(vacancy).Error)
}

// FindByID находит вакансию по ID вместе со списком откликнувшихся
func (r *vacancyRepository) FindByID(db *gorm.DB, id string) (*models.Vacancy, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var vacancy models.Vacancy
	err := db.Preload("Applicants").Where("id = ?", id).First(&vacancy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, classify(err)
	}
	return &vacancy, nil
}

// List возвращает все вакансии со списками откликнувшихся
func (r *vacancyRepository) List(db *gorm.DB) ([]models.Vacancy, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var vacancies []models.Vacancy
	if err := db.Preload("Applicants").Order("created_at").Find(&vacancies).Error; err != nil {
		return nil, classify(err)
	}
	return vacancies, nil
}

// Update сохраняет объем и дату истечения вакансии
func (r *vacancyRepository) Update(db *gorm.DB, vacancy *models.Vacancy) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	result := db.Model(&models.Vacancy{}).
		Where("id = ?", vacancy.ID).
		Updates(map[string]interface{}{
			"volume":     vacancy.Volume,
			"expires_on": vacancy.ExpiresOn,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVacancyNotFound
	}
	return nil
}

// DeleteWithApplicants удаляет вакансию, предварительно удалив отклики
func (r *vacancyRepository) DeleteWithApplicants(db *gorm.DB, id string) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	return classify(db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vacancy_id = ?", id).Delete(&models.Applicant{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Vacancy{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVacancyNotFound
		}
		return nil
	}))
}

// FindApplicant находит отклик пары (userID, vacancyID)
func (r *vacancyRepository) FindApplicant(db *gorm.DB, userID, vacancyID string) (*models.Applicant, error) {
	db, cancel := r.withTimeout(db)
	defer cancel()

	var applicant models.Applicant
	err := db.Where("user_id = ? AND vacancy_id = ?", userID, vacancyID).First(&applicant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicantNotFound
		}
		return nil, classify(err)
	}
	return &applicant, nil
}

// decrementVolume выполняет условный декремент объема вакансии.
// Проверка "volume > 0" и сам декремент - один UPDATE: конкурентные
// заявители сериализуются на строке вакансии и объем не уходит в минус.
func decrementVolume(tx *gorm.DB, vacancyID string) error {
	result := tx.Model(&models.Vacancy{}).
		Where("id = ? AND volume > 0", vacancyID).
		Updates(map[string]interface{}{
			"volume":     gorm.Expr("volume - 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVacancyFull
	}
	return nil
}

// ApplyNew вставляет новый отклик и декрементирует объем одной транзакцией.
// Частичный сбой откатывает оба изменения: декремент без строки в ростере
// (и наоборот) наблюдаться не может. Конкурентная вставка той же пары
// (userID, vacancyID) упирается в уникальный индекс; проигравший получает
// ErrCooldownActive, а не сырую ошибку БД.
func (r *vacancyRepository) ApplyNew(db *gorm.DB, applicant *models.Applicant) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := decrementVolume(tx, applicant.VacancyID); err != nil {
			return err
		}
		return tx.Create(applicant).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCooldownActive
	}
	return classify(err)
}

// ApplyAgain обновляет существующий отклик и декрементирует объем
// одной транзакцией. Условие по applied_date входит в сам UPDATE:
// кулдаун проверяется и списывается атомарно, поэтому две конкурентные
// повторные подачи не могут пройти обе. Вызывается только для уже
// найденного отклика, так что ноль затронутых строк означает, что
// кулдаун успел сработать между чтением и записью.
func (r *vacancyRepository) ApplyAgain(db *gorm.DB, userID, vacancyID string, now time.Time) error {
	db, cancel := r.withTimeout(db)
	defer cancel()

	cutoff := now.Add(-models.ReapplyCooldown)
	return classify(db.Transaction(func(tx *gorm.DB) error {
		if err := decrementVolume(tx, vacancyID); err != nil {
			return err
		}
		result := tx.Model(&models.Applicant{}).
			Where("user_id = ? AND vacancy_id = ? AND applied_date <= ?", userID, vacancyID, cutoff).
			Updates(map[string]interface{}{
				"applied_date":  now,
				"times_applied": gorm.Expr("times_applied + 1"),
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCooldownActive
		}
		return nil
	}))
}
