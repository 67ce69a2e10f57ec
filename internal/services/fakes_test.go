package services

import (
	"sync"
	"time"

	"hirepoint_backend/internal/models"
	"hirepoint_backend/internal/repositories"

	"gorm.io/gorm"
)

// fakeUserRepo - потокобезопасная реализация UserRepository в памяти.
// Параметр db игнорируется. dropWrites позволяет симулировать хранилище,
// которое молча теряет запись: контрольные чтения должны это поймать.
type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*models.User
	refresh    map[string]*models.RefreshToken        // по userID
	forgot     map[string]*models.ForgotPasswordToken // по userID
	dropWrites bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*models.User),
		refresh: make(map[string]*models.RefreshToken),
		forgot:  make(map[string]*models.ForgotPasswordToken),
	}
}

func (r *fakeUserRepo) cloneUser(u *models.User) *models.User {
	copied := *u
	copied.RefreshToken = nil
	copied.ForgotPasswordToken = nil
	if rt, ok := r.refresh[u.ID]; ok {
		rtCopy := *rt
		copied.RefreshToken = &rtCopy
	}
	if fp, ok := r.forgot[u.ID]; ok {
		fpCopy := *fp
		copied.ForgotPasswordToken = &fpCopy
	}
	return &copied
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return r.cloneUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return r.cloneUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUserName(_ *gorm.DB, userName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == userName {
			return r.cloneUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ *gorm.DB) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *r.cloneUser(u))
	}
	return users, nil
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.UserName = user.UserName
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.Role = user.Role
	stored.AccessToken = user.AccessToken
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *fakeUserRepo) Delete(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	delete(r.refresh, id)
	delete(r.forgot, id)
	return nil
}

func (r *fakeUserRepo) ReplaceRefreshToken(_ *gorm.DB, userID string, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	copied := *token
	r.refresh[userID] = &copied
	return nil
}

func (r *fakeUserRepo) DeleteRefreshTokenByUserID(_ *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	delete(r.refresh, userID)
	return nil
}

func (r *fakeUserRepo) SaveForgotPasswordToken(_ *gorm.DB, token *models.ForgotPasswordToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	copied := *token
	r.forgot[token.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateForgotPasswordToken(_ *gorm.DB, token *models.ForgotPasswordToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropWrites {
		return nil
	}
	stored, ok := r.forgot[token.UserID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.IsValidated = token.IsValidated
	stored.UpdatedAt = token.UpdatedAt
	return nil
}

func (r *fakeUserRepo) CleanExpiredTokens(_ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var removed int64
	for userID, rt := range r.refresh {
		if rt.ExpiresAt.Before(now) {
			delete(r.refresh, userID)
			removed++
		}
	}
	for userID, fp := range r.forgot {
		if fp.ExpiresAt.Before(now) {
			delete(r.forgot, userID)
			removed++
		}
	}
	return removed, nil
}

// fakeVacancyRepo - потокобезопасная реализация VacancyRepository в
// памяти. Декремент объема и запись отклика выполняются под одним
// мьютексом, как в БД они выполняются в одной транзакции.
type fakeVacancyRepo struct {
	mu         sync.Mutex
	vacancies  map[string]*models.Vacancy
	applicants map[string]*models.Applicant // по userID + "|" + vacancyID
}

func newFakeVacancyRepo() *fakeVacancyRepo {
	return &fakeVacancyRepo{
		vacancies:  make(map[string]*models.Vacancy),
		applicants: make(map[string]*models.Applicant),
	}
}

func applicantKey(userID, vacancyID string) string {
	return userID + "|" + vacancyID
}

func (r *fakeVacancyRepo) cloneVacancy(v *models.Vacancy) *models.Vacancy {
	copied := *v
	copied.Applicants = nil
	for _, a := range r.applicants {
		if a.VacancyID == v.ID {
			copied.Applicants = append(copied.Applicants, *a)
		}
	}
	return &copied
}

func (r *fakeVacancyRepo) Create(_ *gorm.DB, vacancy *models.Vacancy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *vacancy
	copied.Applicants = nil
	r.vacancies[vacancy.ID] = &copied
	return nil
}

func (r *fakeVacancyRepo) FindByID(_ *gorm.DB, id string) (*models.Vacancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vacancies[id]
	if !ok {
		return nil, repositories.ErrVacancyNotFound
	}
	return r.cloneVacancy(v), nil
}

func (r *fakeVacancyRepo) List(_ *gorm.DB) ([]models.Vacancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vacancies := make([]models.Vacancy, 0, len(r.vacancies))
	for _, v := range r.vacancies {
		vacancies = append(vacancies, *r.cloneVacancy(v))
	}
	return vacancies, nil
}

func (r *fakeVacancyRepo) Update(_ *gorm.DB, vacancy *models.Vacancy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.vacancies[vacancy.ID]
	if !ok {
		return repositories.ErrVacancyNotFound
	}
	stored.Volume = vacancy.Volume
	stored.ExpiresOn = vacancy.ExpiresOn
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeVacancyRepo) DeleteWithApplicants(_ *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vacancies[id]; !ok {
		return repositories.ErrVacancyNotFound
	}
	delete(r.vacancies, id)
	for key, a := range r.applicants {
		if a.VacancyID == id {
			delete(r.applicants, key)
		}
	}
	return nil
}

func (r *fakeVacancyRepo) FindApplicant(_ *gorm.DB, userID, vacancyID string) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applicants[applicantKey(userID, vacancyID)]
	if !ok {
		return nil, repositories.ErrApplicantNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeVacancyRepo) decrementVolume(vacancyID string) error {
	v, ok := r.vacancies[vacancyID]
	if !ok || v.Volume <= 0 {
		return repositories.ErrVacancyFull
	}
	v.Volume--
	v.UpdatedAt = time.Now()
	return nil
}

func (r *fakeVacancyRepo) ApplyNew(_ *gorm.DB, applicant *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// существующая пара (userID, vacancyID) - аналог уникального индекса
	if _, ok := r.applicants[applicantKey(applicant.UserID, applicant.VacancyID)]; ok {
		return repositories.ErrCooldownActive
	}
	if err := r.decrementVolume(applicant.VacancyID); err != nil {
		return err
	}
	copied := *applicant
	r.applicants[applicantKey(applicant.UserID, applicant.VacancyID)] = &copied
	return nil
}

func (r *fakeVacancyRepo) ApplyAgain(_ *gorm.DB, userID, vacancyID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applicants[applicantKey(userID, vacancyID)]
	if !ok {
		return repositories.ErrApplicantNotFound
	}
	// кулдаун проверяется под тем же мьютексом, что и запись,
	// как условие по applied_date в одном UPDATE у реального хранилища
	if a.AppliedDate.After(now.Add(-models.ReapplyCooldown)) {
		return repositories.ErrCooldownActive
	}
	if err := r.decrementVolume(vacancyID); err != nil {
		return err
	}
	a.AppliedDate = now
	a.TimesApplied++
	a.UpdatedAt = now
	return nil
}

// setAppliedDate сдвигает дату последней подачи (для проверок кулдауна)
func (r *fakeVacancyRepo) setAppliedDate(userID, vacancyID string, appliedDate time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.applicants[applicantKey(userID, vacancyID)]; ok {
		a.AppliedDate = appliedDate
	}
}

// fakeCookieSink записывает операции с refresh-cookie
type fakeCookieSink struct {
	mu      sync.Mutex
	token   string
	expires time.Time
	cleared bool
}

func (s *fakeCookieSink) SetRefreshToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expires = expiresAt
	s.cleared = false
}

func (s *fakeCookieSink) ClearRefreshToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared = true
}

// fakeEmailProvider записывает отправленные письма
type fakeEmailProvider struct {
	mu    sync.Mutex
	sent  int
	to    string
	links []string
}

func (p *fakeEmailProvider) SendPasswordResetEmail(to, userName, confirmationURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
	p.to = to
	p.links = append(p.links, confirmationURL)
	return nil
}
