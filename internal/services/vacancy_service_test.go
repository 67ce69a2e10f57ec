package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"hirepoint_backend/internal/auth"
	"hirepoint_backend/internal/services/dto"
	"hirepoint_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vacancyEnv struct {
	users     *fakeUserRepo
	vacancies *fakeVacancyRepo
	sessions  SessionService
	svc       VacancyService
}

func newVacancyEnv() *vacancyEnv {
	users := newFakeUserRepo()
	vacancies := newFakeVacancyRepo()
	issuer := auth.NewTokenIssuer([]byte(testJWTSecret))
	sessions := NewSessionService(users, issuer, &fakeEmailProvider{}, "http://localhost:4000")
	return &vacancyEnv{
		users:     users,
		vacancies: vacancies,
		sessions:  sessions,
		svc:       NewVacancyService(vacancies, sessions),
	}
}

// makeUser регистрирует пользователя, входит и возвращает bearer-заголовок
func (e *vacancyEnv) makeUser(t *testing.T, userName, role string) string {
	t.Helper()
	registerUser(t, e.sessions, userName, userName+"@example.com", role)
	bearer, _ := loginUser(t, e.sessions, userName)
	return bearer
}

// makeVacancy создает вакансию от имени работодателя и возвращает ее ID
func (e *vacancyEnv) makeVacancy(t *testing.T, employerBearer string, volume int, expiresOn time.Time) string {
	t.Helper()
	res := e.svc.CreateVacancy(nil, employerBearer, &dto.CreateVacancyRequest{
		Volume:    volume,
		ExpiresOn: expiresOn,
	})
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Data)
	return res.Data.ID
}

func TestCreateVacancyRequiresEmployerRole(t *testing.T) {
	env := newVacancyEnv()
	applicant := env.makeUser(t, "seeker", "applicant")

	res := env.svc.CreateVacancy(nil, applicant, &dto.CreateVacancyRequest{
		Volume:    3,
		ExpiresOn: time.Now().Add(48 * time.Hour),
	})
	require.False(t, res.Success)
	assert.Equal(t, apperrors.CodeForbidden, res.Cause().Code)

	employer := env.makeUser(t, "boss", "employer")
	id := env.makeVacancy(t, employer, 3, time.Now().Add(48*time.Hour))
	assert.NotEmpty(t, id)
}

func TestVacancyOperationsRequireAuth(t *testing.T) {
	env := newVacancyEnv()

	res := env.svc.Apply(nil, "Bearer nonsense", "some-id")
	assert.True(t, res.IsAuthRequired())
	assert.Equal(t, 401, res.Status(200))

	createRes := env.svc.CreateVacancy(nil, "", &dto.CreateVacancyRequest{
		Volume:    1,
		ExpiresOn: time.Now().Add(time.Hour),
	})
	assert.True(t, createRes.IsAuthRequired())
}

func TestGetVacancies(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	env.makeVacancy(t, employer, 2, time.Now().Add(48*time.Hour))
	env.makeVacancy(t, employer, 5, time.Now().Add(72*time.Hour))

	res := env.svc.GetVacancies(nil)
	require.True(t, res.Success)
	require.NotNil(t, res.Data)
	assert.Len(t, *res.Data, 2)

	missing := env.svc.GetVacancy(nil, "no-such-id")
	require.False(t, missing.Success)
	assert.Equal(t, apperrors.CodeNotFound, missing.Cause().Code)
}

func TestApplyHappyPath(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(48*time.Hour))

	res := env.svc.Apply(nil, seeker, id)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, 4, res.Data.Volume)
	require.Len(t, res.Data.Applicants, 1)
	assert.Equal(t, 1, res.Data.Applicants[0].TimesApplied)
}

func TestApplyRejectsExpiredVacancy(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(-time.Hour))

	res := env.svc.Apply(nil, seeker, id)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.CodeVacancyExpired, res.Cause().Code)
}

func TestApplyRejectsFullVacancy(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	first := env.makeUser(t, "first", "applicant")
	second := env.makeUser(t, "second", "applicant")
	id := env.makeVacancy(t, employer, 1, time.Now().Add(48*time.Hour))

	require.True(t, env.svc.Apply(nil, first, id).Success)

	res := env.svc.Apply(nil, second, id)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.CodeVacancyFull, res.Cause().Code)
}

func TestApplyCooldown(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(48*time.Hour))

	require.True(t, env.svc.Apply(nil, seeker, id).Success)

	// Повторная подача в течение 24 часов отклоняется
	res := env.svc.Apply(nil, seeker, id)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.CodeCooldownActive, res.Cause().Code)
}

func TestApplyAgainAfterCooldown(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(48*time.Hour))

	require.True(t, env.svc.Apply(nil, seeker, id).Success)

	// Сдвигаем дату последней подачи за пределы кулдауна
	user, err := env.users.FindByUserName(nil, "seeker")
	require.NoError(t, err)
	env.vacancies.setAppliedDate(user.ID, id, time.Now().Add(-25*time.Hour))

	res := env.svc.Apply(nil, seeker, id)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Data)
	assert.Equal(t, 3, res.Data.Volume)
	require.Len(t, res.Data.Applicants, 1)
	// Счетчик подач растет ровно на единицу
	assert.Equal(t, 2, res.Data.Applicants[0].TimesApplied)
}

func TestConcurrentReapplySpendsCooldownOnce(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(48*time.Hour))

	require.True(t, env.svc.Apply(nil, seeker, id).Success)

	user, err := env.users.FindByUserName(nil, "seeker")
	require.NoError(t, err)
	env.vacancies.setAppliedDate(user.ID, id, time.Now().Add(-25*time.Hour))

	// Обе горутины видят истекший кулдаун, но пройти должна ровно одна:
	// условие по applied_date и запись выполняются атомарно
	const racers = 2
	results := make([]*Result[dto.VacancyView], racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.svc.Apply(nil, seeker, id)
		}(i)
	}
	wg.Wait()

	var accepted, onCooldown int
	for _, res := range results {
		if res.Success {
			accepted++
			continue
		}
		require.Equal(t, apperrors.CodeCooldownActive, res.Cause().Code)
		onCooldown++
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, racers-1, onCooldown)

	final := env.svc.GetVacancy(nil, id)
	require.True(t, final.Success)
	assert.Equal(t, 3, final.Data.Volume)
	require.Len(t, final.Data.Applicants, 1)
	assert.Equal(t, 2, final.Data.Applicants[0].TimesApplied)
}

func TestConcurrentFirstApplicationsInsertOnce(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, employer, 5, time.Now().Add(48*time.Hour))

	// Двойная отправка первой подачи: проигравший гонку за уникальную
	// пару (userID, vacancyID) получает отказ по кулдауну, не сбой БД
	const racers = 2
	results := make([]*Result[dto.VacancyView], racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.svc.Apply(nil, seeker, id)
		}(i)
	}
	wg.Wait()

	var accepted, onCooldown int
	for _, res := range results {
		if res.Success {
			accepted++
			continue
		}
		require.Equal(t, apperrors.CodeCooldownActive, res.Cause().Code)
		onCooldown++
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, racers-1, onCooldown)

	final := env.svc.GetVacancy(nil, id)
	require.True(t, final.Success)
	assert.Equal(t, 4, final.Data.Volume)
	require.Len(t, final.Data.Applicants, 1)
	assert.Equal(t, 1, final.Data.Applicants[0].TimesApplied)
}

func TestConcurrentApplicantsNeverOversubscribe(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")

	const volume = 3
	const appliers = 10
	id := env.makeVacancy(t, employer, volume, time.Now().Add(48*time.Hour))

	bearers := make([]string, appliers)
	for i := range bearers {
		bearers[i] = env.makeUser(t, fmt.Sprintf("seeker%02d", i), "applicant")
	}

	results := make([]*Result[dto.VacancyView], appliers)
	var wg sync.WaitGroup
	for i := 0; i < appliers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = env.svc.Apply(nil, bearers[i], id)
		}(i)
	}
	wg.Wait()

	var accepted, rejectedFull int
	for _, res := range results {
		if res.Success {
			accepted++
			continue
		}
		require.Equal(t, apperrors.CodeVacancyFull, res.Cause().Code)
		rejectedFull++
	}
	assert.Equal(t, volume, accepted)
	assert.Equal(t, appliers-volume, rejectedFull)

	final := env.svc.GetVacancy(nil, id)
	require.True(t, final.Success)
	assert.Equal(t, 0, final.Data.Volume)
	assert.Len(t, final.Data.Applicants, volume)
	for _, a := range final.Data.Applicants {
		assert.Equal(t, 1, a.TimesApplied)
	}
}

func TestConcurrentApplicantsUnderCapacity(t *testing.T) {
	env := newVacancyEnv()
	employer := env.makeUser(t, "boss", "employer")

	const volume = 10
	const appliers = 6
	id := env.makeVacancy(t, employer, volume, time.Now().Add(48*time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < appliers; i++ {
		bearer := env.makeUser(t, fmt.Sprintf("worker%02d", i), "applicant")
		wg.Add(1)
		go func(bearer string) {
			defer wg.Done()
			res := env.svc.Apply(nil, bearer, id)
			assert.True(t, res.Success, res.Message)
		}(bearer)
	}
	wg.Wait()

	final := env.svc.GetVacancy(nil, id)
	require.True(t, final.Success)
	assert.Equal(t, volume-appliers, final.Data.Volume)
	assert.Len(t, final.Data.Applicants, appliers)
}

func TestUpdateVacancyOwnership(t *testing.T) {
	env := newVacancyEnv()
	owner := env.makeUser(t, "owner", "employer")
	rival := env.makeUser(t, "rival", "employer")
	id := env.makeVacancy(t, owner, 3, time.Now().Add(48*time.Hour))

	newExpiry := time.Now().Add(96 * time.Hour)
	res := env.svc.UpdateVacancy(nil, rival, id, &dto.UpdateVacancyRequest{
		Volume:    7,
		ExpiresOn: newExpiry,
	})
	require.False(t, res.Success)
	assert.Equal(t, apperrors.CodeForbidden, res.Cause().Code)

	res = env.svc.UpdateVacancy(nil, owner, id, &dto.UpdateVacancyRequest{
		Volume:    7,
		ExpiresOn: newExpiry,
	})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 7, res.Data.Volume)
}

func TestDeleteVacancyRemovesApplicants(t *testing.T) {
	env := newVacancyEnv()
	owner := env.makeUser(t, "owner", "employer")
	seeker := env.makeUser(t, "seeker", "applicant")
	id := env.makeVacancy(t, owner, 3, time.Now().Add(48*time.Hour))
	require.True(t, env.svc.Apply(nil, seeker, id).Success)

	res := env.svc.DeleteVacancy(nil, owner, id)
	require.True(t, res.Success, res.Message)

	missing := env.svc.GetVacancy(nil, id)
	require.False(t, missing.Success)
	assert.Equal(t, apperrors.CodeNotFound, missing.Cause().Code)

	// Отклик не переживает свою вакансию
	user, err := env.users.FindByUserName(nil, "seeker")
	require.NoError(t, err)
	_, err = env.vacancies.FindApplicant(nil, user.ID, id)
	assert.Error(t, err)
}

func TestAdminCanManageForeignVacancy(t *testing.T) {
	env := newVacancyEnv()
	owner := env.makeUser(t, "owner", "employer")
	admin := env.makeUser(t, "root", "admin")
	id := env.makeVacancy(t, owner, 3, time.Now().Add(48*time.Hour))

	res := env.svc.DeleteVacancy(nil, admin, id)
	assert.True(t, res.Success, res.Message)
}
