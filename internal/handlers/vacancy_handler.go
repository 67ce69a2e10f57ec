package handlers

import (
	"net/http"

	"hirepoint_backend/internal/services"
	"hirepoint_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// VacancyHandler обслуживает маршруты вакансий
type VacancyHandler struct {
	*BaseHandler
	vacancies services.VacancyService
}

func NewVacancyHandler(base *BaseHandler, vacancies services.VacancyService) *VacancyHandler {
	return &VacancyHandler{
		BaseHandler: base,
		vacancies:   vacancies,
	}
}

// List обрабатывает GET /api/v1/vacancies
func (h *VacancyHandler) List(c *gin.Context) {
	res := h.vacancies.GetVacancies(h.GetDB(c))
	respond(c, res, http.StatusOK)
}

// Get обрабатывает GET /api/v1/vacancies/:id
func (h *VacancyHandler) Get(c *gin.Context) {
	res := h.vacancies.GetVacancy(h.GetDB(c), c.Param("id"))
	respond(c, res, http.StatusOK)
}

// Create обрабатывает POST /api/v1/vacancies
func (h *VacancyHandler) Create(c *gin.Context) {
	var req dto.CreateVacancyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.vacancies.CreateVacancy(h.GetDB(c), h.Authorization(c), &req)
	respond(c, res, http.StatusCreated)
}

// Update обрабатывает PUT /api/v1/vacancies/:id
func (h *VacancyHandler) Update(c *gin.Context) {
	var req dto.UpdateVacancyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res := h.vacancies.UpdateVacancy(h.GetDB(c), h.Authorization(c), c.Param("id"), &req)
	respond(c, res, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/vacancies/:id
func (h *VacancyHandler) Delete(c *gin.Context) {
	res := h.vacancies.DeleteVacancy(h.GetDB(c), h.Authorization(c), c.Param("id"))
	respond(c, res, http.StatusOK)
}

// Apply обрабатывает POST /api/v1/vacancies/:id/apply
func (h *VacancyHandler) Apply(c *gin.Context) {
	res := h.vacancies.Apply(h.GetDB(c), h.Authorization(c), c.Param("id"))
	respond(c, res, http.StatusOK)
}
