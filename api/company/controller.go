package company

import (
	"net/http"

	"tms/api/response"
	companyapp "tms/application/company"
	"tms/domain/shared"

	"github.com/gin-gonic/gin"
)

// Controller Company controller
type Controller struct {
	companyService *companyapp.ApplicationService
}

// NewController Create company controller
func NewController(companyService *companyapp.ApplicationService) *Controller {
	return &Controller{
		companyService: companyService,
	}
}

// RegisterRoutes Register company routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	companyGroup := router.Group("/companies")
	{
		companyGroup.POST("", c.CreateCompany)
		companyGroup.GET("/:id", c.GetCompany)
		companyGroup.POST("/:id/agreements", c.CreateAgreement)
		companyGroup.DELETE("/:id/agreements/:agreement_id", c.RemoveAgreement)
	}
}

// CreateCompany Register a company
func (c *Controller) CreateCompany(ctx *gin.Context) {
	var req companyapp.CreateCompanyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Invalid request parameters", http.StatusBadRequest)
		return
	}

	created, err := c.companyService.CreateCompany(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, created, "Company created successfully")
}

// GetCompany Fetch one company with its agreements
func (c *Controller) GetCompany(ctx *gin.Context) {
	companyID, err := shared.ParseID(ctx.Param("id"))
	if err != nil {
		response.HandleError(ctx, err, "Company ID must be a valid UUID", http.StatusBadRequest)
		return
	}

	found, err := c.companyService.GetCompany(ctx.Request.Context(), companyID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, found, "Company retrieved successfully")
}

// CreateAgreement Add an agreement between two companies
func (c *Controller) CreateAgreement(ctx *gin.Context) {
	companyID, err := shared.ParseID(ctx.Param("id"))
	if err != nil {
		response.HandleError(ctx, err, "Company ID must be a valid UUID", http.StatusBadRequest)
		return
	}

	var req companyapp.CreateAgreementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "Invalid request parameters", http.StatusBadRequest)
		return
	}

	agreement, err := c.companyService.CreateAgreement(ctx.Request.Context(), companyID, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, agreement, "Agreement created successfully")
}

// RemoveAgreement Remove an agreement
func (c *Controller) RemoveAgreement(ctx *gin.Context) {
	companyID, err := shared.ParseID(ctx.Param("id"))
	if err != nil {
		response.HandleError(ctx, err, "Company ID must be a valid UUID", http.StatusBadRequest)
		return
	}
	agreementID, err := shared.ParseID(ctx.Param("agreement_id"))
	if err != nil {
		response.HandleError(ctx, err, "Agreement ID must be a valid UUID", http.StatusBadRequest)
		return
	}

	if err := c.companyService.RemoveAgreement(ctx.Request.Context(), companyID, agreementID); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}
