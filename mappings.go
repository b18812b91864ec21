package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/consolidation_backend/aimatch"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/mmdatafocus/consolidation_backend/workflow"
)

func createMasterAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		var input models.NewMasterAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.CreateMasterAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listMasterAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		results, err := models.ListAllMasterAccount(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func getMasterAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.GetMasterAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func updateMasterAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		var input models.NewMasterAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.UpdateMasterAccount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteMasterAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.DeleteMasterAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func toggleMasterAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		var req toggleActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
			return
		}
		result, err := models.ToggleActiveMasterAccount(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func createCompanyAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		var input models.NewCompanyAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.CreateCompanyAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listCompanyAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		companyId, err := strconv.Atoi(c.Param("id"))
		if err != nil || companyId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
			return
		}
		results, err := models.GetCompanyAccounts(c.Request.Context(), companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func updateCompanyAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		var input models.NewCompanyAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.UpdateCompanyAccount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteCompanyAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.DeleteCompanyAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type suggestionRequest struct {
	Threshold float64 `json:"threshold"`
}

// generateSuggestionsHandler proposes mappings for every account of the
// company that has no active mapping yet. Threshold defaults to the
// auto-map threshold when absent.
func generateSuggestionsHandler(oracle aimatch.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		companyId, err := strconv.Atoi(c.Param("id"))
		if err != nil || companyId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
			return
		}

		var req suggestionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		var suggester aimatch.Suggester
		if oracle.Enabled() {
			suggester = oracle
		}

		stored, err := workflow.SuggestOutstanding(ctx, logger, companyId, req.Threshold, suggester)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"suggestions_created": len(stored),
			"suggestions":         stored,
		})
	}
}

func pendingMappingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		companyId, _ := strconv.Atoi(c.Query("company_id"))
		results, err := models.GetPendingMappings(c.Request.Context(), companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func companyMappingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		companyId, err := strconv.Atoi(c.Param("id"))
		if err != nil || companyId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
			return
		}
		results, err := models.GetCompanyMappings(c.Request.Context(), companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// createMappingHandler maps a company account by hand; the mapping becomes
// active and verified immediately.
func createMappingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		var input models.NewAccountMapping
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.CreateAccountMapping(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type approveMappingRequest struct {
	Action           string                   `json:"action"`
	MasterAccountId  int                      `json:"master_account_id"`
	NewMasterAccount *models.NewMasterAccount `json:"new_master_account"`
}

// approveMappingHandler settles a pending suggestion. Three answers exist:
// accept the suggestion, point the account at a different master account, or
// create a brand new master account for it.
func approveMappingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, ok := sessionOrganization(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		req := approveMappingRequest{Action: "approve"}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		switch req.Action {
		case "", "approve":
			result, err := models.ApproveAccountMapping(ctx, id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)

		case "remap":
			if req.MasterAccountId <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "master_account_id is required"})
				return
			}
			pending, err := utils.FetchModel[models.AccountMapping](ctx, organizationId, id)
			if err != nil {
				respondError(c, err)
				return
			}
			result, err := models.RemapCompanyAccount(ctx, pending.CompanyAccountId, req.MasterAccountId)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)

		case "create_new":
			if req.NewMasterAccount == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "new_master_account is required"})
				return
			}
			pending, err := utils.FetchModel[models.AccountMapping](ctx, organizationId, id)
			if err != nil {
				respondError(c, err)
				return
			}
			result, err := models.MapToNewMasterAccount(ctx, pending.CompanyAccountId, req.NewMasterAccount)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
		}
	}
}

func deleteMappingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.DeleteAccountMapping(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
