package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/reports"
	"github.com/mmdatafocus/consolidation_backend/workflow"
)

func createCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		var input models.NewCompany
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.CreateCompany(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listCompaniesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		results, err := models.ListAllCompany(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func getCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.GetCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func updateCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		var input models.NewCompany
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		result, err := models.UpdateCompany(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		result, err := models.DeleteCompany(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func toggleCompanyHandler() gin.HandlerFunc {
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
		result, err := models.ToggleActiveCompany(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// createRunHandler kicks off a consolidation for one fiscal period. The
// workflow rejects the request when another run for the same period is
// already underway.
func createRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		var input models.NewConsolidationRun
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		run, err := workflow.NewConsolidator(logger).Run(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func listRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		fiscalYear, _ := strconv.Atoi(c.Query("fiscal_year"))
		results, err := models.GetConsolidationRuns(c.Request.Context(), fiscalYear)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// getRunHandler returns the run with its per-company breakdown and the
// eliminations the run recorded.
func getRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		run, err := models.GetConsolidationRun(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		breakdown, err := workflow.NewConsolidator(logger).Breakdown(ctx, run)
		if err != nil {
			respondError(c, err)
			return
		}
		eliminations, err := models.GetEliminationsByRun(ctx, run.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"run":               run,
			"company_breakdown": breakdown,
			"eliminations":      eliminations,
		})
	}
}

// exportRunHandler streams the consolidated report workbook.
func exportRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		if _, ok := sessionOrganization(c); !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		run, err := models.GetConsolidationRun(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		breakdown, err := workflow.NewConsolidator(logger).Breakdown(ctx, run)
		if err != nil {
			respondError(c, err)
			return
		}

		fileName := fmt.Sprintf("consolidation-%d-%02d.xlsx", run.FiscalYear, run.FiscalPeriod)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		if err := reports.WriteRunWorkbook(run, breakdown, c.Writer); err != nil {
			config.LogError(logger, "consolidations.go", "exportRunHandler", "WriteRunWorkbook", run.ID, err)
		}
	}
}
