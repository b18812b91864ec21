package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/consolidation_backend/aimatch"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"github.com/mmdatafocus/consolidation_backend/workflow"
	"github.com/shakinm/xlsReader/xls"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const maxImportSizeBytes int64 = 10 * 1024 * 1024

// decodeGrid turns an uploaded spreadsheet into the raw cell grid the import
// pipeline works on. ext carries the dot, lower case.
func decodeGrid(ext string, data []byte) (workflow.Grid, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, workflow.ImportFileError(fmt.Sprintf("Failed to parse file: %s", err))
		}
		return workflow.Grid(rows), nil

	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, workflow.ImportFileError(fmt.Sprintf("Failed to parse file: %s", err))
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, workflow.ImportFileError(fmt.Sprintf("Failed to parse file: %s", err))
		}
		return workflow.Grid(rows), nil

	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, workflow.ImportFileError(fmt.Sprintf("Failed to parse file: %s", err))
		}
		sheet, err := workbook.GetSheet(0)
		if err != nil {
			return nil, workflow.ImportFileError(fmt.Sprintf("Failed to parse file: %s", err))
		}
		if sheet == nil {
			return nil, workflow.ImportFileError("Failed to parse file: no sheets found")
		}
		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}
		return workflow.Grid(rows), nil
	}
	return nil, workflow.ImportFileError(fmt.Sprintf("Unsupported file format: %s", ext))
}

// archiveUpload keeps the raw spreadsheet for replaying a problem import.
// Failures only warn.
func archiveUpload(ctx context.Context, logger *logrus.Logger, organizationId string, ext string, data []byte) {
	objectName := uuid.New().String() + ext
	if err := utils.ArchiveImportFile(ctx, organizationId, objectName, data, utils.SpreadsheetContentType(ext)); err != nil {
		logger.WithFields(logrus.Fields{
			"field":           "archiveUpload",
			"organization_id": organizationId,
			"object_name":     objectName,
		}).Warn("import archive skipped: " + err.Error())
	}
}

func importTransactionsHandler(oracle aimatch.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		organizationId, ok := sessionOrganization(c)
		if !ok {
			return
		}

		companyId, err := strconv.Atoi(c.Param("id"))
		if err != nil || companyId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		defer file.Close()
		if header.Size > maxImportSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			config.LogError(logger, "imports.go", "importTransactionsHandler", "Read upload", header.Filename, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		grid, err := decodeGrid(ext, data)
		if err != nil {
			var fileErr workflow.ImportFileError
			if errors.As(err, &fileErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": fileErr.Error()})
				return
			}
			config.LogError(logger, "imports.go", "importTransactionsHandler", "Decode grid", header.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode file"})
			return
		}

		archiveUpload(ctx, logger, organizationId, ext, data)

		opts := workflow.ImportOptions{CompanyId: companyId}
		if oracle.Enabled() {
			opts.Suggester = oracle
			opts.ColumnMapper = oracle
		}

		result, err := workflow.ImportGrid(ctx, logger, grid, opts)
		if err != nil {
			var fileErr workflow.ImportFileError
			switch {
			case errors.As(err, &fileErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": fileErr.Error()})
			case errors.Is(err, utils.ErrorRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
			default:
				config.LogError(logger, "imports.go", "importTransactionsHandler", "ImportGrid", companyId, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func importTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=transaction_import_template.csv")
		c.String(http.StatusOK, workflow.TransactionCsvTemplate)
	}
}

func listTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := sessionOrganization(c); !ok {
			return
		}

		var filter models.TransactionFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		connection, err := models.GetTransactions(ctx, &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, connection)
	}
}

func deleteTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := sessionOrganization(c); !ok {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
			return
		}

		result, err := models.DeleteTransaction(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
