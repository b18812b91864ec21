package aimatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiProvider answers mapping and column questions with Gemini. One
// client is constructed at startup and shared for the process lifetime.
type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *logrus.Logger
}

func NewGeminiProvider(ctx context.Context, logger *logrus.Logger) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := os.Getenv("GEMINI_MODEL")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	temperature := float32(0.3)
	if raw := os.Getenv("GEMINI_TEMPERATURE"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 32); err == nil {
			temperature = float32(parsed)
		}
	}

	return &GeminiProvider{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
	}, nil
}

func (p *GeminiProvider) Enabled() bool {
	return true
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

type accountPayload struct {
	Id            int    `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	AccountType   string `json:"account_type"`
	Category      string `json:"category,omitempty"`
}

const suggestSystemPrompt = `You are an expert financial accountant specializing in chart of accounts mapping for consolidation.
Map each company account to the best matching master account of the same account type.
Return JSON only, in this shape:
{"mappings": [{"company_account_id": 1, "master_account_id": 2, "confidence": 0.95, "reasoning": "why this is the best match"}]}
Confidence is 0.0-1.0. Omit an account entirely if no master account is a reasonable match.`

func (p *GeminiProvider) Suggest(ctx context.Context, companyAccounts []*models.CompanyAccount, masterAccounts []*models.MasterAccount, orgContext string) ([]Suggestion, error) {
	if len(companyAccounts) == 0 || len(masterAccounts) == 0 {
		return nil, nil
	}

	companyPayload := make([]accountPayload, 0, len(companyAccounts))
	companyIds := make(map[int]bool, len(companyAccounts))
	for _, acc := range companyAccounts {
		companyIds[acc.ID] = true
		companyPayload = append(companyPayload, accountPayload{
			Id:            acc.ID,
			AccountNumber: acc.AccountNumber,
			AccountName:   acc.AccountName,
			AccountType:   string(acc.AccountType),
		})
	}
	masterPayload := make([]accountPayload, 0, len(masterAccounts))
	masterIds := make(map[int]bool, len(masterAccounts))
	for _, acc := range masterAccounts {
		masterIds[acc.ID] = true
		masterPayload = append(masterPayload, accountPayload{
			Id:            acc.ID,
			AccountNumber: acc.AccountNumber,
			AccountName:   acc.AccountName,
			AccountType:   string(acc.AccountType),
			Category:      acc.Category,
		})
	}

	companyJSON, err := json.MarshalIndent(companyPayload, "", "  ")
	if err != nil {
		return nil, err
	}
	masterJSON, err := json.MarshalIndent(masterPayload, "", "  ")
	if err != nil {
		return nil, err
	}
	if orgContext == "" {
		orgContext = "General business"
	}

	prompt := fmt.Sprintf(`%s

COMPANY CONTEXT: %s

COMPANY ACCOUNTS TO MAP:
%s

MASTER CHART OF ACCOUNTS:
%s`, suggestSystemPrompt, orgContext, companyJSON, masterJSON)

	raw, err := p.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Mappings []struct {
			CompanyAccountId int      `json:"company_account_id"`
			MasterAccountId  int      `json:"master_account_id"`
			Confidence       *float64 `json:"confidence"`
			Reasoning        string   `json:"reasoning"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse suggestion response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(parsed.Mappings))
	for _, m := range parsed.Mappings {
		// drop hallucinated ids
		if !companyIds[m.CompanyAccountId] || !masterIds[m.MasterAccountId] {
			continue
		}
		confidence := 0.7
		if m.Confidence != nil {
			confidence = *m.Confidence
		}
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}
		reasoning := m.Reasoning
		if reasoning == "" {
			reasoning = "AI suggested based on name similarity"
		}
		suggestions = append(suggestions, Suggestion{
			CompanyAccountId: m.CompanyAccountId,
			MasterAccountId:  m.MasterAccountId,
			Confidence:       confidence,
			Reasoning:        reasoning,
		})
	}
	return suggestions, nil
}

func (p *GeminiProvider) MapColumns(ctx context.Context, columns []string, sampleRows [][]string) (map[string]string, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	var sample strings.Builder
	for i, row := range sampleRows {
		if i >= 5 {
			break
		}
		sample.WriteString(strings.Join(row, " | "))
		sample.WriteString("\n")
	}

	prompt := fmt.Sprintf(`You classify spreadsheet columns from a financial transaction export.
Canonical fields: date, account_number, account_name, description, debit, credit, reference, amount.
Return JSON only: an object mapping each source column name to a canonical field, e.g. {"Txn Date": "date"}.
Leave out columns that fit no canonical field. Use each canonical field at most once.

COLUMNS:
%s

SAMPLE ROWS:
%s`, strings.Join(columns, " | "), sample.String())

	raw, err := p.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse column response: %w", err)
	}
	return parsed, nil
}

// generateJSON runs one prompt and returns the first JSON object found in
// the reply. Models occasionally wrap JSON in prose even with the MIME type
// pinned, so the object is cut out of the raw text.
func (p *GeminiProvider) generateJSON(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(p.temperature)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		config.LogError(p.logger, "gemini.go", "generateJSON", "GenerateContent", p.modelName, err)
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty gemini response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	text := sb.String()

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in gemini response")
	}
	return text[start : end+1], nil
}
