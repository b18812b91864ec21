package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/consolidation_backend/aimatch"
	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/models"
	"github.com/sirupsen/logrus"
)

// InferAccountType classifies an account from its code or name. Numbered
// charts follow the usual convention (1xxx assets, 2xxx liabilities, 3xxx
// equity, 4xxx revenue, the rest expenses); named accounts fall back to
// keyword matching, and anything unrecognized is treated as an expense.
func InferAccountType(numberOrName string) models.AccountType {
	trimmed := strings.TrimSpace(numberOrName)
	if trimmed == "" {
		return models.AccountTypeExpense
	}

	if trimmed[0] >= '0' && trimmed[0] <= '9' {
		switch trimmed[0] {
		case '1':
			return models.AccountTypeAsset
		case '2':
			return models.AccountTypeLiability
		case '3':
			return models.AccountTypeEquity
		case '4':
			return models.AccountTypeRevenue
		}
		return models.AccountTypeExpense
	}

	name := strings.ToLower(trimmed)
	switch {
	case strings.Contains(name, "cash") || strings.Contains(name, "receivable") || strings.Contains(name, "inventory"):
		return models.AccountTypeAsset
	case strings.Contains(name, "payable") || strings.Contains(name, "loan"):
		return models.AccountTypeLiability
	case strings.Contains(name, "equity") || strings.Contains(name, "capital"):
		return models.AccountTypeEquity
	case strings.Contains(name, "revenue") || strings.Contains(name, "sales") || strings.Contains(name, "income"):
		return models.AccountTypeRevenue
	}
	return models.AccountTypeExpense
}

// accountThesaurus links tech-flavored account words to the older ledger
// vocabulary master charts tend to use.
var accountThesaurus = map[string][]string{
	"cloud":          {"utilities", "research", "development"},
	"infrastructure": {"research", "development", "utilities"},
	"api":            {"professional", "services", "utilities"},
	"support":        {"services", "professional"},
	"premium":        {"services", "professional"},
	"software":       {"research", "development"},
	"license":        {"research", "development", "intangible"},
}

// uniqueWords lowercases a name and returns its distinct words in
// first-appearance order.
func uniqueWords(name string) []string {
	seen := map[string]bool{}
	var words []string
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// scoreAccountNames rates how well a company account name matches a master
// account name. Word overlap carries most of the weight, containment of one
// name in the other adds a bonus, and the thesaurus bridges vocabulary gaps
// at one hit per source word.
func scoreAccountNames(companyName string, masterName string) float64 {
	compLower := strings.ToLower(companyName)
	masterLower := strings.ToLower(masterName)

	compWords := uniqueWords(companyName)
	masterWords := uniqueWords(masterName)

	masterSet := make(map[string]bool, len(masterWords))
	for _, word := range masterWords {
		masterSet[word] = true
	}

	common := 0
	for _, word := range compWords {
		if masterSet[word] {
			common++
		}
	}

	var score float64
	if common > 0 {
		denom := len(compWords)
		if len(masterWords) > denom {
			denom = len(masterWords)
		}
		score = float64(common) / float64(denom)
	}

	if compLower != "" && masterLower != "" &&
		(strings.Contains(masterLower, compLower) || strings.Contains(compLower, masterLower)) {
		score += 0.3
	}

	for _, word := range compWords {
		synonyms, ok := accountThesaurus[word]
		if !ok {
			continue
		}
		for _, synonym := range synonyms {
			if strings.Contains(masterLower, synonym) {
				score += 0.2
				break
			}
		}
	}

	return score
}

func commonAccountWords(companyName string, masterName string) []string {
	masterSet := map[string]bool{}
	for _, word := range uniqueWords(masterName) {
		masterSet[word] = true
	}
	var common []string
	for _, word := range uniqueWords(companyName) {
		if masterSet[word] {
			common = append(common, word)
		}
	}
	return common
}

// heuristicSuggestion picks the closest same-type master account for one
// company account. Ties keep the earliest master; when nothing scores, the
// first master of the same type is offered as a weak default. Returns nil
// only when the master chart has no account of that type at all.
func heuristicSuggestion(account *models.CompanyAccount, masters []*models.MasterAccount) *models.SuggestedMapping {
	var best *models.MasterAccount
	bestScore := 0.0

	for _, master := range masters {
		if master.AccountType != account.AccountType {
			continue
		}
		score := scoreAccountNames(account.AccountName, master.AccountName)
		if score > bestScore {
			bestScore = score
			best = master
		}
	}

	if best == nil {
		for _, master := range masters {
			if master.AccountType == account.AccountType {
				best = master
				bestScore = 0.1
				break
			}
		}
	}
	if best == nil {
		return nil
	}

	var reasoning string
	switch {
	case bestScore > 0.6:
		naming := strings.Join(commonAccountWords(account.AccountName, best.AccountName), ", ")
		if naming == "" {
			naming = "semantic similarity"
		}
		reasoning = fmt.Sprintf("Strong match: '%s' closely resembles '%s'. Both are %s accounts with similar naming (%s).",
			account.AccountName, best.AccountName, account.AccountType, naming)
	case bestScore > 0.3:
		reasoning = fmt.Sprintf("Good match: Account type (%s) matches. Name similarity detected. This is the best available mapping for '%s' based on the master chart of accounts.",
			account.AccountType, account.AccountName)
	default:
		reasoning = fmt.Sprintf("Suggested match: '%s' mapped to '%s' as both are %s accounts. This is the most appropriate match from available options, though names differ.",
			account.AccountName, best.AccountName, account.AccountType)
	}

	confidence := 0.7 + bestScore*0.3
	if confidence > 0.98 {
		confidence = 0.98
	}
	if confidence < 0.65 {
		confidence = 0.65
	}

	return &models.SuggestedMapping{
		CompanyAccountId: account.ID,
		MasterAccountId:  best.ID,
		Confidence:       confidence,
		Reasoning:        reasoning,
	}
}

// AccountResolver turns raw account labels into company account rows and
// decides, once per import, how newly seen accounts should land in the
// master chart. The master list and the existing-account cache are loaded
// up front so an import never observes mid-run reference churn.
type AccountResolver struct {
	CompanyId  int
	Threshold  float64
	OrgContext string

	masters   []*models.MasterAccount
	accounts  map[string]*models.CompanyAccount
	created   []*models.CompanyAccount
	suggester aimatch.Suggester
	logger    *logrus.Logger
}

func NewAccountResolver(ctx context.Context, companyId int, threshold float64, suggester aimatch.Suggester, logger *logrus.Logger) (*AccountResolver, error) {
	if threshold <= 0 || threshold > 1 {
		threshold = config.AutoMapThreshold()
	}

	masters, err := models.GetMasterAccounts(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := models.GetCompanyAccounts(ctx, companyId)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]*models.CompanyAccount, len(existing))
	for _, account := range existing {
		accounts[account.AccountNumber] = account
	}

	return &AccountResolver{
		CompanyId: companyId,
		Threshold: threshold,
		masters:   masters,
		accounts:  accounts,
		suggester: suggester,
		logger:    logger,
	}, nil
}

// Resolve returns the company account behind an imported row, creating it
// on first sight. Created accounts are remembered for the mapping pass at
// the end of the import.
func (r *AccountResolver) Resolve(ctx context.Context, accountNumber string, accountName string) (*models.CompanyAccount, bool, error) {
	if account, ok := r.accounts[accountNumber]; ok {
		return account, false, nil
	}

	number := strings.TrimSpace(accountNumber)
	typeSource := accountName
	if number != "" && number[0] >= '0' && number[0] <= '9' {
		typeSource = number
	}
	if strings.TrimSpace(typeSource) == "" {
		typeSource = number
	}

	account, created, err := models.GetOrCreateCompanyAccount(ctx, r.CompanyId, accountNumber, accountName, InferAccountType(typeSource))
	if err != nil {
		return nil, false, err
	}

	r.accounts[account.AccountNumber] = account
	if created {
		r.created = append(r.created, account)
	}
	return account, created, nil
}

// CreatedAccounts lists the accounts this resolver created, in the order
// the import first saw them.
func (r *AccountResolver) CreatedAccounts() []*models.CompanyAccount {
	return r.created
}

// SuggestForAccounts builds one mapping suggestion per account. The
// heuristic always produces a candidate when a same-type master exists; the
// external model, when configured, overrides it account by account. Model
// failures are logged and the heuristic verdicts stand.
func (r *AccountResolver) SuggestForAccounts(ctx context.Context, accounts []*models.CompanyAccount) []*models.SuggestedMapping {
	if len(accounts) == 0 {
		return nil
	}

	byAccount := make(map[int]*models.SuggestedMapping, len(accounts))
	for _, account := range accounts {
		if suggestion := heuristicSuggestion(account, r.masters); suggestion != nil {
			suggestion.Source = models.MappingSourceHeuristic
			byAccount[account.ID] = suggestion
		}
	}

	if r.suggester != nil {
		hits, err := r.suggester.Suggest(ctx, accounts, r.masters, r.OrgContext)
		if err != nil {
			config.LogError(r.logger, "resolver.go", "SuggestForAccounts", "Suggest",
				map[string]any{"companyId": r.CompanyId, "accounts": len(accounts)}, err)
		}
		for _, hit := range hits {
			byAccount[hit.CompanyAccountId] = &models.SuggestedMapping{
				CompanyAccountId: hit.CompanyAccountId,
				MasterAccountId:  hit.MasterAccountId,
				Confidence:       hit.Confidence,
				Source:           models.MappingSourceAiAuto,
				Reasoning:        hit.Reasoning,
			}
		}
	}

	suggestions := make([]*models.SuggestedMapping, 0, len(byAccount))
	for _, account := range accounts {
		suggestion, ok := byAccount[account.ID]
		if !ok {
			continue
		}
		suggestion.AutoActivate = suggestion.Confidence >= r.Threshold
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

// ProposeMappings runs the suggestion pass over every account created
// during this import and stores the verdicts. Accounts that already carry
// an active mapping are left alone by the store layer.
func (r *AccountResolver) ProposeMappings(ctx context.Context) ([]*models.AccountMapping, error) {
	suggestions := r.SuggestForAccounts(ctx, r.created)

	var stored []*models.AccountMapping
	for _, suggestion := range suggestions {
		mapping, err := models.StoreSuggestedMapping(ctx, suggestion)
		if err != nil {
			return stored, err
		}
		if mapping != nil {
			stored = append(stored, mapping)
		}
	}
	return stored, nil
}

// SuggestOutstanding runs the suggestion pass over every account of the
// company that still has no active mapping and stores the verdicts. Used by
// the suggestion endpoint and the remap maintenance command.
func SuggestOutstanding(ctx context.Context, logger *logrus.Logger, companyId int, threshold float64, suggester aimatch.Suggester) ([]*models.AccountMapping, error) {
	company, err := models.GetCompany(ctx, companyId)
	if err != nil {
		return nil, err
	}

	resolver, err := NewAccountResolver(ctx, companyId, threshold, suggester, logger)
	if err != nil {
		return nil, err
	}
	resolver.OrgContext = company.Name
	if company.Industry != "" {
		resolver.OrgContext = fmt.Sprintf("%s (%s)", company.Name, company.Industry)
	}

	accounts, err := models.GetCompanyAccounts(ctx, companyId)
	if err != nil {
		return nil, err
	}
	index, err := models.ActiveMappingIndex(ctx, []int{companyId})
	if err != nil {
		return nil, err
	}
	var outstanding []*models.CompanyAccount
	for _, account := range accounts {
		if _, mapped := index[account.ID]; !mapped {
			outstanding = append(outstanding, account)
		}
	}

	suggestions := resolver.SuggestForAccounts(ctx, outstanding)
	var stored []*models.AccountMapping
	for _, suggestion := range suggestions {
		mapping, err := models.StoreSuggestedMapping(ctx, suggestion)
		if err != nil {
			return stored, err
		}
		if mapping != nil {
			stored = append(stored, mapping)
		}
	}
	return stored, nil
}
