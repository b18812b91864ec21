package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// NormalBalance reports the side on which this account type increases.
// Asset and Expense balances grow with debits; the rest grow with credits.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// convert input to enum type
func (t *AccountType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("account type must be string")
	}
	switch str {
	case "Asset":
		*t = AccountTypeAsset
	case "Liability":
		*t = AccountTypeLiability
	case "Equity":
		*t = AccountTypeEquity
	case "Revenue":
		*t = AccountTypeRevenue
	case "Expense":
		*t = AccountTypeExpense
	default:
		return errors.New("invalid account type")
	}
	return nil
}

type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

type TransactionType string

const (
	TransactionTypeStandard     TransactionType = "Standard"
	TransactionTypeIntercompany TransactionType = "Intercompany"
	TransactionTypeElimination  TransactionType = "Elimination"
	TransactionTypeAdjustment   TransactionType = "Adjustment"
)

type ConsolidationStatus string

const (
	ConsolidationStatusPending    ConsolidationStatus = "Pending"
	ConsolidationStatusProcessing ConsolidationStatus = "Processing"
	ConsolidationStatusCompleted  ConsolidationStatus = "Completed"
	ConsolidationStatusFailed     ConsolidationStatus = "Failed"
)

type ConsolidationMethod string

const (
	ConsolidationMethodFull   ConsolidationMethod = "Full"
	ConsolidationMethodEquity ConsolidationMethod = "Equity"
	ConsolidationMethodCost   ConsolidationMethod = "Cost"
)

// convert input to enum type
func (m *ConsolidationMethod) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("consolidation method must be string")
	}
	switch str {
	case "", "Full":
		*m = ConsolidationMethodFull
	case "Equity":
		*m = ConsolidationMethodEquity
	case "Cost":
		*m = ConsolidationMethodCost
	default:
		return errors.New("invalid consolidation method")
	}
	return nil
}

// MappingSource records who decided an account mapping. Stored lower case
// for compatibility with exports and the suggestion review UI.
type MappingSource string

const (
	MappingSourceManual     MappingSource = "manual"
	MappingSourceHeuristic  MappingSource = "heuristic"
	MappingSourceAiAuto     MappingSource = "ai_auto"
	MappingSourceUserManual MappingSource = "user_manual"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "Admin"
	UserRoleOwner  UserRole = "Owner"
	UserRoleMember UserRole = "Member"
)

type MyDateString time.Time

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format("2006-01-02"))), nil
}

// Parse the string into time.Time object. Accepts bare dates and the
// datetime form spreadsheets round-trip through JSON.
func (t *MyDateString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("date must be string")
	}

	localTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		localTime, err = time.Parse("2006-01-02T15:04:05", str)
		if err != nil {
			return errors.New("error parsing date")
		}
	}
	*t = MyDateString(localTime)

	return nil
}

// Value implements the driver.Valuer interface
func (t MyDateString) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements the sql.Scanner interface
func (t *MyDateString) Scan(value interface{}) error {
	if value == nil {
		*t = MyDateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = MyDateString(v)
	default:
		return fmt.Errorf("cannot convert %T to MyDateString", value)
	}
	return nil
}

func (t MyDateString) Time() time.Time {
	return time.Time(t)
}
