package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

func ValidateCreateJournalEntry(req request.CreateJournalEntryRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = err.Error()
	}

	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}

	if !model.ValidEntryType(req.Type) {
		errors["type"] = "unknown journal entry type"
	}

	if strings.TrimSpace(req.Description) == "" {
		errors["description"] = "description is required"
	}

	if len(req.Lines) < 2 {
		errors["lines"] = "at least two lines are required"
	}
	for _, line := range req.Lines {
		if err := ValidateUUID(line.AccountID); err != nil {
			errors["lines"] = "every line needs a valid accountId"
			break
		}
		if err := validateAmount(line.Debit); err != nil {
			errors["lines"] = "debit amounts must be decimal strings"
			break
		}
		if err := validateAmount(line.Credit); err != nil {
			errors["lines"] = "credit amounts must be decimal strings"
			break
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// validateAmount accepts an empty string (treated as zero) or a parseable
// decimal.
func validateAmount(value string) error {
	if value == "" {
		return nil
	}
	_, err := decimal.NewFromString(value)
	return err
}
