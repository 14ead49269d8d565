package validation

import (
	"strings"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
)

func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = err.Error()
	}
	if req.ParentID != "" {
		if err := ValidateUUID(req.ParentID); err != nil {
			errors["parentId"] = err.Error()
		}
	}

	if strings.TrimSpace(req.Code) == "" {
		errors["code"] = "code is required"
	} else if len(req.Code) > 20 {
		errors["code"] = "code must be 20 characters or less"
	}

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if !model.ValidAccountType(req.Type) {
		errors["type"] = "type must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE"
	}

	if len(req.Currency) != 3 {
		errors["currency"] = "currency must be a 3-letter currency code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
