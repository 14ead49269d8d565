package validation

import (
	"strings"

	"github.com/rvermeulen/portfolio-ledger/internal/api/request"
)

func ValidateReconcile(req request.ReconcileRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.TransactionID); err != nil {
		errors["transactionId"] = err.Error()
	}
	if err := ValidateUUID(req.JournalEntryID); err != nil {
		errors["journalEntryId"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateDiscrepancy(req request.DiscrepancyRequest) error {
	if strings.TrimSpace(req.Note) == "" {
		return &Error{Fields: map[string]string{"note": "an explanatory note is required"}}
	}
	return nil
}

func ValidateResolveDiscrepancy(req request.ResolveDiscrepancyRequest) error {
	if strings.TrimSpace(req.Resolution) == "" {
		return &Error{Fields: map[string]string{"resolution": "a resolution note is required"}}
	}
	return nil
}
