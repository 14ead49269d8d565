package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rvermeulen/portfolio-ledger/internal/apperrors"
	"github.com/rvermeulen/portfolio-ledger/internal/model"
	"github.com/rvermeulen/portfolio-ledger/internal/repository"
)

// reportConcurrency caps the parallel per-account balance queries behind a
// report.
const reportConcurrency = 8

// ReportService derives financial reports from POSTED journal lines. Nothing
// is cached; every report is recomputed from the ledger on demand.
type ReportService struct {
	accountRepo    *repository.AccountRepository
	journalRepo    *repository.JournalRepository
	journalService *JournalService
}

// NewReportService creates a new ReportService with the provided dependencies.
func NewReportService(
	accountRepo *repository.AccountRepository,
	journalRepo *repository.JournalRepository,
	journalService *JournalService,
) *ReportService {
	return &ReportService{
		accountRepo:    accountRepo,
		journalRepo:    journalRepo,
		journalService: journalService,
	}
}

// TrialBalance computes every active account's balance as of a date, placing
// each balance in the account's normal column. The two column totals must
// come out equal; a mismatch means the ledger itself is corrupt and the
// report is refused with apperrors.ErrTrialBalanceOutOfBalance.
func (s *ReportService) TrialBalance(portfolioID string, asOf time.Time) (*model.TrialBalance, error) {
	accounts, err := s.accountRepo.GetByPortfolio(portfolioID, true)
	if err != nil {
		return nil, err
	}

	balances := make([]decimal.Decimal, len(accounts))
	var g errgroup.Group
	g.SetLimit(reportConcurrency)
	for i, account := range accounts {
		g.Go(func() error {
			balance, err := s.journalService.AccountBalance(account.ID, &asOf)
			if err != nil {
				return err
			}
			balances[i] = balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.TrialBalance{
		PortfolioID:  portfolioID,
		AsOf:         asOf,
		Rows:         []model.TrialBalanceRow{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for i, account := range accounts {
		row := model.TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      account.Type,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}

		// A negative balance on the normal side flips into the opposite
		// column rather than printing a negative number.
		balance := balances[i]
		side := account.NormalBalance()
		if balance.IsNegative() {
			balance = balance.Neg()
			if side == model.BalanceDebit {
				side = model.BalanceCredit
			} else {
				side = model.BalanceDebit
			}
		}

		if side == model.BalanceDebit {
			row.Debit = balance
			report.TotalDebits = report.TotalDebits.Add(balance)
		} else {
			row.Credit = balance
			report.TotalCredits = report.TotalCredits.Add(balance)
		}

		report.Rows = append(report.Rows, row)
	}

	if !report.TotalDebits.Equal(report.TotalCredits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s",
			apperrors.ErrTrialBalanceOutOfBalance, report.TotalDebits, report.TotalCredits)
	}

	return report, nil
}

// periodActivity folds an account's POSTED lines within [start, end] onto its
// normal balance side.
func (s *ReportService) periodActivity(account model.Account, start, end *time.Time) (decimal.Decimal, error) {
	activity := decimal.Zero
	err := s.journalRepo.ForEachPostedLine(account.ID, start, end, func(line repository.PostedLine) error {
		activity = activity.Add(signedAmount(account, line.Debit, line.Credit))
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return activity, nil
}

// IncomeStatement nets revenue against expense activity strictly within
// [start, end]. Activity outside the period never leaks in; balances are not
// carried forward for these account types.
func (s *ReportService) IncomeStatement(portfolioID string, start, end time.Time) (*model.IncomeStatement, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start %s after end %s",
			apperrors.ErrInvalidDateRange, repository.FormatDate(start), repository.FormatDate(end))
	}

	accounts, err := s.accountRepo.GetByPortfolio(portfolioID, true)
	if err != nil {
		return nil, err
	}

	report := &model.IncomeStatement{
		PortfolioID:   portfolioID,
		Start:         start,
		End:           end,
		Revenue:       []model.ReportLine{},
		Expenses:      []model.ReportLine{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for _, account := range accounts {
		if account.Type != model.AccountTypeRevenue && account.Type != model.AccountTypeExpense {
			continue
		}

		activity, err := s.periodActivity(account, &start, &end)
		if err != nil {
			return nil, err
		}

		line := model.ReportLine{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Amount:    activity,
		}

		if account.Type == model.AccountTypeRevenue {
			report.Revenue = append(report.Revenue, line)
			report.TotalRevenue = report.TotalRevenue.Add(activity)
		} else {
			report.Expenses = append(report.Expenses, line)
			report.TotalExpenses = report.TotalExpenses.Add(activity)
		}
	}

	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// BalanceSheet nets asset, liability and equity balances as of a date. A
// derived "Current Earnings" equity line carries net income from inception
// through asOf, so the accounting equation holds without closing entries.
// If assets still differ from liabilities plus equity the ledger is corrupt
// and apperrors.ErrAccountingEquation is returned.
func (s *ReportService) BalanceSheet(portfolioID string, asOf time.Time) (*model.BalanceSheet, error) {
	accounts, err := s.accountRepo.GetByPortfolio(portfolioID, true)
	if err != nil {
		return nil, err
	}

	report := &model.BalanceSheet{
		PortfolioID:      portfolioID,
		AsOf:             asOf,
		Assets:           []model.ReportLine{},
		Liabilities:      []model.ReportLine{},
		Equity:           []model.ReportLine{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	currentEarnings := decimal.Zero

	for _, account := range accounts {
		balance, err := s.journalService.AccountBalance(account.ID, &asOf)
		if err != nil {
			return nil, err
		}

		line := model.ReportLine{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Amount:    balance,
		}

		switch account.Type {
		case model.AccountTypeAsset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(balance)
		case model.AccountTypeLiability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(balance)
		case model.AccountTypeEquity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(balance)
		case model.AccountTypeRevenue:
			currentEarnings = currentEarnings.Add(balance)
		case model.AccountTypeExpense:
			currentEarnings = currentEarnings.Sub(balance)
		}
	}

	report.Equity = append(report.Equity, model.ReportLine{
		Code:   "9999",
		Name:   "Current Earnings",
		Amount: currentEarnings,
	})
	report.TotalEquity = report.TotalEquity.Add(currentEarnings)

	if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
		return nil, fmt.Errorf("%w: assets %s, liabilities+equity %s",
			apperrors.ErrAccountingEquation, report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))
	}

	return report, nil
}
