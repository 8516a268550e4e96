// Package domain provides the value objects exchanged between the valuation
// engine and its callers: financial statement records, derived ratios, and
// the result types produced by the EPV, valuation, and portfolio modules.
package domain

import "time"

// Period represents the reporting period of a financial statement.
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// Statement holds the identity fields shared by all statement records.
// Records are immutable snapshots: the engine only reads them and
// integrators must leave optional fields nil (not zero) when unknown.
type Statement struct {
	Symbol        string     `json:"symbol"`
	Period        Period     `json:"period"`
	FiscalYear    int        `json:"fiscal_year"`
	FiscalQuarter *int       `json:"fiscal_quarter,omitempty"`
	ReportDate    *time.Time `json:"report_date,omitempty"`
}

// IncomeStatement represents a single period's income statement.
type IncomeStatement struct {
	Statement

	Revenue           *float64 `json:"revenue,omitempty"`
	GrossProfit       *float64 `json:"gross_profit,omitempty"`
	OperatingIncome   *float64 `json:"operating_income,omitempty"`
	EBIT              *float64 `json:"ebit,omitempty"`
	EBITDA            *float64 `json:"ebitda,omitempty"`
	NetIncome         *float64 `json:"net_income,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
}

// BalanceSheet represents a single period's balance sheet.
type BalanceSheet struct {
	Statement

	TotalAssets        *float64 `json:"total_assets,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents,omitempty"`
	Inventory          *float64 `json:"inventory,omitempty"`
	Receivables        *float64 `json:"receivables,omitempty"`
	TotalLiabilities   *float64 `json:"total_liabilities,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	LongTermDebt       *float64 `json:"long_term_debt,omitempty"`
	TotalEquity        *float64 `json:"total_equity,omitempty"`
	RetainedEarnings   *float64 `json:"retained_earnings,omitempty"`
}

// CashFlowStatement represents a single period's cash flow statement.
type CashFlowStatement struct {
	Statement

	OperatingCashFlow   *float64 `json:"operating_cash_flow,omitempty"`
	InvestingCashFlow   *float64 `json:"investing_cash_flow,omitempty"`
	FinancingCashFlow   *float64 `json:"financing_cash_flow,omitempty"`
	FreeCashFlow        *float64 `json:"free_cash_flow,omitempty"`
	CapitalExpenditures *float64 `json:"capital_expenditures,omitempty"`
	DividendsPaid       *float64 `json:"dividends_paid,omitempty"`
}

// FinancialRatios is a derived ratio snapshot computed externally and
// consumed read-only by the quality and cost-of-capital calculations.
type FinancialRatios struct {
	Symbol          string    `json:"symbol"`
	CalculationDate time.Time `json:"calculation_date"`

	ROE             *float64 `json:"roe,omitempty"`
	ROA             *float64 `json:"roa,omitempty"`
	ROIC            *float64 `json:"roic,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	CurrentRatio    *float64 `json:"current_ratio,omitempty"`
	QuickRatio      *float64 `json:"quick_ratio,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets    *float64 `json:"debt_to_assets,omitempty"`
	AssetTurnover   *float64 `json:"asset_turnover,omitempty"`
}

// CompanyProfile carries sector and listing metadata for a security.
// The optimizer uses Sector to look up heuristic volatility and
// correlation assumptions; the multiples valuation uses it to pick a
// benchmark bucket.
type CompanyProfile struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Country  string `json:"country,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// MarketData is a dated price observation for a security.
type MarketData struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Volume *int64    `json:"volume,omitempty"`
}

// Position represents a current portfolio holding.
type Position struct {
	Symbol         string  `json:"symbol"`
	Shares         float64 `json:"shares"`
	CurrentPrice   float64 `json:"current_price"`
	MarketValue    float64 `json:"market_value"`
	EPVPerShare    float64 `json:"epv_per_share"`
	MarginOfSafety float64 `json:"margin_of_safety"`
}

// Float returns a pointer to v. Convenience for building statement
// records with optional fields.
func Float(v float64) *float64 { return &v }
