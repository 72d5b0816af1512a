package settlement

import (
	"sort"

	"tourledger/internal/core/apperror"
	"tourledger/internal/core/types"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
)

// NameResolver maps an employee reference to a display name.
type NameResolver func(employeeRef string) (string, error)

// Input is everything the waterfall needs, already aggregated.
type Input struct {
	ReceiptTotal                   types.Money
	ExpenseTotal                   types.Money
	AdministrativeCost             types.Money
	AdministrativeCostPerTraveller types.Money
	TravellerCount                 int
	Settings                       []bonus.Setting
}

// EmployeeBonus is one employee's share for one bonus category.
type EmployeeBonus struct {
	EmployeeRef string         `json:"employeeRef"`
	Name        string         `json:"name"`
	Category    bonus.Category `json:"category"`
	Amount      types.Money    `json:"amount"`
}

// Result carries every stage of the waterfall.
//
// When NetProfit >= 0, TeamBonus + Σ EmployeeBonuses + CompanyProfit == NetProfit.
// When NetProfit < 0, nothing is distributed and CompanyProfit == NetProfit.
type Result struct {
	ReceiptTotal                   types.Money     `json:"receiptTotal"`
	ExpenseTotal                   types.Money     `json:"expenseTotal"`
	AdministrativeCost             types.Money     `json:"administrativeCost"`
	AdministrativeCostPerTraveller types.Money     `json:"administrativeCostPerTraveller"`
	TravellerCount                 int             `json:"travellerCount"`
	ProfitBeforeTax                types.Money     `json:"profitBeforeTax"`
	TaxRate                        types.Money     `json:"taxRate"`
	TaxAmount                      types.Money     `json:"taxAmount"`
	NetProfit                      types.Money     `json:"netProfit"`
	TeamBonus                      types.Money     `json:"teamBonus"`
	EmployeeBonuses                []EmployeeBonus `json:"employeeBonuses"`
	CompanyProfit                  types.Money     `json:"companyProfit"`
}

// EmployeeBonusTotal sums all personal bonuses.
func (r *Result) EmployeeBonusTotal() types.Money {
	total := types.Zero()
	for _, b := range r.EmployeeBonuses {
		total = total.Add(b.Amount)
	}
	return total
}

// IsLoss reports whether the group closed with a negative net profit.
func (r *Result) IsLoss() bool {
	return r.NetProfit.IsNegative()
}

// Settle runs the waterfall in its fixed order:
// profit before tax, tax, net profit, then either the loss terminal state or
// team bonus, employee bonuses and company profit.
//
// Tax is only levied on a positive base; a loss is never taxed negatively.
func Settle(in Input, resolve NameResolver) (*Result, error) {
	if in.TravellerCount < 0 {
		return nil, apperror.NewValidation("traveller count must not be negative").
			WithDetail("travellerCount", in.TravellerCount)
	}
	if err := bonus.ValidateAll(in.Settings); err != nil {
		return nil, err
	}

	rules := bonus.Classify(in.Settings)

	r := &Result{
		ReceiptTotal:                   in.ReceiptTotal,
		ExpenseTotal:                   in.ExpenseTotal,
		AdministrativeCost:             in.AdministrativeCost,
		AdministrativeCostPerTraveller: in.AdministrativeCostPerTraveller,
		TravellerCount:                 in.TravellerCount,
		TaxAmount:                      types.Zero(),
		TeamBonus:                      types.Zero(),
		EmployeeBonuses:                []EmployeeBonus{},
	}

	r.ProfitBeforeTax = in.ReceiptTotal.Sub(in.ExpenseTotal).Sub(in.AdministrativeCost)

	r.TaxRate = bonus.Sum(rules.General[bonus.CategoryProfitTax]).Percent
	if r.ProfitBeforeTax.IsPositive() {
		r.TaxAmount = types.Percent(r.ProfitBeforeTax, r.TaxRate)
	}

	r.NetProfit = r.ProfitBeforeTax.Sub(r.TaxAmount)

	if r.NetProfit.IsNegative() {
		r.CompanyProfit = r.NetProfit
		return r, nil
	}

	r.TeamBonus = bonus.Sum(rules.General[bonus.CategoryTeamBonus]).Apply(r.NetProfit)

	employeeBonuses, err := distribute(rules, r.NetProfit, resolve)
	if err != nil {
		return nil, err
	}
	r.EmployeeBonuses = employeeBonuses

	r.CompanyProfit = r.NetProfit.Sub(r.TeamBonus).Sub(r.EmployeeBonusTotal())
	return r, nil
}

// distribute computes personal bonuses ordered by category, then employee.
func distribute(rules bonus.Classification, netProfit types.Money, resolve NameResolver) ([]EmployeeBonus, error) {
	names := make(map[string]string)
	out := []EmployeeBonus{}

	for _, category := range bonus.Categories {
		rule, _ := bonus.Lookup(category)
		if !rule.Personal {
			continue
		}
		byEmployee := rules.Personal[category]
		refs := make([]string, 0, len(byEmployee))
		for ref := range byEmployee {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		for _, ref := range refs {
			name, ok := names[ref]
			if !ok {
				var err error
				name, err = resolveName(resolve, ref)
				if err != nil {
					return nil, err
				}
				names[ref] = name
			}
			out = append(out, EmployeeBonus{
				EmployeeRef: ref,
				Name:        name,
				Category:    category,
				Amount:      bonus.Sum(byEmployee[ref]).Apply(netProfit),
			})
		}
	}
	return out, nil
}

func resolveName(resolve NameResolver, ref string) (string, error) {
	if resolve == nil {
		return ref, nil
	}
	name, err := resolve(ref)
	if err != nil {
		return "", apperror.NewNameResolution(ref, err)
	}
	return name, nil
}

// Compute aggregates invoices and receipts and runs the waterfall.
// Invoices and receipts are taken as given: filtering BONUS items or adding
// refund receipts is the caller's job.
func Compute(
	invoices []documents.ExpenseInvoice,
	receipts []documents.Receipt,
	settings []bonus.Setting,
	travellerCount int,
	cfg Config,
	resolve NameResolver,
) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if travellerCount < 0 {
		return nil, apperror.NewValidation("traveller count must not be negative").
			WithDetail("travellerCount", travellerCount)
	}
	if err := bonus.ValidateAll(settings); err != nil {
		return nil, err
	}

	perTraveller, err := AdministrativeCostPerTraveller(settings, cfg.AdministrativeCostFallback)
	if err != nil {
		return nil, err
	}

	return Settle(Input{
		ReceiptTotal:                   SumReceipts(receipts),
		ExpenseTotal:                   SumExpenses(invoices),
		AdministrativeCost:             AdministrativeCost(travellerCount, perTraveller),
		AdministrativeCostPerTraveller: perTraveller,
		TravellerCount:                 travellerCount,
		Settings:                       settings,
	}, resolve)
}
