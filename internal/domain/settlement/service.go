package settlement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tourledger/internal/core/id"
	"tourledger/internal/core/tx"
	"tourledger/internal/domain/billing"
	"tourledger/internal/domain/bonus"
	"tourledger/internal/domain/documents"
	"tourledger/pkg/logger"
)

var tracer = otel.Tracer("tourledger/settlement")

var errUnknownEmployee = errors.New("employee not found in directory")

// Report is a computed settlement ready for rendering.
type Report struct {
	Group       documents.TourGroup    `json:"group"`
	Result      *Result                `json:"result"`
	Rows        []Row                  `json:"rows"`
	PayeeGroups []billing.InvoiceGroup `json:"payeeGroups"`
	Places      int32                  `json:"places"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// PreviewInput is a settlement run on records supplied by the caller
// instead of storage.
type PreviewInput struct {
	Group    documents.TourGroup
	Invoices []documents.ExpenseInvoice
	Receipts []documents.Receipt
	Settings []bonus.Setting

	// Names optionally maps employee refs to names. Unknown refs print as-is.
	Names map[string]string
}

// ServiceConfig configures the settlement service.
type ServiceConfig struct {
	Repo      Repository
	Directory EmployeeDirectory // Optional - refs are printed as names when nil
	TxManager tx.ReadOnlyManager
	Config    Config
	Clock     func() time.Time // Optional - defaults to time.Now
}

// Service loads group records and runs the settlement engine on them.
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	txManager tx.ReadOnlyManager
	cfg       Config
	now       func() time.Time
}

// NewService creates a new settlement service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	txManager := cfg.TxManager
	if txManager == nil {
		txManager = tx.Inline{}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      cfg.Repo,
		directory: cfg.Directory,
		txManager: txManager,
		cfg:       cfg.Config,
		now:       now,
	}, nil
}

// Config returns the engine configuration the service runs with.
func (s *Service) Config() Config {
	return s.cfg
}

type groupRecords struct {
	group    *documents.TourGroup
	invoices []documents.ExpenseInvoice
	receipts []documents.Receipt
	settings []bonus.Setting
	names    map[string]string
}

// Report computes the settlement of a stored group.
//
// All records are read in one read-only transaction so receipts, invoices and
// rules come from the same snapshot.
func (s *Service) Report(ctx context.Context, groupID id.ID) (*Report, error) {
	ctx, span := tracer.Start(ctx, "settlement.Report")
	defer span.End()
	span.SetAttributes(attribute.String("group.id", groupID.String()))

	var rec groupRecords
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		return s.load(ctx, groupID, &rec)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, fmt.Errorf("load settlement data: %w", err)
	}

	resolve := s.directoryResolver(rec.names)
	report, err := s.build(*rec.group, rec.invoices, rec.receipts, rec.settings, resolve)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settlement failed")
		logger.Warn(ctx, "settlement rejected", "group_id", groupID, "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("settlement.invoices", len(rec.invoices)),
		attribute.Int("settlement.employee_bonuses", len(report.Result.EmployeeBonuses)),
		attribute.Bool("settlement.loss", report.Result.IsLoss()),
	)
	logger.Info(ctx, "settlement computed",
		"group_id", groupID,
		"net_profit", report.Result.NetProfit.String(),
		"company_profit", report.Result.CompanyProfit.String(),
		"loss", report.Result.IsLoss(),
	)
	return report, nil
}

// Preview runs the engine on records posted by the caller. Nothing is read
// from or written to storage.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (*Report, error) {
	_, span := tracer.Start(ctx, "settlement.Preview")
	defer span.End()

	names := in.Names
	resolve := func(ref string) (string, error) {
		if name, ok := names[ref]; ok && name != "" {
			return name, nil
		}
		return ref, nil
	}

	report, err := s.build(in.Group, in.Invoices, in.Receipts, in.Settings, resolve)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		return nil, err
	}
	return report, nil
}

func (s *Service) load(ctx context.Context, groupID id.ID, rec *groupRecords) error {
	var err error
	if rec.group, err = s.repo.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if rec.invoices, err = s.repo.ListInvoices(ctx, groupID); err != nil {
		return err
	}
	if rec.receipts, err = s.repo.ListReceipts(ctx, groupID); err != nil {
		return err
	}
	if rec.settings, err = s.repo.ListBonusSettings(ctx, groupID); err != nil {
		return err
	}

	refs := personalRefs(rec.settings)
	if s.directory == nil || len(refs) == 0 {
		return nil
	}
	rec.names, err = s.directory.EmployeeNames(ctx, refs)
	return err
}

// directoryResolver resolves from names fetched up front. Without a directory
// refs print as-is; with one, an unknown ref is an error.
func (s *Service) directoryResolver(names map[string]string) NameResolver {
	if s.directory == nil {
		return nil
	}
	return func(ref string) (string, error) {
		name, ok := names[ref]
		if !ok {
			return "", errUnknownEmployee
		}
		return name, nil
	}
}

// build applies the line-type conventions and runs the engine:
// BONUS and REFUND lines leave the expense total, refunds come back as
// negative receipts, and the payee groups list every non-refund line.
func (s *Service) build(
	group documents.TourGroup,
	invoices []documents.ExpenseInvoice,
	receipts []documents.Receipt,
	settings []bonus.Setting,
	resolve NameResolver,
) (*Report, error) {
	expenses := documents.ExcludeLineTypes(invoices, documents.LineTypeBonus, documents.LineTypeRefund)

	allReceipts := make([]documents.Receipt, 0, len(receipts))
	allReceipts = append(allReceipts, receipts...)
	allReceipts = append(allReceipts, documents.RefundReceipts(invoices)...)

	result, err := Compute(expenses, allReceipts, settings, group.TravellerCount, s.cfg, resolve)
	if err != nil {
		return nil, err
	}

	payeeGroups, err := billing.Group(documents.ExcludeLineTypes(invoices, documents.LineTypeRefund), s.cfg.MaxGroupSize)
	if err != nil {
		return nil, err
	}
	if payeeGroups == nil {
		payeeGroups = []billing.InvoiceGroup{}
	}

	return &Report{
		Group:       group,
		Result:      result,
		Rows:        Project(result, bonus.Describe(bonus.Classify(settings))),
		PayeeGroups: payeeGroups,
		Places:      s.cfg.ReportPlaces,
		GeneratedAt: s.now(),
	}, nil
}

// personalRefs returns the sorted employee refs that take part in the
// distribution.
func personalRefs(settings []bonus.Setting) []string {
	seen := make(map[string]struct{})
	for _, st := range settings {
		rule, ok := bonus.Lookup(st.Category)
		if !ok || !rule.Personal || !st.IsPersonal() {
			continue
		}
		seen[st.EmployeeRef] = struct{}{}
	}
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
