package commands_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/requisition-service/application/commands"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	domainerrors "reqflow/contexts/talent-acquisition/requisition-service/domain/errors"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type seqIDs struct{ n int }

func (g *seqIDs) NewID(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("id-%04d", g.n), nil
}

// stubBudget counts ledger calls so tests can assert reserve, release and
// commit happen exactly when the workflow says they do.
type stubBudget struct {
	validateErr error
	reserveErr  error
	reserves    int
	releases    int
	commits     int
}

func (b *stubBudget) ValidateSalaryBand(context.Context, string, float64, float64) error {
	return b.validateErr
}

func (b *stubBudget) Reserve(context.Context, entities.Requisition) error {
	if b.reserveErr != nil {
		return b.reserveErr
	}
	b.reserves++
	return nil
}

func (b *stubBudget) Release(context.Context, string) error {
	b.releases++
	return nil
}

func (b *stubBudget) Commit(context.Context, string) error {
	b.commits++
	return nil
}

type workflow struct {
	store  *memory.Store
	budget *stubBudget
	clock  *stepClock
	submit commands.SubmitRequisitionUseCase
	decide commands.DecideApprovalUseCase
	status commands.ChangeStatusUseCase
	post   commands.PostRequisitionUseCase
	fill   commands.FillRequisitionUseCase
	remove commands.DeleteRequisitionUseCase
}

func draftRequisition() entities.Requisition {
	created := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	return entities.Requisition{
		RequisitionID:   "req-1",
		TenantID:        "tenant-1",
		Title:           "Senior Engineer",
		RequisitionType: "new_position",
		Status:          entities.RequisitionStatusDraft,
		Priority:        entities.PriorityHigh,
		DepartmentID:    "dept-eng",
		CostCenterID:    "cc-eng",
		JobGradeID:      "grade-senior",
		Headcount:       2,
		SalaryMin:       100000,
		SalaryMax:       130000,
		Currency:        "USD",
		RequestedBy:     "user-hm",
		Version:         1,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func twoLevelRules() []entities.ApprovalRule {
	return []entities.ApprovalRule{
		{
			RuleID: "rule-hrbp", TenantID: "tenant-1", Name: "HRBP review",
			ApproverRole: entities.RoleHRBusinessPartner, Level: 1, SLAHours: 24,
			EscalationEnabled: true, EscalateTo: "user-vp", IsActive: true,
		},
		{
			RuleID: "rule-finance", TenantID: "tenant-1", Name: "Finance review",
			ApproverRole: entities.RoleFinanceController, Level: 2, SLAHours: 48,
			IsActive: true,
		},
	}
}

func newWorkflow(t *testing.T, rules []entities.ApprovalRule) *workflow {
	t.Helper()
	store := memory.NewStore([]entities.Requisition{draftRequisition()}, rules)
	budget := &stubBudget{}
	clock := &stepClock{now: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}
	directory := memory.Directory{
		ByRole: map[entities.ApproverRole][]entities.Approver{
			entities.RoleHRBusinessPartner: {{UserID: "user-hrbp", Name: "Dana", Email: "dana@example.com"}},
			entities.RoleFinanceController: {{UserID: "user-fin", Name: "Frank", Email: "frank@example.com"}},
		},
		DepartmentHeads: map[string][]entities.Approver{
			"dept-eng": {{UserID: "user-head", Name: "Hana", Email: "hana@example.com"}},
		},
	}

	return &workflow{
		store:  store,
		budget: budget,
		clock:  clock,
		submit: commands.SubmitRequisitionUseCase{
			Requisitions: store, Rules: store, Transactions: store,
			Directory: directory, Budget: budget, Audit: store, Outbox: store,
			Clock: clock, IDGen: ids,
		},
		decide: commands.DecideApprovalUseCase{
			Requisitions: store, Transactions: store, Budget: budget,
			Audit: store, Outbox: store, Clock: clock, IDGen: ids,
		},
		status: commands.ChangeStatusUseCase{
			Requisitions: store, Transactions: store, Budget: budget,
			Audit: store, Outbox: store, Clock: clock, IDGen: ids,
		},
		post: commands.PostRequisitionUseCase{
			Requisitions: store, Audit: store, Outbox: store, Clock: clock, IDGen: ids,
		},
		fill: commands.FillRequisitionUseCase{
			Requisitions: store, Budget: budget, Audit: store, Outbox: store,
			Clock: clock, IDGen: ids,
		},
		remove: commands.DeleteRequisitionUseCase{
			Requisitions: store, Audit: store, Clock: clock, IDGen: ids,
		},
	}
}

func (w *workflow) mustSubmit(t *testing.T) commands.SubmitRequisitionResult {
	t.Helper()
	result, err := w.submit.Execute(context.Background(), commands.SubmitRequisitionCommand{
		RequisitionID: "req-1",
		ActorID:       "user-hm",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return result
}

func (w *workflow) mustDecide(t *testing.T, approverID string, decision entities.ApprovalDecision) commands.DecideApprovalResult {
	t.Helper()
	result, err := w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1",
		ApproverID:    approverID,
		Decision:      decision,
	})
	if err != nil {
		t.Fatalf("decision %s by %s failed: %v", decision, approverID, err)
	}
	return result
}

func TestSubmitBuildsSequentialChain(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	result := w.mustSubmit(t)

	if result.AutoApproved {
		t.Fatal("expected a real approval chain")
	}
	if result.TotalLevels != 2 {
		t.Fatalf("expected 2 levels, got %d", result.TotalLevels)
	}
	req := result.Requisition
	if req.Status != entities.RequisitionStatusPendingApproval || req.CurrentApprovalLevel != 1 {
		t.Fatalf("unexpected state after submit: status=%s level=%d", req.Status, req.CurrentApprovalLevel)
	}
	if w.budget.reserves != 1 {
		t.Fatalf("expected one reservation, got %d", w.budget.reserves)
	}

	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	first := txs[0]
	if first.Level != 1 || first.ApproverID != "user-hrbp" || !first.IsPending() {
		t.Fatalf("unexpected level-1 transaction: %+v", first)
	}
	wantDue := w.clock.Now().Add(24 * time.Hour)
	if first.DueAt == nil || !first.DueAt.Equal(wantDue) {
		t.Fatalf("expected level-1 due at %v, got %v", wantDue, first.DueAt)
	}
	if first.EscalateTo != "user-vp" {
		t.Fatalf("expected escalation target to carry over, got %q", first.EscalateTo)
	}
}

func TestSubmitAutoApprovesWhenNoRuleMatches(t *testing.T) {
	w := newWorkflow(t, nil)
	result := w.mustSubmit(t)

	if !result.AutoApproved || result.TotalLevels != 0 {
		t.Fatalf("expected auto approval, got %+v", result)
	}
	req := result.Requisition
	if req.Status != entities.RequisitionStatusApproved || req.ApprovedAt == nil {
		t.Fatalf("expected approved requisition, got status=%s", req.Status)
	}
	// Budget is still reserved on the auto path.
	if w.budget.reserves != 1 {
		t.Fatalf("expected one reservation, got %d", w.budget.reserves)
	}
	types := w.store.PendingOutboxTypes()
	if len(types) != 1 || types[0] != "requisition.approved" {
		t.Fatalf("expected requisition.approved event, got %v", types)
	}
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)
	_, err := w.submit.Execute(context.Background(), commands.SubmitRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm",
	})
	if !errors.Is(err, domainerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestSubmitStopsOnSalaryBandViolation(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	bandErr := errors.New("salary below grade minimum")
	w.budget.validateErr = bandErr

	_, err := w.submit.Execute(context.Background(), commands.SubmitRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm",
	})
	if !errors.Is(err, bandErr) {
		t.Fatalf("expected band error, got %v", err)
	}
	if w.budget.reserves != 0 {
		t.Fatal("band failure must not reserve budget")
	}
	req, err := w.store.GetRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("get requisition failed: %v", err)
	}
	if req.Status != entities.RequisitionStatusDraft {
		t.Fatalf("expected requisition to stay draft, got %s", req.Status)
	}
}

func TestApproveAdvancesLevelAndRestartsSLAClock(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	w.clock.Advance(6 * time.Hour)
	result := w.mustDecide(t, "user-hrbp", entities.DecisionApprove)
	if result.IsFullyApproved {
		t.Fatal("level 1 approval must not finish a 2-level chain")
	}
	if result.NextLevel != 2 {
		t.Fatalf("expected next level 2, got %d", result.NextLevel)
	}
	if len(result.PendingApprovers) != 1 || result.PendingApprovers[0] != "Frank" {
		t.Fatalf("unexpected pending approvers: %v", result.PendingApprovers)
	}

	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	second := txs[1]
	wantDue := w.clock.Now().Add(48 * time.Hour)
	if second.DueAt == nil || !second.DueAt.Equal(wantDue) {
		t.Fatalf("level-2 clock must start at activation: want %v, got %v", wantDue, second.DueAt)
	}

	final := w.mustDecide(t, "user-fin", entities.DecisionApprove)
	if !final.IsFullyApproved {
		t.Fatal("expected final approval to finish the chain")
	}
	if final.Requisition.Status != entities.RequisitionStatusApproved || final.Requisition.ApprovedAt == nil {
		t.Fatalf("unexpected final state: %+v", final.Requisition)
	}
}

func TestAllApproversAtLevelMustApprove(t *testing.T) {
	rules := append(twoLevelRules(), entities.ApprovalRule{
		RuleID: "rule-head", TenantID: "tenant-1", Name: "Department head review",
		ApproverRole: entities.RoleDepartmentHead, Level: 1, SLAHours: 24, IsActive: true,
	})
	w := newWorkflow(t, rules)
	w.mustSubmit(t)

	partial := w.mustDecide(t, "user-hrbp", entities.DecisionApprove)
	if partial.NextLevel != 1 {
		t.Fatalf("expected level to hold at 1 while a peer is pending, got %d", partial.NextLevel)
	}
	if len(partial.PendingApprovers) != 1 || partial.PendingApprovers[0] != "Hana" {
		t.Fatalf("unexpected pending approvers: %v", partial.PendingApprovers)
	}

	advanced := w.mustDecide(t, "user-head", entities.DecisionApprove)
	if advanced.NextLevel != 2 {
		t.Fatalf("expected level 2 after both approvals, got %d", advanced.NextLevel)
	}
}

// rendezvousStore holds the first two transaction listings until both have
// arrived, so two decisions start from the same pre-decision snapshot.
type rendezvousStore struct {
	*memory.Store
	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func (s *rendezvousStore) ListByRequisition(ctx context.Context, requisitionID string) ([]entities.ApprovalTransaction, error) {
	s.mu.Lock()
	s.arrived++
	wait := s.arrived <= 2
	if s.arrived == 2 {
		close(s.release)
	}
	s.mu.Unlock()
	if wait {
		<-s.release
	}
	return s.Store.ListByRequisition(ctx, requisitionID)
}

func TestConcurrentSameLevelApprovalsCompleteTheLevelOnce(t *testing.T) {
	rules := []entities.ApprovalRule{
		{
			RuleID: "rule-hrbp", TenantID: "tenant-1", Name: "HRBP review",
			ApproverRole: entities.RoleHRBusinessPartner, Level: 1, SLAHours: 24, IsActive: true,
		},
		{
			RuleID: "rule-head", TenantID: "tenant-1", Name: "Department head review",
			ApproverRole: entities.RoleDepartmentHead, Level: 1, SLAHours: 24, IsActive: true,
		},
	}
	w := newWorkflow(t, rules)
	w.mustSubmit(t)

	gate := &rendezvousStore{Store: w.store, release: make(chan struct{})}
	decide := w.decide
	decide.Transactions = gate

	type outcome struct {
		result commands.DecideApprovalResult
		err    error
	}
	done := make(chan outcome, 2)
	for _, approverID := range []string{"user-hrbp", "user-head"} {
		go func(id string) {
			result, err := decide.Execute(context.Background(), commands.DecideApprovalCommand{
				RequisitionID: "req-1",
				ApproverID:    id,
				Decision:      entities.DecisionApprove,
			})
			done <- outcome{result: result, err: err}
		}(approverID)
	}

	completions := 0
	for i := 0; i < 2; i++ {
		got := <-done
		if got.err != nil {
			t.Fatalf("concurrent approval failed: %v", got.err)
		}
		if got.result.IsFullyApproved {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one approval to complete the level, got %d", completions)
	}

	req, err := w.store.GetRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("get requisition failed: %v", err)
	}
	if req.Status != entities.RequisitionStatusApproved {
		t.Fatalf("expected approved requisition, got %s at level %d", req.Status, req.CurrentApprovalLevel)
	}
	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	for _, tx := range txs {
		if tx.IsPending() {
			t.Fatalf("expected no pending transactions to remain, found %s", tx.ApprovalID)
		}
	}
}

// flakyRequisitionStore fails the requisition write a set number of times.
type flakyRequisitionStore struct {
	*memory.Store
	failures int
}

func (s *flakyRequisitionStore) UpdateRequisition(ctx context.Context, req entities.Requisition) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("connection reset")
	}
	return s.Store.UpdateRequisition(ctx, req)
}

func TestSubmitRollsBackWhenRequisitionWriteFails(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	submit := w.submit
	submit.Requisitions = &flakyRequisitionStore{Store: w.store, failures: 1}

	_, err := submit.Execute(context.Background(), commands.SubmitRequisitionCommand{
		RequisitionID: "req-1",
		ActorID:       "user-hm",
	})
	if err == nil {
		t.Fatal("expected the failed requisition write to surface")
	}
	if w.budget.releases != 1 {
		t.Fatalf("expected the reservation to be released, got %d releases", w.budget.releases)
	}
	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	for _, tx := range txs {
		if tx.IsPending() {
			t.Fatalf("expected no live transactions after rollback, found %s", tx.ApprovalID)
		}
	}
	req, err := w.store.GetRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("get requisition failed: %v", err)
	}
	if req.Status != entities.RequisitionStatusDraft {
		t.Fatalf("expected requisition to stay a draft, got %s", req.Status)
	}

	// The draft is clean, so a retry goes straight through.
	result := w.mustSubmit(t)
	if result.TotalLevels != 2 {
		t.Fatalf("expected resubmission to build the chain, got %d levels", result.TotalLevels)
	}
	if w.budget.reserves != 2 {
		t.Fatalf("expected a fresh reservation on retry, got %d reserves", w.budget.reserves)
	}
}

type failingIDs struct{}

func (failingIDs) NewID(context.Context) (string, error) {
	return "", errors.New("id source unavailable")
}

func TestSubmitStopsWhenIDGenerationFails(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	submit := w.submit
	submit.IDGen = failingIDs{}

	_, err := submit.Execute(context.Background(), commands.SubmitRequisitionCommand{
		RequisitionID: "req-1",
		ActorID:       "user-hm",
	})
	if err == nil {
		t.Fatal("expected submit to surface the id generation failure")
	}
	if w.budget.reserves != 0 {
		t.Fatalf("expected no reservation, got %d", w.budget.reserves)
	}
	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
}

func TestDelegateStopsWhenIDGenerationFails(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)
	decide := w.decide
	decide.IDGen = failingIDs{}

	_, err := decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1",
		ApproverID:    "user-hrbp",
		Decision:      entities.DecisionDelegate,
		DelegateTo:    entities.Approver{UserID: "user-alt", Name: "Alex"},
	})
	if err == nil {
		t.Fatal("expected delegation to surface the id generation failure")
	}
	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(txs) != 2 || !txs[0].IsPending() || txs[0].ApproverID != "user-hrbp" {
		t.Fatalf("expected the original slot to stay pending, got %+v", txs)
	}
}

func TestRejectReleasesBudgetAndSkipsRemaining(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	result, err := w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1",
		ApproverID:    "user-hrbp",
		Decision:      entities.DecisionReject,
		Comments:      "headcount freeze",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	req := result.Requisition
	if req.Status != entities.RequisitionStatusRejected || req.RejectedAt == nil {
		t.Fatalf("unexpected state after reject: %+v", req)
	}
	if req.RejectionReason != "headcount freeze" {
		t.Fatalf("expected rejection reason, got %q", req.RejectionReason)
	}
	if w.budget.releases != 1 {
		t.Fatalf("expected one release, got %d", w.budget.releases)
	}

	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if txs[1].Status != entities.ApprovalStatusSkipped {
		t.Fatalf("expected downstream transaction skipped, got %s", txs[1].Status)
	}
}

func TestSendBackReturnsToDraftForResubmission(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	result := w.mustDecide(t, "user-hrbp", entities.DecisionSendBack)
	req := result.Requisition
	if req.Status != entities.RequisitionStatusDraft {
		t.Fatalf("expected draft after send back, got %s", req.Status)
	}
	if req.CurrentApprovalLevel != 0 || req.TotalApprovalLevels != 0 || req.SubmittedAt != nil {
		t.Fatalf("chain counters must reset on send back: %+v", req)
	}
	if w.budget.releases != 1 {
		t.Fatalf("expected one release, got %d", w.budget.releases)
	}

	resubmitted := w.mustSubmit(t)
	if resubmitted.Requisition.Status != entities.RequisitionStatusPendingApproval {
		t.Fatalf("expected resubmission to work, got %s", resubmitted.Requisition.Status)
	}
	if w.budget.reserves != 2 {
		t.Fatalf("expected a fresh reservation on resubmit, got %d", w.budget.reserves)
	}
}

func TestDelegateHandsOffWithFreshSLAWindow(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	w.clock.Advance(20 * time.Hour)
	result, err := w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1",
		ApproverID:    "user-hrbp",
		Decision:      entities.DecisionDelegate,
		DelegateTo:    entities.Approver{UserID: "user-deputy", Name: "Devi", Email: "devi@example.com"},
	})
	if err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if result.Transaction.Status != entities.ApprovalStatusDelegated {
		t.Fatalf("expected original transaction delegated, got %s", result.Transaction.Status)
	}

	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	var handed *entities.ApprovalTransaction
	for i := range txs {
		if txs[i].ApproverID == "user-deputy" {
			handed = &txs[i]
		}
	}
	if handed == nil {
		t.Fatal("expected a pending transaction for the delegate")
	}
	if handed.Level != 1 || !handed.IsPending() || handed.DelegatedFromUserID != "user-hrbp" {
		t.Fatalf("unexpected delegate transaction: %+v", handed)
	}
	wantDue := w.clock.Now().Add(24 * time.Hour)
	if handed.DueAt == nil || !handed.DueAt.Equal(wantDue) {
		t.Fatalf("delegate must get a full SLA window: want %v, got %v", wantDue, handed.DueAt)
	}

	// The original approver is out of the chain after delegating.
	_, err = w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1", ApproverID: "user-hrbp", Decision: entities.DecisionApprove,
	})
	if !errors.Is(err, domainerrors.ErrNotAuthorizedApprover) {
		t.Fatalf("expected original approver locked out, got %v", err)
	}

	advanced := w.mustDecide(t, "user-deputy", entities.DecisionApprove)
	if advanced.NextLevel != 2 {
		t.Fatalf("expected delegate approval to advance the chain, got level %d", advanced.NextLevel)
	}
}

func TestDelegateRequiresTarget(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)
	_, err := w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
		RequisitionID: "req-1", ApproverID: "user-hrbp", Decision: entities.DecisionDelegate,
	})
	if !errors.Is(err, domainerrors.ErrDelegateRequired) {
		t.Fatalf("expected delegate target required, got %v", err)
	}
}

func TestOutsiderCannotDecide(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	// user-fin sits at level 2 and the chain is at level 1.
	for _, approver := range []string{"user-intruder", "user-fin"} {
		_, err := w.decide.Execute(context.Background(), commands.DecideApprovalCommand{
			RequisitionID: "req-1", ApproverID: approver, Decision: entities.DecisionApprove,
		})
		if !errors.Is(err, domainerrors.ErrNotAuthorizedApprover) {
			t.Fatalf("expected %s to be unauthorized, got %v", approver, err)
		}
	}
}

func TestCancelReleasesBudgetAndSkipsApprovals(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	req, err := w.status.Cancel(context.Background(), commands.CancelRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm", Reason: "role withdrawn",
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if req.Status != entities.RequisitionStatusCancelled || req.ClosedAt == nil {
		t.Fatalf("unexpected state after cancel: %+v", req)
	}
	if w.budget.releases != 1 {
		t.Fatalf("expected one release, got %d", w.budget.releases)
	}
	txs, err := w.store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	for _, tx := range txs {
		if tx.IsPending() {
			t.Fatalf("cancel left transaction %s pending", tx.ApprovalID)
		}
	}
}

func TestHoldAndResumeRestorePriorStatus(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)

	held, err := w.status.Hold(context.Background(), commands.HoldRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm", Reason: "budget review",
	})
	if err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if held.Status != entities.RequisitionStatusOnHold || held.HoldReason != "budget review" {
		t.Fatalf("unexpected state after hold: %+v", held)
	}
	if held.PreviousStatus != entities.RequisitionStatusPendingApproval {
		t.Fatalf("expected prior status recorded, got %s", held.PreviousStatus)
	}

	resumed, err := w.status.Resume(context.Background(), commands.ResumeRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm",
	})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.Status != entities.RequisitionStatusPendingApproval || resumed.HoldReason != "" {
		t.Fatalf("unexpected state after resume: %+v", resumed)
	}
}

func TestPostAndFillLifecycle(t *testing.T) {
	w := newWorkflow(t, nil)
	w.mustSubmit(t)

	posted, err := w.post.Execute(context.Background(), commands.PostRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-rec", Channels: []string{"linkedin", "careers_site"},
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if posted.Status != entities.RequisitionStatusPosted || len(posted.PostedChannels) != 2 {
		t.Fatalf("unexpected state after post: %+v", posted)
	}

	partial, err := w.fill.Execute(context.Background(), commands.FillRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-rec", HiresMade: 1,
	})
	if err != nil {
		t.Fatalf("first fill failed: %v", err)
	}
	if partial.Status != entities.RequisitionStatusActiveHiring || partial.HeadcountFilled != 1 {
		t.Fatalf("unexpected state after partial fill: %+v", partial)
	}
	if w.budget.commits != 0 {
		t.Fatal("budget must not commit on a partial fill")
	}

	full, err := w.fill.Execute(context.Background(), commands.FillRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-rec", HiresMade: 1,
	})
	if err != nil {
		t.Fatalf("final fill failed: %v", err)
	}
	if full.Status != entities.RequisitionStatusFilled || full.ClosedAt == nil {
		t.Fatalf("unexpected state after final fill: %+v", full)
	}
	if w.budget.commits != 1 {
		t.Fatalf("expected one commit, got %d", w.budget.commits)
	}
}

func TestPostRequiresChannels(t *testing.T) {
	w := newWorkflow(t, nil)
	w.mustSubmit(t)
	_, err := w.post.Execute(context.Background(), commands.PostRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-rec", Channels: []string{"  "},
	})
	if !errors.Is(err, domainerrors.ErrInvalidRequisitionInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeleteOnlyAllowsDrafts(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	if err := w.remove.Execute(context.Background(), commands.DeleteRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm",
	}); err != nil {
		t.Fatalf("delete of draft failed: %v", err)
	}
	if _, err := w.store.GetRequisition(context.Background(), "req-1"); !errors.Is(err, domainerrors.ErrRequisitionNotFound) {
		t.Fatalf("expected requisition gone, got %v", err)
	}
}

func TestDeleteRejectsSubmitted(t *testing.T) {
	w := newWorkflow(t, twoLevelRules())
	w.mustSubmit(t)
	err := w.remove.Execute(context.Background(), commands.DeleteRequisitionCommand{
		RequisitionID: "req-1", ActorID: "user-hm",
	})
	if !errors.Is(err, domainerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCriticalPriorityTruncatesChain(t *testing.T) {
	rules := append(twoLevelRules(), entities.ApprovalRule{
		RuleID: "rule-exec", TenantID: "tenant-1", Name: "Executive review",
		ApproverRole: entities.RoleExecutive, Level: 3, SLAHours: 72, IsActive: true,
	})
	w := newWorkflow(t, rules)

	req := draftRequisition()
	req.Priority = entities.PriorityCritical
	req.Version = 1
	if err := w.store.UpdateRequisition(context.Background(), req); err != nil {
		t.Fatalf("seed update failed: %v", err)
	}

	result := w.mustSubmit(t)
	if result.TotalLevels != 2 {
		t.Fatalf("expected expedited chain of 2 levels, got %d", result.TotalLevels)
	}
}
