package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/services/inventory/domain/models"
)

var auditNow = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

type stubLister struct {
	items  []*models.InventoryItem
	err    error
	within time.Duration
}

func (s *stubLister) ExpiringItems(_ context.Context, _ time.Time, within time.Duration) ([]*models.InventoryItem, error) {
	s.within = within
	return s.items, s.err
}

func expiring(id int64, code string, ppe bool, days int) *models.InventoryItem {
	exp := auditNow.AddDate(0, 0, days)
	return &models.InventoryItem{ID: id, Code: models.ItemCode(code), Name: code, Quantity: 4, IsPPE: ppe, ExpiryDate: &exp}
}

func newActivities(l ExpiryLister) *Activities {
	a := NewActivities(l, logger.NewNop())
	a.now = func() time.Time { return auditNow }
	return a
}

type ExpiryAuditSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func TestExpiryAuditSuite(t *testing.T) {
	suite.Run(t, new(ExpiryAuditSuite))
}

func (s *ExpiryAuditSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
}

func (s *ExpiryAuditSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *ExpiryAuditSuite) TestWorkflow_ReturnsExpiringPPE() {
	lister := &stubLister{items: []*models.InventoryItem{
		expiring(1, "ERA-HELMET-01", true, 10),
		expiring(2, "FOAM-CONCENTRATE", false, 5),
		expiring(3, "GLOVES-L", true, 29),
	}}
	s.env.RegisterActivity(newActivities(lister))

	s.env.ExecuteWorkflow(PPEExpiryAuditWorkflow, ExpiryAuditInput{WithinDays: 30})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var res ExpiryAuditResult
	s.NoError(s.env.GetWorkflowResult(&res))
	s.Require().Len(res.Items, 2)
	s.Equal("ERA-HELMET-01", res.Items[0].Code)
	s.Equal(10, res.Items[0].DaysLeft)
	s.Equal("GLOVES-L", res.Items[1].Code)
	s.Equal(30*24*time.Hour, lister.within)
}

func (s *ExpiryAuditSuite) TestWorkflow_RetriesActivityFailure() {
	s.env.RegisterActivity(newActivities(&stubLister{}))
	var a *Activities
	calls := 0
	s.env.OnActivity(a.ListExpiringPPE, mock.Anything, ExpiryAuditInput{WithinDays: 30}).
		Return(func(context.Context, ExpiryAuditInput) (*ExpiryAuditResult, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("storage failure")
			}
			return &ExpiryAuditResult{CheckedAt: auditNow, Items: []ExpiringItem{{ItemID: 1, Code: "ERA-HELMET-01"}}}, nil
		})

	s.env.ExecuteWorkflow(PPEExpiryAuditWorkflow, ExpiryAuditInput{WithinDays: 30})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	s.Equal(3, calls)
}

func (s *ExpiryAuditSuite) TestWorkflow_InvalidWindowFailsWithoutRetry() {
	lister := &stubLister{}
	s.env.RegisterActivity(newActivities(lister))

	s.env.ExecuteWorkflow(PPEExpiryAuditWorkflow, ExpiryAuditInput{WithinDays: 0})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Zero(lister.within)
}

func TestListExpiringPPE_Activity(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newActivities(&stubLister{items: []*models.InventoryItem{expiring(5, "SCBA-MASK", true, 3)}})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.ListExpiringPPE, ExpiryAuditInput{WithinDays: 7})
	require.NoError(t, err)

	var res ExpiryAuditResult
	require.NoError(t, val.Get(&res))
	require.Len(t, res.Items, 1)
	require.Equal(t, int64(5), res.Items[0].ItemID)
	require.True(t, res.CheckedAt.Equal(auditNow))
}

func TestListExpiringPPE_PropagatesListerError(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newActivities(&stubLister{err: errors.New("db down")})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.ListExpiringPPE, ExpiryAuditInput{WithinDays: 7})
	require.Error(t, err)
}
