package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/handler/http/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPayrollService records the filter ListRuns was called with. The
// embedded interface panics for everything else, which is fine here.
type stubPayrollService struct {
	payroll.PayrollService
	gotFilter payroll.PayrollRunFilter
	total     int64
}

func (s *stubPayrollService) ListRuns(ctx context.Context, filter payroll.PayrollRunFilter) ([]payroll.PayrollRunResponse, int64, error) {
	s.gotFilter = filter
	return []payroll.PayrollRunResponse{}, s.total, nil
}

func listRuns(t *testing.T, svc *stubPayrollService, target string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	handler := NewPayrollHandler(svc)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ListRuns(rec, req)

	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec, body
}

func TestPayrollHandler_ListRunsPagination(t *testing.T) {
	t.Run("limit zero falls back to the default", func(t *testing.T) {
		svc := &stubPayrollService{total: 45}
		rec, body := listRuns(t, svc, "/api/v1/payroll/runs?limit=0")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, body.Meta)
		assert.Equal(t, 20, body.Meta.Limit)
		assert.Equal(t, 3, body.Meta.TotalPages)
		assert.Equal(t, 20, svc.gotFilter.Limit)
	})

	t.Run("out of range limit and page are clamped", func(t *testing.T) {
		svc := &stubPayrollService{total: 45}
		rec, body := listRuns(t, svc, "/api/v1/payroll/runs?limit=500&page=0")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, body.Meta)
		assert.Equal(t, 20, body.Meta.Limit)
		assert.Equal(t, 1, body.Meta.Page)
		assert.Equal(t, 20, svc.gotFilter.Limit)
		assert.Equal(t, 1, svc.gotFilter.Page)
	})

	t.Run("valid pagination is passed through", func(t *testing.T) {
		svc := &stubPayrollService{total: 45}
		rec, body := listRuns(t, svc, "/api/v1/payroll/runs?limit=10&page=2")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, body.Meta)
		assert.Equal(t, 10, body.Meta.Limit)
		assert.Equal(t, 2, body.Meta.Page)
		assert.Equal(t, 5, body.Meta.TotalPages)
		assert.Equal(t, 10, svc.gotFilter.Limit)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		svc := &stubPayrollService{}
		rec, _ := listRuns(t, svc, "/api/v1/payroll/runs?status=pending")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
