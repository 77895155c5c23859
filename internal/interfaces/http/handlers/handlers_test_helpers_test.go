package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"coffee-change.backend/internal/domain/entities"
)

type syncServiceStub struct {
	result *entities.SyncResult
	err    error
	wallet string
}

func (s *syncServiceStub) Sync(_ context.Context, wallet string) (*entities.SyncResult, error) {
	s.wallet = wallet
	return s.result, s.err
}

type balanceServiceStub struct {
	pending   *entities.PendingRoundups
	deposited *entities.DepositedRoundups
	err       error
}

func (s *balanceServiceStub) GetPending(context.Context, string) (*entities.PendingRoundups, error) {
	return s.pending, s.err
}

func (s *balanceServiceStub) GetDeposited(context.Context, string) (*entities.DepositedRoundups, error) {
	return s.deposited, s.err
}

type depositServiceStub struct {
	result *entities.DepositResult
	err    error
	hash   string
}

func (s *depositServiceStub) FinalizeDeposit(_ context.Context, _ string, hash string) (*entities.DepositResult, error) {
	s.hash = hash
	return s.result, s.err
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, "/x", handler)

	req := httptest.NewRequest(method, "/x", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
