package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/internal/settlement"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/handler"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

const (
	testWallet    = "0x1111111111111111111111111111111111111111"
	testGroupAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testSecret    = "0123456789abcdef0123456789abcdef" // 32 chars
)

// MockGroupService is a mock implementation of GroupServiceInterface
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) ListGroups(ctx context.Context, userAddress string) ([]group.Group, error) {
	args := m.Called(ctx, userAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]group.Group), args.Error(1)
}

func (m *MockGroupService) GetGroup(ctx context.Context, groupAddress, userAddress string) (*group.Group, error) {
	args := m.Called(ctx, groupAddress, userAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*group.Group), args.Error(1)
}

func (m *MockGroupService) Refresh(ctx context.Context, userAddress string) ([]group.Group, error) {
	args := m.Called(ctx, userAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]group.Group), args.Error(1)
}

func (m *MockGroupService) Invalidate(ctx context.Context, userAddress string) error {
	args := m.Called(ctx, userAddress)
	return args.Error(0)
}

var _ handler.GroupServiceInterface = (*MockGroupService)(nil)

// setupRouter builds the full router around the mocks so requests pass
// through the real middleware chain
func setupRouter(groupSvc handler.GroupServiceInterface, relayerSvc handler.RelayerServiceInterface) (http.Handler, string) {
	log := logger.New("test", os.Stdout)
	jwtService := middleware.NewJWTService(testSecret)

	var groupHandler *handler.GroupHandler
	if groupSvc != nil {
		groupHandler = handler.NewGroupHandler(groupSvc)
	}
	var relayerHandler *handler.RelayerHandler
	if relayerSvc != nil {
		relayerHandler = handler.NewRelayerHandler(relayerSvc)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: []string{"*"},
		GroupHandler:   groupHandler,
		RelayerHandler: relayerHandler,
		JWTMiddleware:  middleware.JWTMiddleware(jwtService),
	})

	token, err := jwtService.GenerateToken(testWallet)
	if err != nil {
		panic(err)
	}

	return router, "Bearer " + token
}

func authedRequest(method, target, auth string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", auth)
	return req
}

func testGroup() group.Group {
	return group.Group{
		ID:        testGroupAddr,
		Name:      "Trip",
		Status:    group.StatusLive,
		Creator:   testWallet,
		CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Participants: []group.Participant{
			group.NewParticipant(testWallet, "alice", decimal.Zero),
			group.NewParticipant("0x2222222222222222222222222222222222222222", "bob", decimal.Zero),
		},
		Expenses: []group.Expense{
			{
				ID:     testGroupAddr + "-0",
				Label:  "Dinner",
				Amount: decimal.NewFromInt(100),
				PaidBy: testWallet,
				Date:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
				Validations: []group.Validation{
					{ParticipantID: testWallet, Status: group.ValidationValidated},
					{ParticipantID: "0x2222222222222222222222222222222222222222", Status: group.ValidationPending},
				},
			},
		},
	}
}

func TestListGroups(t *testing.T) {
	groupSvc := new(MockGroupService)
	groupSvc.On("ListGroups", mock.Anything, mock.Anything).Return([]group.Group{testGroup()}, nil)

	router, auth := setupRouter(groupSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/groups", auth))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.GroupsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "Trip", resp.Groups[0].Name)
	assert.Equal(t, 1, resp.Groups[0].RealExpenseCount)
	assert.False(t, resp.Groups[0].PendingAction) // alice already validated
}

func TestListGroups_Unauthorized(t *testing.T) {
	router, _ := setupRouter(new(MockGroupService), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetGroup(t *testing.T) {
	g := testGroup()
	groupSvc := new(MockGroupService)
	groupSvc.On("GetGroup", mock.Anything, testGroupAddr, mock.Anything).Return(&g, nil)

	router, auth := setupRouter(groupSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/groups/"+testGroupAddr, auth))

	require.Equal(t, http.StatusOK, rec.Code)

	var item handler.GroupListItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, testGroupAddr, item.ID)
	assert.Len(t, item.Participants, 2)
}

func TestGetGroup_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid address", group.ErrInvalidAddress, http.StatusBadRequest},
		{"bad checksum", group.ErrInvalidChecksum, http.StatusBadRequest},
		{"not participant", group.ErrNotParticipant, http.StatusForbidden},
		{"not found", group.ErrGroupNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groupSvc := new(MockGroupService)
			groupSvc.On("GetGroup", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			router, auth := setupRouter(groupSvc, nil)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/groups/"+testGroupAddr, auth))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetSettlement(t *testing.T) {
	g := testGroup()
	groupSvc := new(MockGroupService)
	groupSvc.On("GetGroup", mock.Anything, testGroupAddr, mock.Anything).Return(&g, nil)

	router, auth := setupRouter(groupSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/groups/"+testGroupAddr+"/settlement", auth))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary settlement.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.True(t, summary.TotalExpenses.Equal(decimal.NewFromInt(100)))
	require.Len(t, summary.Transactions, 1)
	assert.Equal(t, "bob", summary.Transactions[0].FromName)
	assert.Equal(t, "alice", summary.Transactions[0].ToName)
	assert.True(t, summary.Transactions[0].Amount.Equal(decimal.NewFromInt(50)))
}

func TestRefreshGroup(t *testing.T) {
	groupSvc := new(MockGroupService)
	groupSvc.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
	groupSvc.On("Refresh", mock.Anything, mock.Anything).Return([]group.Group{testGroup()}, nil)

	router, auth := setupRouter(groupSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/groups/"+testGroupAddr+"/refresh", auth))

	require.Equal(t, http.StatusOK, rec.Code)
	groupSvc.AssertCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestRefreshGroup_NotInRefreshedList(t *testing.T) {
	groupSvc := new(MockGroupService)
	groupSvc.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
	groupSvc.On("Refresh", mock.Anything, mock.Anything).Return([]group.Group{}, nil)

	router, auth := setupRouter(groupSvc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/groups/"+testGroupAddr+"/refresh", auth))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshGroup_InvalidAddress(t *testing.T) {
	router, auth := setupRouter(new(MockGroupService), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/groups/not-an-address/refresh", auth))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
