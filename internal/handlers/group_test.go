package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/chat"
	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type handlerFixture struct {
	groups   *mocks.GroupRepositoryMock
	users    *mocks.UserRepositoryMock
	friends  *mocks.FriendRepositoryMock
	messages *mocks.MessageRepositoryMock
	receipts *mocks.ReceiptRepositoryMock
	gateway  *mocks.GatewayMock
	router   *gin.Engine
}

func newHandlerFixture(asUser string) handlerFixture {
	gin.SetMode(gin.TestMode)

	f := handlerFixture{
		groups:   new(mocks.GroupRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
		friends:  new(mocks.FriendRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		receipts: new(mocks.ReceiptRepositoryMock),
		gateway:  mocks.NewGatewayMock(),
	}

	messageSvc := chat.NewMessageService(f.groups, f.messages, f.receipts, f.gateway)
	groupSvc := chat.NewGroupService(f.groups, f.users, f.friends, messageSvc, f.gateway)
	groupHandler := NewGroupHandler(groupSvc, nil)
	messageHandler := NewMessageHandler(messageSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UsernameKey, asUser)
		c.Next()
	})
	r.POST("/groups", groupHandler.Create)
	r.GET("/groups", groupHandler.List)
	r.GET("/groups/:group_id", groupHandler.Detail)
	r.POST("/groups/:group_id/kick", groupHandler.Kick)
	r.POST("/groups/:group_id/mute", groupHandler.Mute)
	r.POST("/groups/:group_id/reset-id", groupHandler.ResetID)
	r.GET("/groups/:group_id/messages", messageHandler.History)
	r.POST("/groups/:group_id/messages", messageHandler.Post)
	f.router = r
	return f
}

func (f handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("{}")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateGroupReturnsCreated(t *testing.T) {
	f := newHandlerFixture("alice")
	f.users.On("GetUser", mock.Anything, "bob").Return(models.User{Username: "bob"}, nil).Once()
	f.groups.On("CreateGroup", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	rec := f.do(http.MethodPost, "/groups", `{"name":"team","members":["bob"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var group models.Group
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &group))
	require.Equal(t, "alice", group.Owner)
	require.NotEmpty(t, group.ID)
}

func TestCreateGroupUnknownMemberIs404(t *testing.T) {
	f := newHandlerFixture("alice")
	f.users.On("GetUser", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	rec := f.do(http.MethodPost, "/groups", `{"name":"team","members":["ghost"]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKickByMemberIsForbidden(t *testing.T) {
	f := newHandlerFixture("mia")
	f.groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1", Owner: "zoe"}, nil).Once()
	f.groups.On("GetMember", mock.Anything, "g1", "mia").Return(models.Member{Username: "mia"}, nil).Once()
	f.groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{Username: "bob"}, nil).Once()

	rec := f.do(http.MethodPost, "/groups/g1/kick", `{"username":"bob"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"permission_denied"}`, rec.Body.String())
}

func TestMuteAdminByAdminIsForbidden(t *testing.T) {
	f := newHandlerFixture("xavier")
	f.groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1", Owner: "zoe"}, nil).Once()
	f.groups.On("GetMember", mock.Anything, "g1", "xavier").Return(models.Member{Username: "xavier", IsAdmin: true}, nil).Once()
	f.groups.On("GetMember", mock.Anything, "g1", "yara").Return(models.Member{Username: "yara", IsAdmin: true}, nil).Once()

	rec := f.do(http.MethodPost, "/groups/g1/mute", `{"username":"yara","durationSeconds":60}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResetIDReturnsNewIdentifier(t *testing.T) {
	f := newHandlerFixture("zoe")
	f.groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1", Owner: "zoe"}, nil).Once()
	f.groups.On("ResetGroupID", mock.Anything, "g1", mock.Anything).Return(nil).Once()
	f.groups.On("ListMembers", mock.Anything, mock.Anything).Return([]models.Member{}, nil).Once()

	rec := f.do(http.MethodPost, "/groups/g1/reset-id", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["groupId"])
	require.NotEqual(t, "g1", resp["groupId"])
}

func TestResetIDByNonOwnerIsForbidden(t *testing.T) {
	f := newHandlerFixture("xavier")
	f.groups.On("GetGroup", mock.Anything, "g1").Return(models.Group{ID: "g1", Owner: "zoe"}, nil).Once()

	rec := f.do(http.MethodPost, "/groups/g1/reset-id", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHistoryForUnknownGroupIs404(t *testing.T) {
	f := newHandlerFixture("alice")
	f.groups.On("GetGroup", mock.Anything, "gone").Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	rec := f.do(http.MethodGet, "/groups/gone/messages", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessageWhileMutedIsForbidden(t *testing.T) {
	f := newHandlerFixture("bob")
	f.groups.On("GetMember", mock.Anything, "g1", "bob").Return(models.Member{Username: "bob"}, nil).Once()
	f.groups.On("GetMute", mock.Anything, "g1", "bob").Return(models.Mute{GroupID: "g1", Username: "bob", MutedUntil: models.MutePermanent}, nil).Once()

	rec := f.do(http.MethodPost, "/groups/g1/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"muted"}`, rec.Body.String())
}
