package slack

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slack.AuthTestResponse), args.Error(1)
}

func (m *MockAPI) GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]slack.Channel), args.String(1), args.Error(2)
}

func (m *MockAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.String(1), args.Error(2)
}
