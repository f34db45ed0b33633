package mocks

import (
	"github.com/stretchr/testify/mock"
	"gopkg.in/telebot.v4"
)

// API is a mock type for the bot.API interface.
type API struct {
	mock.Mock
}

// NewAPI creates a new API mock bound to the test's lifecycle.
func NewAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *API {
	m := &API{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *API) Handle(endpoint interface{}, h telebot.HandlerFunc, mws ...telebot.MiddlewareFunc) {
	m.Called(endpoint, h)
}

func (m *API) Start() {
	m.Called()
}

func (m *API) Stop() {
	m.Called()
}

func (m *API) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	args := m.Called(to, what)

	var msg *telebot.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(*telebot.Message)
	}
	return msg, args.Error(1)
}
