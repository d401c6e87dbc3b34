// Package mocks provides gomock-generated doubles for ports that tests drive with expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	provider := mocks.NewMockChatProvider(ctrl)
//	provider.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("hi", nil)
package mocks

// Generate mock for ChatProvider interface from internal/ports package.
// This creates MockChatProvider with methods: Name, Complete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=chat_provider_mock.go github.com/target/aihub-dashboard/internal/ports ChatProvider
