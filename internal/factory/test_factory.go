package factory

import (
	"time"

	"github.com/dstrelkov/seabattle/internal/dependencies/mocks"
	"github.com/dstrelkov/seabattle/internal/storage/memory"
	"github.com/dstrelkov/seabattle/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIdent  *mocks.MockIdent
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIdent := mocks.NewMockIdent()

	app := newWithDependencies(store, mockClock, mockRandom, mockIdent, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIdent:  mockIdent,
	}
}
