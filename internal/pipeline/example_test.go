package pipeline_test

import (
	"context"
)

// MockTextExtractor is a mock implementation of TextExtractor for testing.
type MockTextExtractor struct {
	ExtractPagesFunc func(ctx context.Context, data []byte, password string) ([]string, error)
	Calls            int
}

func (m *MockTextExtractor) ExtractPages(ctx context.Context, data []byte, password string) ([]string, error) {
	m.Calls++
	if m.ExtractPagesFunc != nil {
		return m.ExtractPagesFunc(ctx, data, password)
	}
	return nil, nil
}
