//go:build tools

package tools

// Mocks under pkg/*/mocks are generated by an installed mockery v3 binary
// (see .mockery.yml), so no tool import is needed here. Run: mockery
