package factory

import (
	"bogus/internal/health"
	"bogus/pkg/bogus"
)

// CreateHealthChecker creates a checker that watches the stub listener and
// the outcome of the latest config reload.
func CreateHealthChecker(stub *bogus.Server, lastReloadErr func() error) *health.Checker {
	checker := health.NewChecker()
	checker.RegisterCheck("listener", health.ListenerCheck(stub.URL))
	if lastReloadErr != nil {
		checker.RegisterCheck("reload", health.ReloadCheck(lastReloadErr))
	}
	return checker
}

// CreateHealthHandler creates the health check HTTP handler reporting on stub
func CreateHealthHandler(checker *health.Checker, stub *bogus.Server, version, serviceID string) *health.Handler {
	return health.NewHandler(checker, StubStatus(stub), version, serviceID)
}

// StubStatus returns a snapshot func of stub for the health endpoints
func StubStatus(stub *bogus.Server) func() health.StubStatus {
	return func() health.StubStatus {
		return health.StubStatus{
			URL:         stub.URL(),
			Promiscuous: stub.Promiscuous(),
			Routes:      stub.Registry().Len(),
			Calls:       stub.CallLog().Len(),
		}
	}
}
