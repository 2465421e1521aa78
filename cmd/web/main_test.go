package main

import (
	"testing"

	"github.com/myrjola/fitplan/internal/e2etest"
	"github.com/myrjola/fitplan/internal/testhelpers"
)

const testAdminToken = "test-admin-token"

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "FITPLAN_SQLITE_URL":
		return ":memory:", true
	case "FITPLAN_ADDR":
		return "localhost:0", true
	case "FITPLAN_ADMIN_TOKEN":
		return testAdminToken, true
	default:
		return "", false
	}
}

func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	return server
}

func Test_run_invalidConfig(t *testing.T) {
	lookupEnv := func(key string) (string, bool) {
		switch key {
		case "FITPLAN_SLOW_REQUEST_THRESHOLD":
			return "soon", true
		default:
			return testLookupEnv(key)
		}
	}
	if err := run(t.Context(), testhelpers.Logger(t), lookupEnv); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}
