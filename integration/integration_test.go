package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"vending-machine/internal/api"
	"vending-machine/internal/db"
	"vending-machine/internal/middleware"
	"vending-machine/internal/service"
	"vending-machine/internal/vending"
	"vending-machine/internal/wallet"
	"vending-machine/pkg"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Test private key (Anvil default account 0)
const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// createTestServer wires the service against a local node. The vending
// machine must already be deployed at CONTRACT_ADDRESS.
func createTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Set INTEGRATION_TEST=1 to run integration tests")
	}
	contract := os.Getenv("CONTRACT_ADDRESS")
	if !common.IsHexAddress(contract) {
		t.Skip("Set CONTRACT_ADDRESS to a deployed vending machine")
	}
	rpcURL := os.Getenv("RPC_URL")
	if rpcURL == "" {
		rpcURL = "http://localhost:8545"
	}

	ctx := context.Background()
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		t.Fatalf("Failed to connect to node: %v", err)
	}
	t.Cleanup(client.Close)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		t.Fatalf("Failed to get chain ID: %v", err)
	}
	machine, err := vending.New(common.HexToAddress(contract), client)
	if err != nil {
		t.Fatalf("Failed to bind contract: %v", err)
	}
	provider, err := wallet.NewKeyProvider(testPrivateKey, chainID)
	if err != nil {
		t.Fatalf("Failed to load key: %v", err)
	}

	log := pkg.NewZapLogger(zap.NewNop())
	handlers, err := api.NewHandlers(service.NewSessions(machine, provider, db.NopJournal{}, log, middleware.SessionTTL), log)
	if err != nil {
		t.Fatalf("Failed to create handlers: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.SessionMiddleware("secret", log))
	api.RegisterHandlers(r, handlers)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postState(t *testing.T, client *http.Client, url, body string) (int, api.StateResponse) {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	var state api.StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode, state
}

func TestIntegration_PurchaseAndRestock(t *testing.T) {
	srv := createTestServer(t)
	client := newClient(t)

	code, state := postState(t, client, srv.URL+"/api/connect", "")
	if code != http.StatusOK || !state.Connected {
		t.Fatalf("connect failed: %d %+v", code, state)
	}
	if state.Inventory == nil || state.Balance == nil {
		t.Fatalf("expected inventory and balance after connect, got %+v", state)
	}
	inventory, balance := *state.Inventory, *state.Balance

	if inventory == 0 {
		code, state = postState(t, client, srv.URL+"/api/restock", `{"quantity": 10}`)
		if code != http.StatusOK {
			t.Fatalf("restock failed: %d %+v", code, state)
		}
		inventory = *state.Inventory
	}

	code, state = postState(t, client, srv.URL+"/api/purchase", `{"quantity": 1}`)
	if code != http.StatusOK {
		t.Fatalf("purchase failed: %d %+v", code, state)
	}
	if *state.Inventory != inventory-1 {
		t.Errorf("expected inventory %d, got %d", inventory-1, *state.Inventory)
	}
	if *state.Balance != balance+1 {
		t.Errorf("expected balance %d, got %d", balance+1, *state.Balance)
	}
	if state.Success != "1 Donut(s) Successfully Purchased!" {
		t.Errorf("unexpected success message %q", state.Success)
	}
}

func TestIntegration_InvalidQuantityKeepsState(t *testing.T) {
	srv := createTestServer(t)
	client := newClient(t)

	_, before := postState(t, client, srv.URL+"/api/connect", "")
	code, after := postState(t, client, srv.URL+"/api/purchase", `{"quantity": "lots"}`)

	if code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	if *after.Inventory != *before.Inventory || *after.Balance != *before.Balance {
		t.Errorf("state changed on invalid input: %+v -> %+v", before, after)
	}
	if after.Error == "" {
		t.Error("expected error message")
	}
}
