package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	assetledger "assetledger/contexts/tokenization/asset-ledger"
	ledgerhttp "assetledger/contexts/tokenization/asset-ledger/transport/http"
)

func newTestServer() *Server {
	return New(assetledger.NewInMemoryModule(nil), nil, ":0")
}

func doJSON(t *testing.T, server *Server, method, path, account, idemKey string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("X-Account-Id", account)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func createTestAsset(t *testing.T, server *Server) uint64 {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/v1/assets", "alice", "idem-create-1", ledgerhttp.CreateAssetRequest{
		AssetName: "Test Coin",
		UnitName:  "TSC",
		Total:     1000,
		Manager:   "mgr",
		Reserve:   "rsv",
		Freeze:    "frz",
		Clawback:  "clb",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create asset: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp ledgerhttp.CreateAssetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Item.AssetID
}

func TestCreateAssetRequiresAccountHeader(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/assets", "", "idem-1", ledgerhttp.CreateAssetRequest{
		AssetName: "X", UnitName: "X", Total: 1,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateAssetRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/assets", "alice", "", ledgerhttp.CreateAssetRequest{
		AssetName: "X", UnitName: "X", Total: 1,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetAssetNotFound(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/v1/assets/999", "", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidAssetIDRejected(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/v1/assets/not-a-number", "", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransferFlowOverHTTP(t *testing.T) {
	server := newTestServer()
	assetID := createTestAsset(t, server)
	base := fmt.Sprintf("/v1/assets/%d", assetID)

	rr := doJSON(t, server, http.MethodPost, base+"/opt-in", "bob", "", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("opt-in: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, base+"/transfers", "alice", "", ledgerhttp.TransferRequest{To: "bob", Amount: 250})
	if rr.Code != http.StatusOK {
		t.Fatalf("transfer: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var transfer ledgerhttp.TransferResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &transfer); err != nil {
		t.Fatalf("decode transfer response: %v", err)
	}
	if transfer.SenderBalance != 750 || transfer.ReceiverBalance != 250 {
		t.Fatalf("expected 750/250, got %d/%d", transfer.SenderBalance, transfer.ReceiverBalance)
	}

	rr = doJSON(t, server, http.MethodGet, base+"/holdings/bob", "", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get holding: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var holding ledgerhttp.GetHoldingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &holding); err != nil {
		t.Fatalf("decode holding response: %v", err)
	}
	if holding.Holding.Balance != 250 {
		t.Fatalf("expected balance 250, got %d", holding.Holding.Balance)
	}
}

func TestTransferErrorsMapToStatusCodes(t *testing.T) {
	server := newTestServer()
	assetID := createTestAsset(t, server)
	base := fmt.Sprintf("/v1/assets/%d", assetID)

	// Receiver not opted in.
	rr := doJSON(t, server, http.MethodPost, base+"/transfers", "alice", "", ledgerhttp.TransferRequest{To: "ghost", Amount: 10})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unopted receiver, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Zero amount.
	doJSON(t, server, http.MethodPost, base+"/opt-in", "bob", "", nil)
	rr = doJSON(t, server, http.MethodPost, base+"/transfers", "alice", "", ledgerhttp.TransferRequest{To: "bob", Amount: 0})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero amount, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Frozen account.
	rr = doJSON(t, server, http.MethodPost, base+"/freeze", "frz", "", ledgerhttp.FreezeRequest{Account: "bob", Frozen: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("freeze: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, server, http.MethodPost, base+"/transfers", "alice", "", ledgerhttp.TransferRequest{To: "bob", Amount: 10})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for frozen receiver, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReconfigureAndDestroyOverHTTP(t *testing.T) {
	server := newTestServer()
	assetID := createTestAsset(t, server)
	base := fmt.Sprintf("/v1/assets/%d", assetID)

	rr := doJSON(t, server, http.MethodPost, base+"/reconfigure", "mgr", "", ledgerhttp.ReconfigureAssetRequest{
		Freeze: &ledgerhttp.RoleAddressDTO{Assigned: false},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("reconfigure: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, base+"/reconfigure", "mgr", "", ledgerhttp.ReconfigureAssetRequest{
		Freeze: &ledgerhttp.RoleAddressDTO{Assigned: true, Address: "frz2"},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for locked slot, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, base+"/destroy", "alice", "", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-manager destroy, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, base+"/destroy", "mgr", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("destroy: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var asset ledgerhttp.GetAssetResponse
	rr = doJSON(t, server, http.MethodGet, base, "", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get destroyed asset: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &asset); err != nil {
		t.Fatalf("decode asset response: %v", err)
	}
	if !asset.Item.Destroyed {
		t.Fatalf("destroyed asset should be flagged in reads")
	}
}

func TestRevokeOverHTTP(t *testing.T) {
	server := newTestServer()
	assetID := createTestAsset(t, server)
	base := fmt.Sprintf("/v1/assets/%d", assetID)

	doJSON(t, server, http.MethodPost, base+"/opt-in", "bob", "", nil)
	doJSON(t, server, http.MethodPost, base+"/transfers", "alice", "", ledgerhttp.TransferRequest{To: "bob", Amount: 100})

	rr := doJSON(t, server, http.MethodPost, base+"/revoke", "clb", "", ledgerhttp.RevokeRequest{From: "bob", To: "alice", Amount: 100})
	if rr.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp ledgerhttp.RevokeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode revoke response: %v", err)
	}
	if resp.SourceBalance != 0 || resp.ReceiverBalance != 1000 {
		t.Fatalf("expected 0/1000, got %d/%d", resp.SourceBalance, resp.ReceiverBalance)
	}
}

func TestListAccountHoldings(t *testing.T) {
	server := newTestServer()
	assetID := createTestAsset(t, server)

	rr := doJSON(t, server, http.MethodGet, "/v1/accounts/alice/holdings", "", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list holdings: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp ledgerhttp.ListHoldingsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].AssetID != assetID {
		t.Fatalf("expected one holding for asset %d, got %+v", assetID, resp.Items)
	}
}
