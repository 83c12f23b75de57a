package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"assetledger/contexts/tokenization/asset-ledger/adapters/memory"
	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	domainerrors "assetledger/contexts/tokenization/asset-ledger/domain/errors"
	"assetledger/contexts/tokenization/asset-ledger/ports"
)

func newTestService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{
		Registry:    store,
		Holdings:    store,
		Idempotency: store,
		Clock:       store,
	}, store
}

func mustCreate(t *testing.T, svc Service, key, creator string, input ports.CreateAssetInput) entities.AssetRecord {
	t.Helper()
	record, replayed, err := svc.CreateAsset(context.Background(), key, creator, input)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if replayed {
		t.Fatalf("fresh create should not replay")
	}
	return record
}

func baseInput() ports.CreateAssetInput {
	return ports.CreateAssetInput{
		AssetName: "Example Coin",
		UnitName:  "EXC",
		Total:     1000,
		Decimals:  2,
		Manager:   "mgr",
		Reserve:   "rsv",
		Freeze:    "frz",
		Clawback:  "clb",
	}
}

func TestCreateAssetSeedsCreatorHolding(t *testing.T) {
	svc, _ := newTestService()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	if record.AssetID != 1 {
		t.Fatalf("expected first asset id 1, got %d", record.AssetID)
	}
	if record.Creator != "alice" {
		t.Fatalf("expected creator alice, got %s", record.Creator)
	}

	holding, err := svc.GetHolding(context.Background(), record.AssetID, "alice")
	if err != nil {
		t.Fatalf("creator holding should exist: %v", err)
	}
	if holding.Balance != 1000 {
		t.Fatalf("creator should hold full supply, got %d", holding.Balance)
	}
	if holding.Frozen {
		t.Fatalf("creator holding should follow default_frozen=false")
	}
}

func TestCreateAssetValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		key   string
		input ports.CreateAssetInput
		want  error
	}{
		{"missing idempotency key", "", baseInput(), domainerrors.ErrIdempotencyKeyMissing},
		{"zero total", "k1", func() ports.CreateAssetInput { in := baseInput(); in.Total = 0; return in }(), domainerrors.ErrInvalidParameters},
		{"decimals too large", "k2", func() ports.CreateAssetInput { in := baseInput(); in.Decimals = 20; return in }(), domainerrors.ErrInvalidParameters},
		{"unit name too long", "k3", func() ports.CreateAssetInput { in := baseInput(); in.UnitName = "TOOLONGUNIT"; return in }(), domainerrors.ErrInvalidParameters},
		{"asset name too long", "k4", func() ports.CreateAssetInput { in := baseInput(); in.AssetName = strings.Repeat("a", 33); return in }(), domainerrors.ErrInvalidParameters},
		{"url too long", "k5", func() ports.CreateAssetInput { in := baseInput(); in.URL = "https://" + strings.Repeat("x", 96); return in }(), domainerrors.ErrInvalidParameters},
		{"bad metadata hash length", "k6", func() ports.CreateAssetInput { in := baseInput(); in.MetadataHash = []byte{1, 2, 3}; return in }(), domainerrors.ErrInvalidParameters},
	}

	for _, tc := range cases {
		_, _, err := svc.CreateAsset(ctx, tc.key, "alice", tc.input)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateAssetIdempotency(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := mustCreate(t, svc, "same-key", "alice", baseInput())

	second, replayed, err := svc.CreateAsset(ctx, "same-key", "alice", baseInput())
	if err != nil {
		t.Fatalf("repeat with same payload should replay: %v", err)
	}
	if !replayed {
		t.Fatalf("expected replayed result")
	}
	if second.AssetID != first.AssetID {
		t.Fatalf("replay should return the original asset id, got %d and %d", first.AssetID, second.AssetID)
	}

	changed := baseInput()
	changed.Total = 999
	_, _, err = svc.CreateAsset(ctx, "same-key", "alice", changed)
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestReconfigureRotatesAndLocksRoles(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	rotated := entities.AssignedRole("mgr2")
	updated, err := svc.ReconfigureAsset(ctx, "mgr", record.AssetID, ports.RolePatch{Manager: &rotated})
	if err != nil {
		t.Fatalf("manager rotation should succeed: %v", err)
	}
	if !updated.Manager.Held("mgr2") {
		t.Fatalf("expected mgr2 to hold manager role")
	}

	cleared := entities.EmptyRole()
	updated, err = svc.ReconfigureAsset(ctx, "mgr2", record.AssetID, ports.RolePatch{Freeze: &cleared})
	if err != nil {
		t.Fatalf("freeze clear should succeed: %v", err)
	}
	if updated.Freeze.Assigned {
		t.Fatalf("freeze slot should be cleared")
	}

	reassign := entities.AssignedRole("frz2")
	_, err = svc.ReconfigureAsset(ctx, "mgr2", record.AssetID, ports.RolePatch{Freeze: &reassign})
	if !errors.Is(err, domainerrors.ErrFieldLocked) {
		t.Fatalf("cleared slot must stay locked, got %v", err)
	}

	_, err = svc.ReconfigureAsset(ctx, "alice", record.AssetID, ports.RolePatch{Manager: &rotated})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("non-manager must be rejected, got %v", err)
	}

	_, err = svc.ReconfigureAsset(ctx, "mgr2", record.AssetID, ports.RolePatch{})
	if !errors.Is(err, domainerrors.ErrInvalidParameters) {
		t.Fatalf("empty patch must be rejected, got %v", err)
	}
}

func TestReconfigureClearingManagerLocksEverything(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	cleared := entities.EmptyRole()
	if _, err := svc.ReconfigureAsset(ctx, "mgr", record.AssetID, ports.RolePatch{Manager: &cleared}); err != nil {
		t.Fatalf("manager clear should succeed: %v", err)
	}

	rotated := entities.AssignedRole("rsv2")
	_, err := svc.ReconfigureAsset(ctx, "mgr", record.AssetID, ports.RolePatch{Reserve: &rotated})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("nobody holds manager after clear, got %v", err)
	}
}

// Random sequences of rotations and clears must never resurrect a cleared
// slot: the set of assigned slots only shrinks.
func TestRoleLockMonotonicity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	manager := "mgr"
	for step := 0; step < 200; step++ {
		before, err := svc.GetAsset(ctx, record.AssetID)
		if err != nil {
			t.Fatalf("get asset: %v", err)
		}

		patch := ports.RolePatch{}
		slot := rng.Intn(4)
		clear := rng.Intn(3) == 0
		var role entities.RoleAddress
		if clear {
			role = entities.EmptyRole()
		} else {
			role = entities.AssignedRole(fmt.Sprintf("acct-%d", step))
		}
		switch slot {
		case 0:
			patch.Manager = &role
		case 1:
			patch.Reserve = &role
		case 2:
			patch.Freeze = &role
		case 3:
			patch.Clawback = &role
		}

		after, err := svc.ReconfigureAsset(ctx, manager, record.AssetID, patch)
		if err != nil {
			if !errors.Is(err, domainerrors.ErrFieldLocked) && !errors.Is(err, domainerrors.ErrUnauthorized) {
				t.Fatalf("step %d: unexpected error %v", step, err)
			}
			after, err = svc.GetAsset(ctx, record.AssetID)
			if err != nil {
				t.Fatalf("get asset after rejection: %v", err)
			}
		}

		assertNeverReassigned(t, step, before.Manager, after.Manager)
		assertNeverReassigned(t, step, before.Reserve, after.Reserve)
		assertNeverReassigned(t, step, before.Freeze, after.Freeze)
		assertNeverReassigned(t, step, before.Clawback, after.Clawback)

		if slot == 0 && !clear && after.Manager.Held(role.Address) {
			manager = role.Address
		}
		if !after.Manager.Assigned {
			break
		}
	}
}

func assertNeverReassigned(t *testing.T, step int, before, after entities.RoleAddress) {
	t.Helper()
	if !before.Assigned && after.Assigned {
		t.Fatalf("step %d: cleared slot became assigned again", step)
	}
}

func TestOptInAndOptOut(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	holding, err := svc.OptIn(ctx, "bob", record.AssetID)
	if err != nil {
		t.Fatalf("opt-in should succeed: %v", err)
	}
	if holding.Balance != 0 {
		t.Fatalf("new holding must start at zero, got %d", holding.Balance)
	}

	if _, err := svc.OptIn(ctx, "bob", record.AssetID); !errors.Is(err, domainerrors.ErrAlreadyOptedIn) {
		t.Fatalf("duplicate opt-in should conflict, got %v", err)
	}

	if err := svc.OptOut(ctx, "carol", record.AssetID); !errors.Is(err, domainerrors.ErrNotOptedIn) {
		t.Fatalf("opt-out without holding should fail, got %v", err)
	}

	if _, err := svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 5}); err != nil {
		t.Fatalf("funding transfer should succeed: %v", err)
	}
	if err := svc.OptOut(ctx, "bob", record.AssetID); !errors.Is(err, domainerrors.ErrNonzeroBalance) {
		t.Fatalf("opt-out with balance should fail, got %v", err)
	}

	if _, err := svc.Transfer(ctx, "bob", ports.TransferInput{AssetID: record.AssetID, To: "alice", Amount: 5}); err != nil {
		t.Fatalf("refund transfer should succeed: %v", err)
	}
	if err := svc.OptOut(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-out at zero balance should succeed: %v", err)
	}
}

func TestTransferRules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	if _, err := svc.OptIn(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-in: %v", err)
	}

	_, err := svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 0})
	if !errors.Is(err, domainerrors.ErrZeroAmount) {
		t.Fatalf("zero amount should fail, got %v", err)
	}

	_, err = svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "carol", Amount: 10})
	if !errors.Is(err, domainerrors.ErrNotOptedIn) {
		t.Fatalf("transfer to unopted account should fail, got %v", err)
	}

	_, err = svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 2000})
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("overdraft should fail, got %v", err)
	}

	result, err := svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 400})
	if err != nil {
		t.Fatalf("transfer should succeed: %v", err)
	}
	if result.FromBalance != 600 || result.ToBalance != 400 {
		t.Fatalf("expected balances 600/400, got %d/%d", result.FromBalance, result.ToBalance)
	}

	assertConserved(t, svc, record.AssetID, record.Total)
}

func TestFreezeBlocksTransfers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	if _, err := svc.OptIn(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-in: %v", err)
	}

	_, err := svc.SetFrozen(ctx, "alice", ports.FreezeInput{AssetID: record.AssetID, Account: "bob", Frozen: true})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("only freeze role may freeze, got %v", err)
	}

	holding, err := svc.SetFrozen(ctx, "frz", ports.FreezeInput{AssetID: record.AssetID, Account: "bob", Frozen: true})
	if err != nil {
		t.Fatalf("freeze should succeed: %v", err)
	}
	if !holding.Frozen {
		t.Fatalf("holding should be frozen")
	}

	// Re-applying the same state is a successful no-op.
	if _, err := svc.SetFrozen(ctx, "frz", ports.FreezeInput{AssetID: record.AssetID, Account: "bob", Frozen: true}); err != nil {
		t.Fatalf("repeated freeze should succeed: %v", err)
	}

	_, err = svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 10})
	if !errors.Is(err, domainerrors.ErrAccountFrozen) {
		t.Fatalf("transfer to frozen receiver should fail, got %v", err)
	}

	if _, err := svc.SetFrozen(ctx, "frz", ports.FreezeInput{AssetID: record.AssetID, Account: "alice", Frozen: true}); err != nil {
		t.Fatalf("freeze sender: %v", err)
	}
	if _, err := svc.SetFrozen(ctx, "frz", ports.FreezeInput{AssetID: record.AssetID, Account: "bob", Frozen: false}); err != nil {
		t.Fatalf("unfreeze receiver: %v", err)
	}
	_, err = svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 10})
	if !errors.Is(err, domainerrors.ErrAccountFrozen) {
		t.Fatalf("transfer from frozen sender should fail, got %v", err)
	}
}

func TestRevokeBypassesFrozen(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	if _, err := svc.OptIn(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-in: %v", err)
	}
	if _, err := svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 300}); err != nil {
		t.Fatalf("fund bob: %v", err)
	}
	if _, err := svc.SetFrozen(ctx, "frz", ports.FreezeInput{AssetID: record.AssetID, Account: "bob", Frozen: true}); err != nil {
		t.Fatalf("freeze bob: %v", err)
	}

	_, err := svc.Revoke(ctx, "alice", ports.RevokeInput{AssetID: record.AssetID, From: "bob", To: "alice", Amount: 300})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("only clawback may revoke, got %v", err)
	}

	_, err = svc.Revoke(ctx, "clb", ports.RevokeInput{AssetID: record.AssetID, From: "bob", To: "alice", Amount: 500})
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("revoke over balance should fail, got %v", err)
	}

	result, err := svc.Revoke(ctx, "clb", ports.RevokeInput{AssetID: record.AssetID, From: "bob", To: "alice", Amount: 300})
	if err != nil {
		t.Fatalf("revoke should bypass frozen holdings: %v", err)
	}
	if result.FromBalance != 0 || result.ToBalance != 1000 {
		t.Fatalf("expected balances 0/1000, got %d/%d", result.FromBalance, result.ToBalance)
	}
	assertConserved(t, svc, record.AssetID, record.Total)
}

func TestDefaultFrozenAppliesToNewHoldings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	input := baseInput()
	input.DefaultFrozen = true
	record := mustCreate(t, svc, "idem-1", "alice", input)

	holding, err := svc.OptIn(ctx, "bob", record.AssetID)
	if err != nil {
		t.Fatalf("opt-in: %v", err)
	}
	if !holding.Frozen {
		t.Fatalf("opt-in under default_frozen must start frozen")
	}

	_, err = svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 10})
	if !errors.Is(err, domainerrors.ErrAccountFrozen) {
		t.Fatalf("transfer between frozen holdings should fail, got %v", err)
	}

	// Clawback still moves value into the frozen holding.
	if _, err := svc.Revoke(ctx, "clb", ports.RevokeInput{AssetID: record.AssetID, From: "alice", To: "bob", Amount: 10}); err != nil {
		t.Fatalf("revoke into frozen holding should succeed: %v", err)
	}
}

func TestDestroyRequiresConsolidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	record := mustCreate(t, svc, "idem-1", "alice", baseInput())

	if _, err := svc.OptIn(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-in: %v", err)
	}
	if _, err := svc.Transfer(ctx, "alice", ports.TransferInput{AssetID: record.AssetID, To: "bob", Amount: 100}); err != nil {
		t.Fatalf("fund bob: %v", err)
	}

	if err := svc.DestroyAsset(ctx, "alice", record.AssetID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("only manager may destroy, got %v", err)
	}
	if err := svc.DestroyAsset(ctx, "mgr", record.AssetID); !errors.Is(err, domainerrors.ErrSupplyNotConsolidated) {
		t.Fatalf("destroy with spread supply should fail, got %v", err)
	}

	if _, err := svc.Transfer(ctx, "bob", ports.TransferInput{AssetID: record.AssetID, To: "alice", Amount: 100}); err != nil {
		t.Fatalf("return supply: %v", err)
	}
	if err := svc.DestroyAsset(ctx, "mgr", record.AssetID); err != nil {
		t.Fatalf("destroy should succeed once consolidated: %v", err)
	}

	destroyed, err := svc.GetAsset(ctx, record.AssetID)
	if err != nil {
		t.Fatalf("destroyed record should stay readable: %v", err)
	}
	if !destroyed.Destroyed {
		t.Fatalf("record should be flagged destroyed")
	}

	if _, err := svc.OptIn(ctx, "carol", record.AssetID); !errors.Is(err, domainerrors.ErrAssetNotFound) {
		t.Fatalf("destroyed asset should reject operations, got %v", err)
	}

	// Bob's stale zero holding survives the destroy and can still be cleared.
	if err := svc.OptOut(ctx, "bob", record.AssetID); err != nil {
		t.Fatalf("opt-out after destroy should succeed: %v", err)
	}
}

func TestAssetIDsNeverReused(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := mustCreate(t, svc, "idem-1", "alice", baseInput())
	if err := svc.DestroyAsset(ctx, "mgr", first.AssetID); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	second := mustCreate(t, svc, "idem-2", "alice", baseInput())
	if second.AssetID <= first.AssetID {
		t.Fatalf("asset ids must stay monotonic, got %d then %d", first.AssetID, second.AssetID)
	}
}

func assertConserved(t *testing.T, svc Service, assetID uint64, total uint64) {
	t.Helper()
	holdings, err := svc.ListAssetHoldings(context.Background(), assetID)
	if err != nil {
		t.Fatalf("list holdings: %v", err)
	}
	var sum uint64
	for _, holding := range holdings {
		sum += holding.Balance
	}
	if sum != total {
		t.Fatalf("supply conservation broken: sum %d, total %d", sum, total)
	}
}
