package httpadapter

import (
	"context"
	"log/slog"

	"assetledger/contexts/tokenization/asset-ledger/application"
	"assetledger/contexts/tokenization/asset-ledger/domain/entities"
	"assetledger/contexts/tokenization/asset-ledger/ports"
	httptransport "assetledger/contexts/tokenization/asset-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// CreateAssetHandler godoc
// @Summary Create a fungible asset
// @Description Mints a new asset configuration and credits the full supply to the creator. Requires an idempotency key.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body httptransport.CreateAssetRequest true "Asset parameters"
// @Success 201 {object} httptransport.CreateAssetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /assets [post]
func (h Handler) CreateAssetHandler(ctx context.Context, caller, idempotencyKey string, req httptransport.CreateAssetRequest) (httptransport.CreateAssetResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("create asset request received",
		"event", "http_create_asset_received",
		"module", "tokenization/asset-ledger",
		"layer", "transport",
	)

	record, replayed, err := h.Service.CreateAsset(ctx, idempotencyKey, caller, ports.CreateAssetInput{
		AssetName:     req.AssetName,
		UnitName:      req.UnitName,
		URL:           req.URL,
		MetadataHash:  req.MetadataHash,
		Total:         req.Total,
		Decimals:      req.Decimals,
		DefaultFrozen: req.DefaultFrozen,
		Manager:       req.Manager,
		Reserve:       req.Reserve,
		Freeze:        req.Freeze,
		Clawback:      req.Clawback,
	})
	if err != nil {
		logger.Error("create asset request failed",
			"event", "http_create_asset_failed",
			"module", "tokenization/asset-ledger",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.CreateAssetResponse{}, err
	}

	status := "created"
	if replayed {
		status = "replayed"
	}
	return httptransport.CreateAssetResponse{
		Status:   status,
		Replayed: replayed,
		Item:     mapAsset(record),
	}, nil
}

// ReconfigureAssetHandler godoc
// @Summary Reconfigure asset role addresses
// @Description Rotates or clears the mutable role addresses. Cleared roles are locked permanently. Manager only.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Param request body httptransport.ReconfigureAssetRequest true "Role patch"
// @Success 200 {object} httptransport.ReconfigureAssetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/reconfigure [post]
func (h Handler) ReconfigureAssetHandler(ctx context.Context, caller string, assetID uint64, req httptransport.ReconfigureAssetRequest) (httptransport.ReconfigureAssetResponse, error) {
	record, err := h.Service.ReconfigureAsset(ctx, caller, assetID, ports.RolePatch{
		Manager:  roleFromDTO(req.Manager),
		Reserve:  roleFromDTO(req.Reserve),
		Freeze:   roleFromDTO(req.Freeze),
		Clawback: roleFromDTO(req.Clawback),
	})
	if err != nil {
		return httptransport.ReconfigureAssetResponse{}, err
	}
	return httptransport.ReconfigureAssetResponse{Status: "reconfigured", Item: mapAsset(record)}, nil
}

// OptInHandler godoc
// @Summary Opt an account into an asset
// @Description Creates a zero-balance holding for the caller.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Success 201 {object} httptransport.OptInResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/opt-in [post]
func (h Handler) OptInHandler(ctx context.Context, caller string, assetID uint64) (httptransport.OptInResponse, error) {
	holding, err := h.Service.OptIn(ctx, caller, assetID)
	if err != nil {
		return httptransport.OptInResponse{}, err
	}
	return httptransport.OptInResponse{Status: "opted_in", Holding: mapHolding(holding)}, nil
}

// OptOutHandler godoc
// @Summary Opt an account out of an asset
// @Description Removes the caller's holding. The balance must be zero.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Success 200 {object} httptransport.OptOutResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/opt-out [post]
func (h Handler) OptOutHandler(ctx context.Context, caller string, assetID uint64) (httptransport.OptOutResponse, error) {
	if err := h.Service.OptOut(ctx, caller, assetID); err != nil {
		return httptransport.OptOutResponse{}, err
	}
	return httptransport.OptOutResponse{Status: "opted_out"}, nil
}

// TransferHandler godoc
// @Summary Transfer asset units
// @Description Moves units from the caller to another opted-in account.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Param request body httptransport.TransferRequest true "Transfer details"
// @Success 200 {object} httptransport.TransferResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/transfers [post]
func (h Handler) TransferHandler(ctx context.Context, caller string, assetID uint64, req httptransport.TransferRequest) (httptransport.TransferResponse, error) {
	result, err := h.Service.Transfer(ctx, caller, ports.TransferInput{
		AssetID: assetID,
		To:      req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.TransferResponse{}, err
	}
	return httptransport.TransferResponse{
		Status:          "transferred",
		SenderBalance:   result.FromBalance,
		ReceiverBalance: result.ToBalance,
	}, nil
}

// FreezeHandler godoc
// @Summary Freeze or unfreeze a holding
// @Description Sets the frozen flag on one account's holding. Freeze role only.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Param request body httptransport.FreezeRequest true "Freeze target"
// @Success 200 {object} httptransport.FreezeResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/freeze [post]
func (h Handler) FreezeHandler(ctx context.Context, caller string, assetID uint64, req httptransport.FreezeRequest) (httptransport.FreezeResponse, error) {
	holding, err := h.Service.SetFrozen(ctx, caller, ports.FreezeInput{
		AssetID: assetID,
		Account: req.Account,
		Frozen:  req.Frozen,
	})
	if err != nil {
		return httptransport.FreezeResponse{}, err
	}
	return httptransport.FreezeResponse{Status: "frozen_flag_set", Holding: mapHolding(holding)}, nil
}

// RevokeHandler godoc
// @Summary Revoke asset units
// @Description Claws back units from one account to another, bypassing frozen flags. Clawback role only.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Param request body httptransport.RevokeRequest true "Revocation details"
// @Success 200 {object} httptransport.RevokeResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/revoke [post]
func (h Handler) RevokeHandler(ctx context.Context, caller string, assetID uint64, req httptransport.RevokeRequest) (httptransport.RevokeResponse, error) {
	result, err := h.Service.Revoke(ctx, caller, ports.RevokeInput{
		AssetID: assetID,
		From:    req.From,
		To:      req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.RevokeResponse{}, err
	}
	return httptransport.RevokeResponse{
		Status:          "revoked",
		SourceBalance:   result.FromBalance,
		ReceiverBalance: result.ToBalance,
	}, nil
}

// DestroyAssetHandler godoc
// @Summary Destroy an asset
// @Description Retires an asset once the full supply sits in the creator or reserve account. Manager only.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param X-Account-Id header string true "Caller account"
// @Param asset_id path int true "Asset id"
// @Success 200 {object} httptransport.DestroyAssetResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/destroy [post]
func (h Handler) DestroyAssetHandler(ctx context.Context, caller string, assetID uint64) (httptransport.DestroyAssetResponse, error) {
	if err := h.Service.DestroyAsset(ctx, caller, assetID); err != nil {
		return httptransport.DestroyAssetResponse{}, err
	}
	return httptransport.DestroyAssetResponse{Status: "destroyed"}, nil
}

// GetAssetHandler godoc
// @Summary Get asset details
// @Description Returns one asset by id, including destroyed assets.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param asset_id path int true "Asset id"
// @Success 200 {object} httptransport.GetAssetResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id} [get]
func (h Handler) GetAssetHandler(ctx context.Context, assetID uint64) (httptransport.GetAssetResponse, error) {
	record, err := h.Service.GetAsset(ctx, assetID)
	if err != nil {
		return httptransport.GetAssetResponse{}, err
	}
	return httptransport.GetAssetResponse{Item: mapAsset(record)}, nil
}

// GetHoldingHandler godoc
// @Summary Get one holding
// @Description Returns one account's holding of one asset.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param asset_id path int true "Asset id"
// @Param account path string true "Account address"
// @Success 200 {object} httptransport.GetHoldingResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/holdings/{account} [get]
func (h Handler) GetHoldingHandler(ctx context.Context, assetID uint64, account string) (httptransport.GetHoldingResponse, error) {
	holding, err := h.Service.GetHolding(ctx, assetID, account)
	if err != nil {
		return httptransport.GetHoldingResponse{}, err
	}
	return httptransport.GetHoldingResponse{Holding: mapHolding(holding)}, nil
}

// ListAssetHoldingsHandler godoc
// @Summary List holdings of an asset
// @Description Returns every holding of one asset, ordered by account.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param asset_id path int true "Asset id"
// @Success 200 {object} httptransport.ListHoldingsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /assets/{asset_id}/holdings [get]
func (h Handler) ListAssetHoldingsHandler(ctx context.Context, assetID uint64) (httptransport.ListHoldingsResponse, error) {
	holdings, err := h.Service.ListAssetHoldings(ctx, assetID)
	if err != nil {
		return httptransport.ListHoldingsResponse{}, err
	}
	return httptransport.ListHoldingsResponse{Items: mapHoldings(holdings)}, nil
}

// ListAccountHoldingsHandler godoc
// @Summary List holdings of an account
// @Description Returns every asset holding of one account, ordered by asset id.
// @Tags asset-ledger
// @Accept json
// @Produce json
// @Param account path string true "Account address"
// @Success 200 {object} httptransport.ListHoldingsResponse
// @Router /accounts/{account}/holdings [get]
func (h Handler) ListAccountHoldingsHandler(ctx context.Context, account string) (httptransport.ListHoldingsResponse, error) {
	holdings, err := h.Service.ListAccountHoldings(ctx, account)
	if err != nil {
		return httptransport.ListHoldingsResponse{}, err
	}
	return httptransport.ListHoldingsResponse{Items: mapHoldings(holdings)}, nil
}

func mapAsset(record entities.AssetRecord) httptransport.AssetDTO {
	return httptransport.AssetDTO{
		AssetID:       record.AssetID,
		Creator:       record.Creator,
		AssetName:     record.AssetName,
		UnitName:      record.UnitName,
		URL:           record.URL,
		MetadataHash:  record.MetadataHash,
		Total:         record.Total,
		Decimals:      record.Decimals,
		DefaultFrozen: record.DefaultFrozen,
		Manager:       mapRole(record.Manager),
		Reserve:       mapRole(record.Reserve),
		Freeze:        mapRole(record.Freeze),
		Clawback:      mapRole(record.Clawback),
		Destroyed:     record.Destroyed,
		CreatedAt:     record.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     record.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func mapRole(role entities.RoleAddress) httptransport.RoleAddressDTO {
	return httptransport.RoleAddressDTO{Assigned: role.Assigned, Address: role.Address}
}

func roleFromDTO(dto *httptransport.RoleAddressDTO) *entities.RoleAddress {
	if dto == nil {
		return nil
	}
	if !dto.Assigned {
		role := entities.EmptyRole()
		return &role
	}
	role := entities.AssignedRole(dto.Address)
	return &role
}

func mapHoldings(holdings []entities.Holding) []httptransport.HoldingDTO {
	items := make([]httptransport.HoldingDTO, 0, len(holdings))
	for _, holding := range holdings {
		items = append(items, mapHolding(holding))
	}
	return items
}

func mapHolding(holding entities.Holding) httptransport.HoldingDTO {
	return httptransport.HoldingDTO{
		AssetID:   holding.AssetID,
		Account:   holding.Account,
		Balance:   holding.Balance,
		Frozen:    holding.Frozen,
		OptedInAt: holding.OptedInAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: holding.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
