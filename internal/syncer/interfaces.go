package syncer

import (
	"context"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/response"
)

// InspectionSource lists the active tenant inspections held by PHA.
type InspectionSource interface {
	ActiveTenants(ctx context.Context) ([]domain.Inspection, error)
}

// MasterDataSink creates client, landlord and unit master data in BOB.
type MasterDataSink interface {
	CreateMasterData(ctx context.Context, req domain.MasterDataRequest) (response.Payload, error)
}

// IntegrationQueue is BOB's outbound queue of pending unit updates.
type IntegrationQueue interface {
	PendingUnitUpdates(ctx context.Context) ([]domain.IntegrationRecord, error)
	CompleteIntegration(ctx context.Context, id domain.ID) (response.Payload, error)
}

// InspectionDateUpdater writes inspection dates back to PHA.
type InspectionDateUpdater interface {
	UpdateInspectionDates(ctx context.Context, tenantID, unitID domain.ID, upd domain.DateUpdate) (response.Payload, error)
}
