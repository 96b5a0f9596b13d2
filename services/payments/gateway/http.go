package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	httpclient "github.com/givehub/payments/internal/pkg/http"
	"github.com/givehub/payments/internal/pkg/models"
)

// DonationServiceGW talks to the donation service, the external
// collaborator owning associations, campaigns and the donation ledger.
// It implements both LedgerGW and CampaignGW.
type DonationServiceGW struct {
	client *httpclient.Client
}

// NewDonationServiceGW creates a gateway to the donation service
func NewDonationServiceGW(baseURL string, timeout time.Duration) *DonationServiceGW {
	return &DonationServiceGW{
		client: httpclient.NewClient(baseURL, timeout),
	}
}

// CampaignExists checks whether a campaign id is known
func (gw *DonationServiceGW) CampaignExists(ctx context.Context, campaignID string) (bool, error) {
	resp, err := gw.client.GetJSON(ctx, fmt.Sprintf("/internal/campaigns/%s", campaignID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to look up campaign %s: %w", campaignID, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("campaign lookup returned status %d", resp.StatusCode)
	}
}

// UpdateProgress advances a campaign's progress after a completed payment.
// Best effort: callers log failures as discrepancies and move on.
func (gw *DonationServiceGW) UpdateProgress(ctx context.Context, campaignID string, amount decimal.Decimal, currency string) error {
	body := map[string]interface{}{
		"amount":   amount.String(),
		"currency": currency,
	}

	resp, err := gw.client.PostJSON(ctx, fmt.Sprintf("/internal/campaigns/%s/progress", campaignID), nil, body)
	if err != nil {
		return fmt.Errorf("failed to update campaign %s progress: %w", campaignID, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("campaign progress update returned status %d", resp.StatusCode)
	}
	return nil
}

// RecordDonation posts a completed payment to the donation ledger.
// Best effort, same policy as UpdateProgress.
func (gw *DonationServiceGW) RecordDonation(ctx context.Context, tx *models.PaymentTransaction) error {
	body := map[string]interface{}{
		"transaction_id": tx.ID,
		"donor_id":       tx.DonorID,
		"association_id": tx.AssociationID,
		"amount":         tx.Amount.String(),
		"currency":       tx.Currency,
		"completed_at":   tx.CompletedAt,
	}

	resp, err := gw.client.PostJSON(ctx, "/internal/ledger/donations", nil, body)
	if err != nil {
		return fmt.Errorf("failed to record donation for transaction %s: %w", tx.ID, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("ledger record returned status %d", resp.StatusCode)
	}
	return nil
}
