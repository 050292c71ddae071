package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"gorm.io/datatypes"
)

func TestPaymentDocKeepsMetadata(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &models.PaymentSession{
		UserID:          "user123",
		PackageID:       "popular",
		Amount:          999,
		Credits:         12,
		Status:          models.PaymentPending,
		StripeSessionID: "cs_test_1",
		Metadata:        datatypes.JSON(`{"userId":"user123","packageId":"popular","credits":"12"}`),
		CreatedAt:       created,
	}

	doc, err := newPaymentDoc(in)
	if err != nil {
		t.Fatalf("newPaymentDoc: %v", err)
	}
	if doc.Metadata["userId"] != "user123" || doc.Metadata["credits"] != "12" {
		t.Errorf("doc metadata = %v", doc.Metadata)
	}

	out, err := doc.session("pay_1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if out.ID != "pay_1" || out.Status != models.PaymentPending || out.StripeSessionID != "cs_test_1" || !out.CreatedAt.Equal(created) {
		t.Errorf("session = %+v", out)
	}
	var meta map[string]string
	if err := json.Unmarshal(out.Metadata, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["packageId"] != "popular" || len(meta) != 3 {
		t.Errorf("metadata = %v", meta)
	}
}

func TestPaymentDocRejectsBadMetadata(t *testing.T) {
	if _, err := newPaymentDoc(&models.PaymentSession{Metadata: datatypes.JSON(`[1,2]`)}); err == nil {
		t.Error("newPaymentDoc accepted non-object metadata")
	}
}
