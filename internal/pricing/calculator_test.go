package pricing

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/peptok/CoachMarketBack/internal/models"
)

func testConfig() models.PricingConfiguration {
	return models.PricingConfiguration{
		Version:                       3,
		CompanyServiceFeeRate:         0.10,
		CoachCommissionRate:           0.20,
		MinCoachCommissionAmount:      5,
		AdditionalParticipantFee:      25,
		MaxParticipantsIncludedInBase: 1,
		Currency:                      "USD",
	}
}

func TestCalculate_CompanyView(t *testing.T) {
	got := Calculate(testConfig(), models.SessionPricingRequest{
		CoachHourlyRate:  150,
		DurationMinutes:  60,
		ParticipantCount: 1,
		RequesterRole:    models.RoleCompany,
	})

	assertMoney(t, "coach amount", got.CoachAmount, "150.00")
	assertMoney(t, "additional participants", got.AdditionalParticipantAmount, "0.00")
	assertMoney(t, "service fee", got.ServiceOrCommissionAmount, "15.00")
	assertMoney(t, "subtotal", got.Subtotal, "150.00")
	assertMoney(t, "total", got.TotalAmount, "165.00")
	if !got.TotalAmount.Equal(got.Subtotal.Add(got.ServiceOrCommissionAmount)) {
		t.Fatalf("total %s != subtotal %s + fee %s", got.TotalAmount, got.Subtotal, got.ServiceOrCommissionAmount)
	}
	if got.Currency != "USD" || got.ConfigVersion != 3 {
		t.Fatalf("expected currency and version from config, got %s v%d", got.Currency, got.ConfigVersion)
	}
}

func TestCalculate_CoachView(t *testing.T) {
	got := Calculate(testConfig(), models.SessionPricingRequest{
		CoachHourlyRate:  150,
		DurationMinutes:  60,
		ParticipantCount: 4,
		RequesterRole:    models.RoleCoach,
	})

	assertMoney(t, "commission", got.ServiceOrCommissionAmount, "30.00")
	assertMoney(t, "net earnings", got.CoachNetEarnings, "120.00")
	if !got.CoachNetEarnings.Equal(got.CoachAmount.Sub(got.Commission)) {
		t.Fatal("net earnings must equal coach amount minus commission")
	}
	// Extra participants are platform revenue only.
	assertMoney(t, "additional participants", got.AdditionalParticipantAmount, "75.00")
	assertMoney(t, "net earnings unaffected by headcount", got.CoachNetEarnings, "120.00")
	if got.RequesterRole != models.RoleCoach {
		t.Fatalf("expected coach role, got %q", got.RequesterRole)
	}
}

func TestCommissionMinimumApplies(t *testing.T) {
	got := Calculate(testConfig(), models.SessionPricingRequest{
		CoachHourlyRate: 20,
		DurationMinutes: 30,
		RequesterRole:   "coach",
	})
	// 10.00 * 0.20 = 2.00, floored to 5.00
	assertMoney(t, "commission", got.Commission, "5.00")
	assertMoney(t, "net", got.CoachNetEarnings, "5.00")
}

func TestCommissionNeverNegative(t *testing.T) {
	if c := Commission(decimal.NewFromInt(100), -0.5, -10); c.IsNegative() {
		t.Fatalf("commission went negative: %s", c)
	}
}

func TestAdditionalParticipantFee(t *testing.T) {
	tests := []struct {
		count, included int
		fee             float64
		want            string
	}{
		{3, 1, 25, "50"},
		{1, 1, 25, "0"},
		{0, 2, 25, "0"},
		{6, 2, 12.5, "50"},
	}
	for _, tt := range tests {
		got := AdditionalParticipantFee(tt.count, tt.included, tt.fee)
		assertMoney(t, "additional participant fee", got, tt.want)
	}
}

func TestSessionCost(t *testing.T) {
	assertMoney(t, "90 minutes", SessionCost(120, 90), "180")
	assertMoney(t, "zero duration", SessionCost(150, 0), "0")
	assertMoney(t, "45 minutes", SessionCost(99.99, 45), "74.9925")
}

func TestCalculateZeroDuration(t *testing.T) {
	got := Calculate(testConfig(), models.SessionPricingRequest{CoachHourlyRate: 150, DurationMinutes: 0, ParticipantCount: 1})
	assertMoney(t, "coach amount", got.CoachAmount, "0")
	assertMoney(t, "service fee", got.ServiceFee, "0")
	assertMoney(t, "total", got.TotalAmount, "0")
}

func TestCalculateRoundsToCents(t *testing.T) {
	got := Calculate(testConfig(), models.SessionPricingRequest{CoachHourlyRate: 99.99, DurationMinutes: 45, ParticipantCount: 1})
	assertMoney(t, "coach amount", got.CoachAmount, "74.99")
	assertMoney(t, "service fee", got.ServiceFee, "7.50")
	assertMoney(t, "total", got.TotalAmount, "82.49")
}

func TestCalculateIsDeterministic(t *testing.T) {
	input := models.SessionPricingRequest{CoachHourlyRate: 133.33, DurationMinutes: 50, ParticipantCount: 3, RequesterRole: "company"}
	first := Calculate(testConfig(), input)
	second := Calculate(testConfig(), input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different breakdowns:\n%+v\n%+v", first, second)
	}
}

func TestQuoteBookingMultipliesPerSession(t *testing.T) {
	quote := QuoteBooking(testConfig(), models.SessionPricingRequest{
		CoachHourlyRate:  150,
		DurationMinutes:  60,
		ParticipantCount: 3,
		SessionCount:     4,
	})

	if quote.SessionCount != 4 {
		t.Fatalf("expected 4 sessions, got %d", quote.SessionCount)
	}
	assertMoney(t, "per-session extra", quote.PerSession.AdditionalParticipantAmount, "50")
	assertMoney(t, "total extra", quote.Total.AdditionalParticipantAmount, "200")
	assertMoney(t, "total coach amount", quote.Total.CoachAmount, "600")
	// (150 + 50 + 15) * 4
	assertMoney(t, "total amount", quote.Total.TotalAmount, "860")
	if !quote.Total.TotalAmount.Equal(quote.Total.Subtotal.Add(quote.Total.ServiceFee)) {
		t.Fatal("booking total must equal subtotal plus service fee")
	}
}

func TestQuoteBookingDefaultsToOneSession(t *testing.T) {
	quote := QuoteBooking(testConfig(), models.SessionPricingRequest{CoachHourlyRate: 100, DurationMinutes: 60})
	if quote.SessionCount != 1 {
		t.Fatalf("expected 1 session, got %d", quote.SessionCount)
	}
	if !quote.Total.TotalAmount.Equal(quote.PerSession.TotalAmount) {
		t.Fatal("single-session total must equal the per-session total")
	}
}

func assertMoney(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: got %s, want %s", label, got.StringFixed(2), want)
	}
}
