package compare_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_ratecheck/internal/compare"
	"hotel_ratecheck/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func cash(name, room, price string, ref domain.Refundability) domain.RateRecord {
	p := dec(price)
	return domain.RateRecord{
		RoomTypeCode:  room,
		RoomTypeName:  room + " room",
		RateName:      name,
		PricePerNight: &p,
		Currency:      "CAD",
		Refundability: ref,
	}
}

func points(name, room string, pts int64) domain.RateRecord {
	return domain.RateRecord{
		RoomTypeCode:   room,
		RateName:       name,
		PointsPerNight: ptr(pts),
		Refundability:  domain.Refundable,
	}
}

func reservation(original string, nights int, ct domain.CancellationType) domain.ReservationConfig {
	in := domain.NewDate(2026, time.March, 1)
	return domain.ReservationConfig{
		ID:                   "res-1",
		Name:                 "Toronto Marriott",
		PropertyID:           "yyzdt",
		CheckIn:              in,
		CheckOut:             domain.Date{Time: in.AddDate(0, 0, nights)},
		Adults:               2,
		NumRooms:             1,
		OriginalRatePerNight: dec(original),
		Currency:             "CAD",
		CancellationType:     ct,
		StayType:             domain.StayCash,
	}
}

// ---- classifier ----

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.RateRecord
		stay domain.StayType
		want domain.Refundability
	}{
		{"award always refundable", domain.RateRecord{RateName: "Prepay Points", DepositRequired: true}, domain.StayAward, domain.Refundable},
		{"free cancellation beats deposit", domain.RateRecord{RateName: "Member Rate", DepositRequired: true, FreeCancellationUntil: ptr("2026-02-27")}, domain.StayCash, domain.Refundable},
		{"deposit with advance purchase name", domain.RateRecord{RateName: "Advance Purchase Saver", DepositRequired: true}, domain.StayCash, domain.NonRefundable},
		{"deposit alone", domain.RateRecord{RateName: "Flexible Rate", DepositRequired: true}, domain.StayCash, domain.NonRefundable},
		{"prepay keyword", domain.RateRecord{RateName: "PREPAY Non Refundable"}, domain.StayCash, domain.NonRefundable},
		{"non-refund keyword", domain.RateRecord{RateName: "Non-Refundable Breakfast"}, domain.StayCash, domain.NonRefundable},
		{"nonrefundable beats refundable keyword", domain.RateRecord{RateName: "Nonrefundable"}, domain.StayCash, domain.NonRefundable},
		{"flexible keyword", domain.RateRecord{RateName: "Flexible Rate"}, domain.StayCash, domain.Refundable},
		{"flex keyword", domain.RateRecord{RateName: "Member Flex"}, domain.StayCash, domain.Refundable},
		{"blank free cancellation ignored", domain.RateRecord{RateName: "Standard Rate", FreeCancellationUntil: ptr(" ")}, domain.StayCash, domain.RefundUnknown},
		{"no signal", domain.RateRecord{RateName: "AAA Rate"}, domain.StayCash, domain.RefundUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, compare.Classify(tc.rec, tc.stay))
		})
	}
}

func TestClassifyAll_OverridesSuppliedValue(t *testing.T) {
	prepay := cash("Prepay Advance Purchase", "K", "100", domain.Refundable)
	prepay.DepositRequired = true
	in := []domain.RateRecord{prepay, cash("Mystery", "K", "120", domain.NonRefundable)}

	out := compare.ClassifyAll(in, domain.StayCash)
	require.Len(t, out, 2)
	assert.Equal(t, domain.NonRefundable, out[0].Refundability)
	assert.Equal(t, domain.RefundUnknown, out[1].Refundability)
	assert.Equal(t, domain.Refundable, in[0].Refundability, "input untouched")

	sel := compare.Select(out, domain.StayCash, domain.CancelRefundable)
	assert.Nil(t, sel, "no record is refundable once reclassified")
}

// ---- normalizer ----

func TestNormalize_KeepsCheapestPerKey(t *testing.T) {
	in := []domain.RateRecord{
		cash("Flexible", "KING", "210.00", domain.Refundable),
		cash("Flexible", "QQ", "199.00", domain.Refundable),
		cash("Flexible", "KING", "205.50", domain.Refundable),
		cash("Flexible", "KING", "205.50", domain.Refundable),
		cash("Prepay", "KING", "180.00", domain.NonRefundable),
	}
	out := compare.Normalize(in)
	require.Len(t, out, 3)

	assert.Equal(t, "Flexible", out[0].RateName)
	assert.Equal(t, "KING", out[0].RoomTypeCode)
	assert.True(t, out[0].PricePerNight.Equal(dec("205.50")))
	assert.Equal(t, "QQ", out[1].RoomTypeCode)
	assert.Equal(t, "Prepay", out[2].RateName)
}

func TestNormalize_NullPrices(t *testing.T) {
	a := points("Points Saver", "KING", 60000)
	b := points("Points Saver", "KING", 45000)
	priced := cash("Points Saver", "KING", "300", domain.Refundable)

	out := compare.Normalize([]domain.RateRecord{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, int64(60000), *out[0].PointsPerNight, "unpriced collisions keep the first record")

	out = compare.Normalize([]domain.RateRecord{a, priced, b})
	require.Len(t, out, 1)
	require.NotNil(t, out[0].PricePerNight)
	assert.True(t, out[0].PricePerNight.Equal(dec("300")))
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []domain.RateRecord{
		cash("Standard", "KING", "150", domain.Refundable),
		cash("Standard", "KING", "149.99", domain.Refundable),
		cash("Prepay", "DBL", "120", domain.NonRefundable),
		points("Award", "KING", 50000),
	}
	once := compare.Normalize(in)
	twice := compare.Normalize(once)
	assert.Equal(t, once, twice)
}

// ---- selector ----

func TestSelect_CashFilters(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Standard", "KING", "150.00", domain.Refundable),
		cash("Mystery", "KING", "99.00", domain.RefundUnknown),
		cash("Prepay", "KING", "140.00", domain.NonRefundable),
		points("Award", "KING", 40000),
	}

	got := compare.Select(rates, domain.StayCash, domain.CancelAny)
	require.NotNil(t, got)
	assert.Equal(t, "Mystery", got.RateName, "unknown refundability is eligible under any")

	got = compare.Select(rates, domain.StayCash, domain.CancelRefundable)
	require.NotNil(t, got)
	assert.Equal(t, "Standard", got.RateName)

	got = compare.Select(rates, domain.StayCash, domain.CancelNonRefundable)
	require.NotNil(t, got)
	assert.Equal(t, "Prepay", got.RateName)
}

func TestSelect_FilterPurityAndSoundness(t *testing.T) {
	rates := []domain.RateRecord{
		cash("A", "K", "120", domain.RefundUnknown),
		cash("B", "K", "180", domain.Refundable),
		cash("C", "K", "130", domain.NonRefundable),
		cash("D", "K", "175", domain.Refundable),
		cash("E", "K", "110", domain.NonRefundable),
		cash("F", "K", "90", domain.RefundUnknown),
	}
	want := map[domain.CancellationType]domain.Refundability{
		domain.CancelRefundable:    domain.Refundable,
		domain.CancelNonRefundable: domain.NonRefundable,
	}
	for filter, ref := range want {
		got := compare.Select(rates, domain.StayCash, filter)
		require.NotNil(t, got)
		assert.Equal(t, ref, got.Refundability)
		for _, r := range rates {
			if r.Refundability == ref {
				assert.False(t, r.PricePerNight.LessThan(*got.PricePerNight), "%s is cheaper than selected %s", r.RateName, got.RateName)
			}
		}
	}
}

func TestSelect_TieGoesToFirst(t *testing.T) {
	rates := []domain.RateRecord{
		cash("First", "K", "100", domain.Refundable),
		cash("Second", "Q", "100.00", domain.Refundable),
	}
	got := compare.Select(rates, domain.StayCash, domain.CancelAny)
	require.NotNil(t, got)
	assert.Equal(t, "First", got.RateName)

	awards := []domain.RateRecord{points("P1", "K", 45000), points("P2", "Q", 45000)}
	got = compare.Select(awards, domain.StayAward, domain.CancelAny)
	require.NotNil(t, got)
	assert.Equal(t, "P1", got.RateName)
}

func TestSelect_AwardIgnoresCash(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Cheap Cash", "K", "1.00", domain.Refundable),
		points("Award A", "K", 60000),
		points("Award B", "K", 45000),
		points("Award C", "K", 50000),
	}
	got := compare.Select(rates, domain.StayAward, domain.CancelNonRefundable)
	require.NotNil(t, got)
	assert.Equal(t, int64(45000), *got.PointsPerNight)
	assert.Nil(t, got.PricePerNight)
}

func TestSelect_NoCandidates(t *testing.T) {
	assert.Nil(t, compare.Select(nil, domain.StayCash, domain.CancelAny))
	rates := []domain.RateRecord{cash("Mystery", "K", "99", domain.RefundUnknown)}
	assert.Nil(t, compare.Select(rates, domain.StayCash, domain.CancelRefundable))
	assert.Nil(t, compare.Select(rates, domain.StayCash, domain.CancelNonRefundable))
	assert.Nil(t, compare.Select(rates, domain.StayAward, domain.CancelAny))
}

func TestSelect_DoesNotAliasInput(t *testing.T) {
	rates := []domain.RateRecord{cash("Standard", "K", "150", domain.Refundable)}
	got := compare.Select(rates, domain.StayCash, domain.CancelAny)
	require.NotNil(t, got)
	got.RateName = "changed"
	assert.Equal(t, "Standard", rates[0].RateName)
}

// ---- savings ----

func TestSavings_Arithmetic(t *testing.T) {
	best := cash("Standard", "K", "170", domain.Refundable)
	sv := compare.Savings(dec("200"), &best, 3, domain.StayCash)
	require.NotNil(t, sv)
	assert.True(t, sv.DiffPerNight.Equal(dec("30")), "diff %s", sv.DiffPerNight)
	assert.True(t, sv.Pct.Equal(dec("15")), "pct %s", sv.Pct)
	assert.True(t, sv.DiffTotal.Equal(dec("90")), "total %s", sv.DiffTotal)
}

func TestSavings_PricierIsNegative(t *testing.T) {
	best := cash("Suite", "S", "250", domain.Refundable)
	sv := compare.Savings(dec("200"), &best, 2, domain.StayCash)
	require.NotNil(t, sv)
	assert.True(t, sv.DiffPerNight.Equal(dec("-50")))
	assert.True(t, sv.Pct.Equal(dec("-25")))
	assert.True(t, sv.DiffTotal.Equal(dec("-100")))
}

func TestSavings_ZeroOriginal(t *testing.T) {
	best := cash("Standard", "K", "170", domain.Refundable)
	sv := compare.Savings(decimal.Zero, &best, 3, domain.StayCash)
	require.NotNil(t, sv)
	assert.True(t, sv.Pct.IsZero())
	assert.True(t, sv.DiffPerNight.Equal(dec("-170")))
}

func TestSavings_NilPropagation(t *testing.T) {
	assert.Nil(t, compare.Savings(dec("200"), nil, 3, domain.StayCash))

	award := points("Award", "K", 40000)
	assert.Nil(t, compare.Savings(dec("200"), &award, 3, domain.StayCash), "award record has no cash amount")

	sv := compare.Savings(dec("50000"), &award, 2, domain.StayAward)
	require.NotNil(t, sv)
	assert.True(t, sv.DiffPerNight.Equal(dec("10000")))
	assert.True(t, sv.DiffTotal.Equal(dec("20000")))
}

// ---- alternates ----

func TestAlternates_Categories(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Standard", "K", "150", domain.Refundable),
		cash("Prepay", "K", "140", domain.NonRefundable),
	}

	alts := compare.Alternates(rates, reservation("229", 2, domain.CancelRefundable))
	require.Len(t, alts, 1)
	assert.Equal(t, domain.CancelNonRefundable, alts[0].Category)
	assert.Equal(t, "Non-refundable", alts[0].Label)
	assert.Equal(t, "Prepay", alts[0].Rate.RateName)

	alts = compare.Alternates(rates, reservation("229", 2, domain.CancelNonRefundable))
	require.Len(t, alts, 1)
	assert.Equal(t, domain.CancelRefundable, alts[0].Category)
	assert.Equal(t, "Standard", alts[0].Rate.RateName)
	assert.True(t, alts[0].Savings.DiffTotal.Equal(dec("158")))

	alts = compare.Alternates(rates, reservation("229", 2, domain.CancelAny))
	require.Len(t, alts, 2)
	assert.Equal(t, domain.CancelRefundable, alts[0].Category)
	assert.Equal(t, domain.CancelNonRefundable, alts[1].Category)
}

func TestAlternates_OmitsMissingCategory(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Standard", "K", "150", domain.Refundable),
		cash("Mystery", "K", "90", domain.RefundUnknown),
	}
	alts := compare.Alternates(rates, reservation("229", 2, domain.CancelAny))
	require.Len(t, alts, 1)
	assert.Equal(t, domain.CancelRefundable, alts[0].Category)

	assert.Empty(t, compare.Alternates(rates, reservation("229", 2, domain.CancelRefundable)))
}

func TestAlternates_LeavesConfigUntouched(t *testing.T) {
	cfg := reservation("229", 2, domain.CancelAny)
	_ = compare.Alternates([]domain.RateRecord{cash("Standard", "K", "150", domain.Refundable)}, cfg)
	assert.Equal(t, domain.CancelAny, cfg.CancellationType)
}

// ---- report ----

func TestBuild_EndToEnd(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Standard", "KING", "150.00", domain.Refundable),
		cash("Flex", "KING", "210.00", domain.Refundable),
		cash("Prepay", "KING", "140.00", domain.NonRefundable),
	}
	res, err := compare.Build(rates, reservation("229.00", 2, domain.CancelAny))
	require.NoError(t, err)

	assert.Equal(t, 2, res.NumNights)
	require.NotNil(t, res.Best)
	assert.Equal(t, "Prepay", res.Best.Rate.RateName)
	assert.True(t, res.Best.Savings.DiffPerNight.Equal(dec("89")))
	assert.True(t, res.Best.Savings.DiffTotal.Equal(dec("178")))
	assert.Equal(t, "38.86", res.Best.Savings.Pct.StringFixed(2))
	assert.True(t, res.HasCheaper())

	// Under CancelAny the non-refundable alternate is the same offer as best; it is kept.
	require.Len(t, res.Alternates, 2)
	assert.Equal(t, "Standard", res.Alternates[0].Rate.RateName)
	assert.True(t, res.Alternates[0].Rate.PricePerNight.Equal(dec("150")))
	assert.Equal(t, "Prepay", res.Alternates[1].Rate.RateName)
	assert.True(t, res.Alternates[1].Rate.SameOffer(res.Best.Rate))

	require.Len(t, res.RateRows, 3)
	assert.Equal(t, []string{"Prepay", "Standard", "Flex"}, []string{
		res.RateRows[0].Rate.RateName, res.RateRows[1].Rate.RateName, res.RateRows[2].Rate.RateName,
	})
	assert.True(t, res.RateRows[0].IsBest)
	assert.False(t, res.RateRows[1].IsBest)
	require.NotNil(t, res.RateRows[2].Savings)
	assert.True(t, res.RateRows[2].Savings.DiffPerNight.Equal(dec("19")))
}

func TestBuild_NoComparableRate(t *testing.T) {
	rates := []domain.RateRecord{cash("Mystery", "K", "120", domain.RefundUnknown)}
	res, err := compare.Build(rates, reservation("200", 3, domain.CancelRefundable))
	require.NoError(t, err)
	assert.Nil(t, res.Best)
	assert.False(t, res.HasCheaper())
	assert.Empty(t, res.Alternates)
	require.Len(t, res.RateRows, 1)
	assert.False(t, res.RateRows[0].IsBest)
}

func TestBuild_UnpricedRowsLast(t *testing.T) {
	rates := []domain.RateRecord{
		points("Award B", "K", 50000),
		cash("Standard", "K", "150", domain.Refundable),
		points("Award A", "Q", 45000),
		cash("Prepay", "K", "140", domain.NonRefundable),
	}
	res, err := compare.Build(rates, reservation("229", 1, domain.CancelAny))
	require.NoError(t, err)
	names := make([]string, 0, len(res.RateRows))
	for _, r := range res.RateRows {
		names = append(names, r.Rate.RateName)
	}
	assert.Equal(t, []string{"Prepay", "Standard", "Award A", "Award B"}, names)
	assert.Nil(t, res.RateRows[2].Savings, "points rows have no cash savings")
}

func TestBuild_AwardStay(t *testing.T) {
	cfg := reservation("55000", 2, domain.CancelAny)
	cfg.StayType = domain.StayAward
	rates := []domain.RateRecord{
		cash("Standard", "K", "150", domain.Refundable),
		points("Award A", "K", 60000),
		points("Award B", "Q", 45000),
		points("Award C", "S", 50000),
	}
	res, err := compare.Build(rates, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, int64(45000), *res.Best.Rate.PointsPerNight)
	assert.True(t, res.Best.Savings.DiffTotal.Equal(dec("20000")))
}

func TestBuild_AwardBestHiddenByDedup(t *testing.T) {
	cfg := reservation("55000", 2, domain.CancelAny)
	cfg.StayType = domain.StayAward
	rates := []domain.RateRecord{
		points("Award", "K", 60000),
		points("Award", "K", 45000),
	}
	res, err := compare.Build(rates, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	assert.Equal(t, int64(45000), *res.Best.Rate.PointsPerNight, "selection sees every record")

	require.Len(t, res.RateRows, 1)
	assert.Equal(t, int64(60000), *res.RateRows[0].Rate.PointsPerNight, "first points offer kept on collision")
	assert.False(t, res.RateRows[0].IsBest)
}

func TestBuild_RejectsInvalidInput(t *testing.T) {
	_, err := compare.Build(nil, reservation("0", 2, domain.CancelAny))
	assert.ErrorIs(t, err, domain.ErrInvalidReservation)

	cfg := reservation("200", 2, domain.CancelAny)
	cfg.CheckOut = cfg.CheckIn
	_, err = compare.Build(nil, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidReservation)

	bad := domain.RateRecord{RateName: "Empty", RoomTypeCode: "K"}
	_, err = compare.Build([]domain.RateRecord{bad}, reservation("200", 2, domain.CancelAny))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestBuild_ConcurrentRuns(t *testing.T) {
	rates := []domain.RateRecord{
		cash("Standard", "KING", "150.00", domain.Refundable),
		cash("Prepay", "KING", "140.00", domain.NonRefundable),
		cash("Flex", "QQ", "160.00", domain.Refundable),
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := compare.Build(rates, reservation("229", 2, domain.CancelAny))
			assert.NoError(t, err)
			assert.Equal(t, "Prepay", res.Best.Rate.RateName)
		}()
	}
	wg.Wait()
	assert.Equal(t, "Standard", rates[0].RateName)
}
