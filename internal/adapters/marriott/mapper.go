package marriott

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/compare"
	"hotel_ratecheck/internal/domain"
)

const (
	modeCash   = "HotelRoomRateModesCash"
	modePoints = "HotelRoomRateModesPoints"
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupMap(m map[string]any, path string) map[string]any {
	if v, ok := lookupAny(m, path).(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

func lookupBool(m map[string]any, path string) bool {
	switch v := lookupAny(m, path).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// firstInt64Flexible: int64 from several paths (float64/json.Number/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return &n
			}
		case string:
			s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// decimalFlexible reads a number that may arrive as float, json.Number or string.
func decimalFlexible(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	}
	return decimal.Zero, false
}

// parsePrice converts a MonetaryAmount (minor units + decimalPoint) into a price.
func parsePrice(amount map[string]any) (*decimal.Decimal, string) {
	raw, ok := decimalFlexible(lookupAny(amount, "amount"))
	if !ok {
		return nil, ""
	}
	dp := int64(2)
	if v := firstInt64Flexible(amount, "decimalPoint"); v != nil {
		dp = *v
	}
	p := raw.Shift(-int32(dp))
	if p.IsNegative() {
		return nil, ""
	}
	return &p, lookupStr(amount, "currency")
}

// freeCancellation keeps any truthy marker; its content is opaque.
func freeCancellation(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return &t
	case bool:
		if !t {
			return nil
		}
	}
	s := fmt.Sprint(v)
	return &s
}

func firstRatePlan(basic map[string]any) map[string]any {
	switch v := lookupAny(basic, "ratePlan").(type) {
	case []any:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				return m
			}
		}
	case map[string]any:
		return v
	}
	return map[string]any{}
}

/********** room mapper **********/

// mapRooms flattens searchProductsByProperty edges into rate records with
// refundability already classified. Unknown rate modes and rooms with
// neither price nor points are dropped.
func mapRooms(payload map[string]any) []domain.RateRecord {
	edges, _ := lookupAny(payload, "data.commerce.product.searchProductsByProperty.edges").([]any)
	out := make([]domain.RateRecord, 0, len(edges))
	for _, e := range edges {
		edge, ok := e.(map[string]any)
		if !ok {
			continue
		}
		node := lookupMap(edge, "node")
		if lookupStr(node, "__typename") != "HotelRoom" {
			continue
		}
		basic := lookupMap(node, "basicInformation")
		rates := lookupMap(node, "rates")
		modes := lookupMap(rates, "rateModes")

		rec := domain.RateRecord{
			RoomTypeCode:          strings.ToUpper(lookupStr(basic, "type")),
			RoomTypeName:          lookupStr(basic, "name"),
			RoomDescription:       lookupStr(basic, "description"),
			RateName:              lookupStr(rates, "name"),
			IsMembersOnly:         lookupBool(basic, "isMembersOnly"),
			DepositRequired:       lookupBool(basic, "depositRequired"),
			FreeCancellationUntil: freeCancellation(lookupAny(basic, "freeCancellationUntil")),
		}
		if rec.RoomTypeName == "" {
			rec.RoomTypeName = "Room"
		}
		plan := firstRatePlan(basic)
		rec.RatePlanCode = lookupStr(plan, "ratePlanCode")
		rec.MarketCode = lookupStr(plan, "marketCode")

		stay := domain.StayCash
		switch lookupStr(modes, "__typename") {
		case modePoints:
			stay = domain.StayAward
			rec.PointsPerNight = firstInt64Flexible(modes, "pointsPerUnit.points")
		case modeCash:
			rec.PricePerNight, rec.Currency = parsePrice(lookupMap(modes, "averageNightlyRatePerUnit.amount"))
		default:
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Debug().Err(err).Str("context", "mapRooms").Msg("skipping room")
			continue
		}
		rec.Refundability = compare.Classify(rec, stay)
		out = append(out, rec)
	}
	return out
}
