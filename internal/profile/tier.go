package profile

// Tier is a named skill band. Tiers are ordered: a higher Tier is a better
// band.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
	TierMaster
	TierGrandMaster
)

// Tiers lists every band from lowest to highest.
var Tiers = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierMaster, TierGrandMaster}

// tierFloors holds the lowest level of every band above bronze.
var tierFloors = []struct {
	floor int
	tier  Tier
}{
	{4000, TierGrandMaster},
	{3500, TierMaster},
	{3000, TierDiamond},
	{2500, TierPlatinum},
	{2000, TierGold},
	{1500, TierSilver},
}

// TierFor buckets a rating level. Anything under 1500, zero and negative
// levels included, is bronze; 4000 and above is grand master.
func TierFor(level int) Tier {
	for _, t := range tierFloors {
		if level >= t.floor {
			return t.tier
		}
	}
	return TierBronze
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	case TierPlatinum:
		return "Platinum"
	case TierDiamond:
		return "Diamond"
	case TierMaster:
		return "Master"
	case TierGrandMaster:
		return "Grand Master"
	}
	return "Unknown"
}
