package dataprocessing

import (
	"fmt"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// StatusMode selects how shipment statuses are normalized and scored
type StatusMode string

const (
	// StatusModeEnum keeps Shipped/Delivered/Delayed/Unknown
	StatusModeEnum StatusMode = config.StatusModeEnum
	// StatusModeKeyword classifies free text into shipped/in_transit/delivered/cancelled
	StatusModeKeyword StatusMode = config.StatusModeKeyword
)

// Profile is a named set of cleaning and aggregation switches.
// Both the enum and keyword behaviours exist in production data, so a run
// picks one explicitly instead of mixing them.
type Profile struct {
	Name string

	// CommonCleanup lists entities whose text fields are trimmed and stripped
	// of characters outside [A-Za-z0-9 :/-] before any other step.
	CommonCleanup map[domain.Entity]bool

	// Dedupe lists entities deduplicated by id, keeping the first occurrence
	Dedupe map[domain.Entity]bool

	StatusMode StatusMode

	// RefundScale divides every cleaned refund amount. 1 leaves amounts as parsed.
	RefundScale float64

	// TopN bounds the customer and product rankings
	TopN int

	// CarrierLimit and ReasonLimit bound the carrier and reason blocks; 0 keeps every group
	CarrierLimit int
	ReasonLimit  int
}

func entitySet(entities ...domain.Entity) map[domain.Entity]bool {
	set := make(map[domain.Entity]bool, len(entities))
	for _, e := range entities {
		set[e] = true
	}
	return set
}

// StandardProfile validates statuses against the canonical enum and reports every carrier and reason
func StandardProfile() Profile {
	return Profile{
		Name:          config.ProfileStandard,
		CommonCleanup: entitySet(domain.EntityShipments),
		Dedupe:        entitySet(domain.Entities()...),
		StatusMode:    StatusModeEnum,
		RefundScale:   1,
		TopN:          5,
	}
}

// LegacyProfile reproduces the keyword-based shipment scoring. Refunds go
// through common cleanup, which removes the decimal point, so amounts are
// scaled back by 100 and duplicates are kept.
func LegacyProfile() Profile {
	return Profile{
		Name:          config.ProfileLegacy,
		CommonCleanup: entitySet(domain.EntityShipments, domain.EntityRefunds),
		Dedupe: entitySet(
			domain.EntityCustomers,
			domain.EntityProducts,
			domain.EntityOrders,
			domain.EntityShipments,
		),
		StatusMode:   StatusModeKeyword,
		RefundScale:  100,
		TopN:         5,
		CarrierLimit: 5,
		ReasonLimit:  5,
	}
}

// ProfileByName returns a built-in profile
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", config.ProfileStandard:
		return StandardProfile(), nil
	case config.ProfileLegacy:
		return LegacyProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown cleaning profile %q", name)
	}
}

// ProfileFromConfig resolves the profile named in cfg and applies the status mode override
func ProfileFromConfig(cfg *config.Config) (Profile, error) {
	p, err := ProfileByName(cfg.Pipeline.Profile)
	if err != nil {
		return Profile{}, err
	}
	p.StatusMode = StatusMode(cfg.EffectiveStatusMode())
	return p, nil
}
