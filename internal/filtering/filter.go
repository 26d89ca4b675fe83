package filtering

import (
	"errors"
	"math"

	"seismo-index-lab/internal/domain"
)

// Errors returned when filtering empties the catalog. The two conditions
// are distinct outcomes and carry distinct diagnostics downstream.
var (
	ErrNoEventsAboveCutoff = errors.New("no earthquakes above threshold")
	ErrNoEventsInWindow    = errors.New("no earthquakes during injection interval")
)

// Apply reduces an aligned catalog to the usable earthquake subset and
// rebases event volumes to the window origin. Steps run in this order, each
// on the survivors of the previous one:
//
//  1. drop events with magnitude strictly below the cutoff
//  2. if VolumeEnd is set, drop events whose volume exceeds it
//  3. rebase: with VolumeStart unset, subtract the earliest survivor's
//     volume (Vs) and keep strictly positive results; with VolumeStart set,
//     keep un-rebased volumes >= VolumeStart, then subtract VolumeStart
//  4. drop events whose volume is undefined (outside the injection domain)
//
// The boundary rules of the two rebasing branches differ on purpose: the
// implicit origin excludes the origin event itself, an explicit VolumeStart
// keeps an event at exactly VolumeStart (rebased volume 0). Downstream
// consumers depend on this exact behavior.
func Apply(aligned domain.AlignedCatalog, params domain.FitParameters) (domain.FilteredCatalog, error) {
	volumes := make([]float64, 0, aligned.Len())
	mags := make([]float64, 0, aligned.Len())
	for i, m := range aligned.Magnitudes {
		if m < params.MagnitudeCutoff {
			continue
		}
		volumes = append(volumes, aligned.Volumes[i])
		mags = append(mags, m)
	}
	if len(volumes) == 0 {
		return domain.FilteredCatalog{}, ErrNoEventsAboveCutoff
	}

	if params.VolumeEnd != 0 {
		keptV := volumes[:0]
		keptM := mags[:0]
		for i, v := range volumes {
			if v > params.VolumeEnd {
				continue
			}
			keptV = append(keptV, v)
			keptM = append(keptM, mags[i])
		}
		volumes, mags = keptV, keptM
	}
	if len(volumes) == 0 {
		return domain.FilteredCatalog{}, ErrNoEventsInWindow
	}

	// Volume at the earliest survivor, before any rebasing. NaN here (an
	// event outside the injection domain) turns every implicitly rebased
	// volume into NaN, emptying the window below.
	vs := volumes[0]

	keptV := volumes[:0]
	keptM := mags[:0]
	if params.VolumeStart == 0 {
		for i, v := range volumes {
			rebased := v - vs
			if rebased > 0 {
				keptV = append(keptV, rebased)
				keptM = append(keptM, mags[i])
			}
		}
	} else {
		for i, v := range volumes {
			if v >= params.VolumeStart {
				keptV = append(keptV, v-params.VolumeStart)
				keptM = append(keptM, mags[i])
			}
		}
	}
	volumes, mags = keptV, keptM

	keptV = volumes[:0]
	keptM = mags[:0]
	for i, v := range volumes {
		if math.IsNaN(v) {
			continue
		}
		keptV = append(keptV, v)
		keptM = append(keptM, mags[i])
	}
	volumes, mags = keptV, keptM

	if len(volumes) == 0 {
		return domain.FilteredCatalog{}, ErrNoEventsInWindow
	}

	return domain.FilteredCatalog{
		Volumes:    volumes,
		Magnitudes: mags,
		Vs:         vs,
	}, nil
}
