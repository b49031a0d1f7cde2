package records

// TypeKey identifies an activity type. Known keys have constants below; any
// other non-empty key is carried through unchanged, and the empty key means
// the source gave no usable type.
type TypeKey string

const (
	TypeRunning          TypeKey = "running"
	TypeTrailRunning     TypeKey = "trail_running"
	TypeTrackRunning     TypeKey = "track_running"
	TypeIndoorRunning    TypeKey = "indoor_running"
	TypeStreetRunning    TypeKey = "street_running"
	TypeTreadmillRunning TypeKey = "treadmill_running"
	TypeCycling          TypeKey = "cycling"
	TypeIndoorCycling    TypeKey = "indoor_cycling"
	TypeWalking          TypeKey = "walking"
	TypeHiking           TypeKey = "hiking"
	TypeSwimming         TypeKey = "swimming"
	TypeLapSwimming      TypeKey = "lap_swimming"
	TypeOpenWaterSwim    TypeKey = "open_water_swimming"
	TypeStrength         TypeKey = "strength_training"
	TypeYoga             TypeKey = "yoga"
	TypeCardio           TypeKey = "indoor_cardio"

	// TypeUnknown is the key of an activity whose type could not be read.
	TypeUnknown TypeKey = ""
)

var runningFamily = map[TypeKey]struct{}{
	TypeRunning:          {},
	TypeTrailRunning:     {},
	TypeTrackRunning:     {},
	TypeIndoorRunning:    {},
	TypeStreetRunning:    {},
	TypeTreadmillRunning: {},
}

var knownTypes = map[TypeKey]struct{}{
	TypeCycling:       {},
	TypeIndoorCycling: {},
	TypeWalking:       {},
	TypeHiking:        {},
	TypeSwimming:      {},
	TypeLapSwimming:   {},
	TypeOpenWaterSwim: {},
	TypeStrength:      {},
	TypeYoga:          {},
	TypeCardio:        {},
}

// Known reports whether k is one of the enumerated keys.
func (k TypeKey) Known() bool {
	if _, ok := runningFamily[k]; ok {
		return true
	}
	_, ok := knownTypes[k]
	return ok
}

// IsRunning reports whether k belongs to the running family.
func (k TypeKey) IsRunning() bool {
	_, ok := runningFamily[k]
	return ok
}

func (k TypeKey) String() string {
	if k == TypeUnknown {
		return "unknown"
	}
	return string(k)
}

// FilterRunning returns the running-family activities of acts, order kept.
func FilterRunning(acts []Activity) []Activity {
	out := make([]Activity, 0, len(acts))
	for _, a := range acts {
		if a.Type.IsRunning() {
			out = append(out, a)
		}
	}
	return out
}
