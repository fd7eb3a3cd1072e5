// Package catalog defines the static activity catalog and the canonical
// activity set used for overall-score averaging.
package catalog

// Category classifies an activity for category-restricted aggregates.
type Category string

// InputType describes how a raw submitted value is interpreted.
type InputType string

// Activity categories.
const (
	Strength  Category = "STRENGTH"
	Endurance Category = "ENDURANCE"
)

// Raw input types.
const (
	Weight   InputType = "WEIGHT"   // kilograms
	Time     InputType = "TIME"     // seconds, fractional allowed
	Distance InputType = "DISTANCE" // meters
)

// Activity is one static catalog entry. The catalog is closed: entries are
// defined at compile time and never mutated.
type Activity struct {
	ID           string
	Name         string
	Category     Category
	InputType    InputType
	Unit         string
	SupportsReps bool
	MinReps      int
	MaxReps      int
	DefaultReps  int
}

// Activity IDs. These are the only IDs the scoring engine accepts.
const (
	Squat    = "squat"
	Bench    = "bench"
	Deadlift = "deadlift"
	Row500   = "row500"
	Row2000  = "row2000"
	Bike500  = "bike500"
	Ski500   = "ski500"
	Row4Min  = "row4min"
)

// all is the full closed catalog, in display order.
var all = []Activity{
	{ID: Squat, Name: "Back Squat", Category: Strength, InputType: Weight, Unit: "kg", SupportsReps: true, MinReps: 1, MaxReps: 10, DefaultReps: 1},
	{ID: Bench, Name: "Bench Press", Category: Strength, InputType: Weight, Unit: "kg", SupportsReps: true, MinReps: 1, MaxReps: 10, DefaultReps: 1},
	{ID: Deadlift, Name: "Deadlift", Category: Strength, InputType: Weight, Unit: "kg", SupportsReps: true, MinReps: 1, MaxReps: 10, DefaultReps: 1},
	{ID: Row500, Name: "500m Row", Category: Endurance, InputType: Time, Unit: "s"},
	{ID: Row2000, Name: "2000m Row", Category: Endurance, InputType: Time, Unit: "s"},
	{ID: Bike500, Name: "500m Bike Erg", Category: Endurance, InputType: Time, Unit: "s"},
	{ID: Ski500, Name: "500m Ski Erg", Category: Endurance, InputType: Time, Unit: "s"},
	{ID: Row4Min, Name: "4 Minute Row", Category: Endurance, InputType: Distance, Unit: "m"},
}

// DefaultExclusions lists activity IDs omitted from the canonical set unless
// configuration overrides them. The 4-minute row is a variant event that does
// not participate in overall averaging.
var DefaultExclusions = []string{Row4Min}

// Lookup returns the catalog entry for id. The second return is false when id
// is not in the catalog.
func Lookup(id string) (Activity, bool) {
	for _, a := range all {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

// All returns a copy of the full catalog in display order.
func All() []Activity {
	out := make([]Activity, len(all))
	copy(out, all)
	return out
}

// Set is a named, ordered collection of activities used as the denominator for
// overall-score averaging. Totals always average over the whole set, so an
// activity a user never attempted still counts against them.
type Set struct {
	activities []Activity
	byID       map[string]Activity
}

// NewSet builds a Set from the full catalog minus the given exclusions.
// Unknown exclusion IDs are ignored.
func NewSet(exclusions []string) Set {
	excluded := make(map[string]struct{}, len(exclusions))
	for _, id := range exclusions {
		excluded[id] = struct{}{}
	}
	s := Set{byID: make(map[string]Activity)}
	for _, a := range all {
		if _, skip := excluded[a.ID]; skip {
			continue
		}
		s.activities = append(s.activities, a)
		s.byID[a.ID] = a
	}
	return s
}

// CanonicalSet returns the default canonical set.
func CanonicalSet() Set {
	return NewSet(DefaultExclusions)
}

// Contains reports whether id is part of the set.
func (s Set) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Activities returns the set's activities in display order.
func (s Set) Activities() []Activity {
	out := make([]Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// IDs returns the set's activity IDs in display order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.activities))
	for _, a := range s.activities {
		ids = append(ids, a.ID)
	}
	return ids
}

// Len returns the number of activities in the set.
func (s Set) Len() int {
	return len(s.activities)
}

// Restrict returns a new Set containing only the activities of s in the given
// category. The restricted set keeps the original ordering.
func (s Set) Restrict(c Category) Set {
	out := Set{byID: make(map[string]Activity)}
	for _, a := range s.activities {
		if a.Category != c {
			continue
		}
		out.activities = append(out.activities, a)
		out.byID[a.ID] = a
	}
	return out
}
