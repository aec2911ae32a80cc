package weather

import (
	"time"

	"github.com/loenard97/weather-crawler/internal/types"
)

// Reading is one decoded observation. Values holds one entry per element of
// Fields, keyed by Field.Variable.
type Reading struct {
	Coordinates types.Coordinates
	Time        time.Time
	Timezone    string
	Values      map[string]float64
}

// Value returns the value of a schema field.
func (r *Reading) Value(f Field) (float64, bool) {
	v, ok := r.Values[f.Variable]
	return v, ok
}
