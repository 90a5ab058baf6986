package scene

// TimeTolerance is the allowed deviation, in seconds, of the total runtime.
const TimeTolerance = 2

// ToleranceLabel is how the tolerance is spelled in prompts and timing maps.
const ToleranceLabel = "±2 seconds"

// ArchitectureSpec is the structural pacing skeleton for one duration.
// AvgShotDurationSeconds is advisory text for the prompt, nothing derives shot lengths from it.
type ArchitectureSpec struct {
	ActCount               int   `json:"actCount"`
	ShotsPerAct            []int `json:"shotsPerAct"`
	AvgShotDurationSeconds int   `json:"avgShotDurationSeconds"`
}

var architectureTable = map[Duration]ArchitectureSpec{
	Duration3:  {ActCount: 2, ShotsPerAct: []int{5, 6}, AvgShotDurationSeconds: 16},
	Duration5:  {ActCount: 3, ShotsPerAct: []int{5, 8, 5}, AvgShotDurationSeconds: 17},
	Duration10: {ActCount: 4, ShotsPerAct: []int{6, 10, 10, 6}, AvgShotDurationSeconds: 19},
	Duration20: {ActCount: 5, ShotsPerAct: []int{8, 12, 14, 12, 8}, AvgShotDurationSeconds: 22},
}

// Lookup returns the architecture for d. d must be one of Durations(); anything else is a caller bug and
// panics. Use LookupChecked for untrusted input.
func Lookup(d Duration) ArchitectureSpec {
	spec, err := LookupChecked(d)
	if err != nil {
		panic(err)
	}
	return spec
}

// LookupChecked is Lookup returning a configuration error for an unsupported duration.
func LookupChecked(d Duration) (ArchitectureSpec, error) {
	spec, ok := architectureTable[d]
	if !ok {
		return ArchitectureSpec{}, Configurationf("unsupported duration %d (want one of 3, 5, 10, 20 minutes)", int(d))
	}
	// copy so callers cannot reach into the table
	spec.ShotsPerAct = append([]int(nil), spec.ShotsPerAct...)
	return spec, nil
}

// TotalShots is the canonical shot count for the architecture.
func (a ArchitectureSpec) TotalShots() int {
	total := 0
	for _, n := range a.ShotsPerAct {
		total += n
	}
	return total
}

// TotalSeconds is the runtime target for d.
func (a ArchitectureSpec) TotalSeconds(d Duration) int {
	return d.Seconds()
}
