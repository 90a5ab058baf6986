// Package scene holds the shared vocabulary of the generator: the scene configuration, the architecture
// table keyed by duration, the shape of a generated scene and the validator that gates replies from the
// generation service.
package scene

import (
	"fmt"
	"strings"
)

// Duration is a scene length in minutes. Only the values returned by Durations are supported.
type Duration int

const (
	Duration3  Duration = 3
	Duration5  Duration = 5
	Duration10 Duration = 10
	Duration20 Duration = 20
)

// Durations returns the supported durations in ascending order.
func Durations() []Duration {
	return []Duration{Duration3, Duration5, Duration10, Duration20}
}

func (d Duration) Valid() bool {
	_, ok := architectureTable[d]
	return ok
}

// Seconds is the total runtime the generated scene must hit.
func (d Duration) Seconds() int {
	return int(d) * 60
}

func (d Duration) Label() string {
	return fmt.Sprintf("%d Minutes", int(d))
}

// ParseDuration checks that minutes is one of the supported durations.
func ParseDuration(minutes int) (Duration, error) {
	d := Duration(minutes)
	if !d.Valid() {
		return 0, Configurationf("unsupported duration %d (want one of 3, 5, 10, 20 minutes)", minutes)
	}
	return d, nil
}

// SceneType selects the style layer of the composed prompt.
type SceneType string

const (
	CinematicBrand       SceneType = "cinematic-brand"
	LuxuryCommercial     SceneType = "luxury-commercial"
	Documentary          SceneType = "documentary"
	HyperRealPerformance SceneType = "hyper-real-performance"
)

var sceneTypeLabels = map[SceneType]string{
	CinematicBrand:       "Cinematic Brand Film",
	LuxuryCommercial:     "Luxury Commercial",
	Documentary:          "Documentary Style",
	HyperRealPerformance: "Hyper-Real Performance",
}

// SceneTypes returns the supported scene types in display order.
func SceneTypes() []SceneType {
	return []SceneType{CinematicBrand, LuxuryCommercial, Documentary, HyperRealPerformance}
}

func (t SceneType) Valid() bool {
	_, ok := sceneTypeLabels[t]
	return ok
}

// Label is the human-readable style name used in prompts and views.
func (t SceneType) Label() string {
	if label, ok := sceneTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseSceneType matches s exactly against the supported scene type tags.
func ParseSceneType(s string) (SceneType, error) {
	t := SceneType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", Configurationf("unsupported scene type %q (want one of %s)", s, strings.Join(sceneTypeNames(), ", "))
	}
	return t, nil
}

func sceneTypeNames() []string {
	types := SceneTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// Config is the user-authored input of one generation attempt.
type Config struct {
	Duration        Duration  `json:"duration" yaml:"duration"`
	SceneType       SceneType `json:"sceneType" yaml:"scene_type"`
	VisualMood      string    `json:"visualMood" yaml:"visual_mood"`
	Location        string    `json:"location" yaml:"location"`
	BrandReferences string    `json:"brandReferences,omitempty" yaml:"brand_references,omitempty"`
}

// Validate rejects values outside the closed enumerations and blank free-text fields.
func (c Config) Validate() error {
	if !c.Duration.Valid() {
		return Configurationf("unsupported duration %d (want one of 3, 5, 10, 20 minutes)", int(c.Duration))
	}
	if !c.SceneType.Valid() {
		return Configurationf("unsupported scene type %q (want one of %s)", string(c.SceneType), strings.Join(sceneTypeNames(), ", "))
	}
	if strings.TrimSpace(c.VisualMood) == "" {
		return Configurationf("visual mood is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		return Configurationf("location is required")
	}
	return nil
}

// GeneratedScene is the structured reply of the generation service. It is read-only once received.
type GeneratedScene struct {
	Overview         Overview     `json:"overview"`
	Architecture     Architecture `json:"architecture"`
	TimingMap        TimingMap    `json:"timingMap"`
	VeoPrompt        string       `json:"veoPrompt" jsonschema_description:"A single self-contained, copy-ready video prompt."`
	QualityChecklist []string     `json:"qualityChecklist"`
}

type Overview struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Type     string `json:"type"`
	Mood     string `json:"mood"`
	Location string `json:"location"`
	Logline  string `json:"logline"`
}

type Architecture struct {
	TotalDuration int   `json:"totalDuration" jsonschema_description:"Total runtime in seconds."`
	TotalShots    int   `json:"totalShots"`
	ActCount      int   `json:"actCount"`
	Acts          []Act `json:"acts"`
}

type Act struct {
	ActNumber       int    `json:"actNumber"`
	Title           string `json:"title"`
	StartTime       string `json:"startTime" jsonschema_description:"MM:SS"`
	EndTime         string `json:"endTime" jsonschema_description:"MM:SS"`
	DurationSeconds int    `json:"durationSeconds"`
	EmotionalArc    string `json:"emotionalArc"`
	Shots           []Shot `json:"shots"`
}

type Shot struct {
	ShotNumber      int    `json:"shotNumber"`
	StartTime       string `json:"startTime" jsonschema_description:"MM:SS"`
	EndTime         string `json:"endTime" jsonschema_description:"MM:SS"`
	DurationSeconds int    `json:"durationSeconds"`
	CameraType      string `json:"cameraType"`
	Lens            string `json:"lens"`
	Movement        string `json:"movement"`
	Lighting        string `json:"lighting"`
	EmotionalIntent string `json:"emotionalIntent"`
	SoundCue        string `json:"soundCue"`
	Description     string `json:"description"`
}

type TimingMap struct {
	TotalRuntime string        `json:"totalRuntime"`
	Tolerance    string        `json:"tolerance"`
	Breakdown    []TimingEntry `json:"breakdown"`
}

type TimingEntry struct {
	Act   int    `json:"act"`
	Start string `json:"start"`
	End   string `json:"end"`
	Shots int    `json:"shots"`
}

// ShotCount counts the shots of every act.
func (s *GeneratedScene) ShotCount() int {
	n := 0
	for _, act := range s.Architecture.Acts {
		n += len(act.Shots)
	}
	return n
}
