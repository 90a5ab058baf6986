package scene

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed sample_scene.json
var sampleJSON []byte

// SampleConfig is the configuration the bundled sample was produced for.
var SampleConfig = Config{
	Duration:   Duration5,
	SceneType:  LuxuryCommercial,
	VisualMood: "Warm intimacy meeting cold precision",
	Location:   "Swiss watchmaking atelier",
}

// SampleJSON returns a copy of the bundled sample reply.
func SampleJSON() []byte {
	return append([]byte(nil), sampleJSON...)
}

// Sample returns a freshly decoded copy of the bundled sample reply, usable without calling the
// generation service.
func Sample() *GeneratedScene {
	var s GeneratedScene
	if err := json.Unmarshal(sampleJSON, &s); err != nil {
		panic(fmt.Sprintf("bundled sample scene is invalid: %v", err))
	}
	return &s
}
