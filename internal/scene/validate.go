package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var requiredTopLevel = []string{"overview", "architecture", "veoPrompt"}

// Validate gates a reply of the generation service. Text that is not JSON is a parse error. Otherwise the
// payload must be an object whose overview, architecture and veoPrompt members are present and not
// empty-valued (null, false, 0, ""); any other JSON value is a shape error naming all three. Nothing below
// the top level is checked: inner members are decoded best-effort into the typed result. Use ValidateStrict
// for the deep checks.
func Validate(payload []byte) (*GeneratedScene, error) {
	payload = bytes.TrimSpace(payload)
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, Parsef(err, "Failed to parse API response as JSON")
	}

	// any other JSON value falls through to the field check with nothing present
	fields := map[string]json.RawMessage{}
	if _, ok := doc.(map[string]any); ok {
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, Parsef(err, "Failed to parse API response as JSON")
		}
	}

	var missing []string
	for _, name := range requiredTopLevel {
		if emptyJSONValue(fields[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, Shapef("API response missing required fields: %s", strings.Join(missing, ", "))
	}

	s := &GeneratedScene{}
	// decoding errors of inner members are deliberately ignored, json.Unmarshal keeps what it could fill
	_ = json.Unmarshal(fields["overview"], &s.Overview)
	_ = json.Unmarshal(fields["architecture"], &s.Architecture)
	if raw, ok := fields["timingMap"]; ok {
		_ = json.Unmarshal(raw, &s.TimingMap)
	}
	if raw, ok := fields["qualityChecklist"]; ok {
		_ = json.Unmarshal(raw, &s.QualityChecklist)
	}
	if err := json.Unmarshal(fields["veoPrompt"], &s.VeoPrompt); err != nil {
		s.VeoPrompt = string(fields["veoPrompt"])
	}
	return s, nil
}

func emptyJSONValue(raw json.RawMessage) bool {
	switch v := strings.TrimSpace(string(raw)); v {
	case "", "null", "false", `""`:
		return true
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f == 0
		}
		return false
	}
}

var clockPattern = regexp.MustCompile(`^(\d{2,}):([0-5]\d)$`)

// ParseClock converts an MM:SS time into seconds.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("time %q is not in MM:SS format", s)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	return minutes*60 + seconds, nil
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ValidateStrict cross-checks a scene that already passed Validate against the architecture requested by
// cfg: counts, MM:SS boundaries, start/end/duration triples, contiguity and the total runtime tolerance.
// All violations are reported together in one consistency error.
func ValidateStrict(s *GeneratedScene, cfg Config) error {
	if s == nil {
		return Shapef("no scene to validate")
	}
	spec, err := LookupChecked(cfg.Duration)
	if err != nil {
		return err
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	arch := s.Architecture
	if got := s.ShotCount(); arch.TotalShots != got {
		addf("totalShots is %d but acts contain %d shots", arch.TotalShots, got)
	}
	if arch.ActCount != len(arch.Acts) {
		addf("actCount is %d but %d acts are present", arch.ActCount, len(arch.Acts))
	}
	if len(arch.Acts) != spec.ActCount {
		addf("expected %d acts for a %d-minute scene, got %d", spec.ActCount, int(cfg.Duration), len(arch.Acts))
	}
	if diff := arch.TotalDuration - cfg.Duration.Seconds(); diff > TimeTolerance || diff < -TimeTolerance {
		addf("totalDuration %d is outside %d seconds %s", arch.TotalDuration, cfg.Duration.Seconds(), ToleranceLabel)
	}

	cursor := 0
	for i, act := range arch.Acts {
		label := fmt.Sprintf("act %d", act.ActNumber)
		if i < len(spec.ShotsPerAct) && len(act.Shots) != spec.ShotsPerAct[i] {
			addf("%s has %d shots, expected %d", label, len(act.Shots), spec.ShotsPerAct[i])
		}
		if strings.TrimSpace(act.Title) == "" || strings.TrimSpace(act.EmotionalArc) == "" {
			addf("%s is missing title or emotionalArc", label)
		}
		start, end, ok := checkSpan(label, act.StartTime, act.EndTime, act.DurationSeconds, addf)
		if ok && start != cursor {
			addf("%s starts at %s, expected %s", label, act.StartTime, FormatClock(cursor))
		}

		shotCursor := start
		for _, shot := range act.Shots {
			shotLabel := fmt.Sprintf("%s shot %d", label, shot.ShotNumber)
			if missing := missingShotFields(shot); len(missing) > 0 {
				addf("%s is missing %s", shotLabel, strings.Join(missing, ", "))
			}
			sStart, sEnd, sok := checkSpan(shotLabel, shot.StartTime, shot.EndTime, shot.DurationSeconds, addf)
			if !sok {
				continue
			}
			if ok && sStart != shotCursor {
				addf("%s starts at %s, expected %s", shotLabel, shot.StartTime, FormatClock(shotCursor))
			}
			shotCursor = sEnd
		}
		if ok && len(act.Shots) > 0 && shotCursor != end {
			addf("%s shots end at %s but the act ends at %s", label, FormatClock(shotCursor), act.EndTime)
		}
		if ok {
			cursor = end
		}
	}

	if len(problems) > 0 {
		return Consistencyf("scene is inconsistent with the requested architecture: %s", strings.Join(problems, "; "))
	}
	return nil
}

func checkSpan(label, startText, endText string, duration int, addf func(string, ...any)) (int, int, bool) {
	start, err := ParseClock(startText)
	if err != nil {
		addf("%s startTime: %v", label, err)
		return 0, 0, false
	}
	end, err := ParseClock(endText)
	if err != nil {
		addf("%s endTime: %v", label, err)
		return 0, 0, false
	}
	if end-start != duration {
		addf("%s spans %s-%s (%ds) but durationSeconds is %d", label, startText, endText, end-start, duration)
	}
	return start, end, true
}

func missingShotFields(s Shot) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"cameraType", s.CameraType},
		{"lens", s.Lens},
		{"movement", s.Movement},
		{"lighting", s.Lighting},
		{"emotionalIntent", s.EmotionalIntent},
		{"soundCue", s.SoundCue},
		{"description", s.Description},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
