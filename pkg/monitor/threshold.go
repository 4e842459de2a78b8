package monitor

// Threshold is one severity rule of a monitor. Each monitor carries a
// small static table of thresholds ordered from most to least severe.
type Threshold struct {
	// Type tags the notification records produced for this threshold and
	// keys the dedup check together with the entity id.
	Type string

	// Title is the human-readable notification title.
	Title string

	// Emoji prefixes the rendered message or title.
	Emoji string

	// Match reports whether the metric reaches this threshold.
	Match func(Metric) bool
}

// Classify returns the single highest-severity threshold reached by the
// metric. Thresholds are evaluated in table order, so the first match wins
// and a subject at 95% gets "critical", never also "warning".
func Classify(m Metric, thresholds []Threshold) (Threshold, bool) {
	for _, t := range thresholds {
		if t.Match(m) {
			return t, true
		}
	}
	return Threshold{}, false
}
