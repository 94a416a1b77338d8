package app

// Reference board configuration. Keep this centralized so tests or local runs
// can adjust the default without touching multiple call sites.
const (
	DefaultDimension = 10
	DefaultMineCount = 10
)
