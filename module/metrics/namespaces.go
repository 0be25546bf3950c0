package metrics

// Prometheus metric namespaces
const (
	namespaceBanhammer = "banhammer"
)

// Banhammer subsystems
const (
	subsystemCore    = "core"
	subsystemEngine  = "engine"
	subsystemJournal = "journal"
)
