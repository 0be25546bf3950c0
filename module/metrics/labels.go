package metrics

const (
	LabelAxis      = "axis"
	LabelReason    = "reason"
	LabelViolation = "violation"
	LabelSource    = "source"
)

const (
	SourceKafka = "kafka"
	SourceStdin = "stdin"
)
